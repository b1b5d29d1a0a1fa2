package domain

import "time"

// Article is a single headline pulled from a feed. The filter pipeline never
// changes Title, URL or Source; it only annotates Topics.
type Article struct {
	ID          string
	Title       string
	URL         string
	Source      string
	PublishedAt time.Time
	Topics      []string
}

// Topic is a configured digest bucket.
type Topic struct {
	Name        string
	Icon        string
	Keywords    []string
	Description string
	Guidance    string
	// Rank orders topics by specificity; lower is more specific.
	Rank int
}

// ScoredAssignment is a relevance score for one article within one topic.
type ScoredAssignment struct {
	Topic   string
	Article Article
	Score   int
}

// Digest is the payload handed to notifiers.
type Digest struct {
	Date     time.Time
	Sections []Section
}

// Section is one rendered topic of a digest.
type Section struct {
	Topic    string
	Icon     string
	Articles []Article
}

// Total counts articles across all sections.
func (d Digest) Total() int {
	total := 0
	for _, s := range d.Sections {
		total += len(s.Articles)
	}
	return total
}

// ArticleStatus enumerates persisted article milestones.
type ArticleStatus string

const (
	StatusFetched ArticleStatus = "fetched"
	StatusSent    ArticleStatus = "sent"
)
