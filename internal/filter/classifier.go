package filter

import (
	"strings"

	"EnergyDigest/internal/domain"
)

// Classifier assigns articles to topics by keyword containment.
type Classifier struct {
	topics []domain.Topic
}

// NewClassifier copies the topic table; keywords are matched lower-cased and
// keep any leading or trailing space, which marks a word boundary.
func NewClassifier(topics []domain.Topic) *Classifier {
	owned := make([]domain.Topic, len(topics))
	for i, t := range topics {
		keywords := make([]string, len(t.Keywords))
		for k, kw := range t.Keywords {
			keywords[k] = strings.ToLower(kw)
		}
		t.Keywords = keywords
		owned[i] = t
	}
	return &Classifier{topics: owned}
}

// Topics returns the topic names in display order.
func (c *Classifier) Topics() []string {
	names := make([]string, len(c.topics))
	for i, t := range c.topics {
		names[i] = t.Name
	}
	return names
}

// Categorize returns the names of all topics whose keywords appear in the
// article title. The title is lower-cased and padded with one space on each
// side so " ai " also matches a title that starts or ends with "AI".
func (c *Classifier) Categorize(article domain.Article) []string {
	padded := " " + strings.ToLower(article.Title) + " "

	var matched []string
	for _, topic := range c.topics {
		for _, kw := range topic.Keywords {
			if kw != "" && strings.Contains(padded, kw) {
				matched = append(matched, topic.Name)
				break
			}
		}
	}
	return matched
}

// FilterAndCategorize appends every article to each topic it matches. An
// article may land in several topics; Resolver settles that later. Topics
// without articles are pruned.
func (c *Classifier) FilterAndCategorize(articles []domain.Article) *domain.Buckets {
	buckets := domain.NewBuckets(c.Topics()...)
	for _, article := range articles {
		topics := c.Categorize(article)
		if len(topics) == 0 {
			continue
		}
		article.Topics = topics
		for _, topic := range topics {
			buckets.Append(topic, article)
		}
	}
	return buckets.Pruned()
}
