package filter

import (
	"log/slog"
	"sort"

	"EnergyDigest/internal/domain"
)

// Resolver keeps an article that landed in several topics only in the most
// specific one. Articles are identified by URL; articles without a URL are left
// wherever classification put them.
type Resolver struct {
	rank   map[string]int
	logger *slog.Logger
}

// NewResolver builds a resolver from the topics' specificity ranks.
func NewResolver(topics []domain.Topic, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	rank := make(map[string]int, len(topics))
	for _, t := range topics {
		rank[t.Name] = t.Rank
	}
	return &Resolver{rank: rank, logger: logger}
}

// specificityOrder sorts the bucket topics most specific first. Unknown topics
// come after all configured ones, keeping their bucket order.
func (r *Resolver) specificityOrder(topics []string) []string {
	ordered := make([]string, len(topics))
	copy(ordered, topics)
	sort.SliceStable(ordered, func(i, j int) bool {
		ri, iok := r.rank[ordered[i]]
		rj, jok := r.rank[ordered[j]]
		switch {
		case iok && jok:
			return ri < rj
		case iok:
			return true
		default:
			return false
		}
	})
	return ordered
}

// Resolve returns new buckets in which no URL appears under more than one
// topic. Topic order and within-topic order are preserved; empty topics are
// pruned.
func (r *Resolver) Resolve(buckets *domain.Buckets) (*domain.Buckets, int) {
	topics := buckets.Topics()

	best := map[string]string{}
	for _, topic := range r.specificityOrder(topics) {
		for _, article := range buckets.Articles(topic) {
			if article.URL == "" {
				continue
			}
			if _, ok := best[article.URL]; !ok {
				best[article.URL] = topic
			}
		}
	}

	removed := 0
	out := domain.NewBuckets()
	for _, topic := range topics {
		for _, article := range buckets.Articles(topic) {
			if article.URL != "" && best[article.URL] != topic {
				removed++
				r.logger.Info("article moved to more specific topic",
					"from", topic,
					"to", best[article.URL],
					"title", titlePrefix(article.Title),
				)
				continue
			}
			out.Append(topic, article)
		}
	}
	return out.Pruned(), removed
}
