package filter

import (
	"EnergyDigest/internal/domain"
	"EnergyDigest/internal/similarity"
)

// DefaultDedupThreshold is the title similarity at which two headlines are
// treated as the same story.
const DefaultDedupThreshold = 0.85

// Deduplicate drops every article whose title is at least threshold similar to
// the title of an article accepted before it. Input order is preserved and the
// first occurrence always survives. Every candidate is compared with every
// accepted title.
func Deduplicate(articles []domain.Article, threshold float64) []domain.Article {
	accepted := make([]string, 0, len(articles))
	out := make([]domain.Article, 0, len(articles))
	for _, article := range articles {
		if isNearDuplicate(article.Title, accepted, threshold) {
			continue
		}
		accepted = append(accepted, article.Title)
		out = append(out, article)
	}
	return out
}

func isNearDuplicate(title string, accepted []string, threshold float64) bool {
	for _, prev := range accepted {
		if similarity.Ratio(title, prev) >= threshold {
			return true
		}
	}
	return false
}
