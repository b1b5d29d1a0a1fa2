package feeds

import (
	"log/slog"
	"sort"
)

// FeedResult is the outcome of fetching one feed.
type FeedResult struct {
	Name     string
	URL      string
	Articles int
	Err      error
}

// OK reports whether the feed was fetched and parsed.
func (r FeedResult) OK() bool { return r.Err == nil }

// Health summarizes one fetch round across all feeds.
type Health struct {
	Results []FeedResult
}

// Healthy returns the names of working feeds, sorted.
func (h Health) Healthy() []string {
	return h.names(true)
}

// Failed returns the names of failing feeds, sorted.
func (h Health) Failed() []string {
	return h.names(false)
}

func (h Health) names(ok bool) []string {
	var out []string
	for _, r := range h.Results {
		if r.OK() == ok {
			out = append(out, r.Name)
		}
	}
	sort.Strings(out)
	return out
}

// Log writes the health report: one line per feed and a summary.
func (h Health) Log(logger *slog.Logger) {
	if logger == nil {
		return
	}
	healthy, failed := h.Healthy(), h.Failed()
	for _, name := range healthy {
		logger.Info("feed healthy", "feed", name)
	}
	for _, name := range failed {
		logger.Warn("feed failing, replace it", "feed", name)
	}
	logger.Info("feed health report", "healthy", len(healthy), "failed", len(failed), "total", len(h.Results))
	if len(failed) > 0 {
		logger.Warn("action needed: replace failing feeds", "count", len(failed))
	}
}
