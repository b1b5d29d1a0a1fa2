package feeds

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"

	"EnergyDigest/internal/config"
	"EnergyDigest/internal/domain"
	"EnergyDigest/internal/ports"
)

const (
	defaultTimeout     = 30 * time.Second
	defaultConcurrency = 4
	untitled           = "(No title)"
)

// Source implements ports.ArticleSource over a list of RSS/Atom feeds.
type Source struct {
	feeds       []config.FeedConfig
	client      *http.Client
	userAgent   string
	lookback    time.Duration
	concurrency int
	now         func() time.Time
	logger      *slog.Logger
}

var _ ports.ArticleSource = (*Source)(nil)

// Option customizes the source.
type Option func(*Source)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Source) {
		if client != nil {
			s.client = client
		}
	}
}

// WithClock overrides the time source used for the lookback cutoff.
func WithClock(now func() time.Time) Option {
	return func(s *Source) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSource wires the configured feeds.
func NewSource(feeds []config.FeedConfig, cfg config.FetchConfig, logger *slog.Logger, opts ...Option) *Source {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	s := &Source{
		feeds:       feeds,
		client:      &http.Client{Timeout: timeout},
		userAgent:   cfg.UserAgent,
		lookback:    cfg.Lookback(),
		concurrency: concurrency,
		now:         time.Now,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fetch pulls every feed and returns the recent entries in feed order. A
// failing feed is logged and skipped; only cancellation fails the call.
func (s *Source) Fetch(ctx context.Context) ([]domain.Article, error) {
	articles, health, err := s.FetchWithHealth(ctx)
	if err != nil {
		return nil, err
	}
	health.Log(s.logger)
	return articles, nil
}

// FetchWithHealth is Fetch plus the per-feed outcome.
func (s *Source) FetchWithHealth(ctx context.Context) ([]domain.Article, Health, error) {
	results := make([]FeedResult, len(s.feeds))
	perFeed := make([][]domain.Article, len(s.feeds))
	cutoff := s.now().Add(-s.lookback)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, feed := range s.feeds {
		g.Go(func() error {
			s.logger.Info("fetching feed", "feed", feed.Name)
			articles, err := s.fetchOne(gctx, feed, cutoff)
			results[i] = FeedResult{Name: feed.Name, URL: feed.URL, Articles: len(articles), Err: err}
			if err != nil {
				s.logger.Error("feed failed", "feed", feed.Name, "error", err)
				return nil
			}
			s.logger.Info("feed fetched", "feed", feed.Name, "articles", len(articles))
			perFeed[i] = articles
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, Health{}, fmt.Errorf("fetch feeds: %w", err)
	}

	var all []domain.Article
	for _, articles := range perFeed {
		all = append(all, articles...)
	}
	s.logger.Info("total recent articles", "articles", len(all))
	return all, Health{Results: results}, nil
}

func (s *Source) fetchOne(ctx context.Context, feed config.FeedConfig, cutoff time.Time) ([]domain.Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feed.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	parsed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	articles := make([]domain.Article, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		article, ok := convertItem(item, feed.Name)
		if !ok {
			continue
		}
		if !article.PublishedAt.IsZero() && article.PublishedAt.Before(cutoff) {
			continue
		}
		articles = append(articles, article)
	}
	return articles, nil
}

// convertItem maps a feed entry; entries without a GUID or link have no
// stable identity and are skipped. A missing date leaves PublishedAt zero.
func convertItem(item *gofeed.Item, feedName string) (domain.Article, bool) {
	if item == nil {
		return domain.Article{}, false
	}
	link := strings.TrimSpace(item.Link)
	guid := strings.TrimSpace(item.GUID)
	if guid == "" {
		guid = link
	}
	if guid == "" {
		return domain.Article{}, false
	}

	var published time.Time
	if item.PublishedParsed != nil {
		published = item.PublishedParsed.UTC()
	} else if item.UpdatedParsed != nil {
		published = item.UpdatedParsed.UTC()
	}

	return domain.Article{
		ID:          guid,
		Title:       cleanTitle(item.Title),
		URL:         link,
		Source:      feedName,
		PublishedAt: published,
	}, true
}

// cleanTitle strips markup some publishers leave in titles and collapses
// whitespace.
func cleanTitle(raw string) string {
	text := raw
	if strings.ContainsAny(raw, "<&") {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw)); err == nil {
			text = doc.Text()
		}
	}
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return untitled
	}
	return text
}
