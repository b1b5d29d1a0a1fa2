package filter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/sync/errgroup"

	"EnergyDigest/internal/domain"
	"EnergyDigest/internal/ports"
)

const (
	DefaultScoreConcurrency = 4
	DefaultMaxScoreCalls    = 150
	DefaultScoreThreshold   = 6
	DefaultMaxPerTopic      = 10
	DefaultCallDelay        = 500 * time.Millisecond
	FallbackScore           = 5

	minScore = 1
	maxScore = 10
)

var errNoScore = errors.New("reply contains no digits")

// ScorerConfig tunes the relevance scorer. Zero values fall back to defaults,
// except CallDelay where zero means no delay.
type ScorerConfig struct {
	Concurrency int
	MaxCalls    int
	Threshold   int
	MaxPerTopic int
	CallDelay   time.Duration
}

func (c ScorerConfig) withDefaults() ScorerConfig {
	if c.Concurrency <= 0 {
		c.Concurrency = DefaultScoreConcurrency
	}
	if c.MaxCalls <= 0 {
		c.MaxCalls = DefaultMaxScoreCalls
	}
	if c.Threshold <= 0 {
		c.Threshold = DefaultScoreThreshold
	}
	if c.MaxPerTopic <= 0 {
		c.MaxPerTopic = DefaultMaxPerTopic
	}
	if c.CallDelay < 0 {
		c.CallDelay = 0
	}
	return c
}

// ScorerOption customizes the scorer.
type ScorerOption func(*Scorer)

// WithSleeper overrides how the pre-call delay is performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) ScorerOption {
	return func(s *Scorer) {
		if sleeper != nil {
			s.sleep = sleeper
		}
	}
}

// ScoreReport summarizes one Filter call.
type ScoreReport struct {
	Passthrough bool
	Candidates  int
	Truncated   int
	Scored      int
	Failed      int
	Kept        int
	Dropped     int
}

// Scorer filters classified articles by a 1-10 relevance score obtained from a
// completion service. A Scorer without a completer passes buckets through.
type Scorer struct {
	completer ports.Completer
	topics    map[string]domain.Topic
	cfg       ScorerConfig
	logger    *slog.Logger
	sleep     func(time.Duration)
}

// NewScorer builds a scorer. completer may be nil, which selects passthrough mode.
func NewScorer(completer ports.Completer, topics []domain.Topic, cfg ScorerConfig, logger *slog.Logger, opts ...ScorerOption) *Scorer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	byName := make(map[string]domain.Topic, len(topics))
	for _, t := range topics {
		byName[t.Name] = t
	}
	s := &Scorer{
		completer: completer,
		topics:    byName,
		cfg:       cfg.withDefaults(),
		logger:    logger,
		sleep:     time.Sleep,
	}
	for _, opt := range opts {
		opt(s)
	}
	if completer == nil {
		logger.Warn("relevance scoring disabled, using keyword classification only")
	}
	return s
}

// Enabled reports whether a completion service is configured.
func (s *Scorer) Enabled() bool {
	return s != nil && s.completer != nil
}

// Score asks the completion service how relevant title is to topic. It never
// fails: any error yields FallbackScore.
func (s *Scorer) Score(ctx context.Context, title string, topic domain.Topic) int {
	if !s.Enabled() {
		return FallbackScore
	}
	reply, err := s.completer.Complete(ctx, BuildScorePrompt(title, topic))
	if err != nil {
		s.logger.Warn("relevance call failed, using fallback score",
			"topic", topic.Name,
			"title", titlePrefix(title),
			"error", err,
		)
		return FallbackScore
	}
	score, err := ParseScore(reply)
	if err != nil {
		s.logger.Warn("unparseable relevance reply, using fallback score",
			"topic", topic.Name,
			"title", titlePrefix(title),
			"reply", titlePrefix(reply),
		)
		return FallbackScore
	}
	return score
}

type scorePair struct {
	topic   domain.Topic
	article domain.Article
}

type scoreResult struct {
	assignment domain.ScoredAssignment
	err        error
}

// Filter scores every (topic, article) pair and keeps those at or above the
// threshold, capping each topic. At most MaxCalls pairs are scored; the rest,
// taken in topic-then-article order, are dropped without a call.
func (s *Scorer) Filter(ctx context.Context, buckets *domain.Buckets) (*domain.Buckets, ScoreReport) {
	if !s.Enabled() {
		return buckets, ScoreReport{Passthrough: true, Candidates: buckets.Total()}
	}

	pairs := s.pairs(buckets)
	report := ScoreReport{Candidates: len(pairs)}
	if len(pairs) > s.cfg.MaxCalls {
		report.Truncated = len(pairs) - s.cfg.MaxCalls
		s.logger.Warn("too many relevance candidates, truncating",
			"candidates", len(pairs),
			"max_calls", s.cfg.MaxCalls,
			"skipped", report.Truncated,
		)
		pairs = pairs[:s.cfg.MaxCalls]
	}

	results := s.scoreAll(ctx, pairs)

	kept := domain.NewBuckets(buckets.Topics()...)
	for _, res := range results {
		if res.err != nil {
			report.Failed++
			s.logger.Error("relevance task failed", "error", res.err)
			continue
		}
		report.Scored++
		a := res.assignment
		if a.Score < s.cfg.Threshold {
			report.Dropped++
			s.logger.Info("dropped low relevance article",
				"topic", a.Topic,
				"score", a.Score,
				"title", titlePrefix(a.Article.Title),
			)
			continue
		}
		report.Kept++
		kept.Append(a.Topic, a.Article)
	}

	return kept.Capped(s.cfg.MaxPerTopic), report
}

func (s *Scorer) pairs(buckets *domain.Buckets) []scorePair {
	var pairs []scorePair
	for _, name := range buckets.Topics() {
		topic, ok := s.topics[name]
		if !ok {
			topic = domain.Topic{Name: name, Description: name}
		}
		for _, article := range buckets.Articles(name) {
			pairs = append(pairs, scorePair{topic: topic, article: article})
		}
	}
	return pairs
}

// scoreAll runs the pairs on a bounded pool. Each task owns one result slot,
// so nothing is shared between workers; a task never fails the group.
func (s *Scorer) scoreAll(ctx context.Context, pairs []scorePair) []scoreResult {
	results := make([]scoreResult, len(pairs))

	var g errgroup.Group
	g.SetLimit(s.cfg.Concurrency)
	for i, p := range pairs {
		g.Go(func() error {
			results[i] = s.scoreOne(ctx, p)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (s *Scorer) scoreOne(ctx context.Context, p scorePair) (res scoreResult) {
	defer func() {
		if r := recover(); r != nil {
			res = scoreResult{err: fmt.Errorf("score %q in %s: panic: %v", titlePrefix(p.article.Title), p.topic.Name, r)}
		}
	}()

	if s.cfg.CallDelay > 0 {
		s.sleep(s.cfg.CallDelay)
	}
	score := s.Score(ctx, p.article.Title, p.topic)
	return scoreResult{assignment: domain.ScoredAssignment{
		Topic:   p.topic.Name,
		Article: p.article,
		Score:   score,
	}}
}

// ParseScore extracts the first run of digits from reply and clamps it to 1-10.
func ParseScore(reply string) (int, error) {
	start := strings.IndexFunc(reply, unicode.IsDigit)
	if start < 0 {
		return 0, errNoScore
	}
	digits := reply[start:]
	if end := strings.IndexFunc(digits, func(r rune) bool { return !unicode.IsDigit(r) }); end >= 0 {
		digits = digits[:end]
	}
	value, err := strconv.Atoi(digits)
	if err != nil {
		// Only non-ASCII digits or overflow get here.
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return maxScore, nil
		}
		return 0, fmt.Errorf("parse score %q: %w", digits, err)
	}
	return clampScore(value), nil
}

func clampScore(v int) int {
	if v < minScore {
		return minScore
	}
	if v > maxScore {
		return maxScore
	}
	return v
}

// BuildScorePrompt renders the relevance question for one headline.
func BuildScorePrompt(title string, topic domain.Topic) string {
	description := strings.TrimSpace(topic.Description)
	if description == "" {
		description = topic.Name
	}

	var b strings.Builder
	b.WriteString("You are screening news headlines for a weekly energy security digest.\n\n")
	fmt.Fprintf(&b, "Topic: %s\n", topic.Name)
	fmt.Fprintf(&b, "Topic description: %s\n\n", description)
	fmt.Fprintf(&b, "Headline: %q\n\n", strings.TrimSpace(title))
	b.WriteString("Rate how relevant the headline is to the topic on a scale from 1 to 10.\n")
	b.WriteString("Score LOW (1-3) when a keyword only matches by coincidence: military, diplomatic or ")
	b.WriteString("geopolitical news without an energy angle, sports, celebrities, or a place name used ")
	b.WriteString("for an unrelated story.\n")
	b.WriteString("Score HIGH (7-10) when the headline is about energy infrastructure, generation, fuel ")
	b.WriteString("supply, electricity demand, prices, regulation or policy within the topic.\n")
	if guidance := strings.TrimSpace(topic.Guidance); guidance != "" {
		b.WriteString(guidance)
		b.WriteString("\n")
	}
	b.WriteString("Reply with a single integer from 1 to 10 and nothing else.")
	return b.String()
}
