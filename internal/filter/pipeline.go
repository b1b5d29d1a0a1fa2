package filter

import (
	"context"
	"log/slog"

	"EnergyDigest/internal/domain"
)

// PipelineOptions holds the dedup threshold and the final per-topic cap.
type PipelineOptions struct {
	DedupThreshold float64
	MaxPerTopic    int
}

// PipelineDeps wires the filter stages.
type PipelineDeps struct {
	Classifier *Classifier
	Scorer     *Scorer
	Resolver   *Resolver
	Options    PipelineOptions
	Logger     *slog.Logger
}

// Stats counts what each stage did during one run.
type Stats struct {
	Input      int
	Unique     int
	Classified int
	Scoring    ScoreReport
	Superseded int
	Topics     int
	Output     int
}

// Result is the outcome of one pipeline run.
type Result struct {
	Buckets *domain.Buckets
	Stats   Stats
}

// Pipeline runs dedup, classification, scoring, specificity resolution and
// capping, in that order.
type Pipeline struct {
	classifier *Classifier
	scorer     *Scorer
	resolver   *Resolver
	opts       PipelineOptions
	logger     *slog.Logger
}

// NewPipeline constructs the filter pipeline. A nil Scorer behaves like one
// without a completer.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	opts := deps.Options
	if opts.DedupThreshold <= 0 {
		opts.DedupThreshold = DefaultDedupThreshold
	}
	if opts.MaxPerTopic <= 0 {
		opts.MaxPerTopic = DefaultMaxPerTopic
	}
	return &Pipeline{
		classifier: deps.Classifier,
		scorer:     deps.Scorer,
		resolver:   deps.Resolver,
		opts:       opts,
		logger:     logger,
	}
}

// Run filters articles into capped, conflict-free topic buckets. It never
// fails; the worst outcome is empty buckets.
func (p *Pipeline) Run(ctx context.Context, articles []domain.Article) Result {
	stats := Stats{Input: len(articles)}

	unique := Deduplicate(articles, p.opts.DedupThreshold)
	stats.Unique = len(unique)
	if dropped := len(articles) - len(unique); dropped > 0 {
		p.logger.Info("removed near-duplicate headlines", "dropped", dropped, "kept", len(unique))
	}

	buckets := domain.NewBuckets()
	if p.classifier != nil {
		buckets = p.classifier.FilterAndCategorize(unique)
	}
	stats.Classified = countClassified(buckets)
	p.logger.Info("classified articles",
		"classified", stats.Classified,
		"unmatched", stats.Unique-stats.Classified,
		"assignments", buckets.Total(),
	)

	if p.scorer != nil {
		buckets, stats.Scoring = p.scorer.Filter(ctx, buckets)
	} else {
		stats.Scoring = ScoreReport{Passthrough: true, Candidates: buckets.Total()}
	}

	if p.resolver != nil {
		buckets, stats.Superseded = p.resolver.Resolve(buckets)
	}

	buckets = buckets.Capped(p.opts.MaxPerTopic)
	stats.Topics = buckets.Len()
	stats.Output = buckets.Total()

	for _, topic := range buckets.Topics() {
		p.logger.Info("topic ready", "topic", topic, "articles", len(buckets.Articles(topic)))
	}
	return Result{Buckets: buckets, Stats: stats}
}

// countClassified counts distinct articles: each classified article is listed
// exactly once under the first topic it matched.
func countClassified(buckets *domain.Buckets) int {
	n := 0
	for _, topic := range buckets.Topics() {
		for _, a := range buckets.Articles(topic) {
			if len(a.Topics) > 0 && a.Topics[0] == topic {
				n++
			}
		}
	}
	return n
}
