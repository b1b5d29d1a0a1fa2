package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"EnergyDigest/internal/domain"
	"EnergyDigest/internal/filter"
	"EnergyDigest/internal/logging"
	"EnergyDigest/internal/ports"
)

// PipelineDeps wires all driven adapters into the digest cycle. Nil ports
// skip their stage.
type PipelineDeps struct {
	Source     ports.ArticleSource
	Repository ports.ArticleRepository
	Filter     *filter.Pipeline
	Notifiers  []ports.Notifier
	Icons      map[string]string
	// MarkAll marks every reviewed article as sent after delivery; otherwise
	// only the articles that made it into the digest are marked.
	MarkAll bool
	Logger  *slog.Logger
}

// Report describes one cycle.
type Report struct {
	RunID    string
	Fetched  int
	Saved    int
	Reviewed int
	Filter   filter.Stats
	Digest   domain.Digest
	// Selected lists the IDs of the articles placed in the digest.
	Selected  []string
	Delivered bool
	Marked    int
}

// Pipeline implements the weekly digest workflow: ingest, filter, deliver,
// mark sent.
type Pipeline struct {
	source     ports.ArticleSource
	repository ports.ArticleRepository
	filter     *filter.Pipeline
	notifiers  []ports.Notifier
	icons      map[string]string
	markAll    bool
	logger     *slog.Logger
	newRunID   func() string
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	flt := deps.Filter
	if flt == nil {
		flt = filter.NewPipeline(filter.PipelineDeps{Logger: logger})
	}
	var notifiers []ports.Notifier
	for _, n := range deps.Notifiers {
		if n != nil {
			notifiers = append(notifiers, n)
		}
	}
	return &Pipeline{
		source:     deps.Source,
		repository: deps.Repository,
		filter:     flt,
		notifiers:  notifiers,
		icons:      deps.Icons,
		markAll:    deps.MarkAll,
		logger:     logger,
		newRunID:   uuid.NewString,
	}
}

// RunCycle fetches, filters and delivers one digest dated day. Articles are
// marked sent only after every notifier succeeded.
func (p *Pipeline) RunCycle(ctx context.Context, day time.Time) (Report, error) {
	report := Report{RunID: p.newRunID()}
	log := logging.WithRun(p.logger, report.RunID)

	pending, err := p.collect(ctx, log, &report)
	if err != nil {
		return report, err
	}
	if len(pending) == 0 {
		log.Info("nothing to send this week")
		return report, nil
	}

	p.build(ctx, day, pending, &report)
	if report.Digest.Total() == 0 {
		log.Info("no relevant articles after filtering, nothing sent", "reviewed", report.Reviewed)
		return report, nil
	}

	if len(p.notifiers) == 0 {
		log.Warn("no notifier configured, digest not delivered", "articles", report.Digest.Total())
		return report, nil
	}

	var failures []error
	for _, n := range p.notifiers {
		if err := n.PublishDigest(ctx, report.Digest); err != nil {
			failures = append(failures, err)
		}
	}
	if len(failures) > 0 {
		return report, fmt.Errorf("publish digest: %w", errors.Join(failures...))
	}
	report.Delivered = true
	log.Info("digest delivered", "articles", report.Digest.Total(), "channels", len(p.notifiers))

	ids := report.deliveredIDs(pending, p.markAll)
	if p.repository != nil && len(ids) > 0 {
		if err := p.repository.MarkSent(ctx, ids); err != nil {
			return report, fmt.Errorf("mark sent: %w", err)
		}
		report.Marked = len(ids)
		log.Info("marked articles as sent", "count", len(ids), "all_reviewed", p.markAll)
	}
	return report, nil
}

// Preview runs the same ingest and filter stages as RunCycle but delivers and
// marks nothing.
func (p *Pipeline) Preview(ctx context.Context, day time.Time) (Report, error) {
	report := Report{RunID: p.newRunID()}
	log := logging.WithRun(p.logger, report.RunID)

	pending, err := p.collect(ctx, log, &report)
	if err != nil {
		return report, err
	}
	if len(pending) > 0 {
		p.build(ctx, day, pending, &report)
	}
	return report, nil
}

// collect stores newly fetched articles and returns everything still unsent.
// Without a repository the freshly fetched articles are used directly.
func (p *Pipeline) collect(ctx context.Context, log *slog.Logger, report *Report) ([]domain.Article, error) {
	var fetched []domain.Article
	if p.source != nil {
		var err error
		fetched, err = p.source.Fetch(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetch articles: %w", err)
		}
	}
	report.Fetched = len(fetched)

	if p.repository == nil {
		report.Reviewed = len(fetched)
		return fetched, nil
	}

	if len(fetched) > 0 {
		ids := make([]string, 0, len(fetched))
		for _, a := range fetched {
			if a.ID != "" {
				ids = append(ids, a.ID)
			}
		}
		seen, err := p.repository.AlreadySeen(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("load seen: %w", err)
		}
		fresh := make([]domain.Article, 0, len(fetched))
		for _, a := range fetched {
			if a.ID != "" && !seen[a.ID] {
				fresh = append(fresh, a)
			}
		}
		saved, err := p.repository.SaveNew(ctx, fresh)
		if err != nil {
			return nil, fmt.Errorf("save new: %w", err)
		}
		report.Saved = saved
		log.Info("stored new articles", "fetched", len(fetched), "new", saved)
	}

	unsent, err := p.repository.Unsent(ctx)
	if err != nil {
		return nil, fmt.Errorf("load unsent: %w", err)
	}
	report.Reviewed = len(unsent)
	log.Info("unsent articles ready for digest", "count", len(unsent))
	return unsent, nil
}

func (p *Pipeline) build(ctx context.Context, day time.Time, pending []domain.Article, report *Report) {
	result := p.filter.Run(ctx, pending)
	report.Filter = result.Stats
	report.Digest = domain.Digest{Date: day, Sections: result.Buckets.Digest(p.icons)}
	report.Selected = result.Buckets.IDs()
}

func (r Report) deliveredIDs(reviewed []domain.Article, all bool) []string {
	if !all {
		return r.Selected
	}
	ids := make([]string, 0, len(reviewed))
	for _, a := range reviewed {
		ids = append(ids, a.ID)
	}
	return distinctIDs(ids)
}

func distinctIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
