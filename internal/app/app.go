package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofrs/flock"

	"EnergyDigest/internal/config"
	"EnergyDigest/internal/domain"
	"EnergyDigest/internal/filter"
	"EnergyDigest/internal/infrastructure/feeds"
	"EnergyDigest/internal/infrastructure/llm"
	"EnergyDigest/internal/infrastructure/mail"
	"EnergyDigest/internal/infrastructure/scheduler"
	"EnergyDigest/internal/infrastructure/storage"
	"EnergyDigest/internal/infrastructure/telegram"
	"EnergyDigest/internal/logging"
	"EnergyDigest/internal/ports"
	"EnergyDigest/internal/usecase"
)

// ErrAlreadyRunning is returned when another process holds the instance lock.
var ErrAlreadyRunning = errors.New("another energy digest instance is already running")

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	repo     *storage.SQLiteRepository
	source   *feeds.Source
	filter   *filter.Pipeline
	pipeline *usecase.Pipeline
	lock     *flock.Flock
	now      func() time.Time
}

// Options overrides adapters, mainly for tests.
type Options struct {
	Completer ports.Completer
	Notifiers []ports.Notifier
}

// New builds the application: SQLite repository, feed source, filter
// pipeline and the configured notifiers.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	return NewWithOptions(ctx, cfg, baseLogger, Options{})
}

// NewWithOptions is New with injectable completer and notifiers.
func NewWithOptions(ctx context.Context, cfg config.Config, baseLogger *slog.Logger, opts Options) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.NewWithFormat(nil, cfg.Logging.Level, cfg.Logging.Format)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	repo, err := storage.OpenSQLite(ctx, cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}

	completer := opts.Completer
	if completer == nil {
		completer, err = newCompleter(cfg.Scoring)
		if err != nil {
			_ = repo.Close()
			return nil, err
		}
	}

	topics := cfg.DomainTopics()
	flt := filter.NewPipeline(filter.PipelineDeps{
		Classifier: filter.NewClassifier(topics),
		Scorer: filter.NewScorer(completer, topics, filter.ScorerConfig{
			Concurrency: cfg.Scoring.Concurrency,
			MaxCalls:    cfg.Scoring.MaxCalls,
			Threshold:   cfg.Scoring.Threshold,
			MaxPerTopic: cfg.Filter.MaxPerTopic,
			CallDelay:   cfg.Scoring.CallDelay,
		}, baseLogger.With("component", "filter.scorer")),
		Resolver: filter.NewResolver(topics, baseLogger.With("component", "filter.resolver")),
		Options: filter.PipelineOptions{
			DedupThreshold: cfg.Filter.DedupThreshold,
			MaxPerTopic:    cfg.Filter.MaxPerTopic,
		},
		Logger: baseLogger.With("component", "filter"),
	})

	source := feeds.NewSource(cfg.Feeds, cfg.Fetch, baseLogger.With("component", "feeds"))

	notifiers := opts.Notifiers
	if notifiers == nil {
		notifiers = buildNotifiers(cfg, baseLogger)
	}
	if len(notifiers) == 0 {
		baseLogger.Warn("no delivery channel configured; digests will not be sent")
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:     source,
		Repository: repo,
		Filter:     flt,
		Notifiers:  notifiers,
		Icons:      cfg.TopicIcons(),
		MarkAll:    cfg.Digest.MarkAllReviewed(),
		Logger:     baseLogger.With("component", "pipeline"),
	})

	return &Application{
		cfg:      cfg,
		logger:   baseLogger,
		repo:     repo,
		source:   source,
		filter:   flt,
		pipeline: pipeline,
		lock:     flock.New(cfg.Scheduler.LockPath),
		now:      time.Now,
	}, nil
}

func newCompleter(cfg config.ScoringConfig) (ports.Completer, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	switch cfg.Provider {
	case config.ProviderLangchain:
		c, err := llm.NewLangchainCompleter(cfg)
		if err != nil {
			return nil, fmt.Errorf("scoring completer: %w", err)
		}
		return c, nil
	default:
		return llm.NewChatCompleter(cfg), nil
	}
}

func buildNotifiers(cfg config.Config, logger *slog.Logger) []ports.Notifier {
	var notifiers []ports.Notifier
	if cfg.Mail.Enabled() {
		notifiers = append(notifiers, mail.NewNotifier(cfg.Mail, cfg.Digest.Subject, logger.With("component", "mail")))
	}
	if cfg.Telegram.Enabled() {
		notifiers = append(notifiers, telegram.NewNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Digest.Subject))
	}
	return notifiers
}

// Run performs a single digest cycle under the instance lock.
func (a *Application) Run(ctx context.Context) (usecase.Report, error) {
	unlock, err := a.acquire()
	if err != nil {
		return usecase.Report{}, err
	}
	defer unlock()

	return a.pipeline.RunCycle(ctx, a.now())
}

// Preview runs ingest and filtering without delivery or marking.
func (a *Application) Preview(ctx context.Context) (usecase.Report, error) {
	unlock, err := a.acquire()
	if err != nil {
		return usecase.Report{}, err
	}
	defer unlock()

	return a.pipeline.Preview(ctx, a.now())
}

// CheckFeeds fetches every feed and reports its health without storing
// anything.
func (a *Application) CheckFeeds(ctx context.Context) (feeds.Health, []domain.Article, error) {
	articles, health, err := a.source.FetchWithHealth(ctx)
	if err != nil {
		return feeds.Health{}, nil, err
	}
	return health, articles, nil
}

// StoreStats reports how many articles are stored and how many still await
// delivery.
func (a *Application) StoreStats(ctx context.Context) (total, unsent int, err error) {
	return a.repo.Stats(ctx)
}

// Serve runs a cycle every scheduler interval until ctx is cancelled.
func (a *Application) Serve(ctx context.Context, immediate bool) error {
	unlock, err := a.acquire()
	if err != nil {
		return err
	}
	defer unlock()

	driver := scheduler.NewIntervalScheduler(a.cfg.Scheduler.Interval, immediate)
	sched := usecase.NewScheduler(driver, a.pipeline, a.logger.With("component", "scheduler"))
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("scheduler started", "interval", a.cfg.Scheduler.Interval, "lock", a.cfg.Scheduler.LockPath)

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := sched.Stop(stopCtx); err != nil {
		a.logger.Warn("scheduler did not stop cleanly", "error", err)
	}
	a.logger.Info("scheduler stopped")
	return nil
}

// Close releases the database handle.
func (a *Application) Close() error {
	if a == nil || a.repo == nil {
		return nil
	}
	return a.repo.Close()
}

func (a *Application) acquire() (func(), error) {
	ok, err := a.lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, ErrAlreadyRunning
	}
	return func() {
		if err := a.lock.Unlock(); err != nil {
			a.logger.Warn("failed to release lock", "error", err)
		}
	}, nil
}
