package ports

import (
	"context"
	"time"

	"EnergyDigest/internal/domain"
)

// ArticleSource pulls recent articles from upstream feeds.
type ArticleSource interface {
	Fetch(ctx context.Context) ([]domain.Article, error)
}

// ArticleRepository persists fetched articles and their delivery state.
type ArticleRepository interface {
	AlreadySeen(ctx context.Context, ids []string) (map[string]bool, error)
	SaveNew(ctx context.Context, articles []domain.Article) (int, error)
	Unsent(ctx context.Context) ([]domain.Article, error)
	MarkSent(ctx context.Context, ids []string) error
}

// Completer sends a prompt to a text completion service and returns its reply.
// Implementations must be safe for concurrent use.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Notifier delivers a rendered digest to mail, Telegram or other channels.
type Notifier interface {
	PublishDigest(ctx context.Context, digest domain.Digest) error
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
