package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"EnergyDigest/internal/domain"
	"EnergyDigest/internal/ports"
)

// maxBatch keeps IN lists well under SQLite's bound-variable limit.
const maxBatch = 500

const schema = `CREATE TABLE IF NOT EXISTS articles (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	guid         TEXT UNIQUE NOT NULL,
	title        TEXT,
	url          TEXT,
	feed_name    TEXT,
	category     TEXT NOT NULL DEFAULT '',
	published_at TEXT NOT NULL DEFAULT '',
	status       TEXT NOT NULL DEFAULT 'fetched',
	sent         INTEGER NOT NULL DEFAULT 0,
	sent_at      TEXT,
	created_at   TEXT DEFAULT (datetime('now'))
)`

// SQLiteRepository tracks seen and sent articles in a SQLite file.
type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

var _ ports.ArticleRepository = (*SQLiteRepository)(nil)

// OpenSQLite opens (or creates) the database at path and ensures the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}

	repo := NewSQLiteRepository(db)
	if err := repo.Init(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// NewSQLiteRepository wraps an existing handle. Call Init before use.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

// Init creates the articles table if it does not exist.
func (r *SQLiteRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (r *SQLiteRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// AlreadySeen returns the subset of ids already stored.
func (r *SQLiteRepository) AlreadySeen(ctx context.Context, ids []string) (map[string]bool, error) {
	result := make(map[string]bool)
	for _, chunk := range chunks(ids) {
		query, args, err := sq.Select("guid").From("articles").Where(sq.Eq{"guid": chunk}).ToSql()
		if err != nil {
			return nil, fmt.Errorf("build seen query: %w", err)
		}

		rows, err := r.db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("query seen: %w", err)
		}
		for rows.Next() {
			var guid string
			if err := rows.Scan(&guid); err != nil {
				_ = rows.Close()
				return nil, fmt.Errorf("scan guid: %w", err)
			}
			result[guid] = true
		}
		if err := rows.Err(); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("rows iteration: %w", err)
		}
		if err := rows.Close(); err != nil {
			return nil, fmt.Errorf("close rows: %w", err)
		}
	}
	return result, nil
}

// SaveNew inserts articles whose GUID is not stored yet and returns how many
// rows were added. Articles without an ID are skipped.
func (r *SQLiteRepository) SaveNew(ctx context.Context, articles []domain.Article) (int, error) {
	if len(articles) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	inserted := 0
	for _, article := range articles {
		if article.ID == "" {
			continue
		}
		query, args, err := sq.Insert("articles").
			Options("OR IGNORE").
			Columns("guid", "title", "url", "feed_name", "category", "published_at", "status").
			Values(article.ID, article.Title, article.URL, article.Source, "", formatTime(article.PublishedAt), string(domain.StatusFetched)).
			ToSql()
		if err != nil {
			return 0, fmt.Errorf("build insert: %w", err)
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return 0, fmt.Errorf("insert article %s: %w", article.ID, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

// Unsent lists articles not delivered yet, ordered by category then feed.
func (r *SQLiteRepository) Unsent(ctx context.Context) ([]domain.Article, error) {
	query, args, err := sq.Select("guid", "title", "url", "feed_name", "published_at").
		From("articles").
		Where(sq.Eq{"sent": 0}).
		OrderBy("category", "feed_name", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build unsent query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query unsent: %w", err)
	}
	defer rows.Close()

	var articles []domain.Article
	for rows.Next() {
		var (
			a                         domain.Article
			title, link, feed, pubStr sql.NullString
		)
		if err := rows.Scan(&a.ID, &title, &link, &feed, &pubStr); err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		a.Title = title.String
		a.URL = link.String
		a.Source = feed.String
		a.PublishedAt = parseTime(pubStr.String)
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return articles, nil
}

// MarkSent flags the given GUIDs as delivered.
func (r *SQLiteRepository) MarkSent(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	sentAt := r.now().UTC().Format(time.RFC3339)
	for _, chunk := range chunks(ids) {
		query, args, err := sq.Update("articles").
			Set("sent", 1).
			Set("status", string(domain.StatusSent)).
			Set("sent_at", sentAt).
			Where(sq.Eq{"guid": chunk}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build update: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("mark sent: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Stats counts stored and pending articles.
func (r *SQLiteRepository) Stats(ctx context.Context) (total, unsent int, err error) {
	query, args, err := sq.Select("COUNT(*)", "COALESCE(SUM(CASE WHEN sent = 0 THEN 1 ELSE 0 END), 0)").
		From("articles").
		ToSql()
	if err != nil {
		return 0, 0, fmt.Errorf("build stats query: %w", err)
	}
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total, &unsent); err != nil {
		return 0, 0, fmt.Errorf("query stats: %w", err)
	}
	return total, unsent, nil
}

func chunks(ids []string) [][]string {
	var out [][]string
	for len(ids) > 0 {
		n := min(len(ids), maxBatch)
		out = append(out, ids[:n])
		ids = ids[n:]
	}
	return out
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
