package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"EnergyDigest/internal/domain"
)

func openTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "articles.db"))
	if err != nil {
		t.Fatalf("open repo: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestSaveNewIgnoresKnownGUIDs(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := openTestRepo(t)

	published := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)
	articles := []domain.Article{
		{ID: "g1", Title: "Vogtle unit 4 reaches full power", URL: "https://a/1", Source: "World Nuclear News", PublishedAt: published},
		{ID: "g2", Title: "Offshore wind lease sale", URL: "https://a/2", Source: "Canary Media"},
		{Title: "No identity"},
	}
	n, err := repo.SaveNew(ctx, articles)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 inserted, got %d", n)
	}

	n, err = repo.SaveNew(ctx, articles[:1])
	if err != nil {
		t.Fatalf("save again: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected duplicate to be ignored, got %d", n)
	}

	seen, err := repo.AlreadySeen(ctx, []string{"g1", "g3"})
	if err != nil {
		t.Fatalf("seen: %v", err)
	}
	if !seen["g1"] || seen["g3"] || len(seen) != 1 {
		t.Fatalf("unexpected seen set: %v", seen)
	}

	unsent, err := repo.Unsent(ctx)
	if err != nil {
		t.Fatalf("unsent: %v", err)
	}
	if len(unsent) != 2 {
		t.Fatalf("expected 2 unsent, got %+v", unsent)
	}
	// ordered by feed name: Canary Media before World Nuclear News
	if unsent[0].ID != "g2" || unsent[1].ID != "g1" {
		t.Fatalf("unexpected order: %+v", unsent)
	}
	if !unsent[1].PublishedAt.Equal(published) || unsent[1].Source != "World Nuclear News" {
		t.Fatalf("unexpected round trip: %+v", unsent[1])
	}
	if !unsent[0].PublishedAt.IsZero() {
		t.Fatalf("expected zero date, got %v", unsent[0].PublishedAt)
	}
}

func TestMarkSentRemovesFromUnsent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := openTestRepo(t)

	if _, err := repo.SaveNew(ctx, []domain.Article{
		{ID: "g1", Title: "one", Source: "A"},
		{ID: "g2", Title: "two", Source: "B"},
	}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := repo.MarkSent(ctx, []string{"g1", "unknown"}); err != nil {
		t.Fatalf("mark sent: %v", err)
	}

	unsent, err := repo.Unsent(ctx)
	if err != nil {
		t.Fatalf("unsent: %v", err)
	}
	if len(unsent) != 1 || unsent[0].ID != "g2" {
		t.Fatalf("expected only g2 unsent, got %+v", unsent)
	}

	total, pending, err := repo.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if total != 2 || pending != 1 {
		t.Fatalf("unexpected stats: total=%d unsent=%d", total, pending)
	}

	if err := repo.MarkSent(ctx, nil); err != nil {
		t.Fatalf("empty mark sent: %v", err)
	}
}

func TestLargeBatchesAreChunked(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := openTestRepo(t)

	articles := make([]domain.Article, 0, 1200)
	ids := make([]string, 0, 1200)
	for i := 0; i < 1200; i++ {
		id := fmt.Sprintf("guid-%04d", i)
		ids = append(ids, id)
		articles = append(articles, domain.Article{ID: id, Title: id, Source: "Bulk"})
	}
	if n, err := repo.SaveNew(ctx, articles); err != nil || n != 1200 {
		t.Fatalf("save bulk: n=%d err=%v", n, err)
	}

	seen, err := repo.AlreadySeen(ctx, ids)
	if err != nil {
		t.Fatalf("seen: %v", err)
	}
	if len(seen) != 1200 {
		t.Fatalf("expected all seen, got %d", len(seen))
	}

	if err := repo.MarkSent(ctx, ids); err != nil {
		t.Fatalf("mark sent: %v", err)
	}
	unsent, err := repo.Unsent(ctx)
	if err != nil {
		t.Fatalf("unsent: %v", err)
	}
	if len(unsent) != 0 {
		t.Fatalf("expected nothing unsent, got %d", len(unsent))
	}
}

func TestChunks(t *testing.T) {
	t.Parallel()

	ids := make([]string, maxBatch*2+1)
	got := chunks(ids)
	if len(got) != 3 || len(got[2]) != 1 {
		t.Fatalf("unexpected chunking: %d chunks", len(got))
	}
	if chunks(nil) != nil {
		t.Fatal("expected nil for empty input")
	}
}
