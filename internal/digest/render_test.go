package digest

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"EnergyDigest/internal/domain"
)

func sampleDigest() domain.Digest {
	return domain.Digest{
		Date: time.Date(2026, 10, 19, 7, 0, 0, 0, time.UTC),
		Sections: []domain.Section{
			{
				Topic: "Nuclear",
				Icon:  "☢️",
				Articles: []domain.Article{
					{ID: "1", Title: "Vogtle <unit 4> & the grid", URL: "https://example.com/vogtle?a=1&b=2", Source: "World Nuclear News"},
					{ID: "2", Title: "SMR licensing update", URL: "javascript:alert(1)", Source: "NRC"},
				},
			},
			{
				Topic:    "Grid",
				Articles: []domain.Article{{ID: "3", Title: "Transmission buildout", URL: "https://example.com/tx", Source: "Utility Dive"}},
			},
		},
	}
}

func TestSubject(t *testing.T) {
	t.Parallel()

	date := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	if got := Subject("Energy Security Weekly", date); got != "Energy Security Weekly - Monday, October 19, 2026" {
		t.Fatalf("unexpected subject %q", got)
	}
	if got := Subject("  ", date); got != "Monday, October 19, 2026" {
		t.Fatalf("unexpected bare subject %q", got)
	}
}

func TestRenderHTML(t *testing.T) {
	t.Parallel()

	out, err := RenderHTML(sampleDigest())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(out))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}

	if meta := doc.Find("p.meta").Text(); !strings.Contains(meta, "Monday, October 19, 2026") || !strings.Contains(meta, "3 articles") {
		t.Fatalf("unexpected header meta %q", meta)
	}

	topics := doc.Find("p.topic")
	if topics.Length() != 2 {
		t.Fatalf("expected 2 sections, got %d", topics.Length())
	}
	if got := strings.TrimSpace(topics.Eq(0).Text()); got != "☢️ Nuclear" {
		t.Fatalf("unexpected first topic %q", got)
	}
	if got := strings.TrimSpace(topics.Eq(1).Text()); got != DefaultIcon+" Grid" {
		t.Fatalf("expected default icon, got %q", got)
	}

	links := doc.Find("a.headline")
	if links.Length() != 3 {
		t.Fatalf("expected 3 headlines, got %d", links.Length())
	}
	if got := links.Eq(0).Text(); got != "Vogtle <unit 4> & the grid" {
		t.Fatalf("title not round-tripped through escaping: %q", got)
	}
	if href, _ := links.Eq(0).Attr("href"); href != "https://example.com/vogtle?a=1&b=2" {
		t.Fatalf("unexpected href %q", href)
	}
	if href, _ := links.Eq(1).Attr("href"); strings.HasPrefix(href, "javascript:") {
		t.Fatalf("unsafe href was not neutralized: %q", href)
	}
	if strings.Contains(out, "<unit 4>") {
		t.Fatal("raw markup leaked into html")
	}
	if got := doc.Find("span.source").First().Text(); got != "World Nuclear News" {
		t.Fatalf("unexpected source %q", got)
	}
}

func TestRenderText(t *testing.T) {
	t.Parallel()

	out := RenderText(sampleDigest())
	for _, want := range []string{
		"ENERGY SECURITY WEEKLY\nMonday, October 19, 2026\n3 articles\n",
		"☢️ NUCLEAR  (2 articles)",
		"1. Vogtle <unit 4> & the grid\n   World Nuclear News\n   https://example.com/vogtle?a=1&b=2\n",
		"2. SMR licensing update",
		DefaultIcon + " GRID  (1 articles)",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("text digest missing %q:\n%s", want, out)
		}
	}
	if !strings.HasSuffix(out, footer) {
		t.Fatalf("expected footer at the end:\n%s", out)
	}
}

func TestRenderEmptyDigest(t *testing.T) {
	t.Parallel()

	d := domain.Digest{Date: time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)}
	out, err := RenderHTML(d)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "0 articles") {
		t.Fatalf("expected zero count in html")
	}
	if !strings.Contains(RenderText(d), "0 articles") {
		t.Fatal("expected zero count in text")
	}
}
