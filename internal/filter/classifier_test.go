package filter

import (
	"testing"

	"EnergyDigest/internal/domain"
)

func TestCategorizeMultipleTopics(t *testing.T) {
	t.Parallel()

	c := NewClassifier(testTopics())
	got := c.Categorize(article("1", "Georgia Power to build new nuclear reactor at Plant Vogtle"))

	want := []string{"Nuclear", "Georgia & Southeast US"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestCategorizeWordBoundaryPadding(t *testing.T) {
	t.Parallel()

	c := NewClassifier(testTopics())
	tests := []struct {
		title string
		want  bool
	}{
		{"AI boom lifts utility stocks", true},
		{"Utilities brace for AI", true},
		{"Utilities brace for AI demand", true},
		{"Said the chairman", false},
		{"Rainfall boosts hydro output", false},
	}
	for _, tt := range tests {
		got := c.Categorize(domain.Article{Title: tt.title})
		matched := len(got) == 1 && got[0] == "AI & Data Centers"
		if matched != tt.want {
			t.Fatalf("Categorize(%q) = %v, want AI match %v", tt.title, got, tt.want)
		}
	}
}

func TestCategorizeNoMatchAndEmptyTitle(t *testing.T) {
	t.Parallel()

	c := NewClassifier(testTopics())
	if got := c.Categorize(domain.Article{}); len(got) != 0 {
		t.Fatalf("expected no topics for empty title, got %v", got)
	}
	if got := c.Categorize(domain.Article{Title: "Local bakery opens second shop"}); len(got) != 0 {
		t.Fatalf("expected no topics, got %v", got)
	}
}

func TestCategorizeCaseInsensitiveKeywords(t *testing.T) {
	t.Parallel()

	c := NewClassifier([]domain.Topic{{Name: "Nuclear", Keywords: []string{"SMR"}}})
	if got := c.Categorize(domain.Article{Title: "Ontario approves first smr"}); len(got) != 1 {
		t.Fatalf("expected keyword case folded, got %v", got)
	}
}

func TestFilterAndCategorizeFanOutAndPrune(t *testing.T) {
	t.Parallel()

	c := NewClassifier(testTopics())
	articles := []domain.Article{
		article("1", "Georgia Power to build new nuclear reactor at Plant Vogtle"),
		article("2", "Solar farm approved near Atlanta"),
		article("3", "Bakery chain expands"),
		article("4", "Reactor restart delayed"),
	}
	buckets := c.FilterAndCategorize(articles)

	topics := buckets.Topics()
	want := []string{"Renewables", "Nuclear", "Georgia & Southeast US"}
	if len(topics) != len(want) {
		t.Fatalf("expected topics %v, got %v", want, topics)
	}
	for i := range want {
		if topics[i] != want[i] {
			t.Fatalf("topic %d: expected %s, got %s", i, want[i], topics[i])
		}
	}

	nuclear := buckets.Articles("Nuclear")
	if len(nuclear) != 2 || nuclear[0].ID != "1" || nuclear[1].ID != "4" {
		t.Fatalf("unexpected nuclear bucket: %v", titles(nuclear))
	}
	georgia := buckets.Articles("Georgia & Southeast US")
	if len(georgia) != 2 || georgia[0].ID != "1" || georgia[1].ID != "2" {
		t.Fatalf("unexpected georgia bucket: %v", titles(georgia))
	}
	if len(georgia[0].Topics) != 2 {
		t.Fatalf("expected assignment set recorded, got %v", georgia[0].Topics)
	}
	if articles[0].Topics != nil {
		t.Fatal("input article must not be mutated")
	}
}
