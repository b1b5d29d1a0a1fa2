package domain

import "testing"

func TestBucketsKeepsTopicOrder(t *testing.T) {
	t.Parallel()

	b := NewBuckets("Renewables", "Nuclear")
	b.Append("Hydrocarbons", Article{ID: "1"})
	b.Append("Nuclear", Article{ID: "2"})

	topics := b.Topics()
	want := []string{"Renewables", "Nuclear", "Hydrocarbons"}
	if len(topics) != len(want) {
		t.Fatalf("expected %d topics, got %v", len(want), topics)
	}
	for i := range want {
		if topics[i] != want[i] {
			t.Fatalf("topic %d: expected %s, got %s", i, want[i], topics[i])
		}
	}

	pruned := b.Pruned()
	if got := pruned.Topics(); len(got) != 2 || got[0] != "Nuclear" || got[1] != "Hydrocarbons" {
		t.Fatalf("unexpected pruned topics: %v", got)
	}
	if pruned.Len() != 2 || pruned.Total() != 2 {
		t.Fatalf("unexpected pruned sizes len=%d total=%d", pruned.Len(), pruned.Total())
	}
}

func TestBucketsCapped(t *testing.T) {
	t.Parallel()

	b := NewBuckets()
	for i := 0; i < 15; i++ {
		b.Append("Nuclear", Article{ID: string(rune('a' + i))})
	}
	b.Append("Renewables", Article{ID: "z"})

	capped := b.Capped(10)
	if n := len(capped.Articles("Nuclear")); n != 10 {
		t.Fatalf("expected 10 nuclear articles, got %d", n)
	}
	if capped.Articles("Nuclear")[0].ID != "a" {
		t.Fatalf("expected first article kept, got %s", capped.Articles("Nuclear")[0].ID)
	}
	if n := len(capped.Articles("Renewables")); n != 1 {
		t.Fatalf("expected 1 renewables article, got %d", n)
	}
	if n := len(b.Capped(0).Articles("Nuclear")); n != 15 {
		t.Fatalf("expected capping disabled for zero limit, got %d", n)
	}
}

func TestBucketsIDsDistinct(t *testing.T) {
	t.Parallel()

	b := NewBuckets()
	b.Append("Nuclear", Article{ID: "1"})
	b.Append("Georgia", Article{ID: "1"})
	b.Append("Georgia", Article{ID: ""})
	b.Append("Georgia", Article{ID: "2"})

	ids := b.IDs()
	if len(ids) != 2 || ids[0] != "1" || ids[1] != "2" {
		t.Fatalf("unexpected ids: %v", ids)
	}
}

func TestBucketsDigestSkipsEmpty(t *testing.T) {
	t.Parallel()

	b := NewBuckets("Renewables", "Nuclear")
	b.Append("Nuclear", Article{ID: "1", Title: "Reactor"})

	sections := b.Digest(map[string]string{"Nuclear": "N"})
	if len(sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(sections))
	}
	if sections[0].Icon != "N" || sections[0].Topic != "Nuclear" {
		t.Fatalf("unexpected section: %+v", sections[0])
	}
	d := Digest{Sections: sections}
	if d.Total() != 1 {
		t.Fatalf("expected total 1, got %d", d.Total())
	}
}
