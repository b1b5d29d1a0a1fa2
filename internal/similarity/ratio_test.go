package similarity

import (
	"math"
	"testing"
)

func TestRatio(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{"both empty", "", "", 1},
		{"one empty", "solar", "", 0},
		{"identical", "Solar prices fall", "Solar prices fall", 1},
		{"case insensitive", "SOLAR PRICES", "solar prices", 1},
		{"disjoint", "abc", "xyz", 0},
		{"shifted block", "abcd", "bcde", 0.75},
		{"suffix growth", "private", "privately", 0.875},
		{"percent rewrite", "Solar prices fall 10% in Q3", "Solar prices fall 10 percent in Q3", 52.0 / 61.0},
		{"reworded", "Georgia Power to build new nuclear reactor", "Georgia Power builds new nuclear reactor", 78.0 / 82.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Ratio(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("Ratio(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestRatioDeterministic(t *testing.T) {
	t.Parallel()

	a := "Westinghouse wins AP1000 contract in Poland"
	b := "Poland picks Westinghouse for AP1000 reactors"
	first := Ratio(a, b)
	for i := 0; i < 50; i++ {
		if got := Ratio(a, b); got != first {
			t.Fatalf("iteration %d: ratio changed from %v to %v", i, first, got)
		}
	}
}

func TestRatioBounds(t *testing.T) {
	t.Parallel()

	pairs := [][2]string{
		{"LNG exports hit record", "Record LNG exports"},
		{"ünïcödé tïtle", "UNICODE TITLE"},
		{"a", "aaaaaaaa"},
	}
	for _, p := range pairs {
		got := Ratio(p[0], p[1])
		if got < 0 || got > 1 {
			t.Fatalf("Ratio(%q, %q) = %v out of range", p[0], p[1], got)
		}
	}
}

func TestMatchingBlocksOrdered(t *testing.T) {
	t.Parallel()

	blocks := MatchingBlocks([]rune("solar prices fall 10% in q3"), []rune("solar prices fall 10 percent in q3"))
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %+v", blocks)
	}
	if blocks[0] != (Block{A: 0, B: 0, Size: 20}) {
		t.Fatalf("unexpected first block: %+v", blocks[0])
	}
	if blocks[1] != (Block{A: 21, B: 28, Size: 6}) {
		t.Fatalf("unexpected second block: %+v", blocks[1])
	}
}
