package filter

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"EnergyDigest/internal/domain"
)

func newTestPipeline(completer completerFunc) *Pipeline {
	topics := testTopics()
	var scorer *Scorer
	if completer != nil {
		scorer = NewScorer(completer, topics, ScorerConfig{}, nil, WithSleeper(noSleep))
	} else {
		scorer = NewScorer(nil, topics, ScorerConfig{}, nil)
	}
	return NewPipeline(PipelineDeps{
		Classifier: NewClassifier(topics),
		Scorer:     scorer,
		Resolver:   NewResolver(topics, nil),
	})
}

func TestPipelineVogtleLandsInGeorgia(t *testing.T) {
	t.Parallel()

	articles := []domain.Article{
		article("1", "Georgia Power to build new nuclear reactor at Plant Vogtle"),
		article("2", "Georgia Power to build new nuclear reactors at Plant Vogtle"),
		article("3", "Bakery chain expands"),
	}
	res := newTestPipeline(nil).Run(context.Background(), articles)

	if res.Stats.Input != 3 || res.Stats.Unique != 2 || res.Stats.Classified != 1 {
		t.Fatalf("unexpected stats: %+v", res.Stats)
	}
	if !res.Stats.Scoring.Passthrough {
		t.Fatal("expected passthrough scoring")
	}
	if res.Stats.Superseded != 1 {
		t.Fatalf("expected 1 superseded assignment, got %d", res.Stats.Superseded)
	}
	topics := res.Buckets.Topics()
	if len(topics) != 1 || topics[0] != "Georgia & Southeast US" {
		t.Fatalf("expected only georgia topic, got %v", topics)
	}
	ids := res.Buckets.IDs()
	if len(ids) != 1 || ids[0] != "1" {
		t.Fatalf("unexpected delivered ids: %v", ids)
	}
}

func TestPipelineCapsEveryTopic(t *testing.T) {
	t.Parallel()

	var articles []domain.Article
	for i := 0; i < 30; i++ {
		digest := sha256.Sum256([]byte(strconv.Itoa(i)))
		articles = append(articles, article(fmt.Sprintf("n%d", i), fmt.Sprintf("Nuclear %x", digest)))
	}
	res := newTestPipeline(nil).Run(context.Background(), articles)
	for _, topic := range res.Buckets.Topics() {
		if n := len(res.Buckets.Articles(topic)); n > DefaultMaxPerTopic {
			t.Fatalf("%s has %d articles, cap is %d", topic, n, DefaultMaxPerTopic)
		}
	}
	if res.Stats.Output != DefaultMaxPerTopic {
		t.Fatalf("expected %d output articles, got %d", DefaultMaxPerTopic, res.Stats.Output)
	}
}

func TestPipelineWithScoring(t *testing.T) {
	t.Parallel()

	completer := completerFunc(func(_ context.Context, prompt string) (string, error) {
		if strings.Contains(prompt, "summit") {
			return "2", nil
		}
		return "8", nil
	})
	articles := []domain.Article{
		article("1", "Nuclear arms summit ends without deal"),
		article("2", "Solar farm approved near Atlanta"),
		article("3", "Nvidia data center signs nuclear power deal"),
	}
	res := newTestPipeline(completer).Run(context.Background(), articles)

	if len(res.Buckets.Articles("Georgia & Southeast US")) != 1 {
		t.Fatalf("expected atlanta solar farm in georgia, got %v", res.Buckets.Topics())
	}
	if len(res.Buckets.Articles("Renewables")) != 0 {
		t.Fatal("solar farm should be superseded by the georgia topic")
	}
	nuclear := res.Buckets.Articles("Nuclear")
	if len(nuclear) != 1 || nuclear[0].ID != "3" {
		t.Fatalf("unexpected nuclear bucket: %v", titles(nuclear))
	}
	if res.Stats.Scoring.Dropped != 1 {
		t.Fatalf("expected summit headline dropped, got %+v", res.Stats.Scoring)
	}
}

func TestPipelineEmptyInput(t *testing.T) {
	t.Parallel()

	res := newTestPipeline(nil).Run(context.Background(), nil)
	if res.Buckets.Len() != 0 || res.Stats.Output != 0 {
		t.Fatalf("expected empty result, got %+v", res.Stats)
	}
}
