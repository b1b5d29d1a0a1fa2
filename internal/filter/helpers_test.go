package filter

import (
	"context"
	"fmt"
	"time"

	"EnergyDigest/internal/domain"
)

type completerFunc func(ctx context.Context, prompt string) (string, error)

func (f completerFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

func noSleep(time.Duration) {}

func testTopics() []domain.Topic {
	return []domain.Topic{
		{
			Name:        "AI & Data Centers",
			Keywords:    []string{"data center", " ai ", "nvidia"},
			Description: "AI compute and data center power demand",
			Rank:        4,
		},
		{
			Name:        "Renewables",
			Keywords:    []string{"solar", "wind farm", "pv "},
			Description: "Renewable generation and storage",
			Rank:        3,
		},
		{
			Name:        "Nuclear",
			Keywords:    []string{"nuclear", "reactor", "vogtle"},
			Description: "Nuclear power and fuel cycle",
			Rank:        1,
		},
		{
			Name:        "Georgia & Southeast US",
			Keywords:    []string{"georgia", "atlanta", "vogtle"},
			Description: "Energy news from Georgia and the Southeast",
			Rank:        0,
		},
	}
}

func article(id, title string) domain.Article {
	return domain.Article{
		ID:     id,
		Title:  title,
		URL:    fmt.Sprintf("https://news.example.com/%s", id),
		Source: "Example Wire",
	}
}
