package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"golang.org/x/time/rate"

	"EnergyDigest/internal/config"
	"EnergyDigest/internal/ports"
)

// LangchainCompleter implements ports.Completer through langchaingo's OpenAI
// model, for deployments that prefer the SDK client.
type LangchainCompleter struct {
	model   llms.Model
	limiter *rate.Limiter
}

var _ ports.Completer = (*LangchainCompleter)(nil)

// NewLangchainCompleter builds an OpenAI-backed langchaingo model.
func NewLangchainCompleter(cfg config.ScoringConfig) (*LangchainCompleter, error) {
	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.Model),
	}
	if base := endpointBase(cfg.Endpoint); base != "" {
		opts = append(opts, openai.WithBaseURL(base))
	}
	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("langchain openai client: %w", err)
	}
	return NewLangchainCompleterFromModel(model, cfg.RatePerSecond), nil
}

// NewLangchainCompleterFromModel wraps any langchaingo model.
func NewLangchainCompleterFromModel(model llms.Model, ratePerSecond float64) *LangchainCompleter {
	return &LangchainCompleter{model: model, limiter: newLimiter(ratePerSecond)}
}

// Complete generates a short deterministic reply for prompt.
func (l *LangchainCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	if l == nil || l.model == nil {
		return "", errors.New("langchain completer is not configured")
	}
	if l.limiter != nil {
		if err := l.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limit wait: %w", err)
		}
	}
	reply, err := llms.GenerateFromSinglePrompt(ctx, l.model, prompt,
		llms.WithTemperature(0),
		llms.WithMaxTokens(maxReplyTokens),
	)
	if err != nil {
		return "", fmt.Errorf("langchain generate: %w", err)
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return "", errEmptyReply
	}
	return reply, nil
}
