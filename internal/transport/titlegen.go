package transport

import (
	"context"
	"log/slog"
	"strings"

	"github.com/maruel/genai"
	"github.com/maruel/genai/providers"
)

// TitleGenerator produces short, human-readable summaries (used to seed
// the commit message prompt and the integration approval prompt) using a
// cheap ancillary model call, distinct from the bespoke Transport wire
// protocol the main and subcontexts speak. If unconfigured, every
// operation is a no-op.
type TitleGenerator struct {
	provider genai.Provider
}

// NewTitleGenerator builds a TitleGenerator from a genai provider name
// (e.g. "openai", "anthropic"). An empty name, an unknown provider, or a
// failed factory call all degrade to a no-op generator rather than a
// startup error — title generation is a convenience, not load-bearing.
func NewTitleGenerator(ctx context.Context, providerName string) *TitleGenerator {
	if providerName == "" {
		return &TitleGenerator{}
	}
	cfg, ok := providers.All[providerName]
	if !ok || cfg.Factory == nil {
		slog.Warn("unknown LLM provider for title generation", "provider", providerName)
		return &TitleGenerator{}
	}
	p, err := cfg.Factory(ctx, genai.ModelCheap)
	if err != nil {
		slog.Warn("failed to create LLM provider for title generation", "provider", providerName, "err", err)
		return &TitleGenerator{}
	}
	return &TitleGenerator{provider: p}
}

const summarySystemPrompt = "Summarize this coding change in 3-8 words as a short commit subject line. Reply with ONLY the summary, no quotes, no trailing period."

// Summarize asks the cheap model for a short description of diffText,
// falling back to "" on any failure or when unconfigured.
func (tg *TitleGenerator) Summarize(ctx context.Context, diffText string) string {
	if tg.provider == nil {
		return ""
	}
	input := diffText
	if len(input) > 4000 {
		input = input[:4000]
	}
	res, err := tg.provider.GenSync(ctx,
		genai.Messages{genai.NewTextMessage(input)},
		&genai.GenOptionText{
			SystemPrompt: summarySystemPrompt,
			MaxTokens:    32,
			Temperature:  0.3,
		},
	)
	if err != nil {
		slog.Warn("title generation call failed", "err", err)
		return ""
	}
	return strings.Trim(strings.TrimSpace(res.String()), "\"'`")
}
