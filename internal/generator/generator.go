// Package generator turns retrieved context and a question into an answer.
//
// Generation is a recovery boundary: the query pipeline assumes answers are
// always produced, so any failure of the underlying model call is absorbed
// here and replaced with a fixed fallback string. Callers never see an error.
package generator

import (
	"context"
	"log/slog"
	"strings"

	"github.com/finrag/finrag/internal/llm"
)

// FallbackAnswer is returned whenever the underlying model call fails.
const FallbackAnswer = "The answer could not be generated due to a system error. " +
	"Please try again or refine the question."

// systemPrompt keeps answers grounded in the provided context and
// audit-friendly (page citations, no invented numbers).
const systemPrompt = `You are a financial analyst specialized in corporate reporting.

RULES:
1. Use ONLY the provided context.
2. If the exact answer is explicitly stated, give it clearly.
3. If the answer is implicit:
   - Look for equivalent terms (e.g. revenue = net sales).
   - Extract values from tables if clearly identifiable.
4. If the information is missing:
   - Explain what is available.
   - Explain what is not available.
5. NEVER invent numbers.

FORMAT:
- Short answer (1-3 sentences).
- Cite sources like: [Page X].`

// Generator produces an answer from a context block and a question.
// Implementations must not fail; internal errors map to FallbackAnswer.
type Generator interface {
	Generate(ctx context.Context, contextText, question string) string
}

// LLMGenerator implements Generator on top of an llm.LLM client.
type LLMGenerator struct {
	client llm.LLM
	opts   llm.GenerateOptions
	logger *slog.Logger
}

// NewLLMGenerator creates a generator using the given model client.
func NewLLMGenerator(client llm.LLM, model string, temperature float64, maxTokens int, logger *slog.Logger) *LLMGenerator {
	if logger == nil {
		logger = slog.Default()
	}
	return &LLMGenerator{
		client: client,
		opts: llm.GenerateOptions{
			Model:        model,
			SystemPrompt: systemPrompt,
			Temperature:  temperature,
			MaxTokens:    maxTokens,
		},
		logger: logger,
	}
}

// Generate builds the prompt and invokes the model. On any error it logs and
// returns FallbackAnswer.
func (g *LLMGenerator) Generate(ctx context.Context, contextText, question string) string {
	prompt := contextText + "\n\nQuestion: " + question + "\n\nAnswer:"

	answer, err := g.client.Generate(ctx, prompt, g.opts)
	if err != nil {
		g.logger.Error("generation failed", "error", err)
		return FallbackAnswer
	}

	return strings.TrimSpace(answer)
}

// Ensure LLMGenerator implements Generator interface.
var _ Generator = (*LLMGenerator)(nil)
