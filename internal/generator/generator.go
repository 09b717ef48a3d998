// Package generator produces grounded natural-language answers from a
// question and retrieved context. Backends are selected by config, not
// runtime probing; both go through langchaingo.
package generator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"document-qa/internal/config"
	"document-qa/internal/models"
)

// Generator returns natural-language text grounded in the given context.
type Generator interface {
	Generate(ctx context.Context, question, contextText string) (string, error)
}

// LLMGenerator drives a langchaingo model with the grounding prompt.
// Context is capped before prompting and every call carries a bounded
// timeout so a stuck backend cannot hang a request forever.
type LLMGenerator struct {
	llm          llms.Model
	timeout      time.Duration
	maxTokens    int
	contextChars int
}

// NewFromConfig builds a generator for the configured backend.
func NewFromConfig(cfg *config.GeneratorConfig) (*LLMGenerator, error) {
	llm, err := newLLM(&cfg.LLM)
	if err != nil {
		return nil, err
	}
	return &LLMGenerator{
		llm:          llm,
		timeout:      time.Duration(cfg.TimeoutSecs) * time.Second,
		maxTokens:    cfg.MaxTokens,
		contextChars: cfg.ContextChars,
	}, nil
}

func newLLM(cfg *config.LLMConfig) (llms.Model, error) {
	switch cfg.Type {
	case "ollama", "":
		return ollama.New(
			ollama.WithServerURL(cfg.BaseURL),
			ollama.WithModel(cfg.Model),
		)
	case "openai":
		return openai.New(
			openai.WithBaseURL(cfg.BaseURL),
			openai.WithToken(strings.TrimPrefix(cfg.Key, "Bearer ")),
			openai.WithModel(cfg.Model),
		)
	default:
		return nil, fmt.Errorf("unknown generator type: %s", cfg.Type)
	}
}

func (g *LLMGenerator) Generate(ctx context.Context, question, contextText string) (string, error) {
	prompt := g.buildPrompt(question, contextText)

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, "You are a government technology assistant."),
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}
	resp, err := g.llm.GenerateContent(ctx, messages,
		llms.WithTemperature(0.0),
		llms.WithMaxTokens(g.maxTokens),
	)
	if err != nil {
		return "", fmt.Errorf("generation failed: %w", err)
	}
	log.Debug().Dur("elapsed", time.Since(start)).Msg("Generated answer")

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("generation returned no choices")
	}
	answer := strings.TrimSpace(resp.Choices[0].Content)
	if answer == "" {
		return models.FallbackAnswer, nil
	}
	return answer, nil
}

func (g *LLMGenerator) buildPrompt(question, contextText string) string {
	return fmt.Sprintf(models.GroundedPromptTemplate, truncate(contextText, g.contextChars), question)
}

// truncate caps s at limit bytes, cutting back to the previous space
// when one is close enough to avoid ending mid-word.
func truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	cut := s[:limit]
	if idx := strings.LastIndexByte(cut, ' '); idx > limit/2 {
		cut = cut[:idx]
	}
	return cut
}
