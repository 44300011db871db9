package openai

import (
	"context"
	"log/slog"
	"strings"

	"github.com/poiesic/jobtrail/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Generator implements ai.Generator using an OpenAI-compatible chat model.
type Generator struct {
	client      llms.Model
	temperature float64
	logger      *slog.Logger
}

func newChatClient(config *ai.Config) (*openai.LLM, error) {
	return openai.New(
		openai.WithBaseURL(config.GenerationHost),
		openai.WithToken(config.APIKey),
		openai.WithModel(config.GenerationModel),
	)
}

func newGenerator(client llms.Model, config *ai.Config, logger *slog.Logger) *Generator {
	return &Generator{
		client:      client,
		temperature: config.Temperature,
		logger:      logger.With("component", "openai-generator"),
	}
}

// NewGenerator creates a generator using the provided configuration.
func NewGenerator(config *ai.Config) (ai.Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	client, err := newChatClient(config)
	if err != nil {
		return nil, err
	}
	return newGenerator(client, config, slog.Default()), nil
}

// Generate sends prompt as a single user message and returns the reply.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	g.logger.Debug("generating answer", "prompt_length", len(prompt))

	answer, err := llms.GenerateFromSinglePrompt(ctx, g.client, prompt, llms.WithTemperature(g.temperature))
	if err != nil {
		g.logger.Error("generation failed", "err", err)
		return "", err
	}
	return strings.TrimSpace(answer), nil
}
