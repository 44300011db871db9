package openai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/jobtrail/ai"
	"github.com/tmc/langchaingo/llms"
	"golang.org/x/sync/errgroup"
)

// DefaultZeroShotConcurrency bounds the number of in-flight model requests
// per Predict call.
const DefaultZeroShotConcurrency = 4

// ZeroShotClassifier implements ai.Classifier by asking a chat model to
// sort each text into job related or not.
type ZeroShotClassifier struct {
	caller      *jsonCaller
	concurrency int
	logger      *slog.Logger
}

// zeroShotResponse mirrors zeroShotSchema.
type zeroShotResponse struct {
	Job         bool    `json:"job"`
	Probability float64 `json:"probability"`
}

func newZeroShotClassifier(client llms.Model, concurrency int, logger *slog.Logger) (*ZeroShotClassifier, error) {
	logger = logger.With("component", "zero-shot-classifier")
	caller, err := newJSONCaller(client, zeroShotSchema, 0.0, logger)
	if err != nil {
		return nil, err
	}
	if concurrency < 1 {
		concurrency = DefaultZeroShotConcurrency
	}
	return &ZeroShotClassifier{caller: caller, concurrency: concurrency, logger: logger}, nil
}

// NewZeroShotClassifier creates a zero-shot classifier using the generation
// model of the provided configuration.
func NewZeroShotClassifier(config *ai.Config, concurrency int) (ai.Classifier, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	client, err := newChatClient(config)
	if err != nil {
		return nil, err
	}
	return newZeroShotClassifier(client, concurrency, slog.Default())
}

// Predict classifies every text. Requests run concurrently; results are
// written by position so the output stays aligned with texts. The first
// failure cancels the remaining requests and fails the batch.
func (c *ZeroShotClassifier) Predict(ctx context.Context, texts []string) ([]ai.Prediction, error) {
	c.logger.Debug("classifying batch", "count", len(texts), "concurrency", c.concurrency)

	predictions := make([]ai.Prediction, len(texts))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, text := range texts {
		g.Go(func() error {
			var resp zeroShotResponse
			if err := c.caller.call(gCtx, zeroShotSystemPrompt(), prepareText(text), &resp); err != nil {
				return fmt.Errorf("classifying text %d: %w", i, err)
			}
			predictions[i] = toPrediction(resp)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return predictions, nil
}

func toPrediction(resp zeroShotResponse) ai.Prediction {
	label := 0
	if resp.Job {
		label = 1
	}
	return ai.NewPrediction(label, clampProbability(resp.Probability))
}
