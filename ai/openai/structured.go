package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/xeipuuv/gojsonschema"
)

// maxJSONAttempts is how many times a malformed model response is retried.
const maxJSONAttempts = 3

// errInvalidResponse is returned when the model keeps producing JSON that
// does not match the expected schema.
var errInvalidResponse = errors.New("model response does not match schema")

// jsonCaller sends a system and user prompt in JSON mode and decodes the
// schema-checked answer.
type jsonCaller struct {
	client      llms.Model
	schema      *gojsonschema.Schema
	temperature float64
	logger      *slog.Logger
}

func newJSONCaller(client llms.Model, schema string, temperature float64, logger *slog.Logger) (*jsonCaller, error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schema))
	if err != nil {
		return nil, fmt.Errorf("compiling response schema: %w", err)
	}
	return &jsonCaller{
		client:      client,
		schema:      compiled,
		temperature: temperature,
		logger:      logger,
	}, nil
}

func (c *jsonCaller) call(ctx context.Context, system, user string, out any) error {
	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, system),
		llms.TextParts(llms.ChatMessageTypeHuman, user),
	}

	var lastErr error
	for attempt := 1; attempt <= maxJSONAttempts; attempt++ {
		response, err := c.client.GenerateContent(ctx, content,
			llms.WithTemperature(c.temperature),
			llms.WithJSONMode())
		if err != nil {
			return err
		}
		if len(response.Choices) < 1 {
			lastErr = errors.New("no choices returned from model")
			continue
		}

		text := repairJSON(response.Choices[0].Content)
		if err := c.validate(text); err != nil {
			lastErr = err
			c.logger.Warn("invalid model response", "attempt", attempt, "response", text, "err", err)
			continue
		}
		if err := json.Unmarshal([]byte(text), out); err != nil {
			lastErr = err
			c.logger.Warn("error parsing model response", "attempt", attempt, "response", text, "err", err)
			continue
		}
		return nil
	}
	return fmt.Errorf("after %d attempts: %w", maxJSONAttempts, lastErr)
}

func (c *jsonCaller) validate(text string) error {
	result, err := c.schema.Validate(gojsonschema.NewStringLoader(text))
	if err != nil {
		return err
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.String())
	}
	return fmt.Errorf("%w: %s", errInvalidResponse, strings.Join(msgs, "; "))
}
