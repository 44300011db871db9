// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package openai

import (
	"context"
	"log/slog"
	"strings"

	"github.com/poiesic/jobtrail/ai"
	"github.com/tmc/langchaingo/llms"
)

// AttributeExtractor implements ai.AttributeExtractor using an
// OpenAI-compatible chat model in JSON mode.
type AttributeExtractor struct {
	caller *jsonCaller
	logger *slog.Logger
}

// attributeResponse mirrors attributeSchema. Null fields decode as empty.
type attributeResponse struct {
	CompanyName     *string `json:"company_name"`
	PositionApplied *string `json:"position_applied"`
	ApplicationDate *string `json:"application_date"`
}

func newAttributeExtractor(client llms.Model, logger *slog.Logger) (*AttributeExtractor, error) {
	logger = logger.With("component", "openai-extractor")
	// Extraction is deterministic regardless of the configured temperature.
	caller, err := newJSONCaller(client, attributeSchema, 0.0, logger)
	if err != nil {
		return nil, err
	}
	return &AttributeExtractor{caller: caller, logger: logger}, nil
}

// NewAttributeExtractor creates an attribute extractor using the provided configuration.
//
// Returns ai.AttributeExtractor interface to enforce abstraction.
func NewAttributeExtractor(config *ai.Config) (ai.AttributeExtractor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	client, err := newChatClient(config)
	if err != nil {
		return nil, err
	}
	return newAttributeExtractor(client, slog.Default())
}

// ExtractAttributes asks the model for company, position and application
// date. Malformed responses are repaired and retried before giving up.
func (e *AttributeExtractor) ExtractAttributes(ctx context.Context, text string) (*ai.Attributes, error) {
	var resp attributeResponse
	if err := e.caller.call(ctx, attributeSystemPrompt(), prepareText(text), &resp); err != nil {
		e.logger.Error("attribute extraction failed", "err", err)
		return nil, err
	}

	attrs := &ai.Attributes{
		CompanyName:     deref(resp.CompanyName),
		PositionApplied: deref(resp.PositionApplied),
		ApplicationDate: deref(resp.ApplicationDate),
	}
	e.logger.Debug("extracted attributes", "company", attrs.CompanyName, "position", attrs.PositionApplied)
	return attrs, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
