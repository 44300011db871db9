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
	"log/slog"

	"github.com/poiesic/jobtrail/ai"
	"github.com/poiesic/jobtrail/ai/scorer"
)

// Provider implements ai.AIProvider using OpenAI-compatible services.
// The classifier is either the HTTP scorer or a zero-shot prompt against
// the generation model, chosen by Config.ClassifierBackend.
type Provider struct {
	config     *ai.Config
	embedder   *Embedder
	generator  *Generator
	extractor  *AttributeExtractor
	classifier ai.Classifier
	logger     *slog.Logger
}

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithClassifier overrides the classifier selected by the configuration.
func WithClassifier(classifier ai.Classifier) ProviderOption {
	return func(p *Provider) {
		p.classifier = classifier
	}
}

// WithLogger sets the logger shared by all services.
func WithLogger(logger *slog.Logger) ProviderOption {
	return func(p *Provider) {
		p.logger = logger
	}
}

// NewProvider creates a new AI provider with OpenAI-compatible services.
// The config is validated and normalized before use.
//
// Returns ai.AIProvider interface (not *Provider) to enforce abstraction
// and prevent coupling to OpenAI-specific implementation details.
func NewProvider(config *ai.Config, opts ...ProviderOption) (ai.AIProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	p := &Provider{config: config, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}

	embedder, err := newEmbedder(config, p.logger)
	if err != nil {
		return nil, err
	}
	p.embedder = embedder

	chat, err := newChatClient(config)
	if err != nil {
		return nil, err
	}
	p.generator = newGenerator(chat, config, p.logger)

	if p.extractor, err = newAttributeExtractor(chat, p.logger); err != nil {
		return nil, err
	}

	if p.classifier == nil {
		switch config.ClassifierBackend {
		case ai.ClassifierBackendLLM:
			if p.classifier, err = newZeroShotClassifier(chat, DefaultZeroShotConcurrency, p.logger); err != nil {
				return nil, err
			}
		default:
			p.classifier = scorer.NewClient(config.ScorerURL,
				scorer.WithToken(config.ScorerToken),
				scorer.WithLogger(p.logger))
		}
	}

	p.logger = p.logger.With("component", "openai-provider")
	p.logger.Debug("provider ready",
		"embedding_model", config.EmbeddingModel,
		"generation_model", config.GenerationModel,
		"classifier", config.ClassifierBackend)
	return p, nil
}

// Embedder returns the text embedding service.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// Classifier returns the job mail classifier.
func (p *Provider) Classifier() ai.Classifier {
	return p.classifier
}

// Generator returns the answer generation service.
func (p *Provider) Generator() ai.Generator {
	return p.generator
}

// AttributeExtractor returns the attribute extraction service.
func (p *Provider) AttributeExtractor() ai.AttributeExtractor {
	return p.extractor
}

// Close releases resources held by the provider.
// Currently a no-op as the underlying clients don't require explicit cleanup.
func (p *Provider) Close() error {
	p.logger.Debug("closing OpenAI provider")
	return nil
}

var _ ai.AIProvider = (*Provider)(nil)
