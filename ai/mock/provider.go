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


package mock

import "github.com/poiesic/jobtrail/ai"

// MockProvider is a test double for ai.AIProvider.
// It aggregates one mock instance of each service.
type MockProvider struct {
	embedder   *MockEmbedder
	classifier *MockClassifier
	generator  *MockGenerator
	extractor  *MockAttributeExtractor
	closed     bool
}

// NewMockProvider creates a new mock provider with default mock services.
//
// Returns ai.AIProvider interface for consistency with production constructors.
// Use the GetMock accessors to reach concrete types for test assertions.
func NewMockProvider() ai.AIProvider {
	return NewMockProviderWithServices(nil, nil, nil, nil)
}

// NewMockProviderWithServices creates a mock provider with custom mock services.
// Nil arguments are replaced with default mocks.
func NewMockProviderWithServices(embedder *MockEmbedder, classifier *MockClassifier, generator *MockGenerator, extractor *MockAttributeExtractor) ai.AIProvider {
	if embedder == nil {
		embedder = NewMockEmbedder()
	}
	if classifier == nil {
		classifier = NewMockClassifier()
	}
	if generator == nil {
		generator = NewMockGenerator()
	}
	if extractor == nil {
		extractor = NewMockAttributeExtractor()
	}
	return &MockProvider{
		embedder:   embedder,
		classifier: classifier,
		generator:  generator,
		extractor:  extractor,
	}
}

func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

func (p *MockProvider) Classifier() ai.Classifier {
	return p.classifier
}

func (p *MockProvider) Generator() ai.Generator {
	return p.generator
}

func (p *MockProvider) AttributeExtractor() ai.AttributeExtractor {
	return p.extractor
}

// Close marks the provider closed.
func (p *MockProvider) Close() error {
	p.closed = true
	return nil
}

// Closed reports whether Close was called.
func (p *MockProvider) Closed() bool {
	return p.closed
}

// GetMockEmbedder returns the underlying mock embedder for test assertions.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}

// GetMockClassifier returns the underlying mock classifier for test assertions.
func (p *MockProvider) GetMockClassifier() *MockClassifier {
	return p.classifier
}

// GetMockGenerator returns the underlying mock generator for test assertions.
func (p *MockProvider) GetMockGenerator() *MockGenerator {
	return p.generator
}

// GetMockExtractor returns the underlying mock extractor for test assertions.
func (p *MockProvider) GetMockExtractor() *MockAttributeExtractor {
	return p.extractor
}

var (
	_ ai.AIProvider         = (*MockProvider)(nil)
	_ ai.Classifier         = (*MockClassifier)(nil)
	_ ai.ReadinessChecker   = (*MockClassifier)(nil)
	_ ai.AttributeExtractor = (*MockAttributeExtractor)(nil)
	_ ai.Generator          = (*MockGenerator)(nil)
	_ ai.Embedder           = (*MockEmbedder)(nil)
)
