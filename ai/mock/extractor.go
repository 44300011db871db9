package mock

import (
	"context"
	"sync"

	"github.com/poiesic/jobtrail/ai"
)

// MockAttributeExtractor is a test double for ai.AttributeExtractor.
type MockAttributeExtractor struct {
	// ExtractAttributesFunc is called by ExtractAttributes if set.
	// If nil, an empty Attributes value is returned.
	ExtractAttributesFunc func(ctx context.Context, text string) (*ai.Attributes, error)

	mu        sync.Mutex
	callCount int
}

// NewMockAttributeExtractor creates a mock extractor that finds nothing.
func NewMockAttributeExtractor() *MockAttributeExtractor {
	return &MockAttributeExtractor{}
}

// ExtractAttributes returns the configured attributes.
func (m *MockAttributeExtractor) ExtractAttributes(ctx context.Context, text string) (*ai.Attributes, error) {
	m.mu.Lock()
	m.callCount++
	m.mu.Unlock()

	if m.ExtractAttributesFunc != nil {
		return m.ExtractAttributesFunc(ctx, text)
	}
	return &ai.Attributes{}, nil
}

// CallCount returns the number of ExtractAttributes calls.
func (m *MockAttributeExtractor) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Reset clears the call count and custom behavior.
func (m *MockAttributeExtractor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.ExtractAttributesFunc = nil
}
