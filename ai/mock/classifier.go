package mock

import (
	"context"
	"strings"
	"sync"

	"github.com/poiesic/jobtrail/ai"
)

// MockClassifier is a test double for ai.Classifier and ai.ReadinessChecker.
type MockClassifier struct {
	// PredictFunc is called by Predict if set.
	// If nil, texts mentioning "application" or "interview" get label 1
	// with probability 0.9, everything else label 0 with probability 0.1.
	PredictFunc func(ctx context.Context, texts []string) ([]ai.Prediction, error)

	// ReadyFunc is called by Ready if set. If nil the classifier is ready.
	ReadyFunc func(ctx context.Context) error

	mu        sync.Mutex
	callCount int
	seen      [][]string
}

// NewMockClassifier creates a mock classifier with keyword based defaults.
func NewMockClassifier() *MockClassifier {
	return &MockClassifier{}
}

// Predict scores a batch of texts.
func (m *MockClassifier) Predict(ctx context.Context, texts []string) ([]ai.Prediction, error) {
	m.mu.Lock()
	m.callCount++
	m.seen = append(m.seen, append([]string(nil), texts...))
	m.mu.Unlock()

	if m.PredictFunc != nil {
		return m.PredictFunc(ctx, texts)
	}

	predictions := make([]ai.Prediction, len(texts))
	for i, text := range texts {
		lower := strings.ToLower(text)
		if strings.Contains(lower, "application") || strings.Contains(lower, "interview") {
			predictions[i] = ai.NewPrediction(1, 0.9)
		} else {
			predictions[i] = ai.NewPrediction(0, 0.1)
		}
	}
	return predictions, nil
}

// Ready reports whether the classifier can serve predictions.
func (m *MockClassifier) Ready(ctx context.Context) error {
	if m.ReadyFunc != nil {
		return m.ReadyFunc(ctx)
	}
	return nil
}

// CallCount returns the number of Predict calls.
func (m *MockClassifier) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Inputs returns the texts passed to each Predict call.
func (m *MockClassifier) Inputs() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]string(nil), m.seen...)
}

// Reset clears recorded calls and custom behavior.
func (m *MockClassifier) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.seen = nil
	m.PredictFunc = nil
	m.ReadyFunc = nil
}
