// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Embedder, ai.Classifier,
// ai.Generator, ai.AttributeExtractor and ai.AIProvider for use in unit tests.
// The mocks run without external model services and behave deterministically.
//
// # Usage in Tests
//
//	provider := mock.NewMockProvider().(*mock.MockProvider)
//	classifier := provider.GetMockClassifier()
//	classifier.PredictFunc = func(ctx context.Context, texts []string) ([]ai.Prediction, error) {
//	    return nil, ai.ErrModelUnavailable
//	}
//
//	// Check call counts
//	count := classifier.CallCount()
//
// # Default Behavior
//
//   - MockEmbedder: unit vectors derived from a hash of the text
//   - MockClassifier: label 1 for texts mentioning an application or interview
//   - MockGenerator: a fixed response
//   - MockAttributeExtractor: empty attributes
package mock
