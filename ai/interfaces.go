package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Classifier scores texts as job related or not.
// Implementations must be thread-safe for concurrent use.
type Classifier interface {
	// Predict returns one prediction per input text, positionally aligned.
	// Implementations return an error rather than a short result.
	Predict(ctx context.Context, texts []string) ([]Prediction, error)
}

// ReadinessChecker is implemented by classifiers backed by an external model
// artifact. Ready returns an error when the artifact cannot be used.
type ReadinessChecker interface {
	Ready(ctx context.Context) error
}

// Generator produces free text from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// AttributeExtractor pulls structured fields out of a job-related message.
type AttributeExtractor interface {
	// ExtractAttributes returns the attributes found in text. Fields that
	// cannot be determined are left empty.
	ExtractAttributes(ctx context.Context, text string) (*Attributes, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
type AIProvider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// Classifier returns the job mail classifier.
	Classifier() Classifier

	// Generator returns the answer generation service.
	Generator() Generator

	// AttributeExtractor returns the attribute extraction service.
	AttributeExtractor() AttributeExtractor

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
