package ingestion

import "errors"

var (
	// ErrSourceRequired is returned when a message source is not provided.
	ErrSourceRequired = errors.New("message source required")

	// ErrRawStoreRequired is returned when a raw store is not provided.
	ErrRawStoreRequired = errors.New("raw store required")

	// ErrClassifiedStoreRequired is returned when a classified store is not provided.
	ErrClassifiedStoreRequired = errors.New("classified store required")

	// ErrIndexRepositoryRequired is returned when an index repository is not provided.
	ErrIndexRepositoryRequired = errors.New("index repository required")

	// ErrCheckpointRepositoryRequired is returned when a checkpoint repository is not provided.
	ErrCheckpointRepositoryRequired = errors.New("checkpoint repository required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrListingFailed is returned when the source cannot list messages.
	// Nothing is persisted for the run.
	ErrListingFailed = errors.New("listing messages failed")

	// ErrRawStoreMissing is returned when classification runs before any fetch.
	ErrRawStoreMissing = errors.New("raw store missing")

	// ErrClassifiedStoreMissing is returned when indexing runs before any classification.
	ErrClassifiedStoreMissing = errors.New("classified store missing")

	// ErrClassificationFailed is returned when the classifier rejects a batch.
	ErrClassificationFailed = errors.New("classification failed")

	// ErrEmbeddingFailed is returned when the embedder rejects a batch.
	ErrEmbeddingFailed = errors.New("embedding failed")
)
