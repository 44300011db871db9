package storage

import (
	"context"

	"github.com/poiesic/jobtrail/core"
)

// RawStore persists the fetched messages as a flat table keyed by id.
type RawStore interface {
	// LoadRaw returns every stored item in file order.
	// Returns ErrStoreNotFound if the store does not exist, ErrEmptyStore
	// if it has zero length and ErrMissingColumns if the id, subject or
	// body column is absent.
	LoadRaw(ctx context.Context) ([]core.SourceItem, error)

	// SaveRaw replaces the store contents atomically.
	SaveRaw(ctx context.Context, items []core.SourceItem) error
}

// ClassifiedStore persists classified messages as a flat table keyed by id.
type ClassifiedStore interface {
	// LoadClassified returns every stored row in file order.
	// Returns ErrStoreNotFound if the store does not exist and
	// ErrCorruptStore if it is empty or cannot be parsed.
	// Columns absent from the file load as nil or zero values.
	LoadClassified(ctx context.Context) ([]core.ClassificationRecord, error)

	// SaveClassified replaces the store contents atomically.
	SaveClassified(ctx context.Context, rows []core.ClassificationRecord) error
}

// IndexRepository is the vector store of embedded documents keyed by doc id.
// Implementations must be thread-safe and support concurrent access.
type IndexRepository interface {
	// InsertEntries stores new entries. Entries whose doc id already exists
	// are skipped and never overwritten. Sets InsertedAt and ContentHash when
	// empty. Returns the number of entries actually written.
	InsertEntries(ctx context.Context, entries ...*core.IndexEntry) (int, error)

	// ExistingDocIDs returns the doc id of every stored entry.
	ExistingDocIDs(ctx context.Context) ([]string, error)

	// GetEntry retrieves a single entry.
	// Returns ErrNotFound if the entry doesn't exist.
	GetEntry(ctx context.Context, docID string) (*core.IndexEntry, error)

	// FindSimilar returns up to limit entries ordered by similarity to
	// vector, highest first. vector must be unit length.
	FindSimilar(ctx context.Context, vector []float32, limit int) ([]*core.SearchResult, error)

	// ForEach calls fn for every entry in doc id order. Iteration stops at
	// the first error, which is returned.
	ForEach(ctx context.Context, fn func(*core.IndexEntry) error) error

	// ReplaceVectors overwrites the vectors of existing entries, keeping
	// every other field. Returns ErrNotFound if any entry doesn't exist.
	ReplaceVectors(ctx context.Context, entries ...*core.IndexEntry) error

	// Count returns the number of stored entries.
	Count(ctx context.Context) (int, error)
}

// CheckpointRepository manages the last completed run of each stage.
type CheckpointRepository interface {
	// SaveCheckpoint persists a checkpoint, replacing the previous one for
	// the same stage.
	SaveCheckpoint(ctx context.Context, checkpoint *core.Checkpoint) error

	// LoadCheckpoint retrieves the checkpoint for a stage.
	// Returns nil, nil if no checkpoint exists.
	LoadCheckpoint(ctx context.Context, stage string) (*core.Checkpoint, error)

	// ListCheckpoints returns all checkpoints ordered by stage name.
	ListCheckpoints(ctx context.Context) ([]*core.Checkpoint, error)
}
