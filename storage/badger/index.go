package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/jobtrail/core"
	"github.com/poiesic/jobtrail/storage"
)

// insertBatchSize bounds the number of entries written per transaction.
const insertBatchSize = 256

// IndexRepository implements storage.IndexRepository for BadgerDB.
type IndexRepository struct {
	backend *Backend
	logger  *slog.Logger
}

var _ storage.IndexRepository = (*IndexRepository)(nil)

// NewIndexRepository creates a new IndexRepository.
func NewIndexRepository(backend *Backend) *IndexRepository {
	return &IndexRepository{
		backend: backend,
		logger:  backend.logger.With("repository", "index"),
	}
}

// InsertEntries stores entries whose doc id is not present yet.
func (r *IndexRepository) InsertEntries(ctx context.Context, entries ...*core.IndexEntry) (int, error) {
	for _, entry := range entries {
		if err := core.ValidateIndexEntry(entry); err != nil {
			return 0, err
		}
	}

	inserted := 0
	for batch := range slices.Chunk(entries, insertBatchSize) {
		if err := ctx.Err(); err != nil {
			return inserted, err
		}
		n, err := r.insertBatch(batch)
		if err != nil {
			return inserted, err
		}
		inserted += n
	}
	return inserted, nil
}

func (r *IndexRepository) insertBatch(entries []*core.IndexEntry) (int, error) {
	inserted := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		now := time.Now().UTC()
		seen := make(map[string]bool, len(entries))
		for _, entry := range entries {
			key := makeIndexEntryKey(entry.DocId)
			exists, err := keyExists(tx, key)
			if err != nil {
				return err
			}
			if exists || seen[entry.DocId] {
				r.logger.Debug("skipping existing entry", "doc_id", entry.DocId, "err", storage.ErrDuplicateKey)
				continue
			}
			seen[entry.DocId] = true

			if entry.InsertedAt.IsZero() {
				entry.InsertedAt = now
			}
			if entry.ContentHash == "" {
				entry.ContentHash = core.ContentHash(entry.Text)
			}
			if err := tx.Set(key, storage.MarshalIndexEntry(entry)); err != nil {
				return err
			}
			inserted++
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// ExistingDocIDs returns every stored doc id in key order.
func (r *IndexRepository) ExistingDocIDs(ctx context.Context) ([]string, error) {
	ids := []string{}
	err := r.backend.scanPrefix([]byte(indexEntryPrefix), true, func(item *badger.Item) error {
		ids = append(ids, docIDFromKey(item.Key()))
		return nil
	})
	return ids, err
}

// GetEntry retrieves a single entry by doc id.
func (r *IndexRepository) GetEntry(ctx context.Context, docID string) (*core.IndexEntry, error) {
	var entry *core.IndexEntry
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		entry, err = readIndexEntry(tx, makeIndexEntryKey(docID))
		if err != nil {
			return err
		}
		if entry == nil {
			return fmt.Errorf("%w: %s", storage.ErrNotFound, docID)
		}
		return nil
	}, false)
	return entry, err
}

// FindSimilar scores every entry by dot product with vector and returns the
// limit best. Vectors are stored unit length, so the score is the cosine
// similarity.
func (r *IndexRepository) FindSimilar(ctx context.Context, vector []float32, limit int) ([]*core.SearchResult, error) {
	if limit <= 0 {
		return []*core.SearchResult{}, nil
	}

	var results []*core.SearchResult
	err := r.ForEach(ctx, func(entry *core.IndexEntry) error {
		if len(entry.Vector) == 0 {
			return nil
		}
		results = append(results, &core.SearchResult{
			Entry: entry,
			Score: core.DotProduct(vector, entry.Vector),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Sort by similarity descending, doc id breaks ties
	slices.SortStableFunc(results, func(a, b *core.SearchResult) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})

	if len(results) > limit {
		results = results[:limit]
	}
	if results == nil {
		results = []*core.SearchResult{}
	}
	return results, nil
}

// ForEach visits every entry in doc id order.
func (r *IndexRepository) ForEach(ctx context.Context, fn func(*core.IndexEntry) error) error {
	return r.backend.scanPrefix([]byte(indexEntryPrefix), false, func(item *badger.Item) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		var entry *core.IndexEntry
		err := item.Value(func(val []byte) error {
			var err error
			entry, err = storage.UnmarshalIndexEntry(val)
			return err
		})
		if err != nil {
			return err
		}
		return fn(entry)
	})
}

// ReplaceVectors overwrites the vectors of existing entries.
func (r *IndexRepository) ReplaceVectors(ctx context.Context, entries ...*core.IndexEntry) error {
	for batch := range slices.Chunk(entries, insertBatchSize) {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := r.backend.WithTx(func(tx *badger.Txn) error {
			for _, entry := range batch {
				if len(entry.Vector) == 0 {
					return fmt.Errorf("%w: %s", core.ErrEmptyVector, entry.DocId)
				}
				key := makeIndexEntryKey(entry.DocId)
				stored, err := readIndexEntry(tx, key)
				if err != nil {
					return err
				}
				if stored == nil {
					return fmt.Errorf("%w: %s", storage.ErrNotFound, entry.DocId)
				}
				stored.Vector = entry.Vector
				if err := tx.Set(key, storage.MarshalIndexEntry(stored)); err != nil {
					return err
				}
			}
			return tx.Commit()
		}, true)
		if err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of stored entries.
func (r *IndexRepository) Count(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.scanPrefix([]byte(indexEntryPrefix), true, func(item *badger.Item) error {
		count++
		return nil
	})
	return count, err
}

func keyExists(tx *badger.Txn, key []byte) (bool, error) {
	_, err := tx.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// readIndexEntry returns nil, nil when the key does not exist.
func readIndexEntry(tx *badger.Txn, key []byte) (*core.IndexEntry, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var entry *core.IndexEntry
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		entry, unmarshalErr = storage.UnmarshalIndexEntry(val)
		return unmarshalErr
	})
	return entry, err
}
