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


package reembed

import (
	"context"
	"slices"

	"github.com/poiesic/jobtrail/core"
	"github.com/poiesic/jobtrail/storage"
)

const (
	// DefaultBatchSize is the default number of entries embedded per call
	DefaultBatchSize = 100
)

// EntryIterator iterates over all index entries in batches.
type EntryIterator struct {
	index     storage.IndexRepository
	batchSize int
}

// NewEntryIterator creates a new entry iterator.
// batchSize: number of entries in each batch; values <= 0 use DefaultBatchSize
func NewEntryIterator(index storage.IndexRepository, batchSize int) *EntryIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &EntryIterator{
		index:     index,
		batchSize: batchSize,
	}
}

// ForEach calls fn for each batch of entries in doc id order.
// Entries are read before the first call so fn may write to the index.
// Iteration stops on the first error from fn; context cancellation is
// checked between batches.
func (it *EntryIterator) ForEach(ctx context.Context, fn func([]*core.IndexEntry) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var entries []*core.IndexEntry
	err := it.index.ForEach(ctx, func(entry *core.IndexEntry) error {
		entries = append(entries, entry)
		return nil
	})
	if err != nil {
		return err
	}

	for batch := range slices.Chunk(entries, it.batchSize) {
		if err := fn(batch); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}
