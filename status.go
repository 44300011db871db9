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


package jobtrail

import (
	"context"
	"errors"

	"github.com/poiesic/jobtrail/core"
	"github.com/poiesic/jobtrail/ingestion"
	"github.com/poiesic/jobtrail/storage"
)

// DriftReason explains why an index entry no longer matches its row.
type DriftReason string

const (
	// DriftChanged means the row's document text changed after embedding.
	DriftChanged DriftReason = "changed"

	// DriftOrphaned means no accepted row maps to the entry any more.
	DriftOrphaned DriftReason = "orphaned"
)

// Drift is one index entry that is stale against the classified store.
type Drift struct {
	DocID    string
	SourceID core.ID
	Reason   DriftReason
}

// Status summarizes the contents of a workspace.
type Status struct {
	RawItems       int
	ClassifiedRows int
	Labelled       int
	Accepted       int
	ByStatus       map[core.Status]int // accepted rows only
	IndexEntries   int
	Checkpoints    []*core.Checkpoint
	Drift          []Drift
}

// Status reads every store and reports sizes, label counts, checkpoints and
// index drift. Stores that do not exist yet count as empty. Nothing is
// modified.
func (w *Workspace) Status(ctx context.Context) (*Status, error) {
	st := &Status{ByStatus: make(map[core.Status]int)}

	items, err := w.raw.LoadRaw(ctx)
	if err != nil && !errors.Is(err, storage.ErrStoreNotFound) && !errors.Is(err, storage.ErrEmptyStore) {
		return nil, err
	}
	st.RawItems = len(items)

	rows, err := w.classified.LoadClassified(ctx)
	if err != nil && !errors.Is(err, storage.ErrStoreNotFound) {
		return nil, err
	}
	st.ClassifiedRows = len(rows)

	current := make(map[string]string) // doc id -> content hash
	for i := range rows {
		row := &rows[i]
		if row.Label != nil {
			st.Labelled++
		}
		if !row.Accepted {
			continue
		}
		st.Accepted++
		st.ByStatus[row.Status]++
		docID := core.DocIDFor(row.SourceLink, i)
		if _, dup := current[docID]; !dup {
			current[docID] = core.ContentHash(ingestion.DocumentText(row))
		}
	}

	err = w.indexRepo.ForEach(ctx, func(entry *core.IndexEntry) error {
		st.IndexEntries++
		hash, ok := current[entry.DocId]
		switch {
		case !ok:
			st.Drift = append(st.Drift, Drift{DocID: entry.DocId, SourceID: entry.SourceId, Reason: DriftOrphaned})
		case hash != entry.ContentHash:
			st.Drift = append(st.Drift, Drift{DocID: entry.DocId, SourceID: entry.SourceId, Reason: DriftChanged})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if st.Checkpoints, err = w.checkpointRepo.ListCheckpoints(ctx); err != nil {
		return nil, err
	}
	return st, nil
}
