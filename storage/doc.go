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


// Package storage provides the storage abstraction layer for jobtrail.
//
// Each pipeline stage owns exactly one store and is its only writer:
//
//   - RawStore: fetched messages, a flat table keyed by message id
//   - ClassifiedStore: the raw table plus label, probability and derived fields
//   - IndexRepository: embedded documents keyed by doc id
//   - CheckpointRepository: the last completed run of each stage
//
// The table stores live in storage/table as CSV files that are replaced
// wholesale on every save (write a temporary file, then rename). The index
// and checkpoints live in storage/badger.
//
// # Constructor Return Type Pattern
//
// Public constructors return the interfaces defined here so consumers stay
// decoupled from the backing implementation:
//
//	index, err := badger.NewIndexRepository(backend) // storage.IndexRepository
//
// # Missing and Damaged State
//
// Every store loads as "no prior state" when it does not exist. Loaders
// report ErrStoreNotFound, ErrMissingColumns and ErrCorruptStore so callers
// can decide which conditions are fatal. A zero-length file also matches
// ErrEmptyStore.
//
// # Thread Safety
//
// Repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
