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


package storage

import "errors"

var (
	// ErrNotFound indicates that the requested record was not found.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateKey indicates a duplicate key violation.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrStoreNotFound indicates that a persisted store does not exist yet.
	ErrStoreNotFound = errors.New("store not found")

	// ErrMissingColumns indicates a table store lacks a required column.
	ErrMissingColumns = errors.New("required columns missing")

	// ErrCorruptStore indicates a persisted store is empty or unparsable.
	ErrCorruptStore = errors.New("store is corrupt")

	// ErrEmptyStore indicates a persisted store exists but has zero length.
	// It is always reported together with ErrCorruptStore.
	ErrEmptyStore = errors.New("store is empty")

	// ErrWorkspaceLocked indicates another process holds the workspace.
	ErrWorkspaceLocked = errors.New("workspace is locked by another process")

	// ErrStorageClosed indicates that the storage backend is closed.
	ErrStorageClosed = errors.New("storage is closed")

	// ErrSerializationFailed indicates a serialization/deserialization failure.
	ErrSerializationFailed = errors.New("serialization failed")
)
