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


package core

import "fmt"

// ValidateSourceItem validates a SourceItem according to domain rules.
//
// Validation rules:
//   - Id must not be empty after normalization
//
// NOT validated (best effort fields from the mail source):
//   - Body (may be empty)
//   - ReceivedAt (raw header value is kept when unparseable)
func ValidateSourceItem(item *SourceItem) error {
	if item == nil {
		return fmt.Errorf("%w: item is nil", ErrInvalidSourceItem)
	}

	if NormalizeID(string(item.Id)) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSourceItem, ErrEmptyID)
	}

	return nil
}

// ValidateProbability checks that a model probability lies in [0,1].
func ValidateProbability(p float64) error {
	if p < 0 || p > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidProbability, p)
	}
	return nil
}

// ValidateIndexEntry validates an IndexEntry before insertion.
//
// Validation rules:
//   - DocId must not be empty
//   - Vector must not be empty
func ValidateIndexEntry(entry *IndexEntry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry is nil", ErrInvalidIndexEntry)
	}

	if entry.DocId == "" {
		return fmt.Errorf("%w: %w", ErrInvalidIndexEntry, ErrEmptyDocID)
	}

	if len(entry.Vector) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidIndexEntry, ErrEmptyVector)
	}

	return nil
}
