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


// Package source defines the boundary to the mailbox that feeds the pipeline.
package source

import "context"

// Detail is the content of one message as returned by a Source.
type Detail struct {
	Sender     string
	Subject    string
	Body       string
	ReceivedAt string // core.ReceivedAtLayout when the date header parses, raw value otherwise
}

// Source lists and fetches messages.
// Implementations must be safe for concurrent GetDetail calls.
type Source interface {
	// ListIDs returns the identifiers of every message matching filter,
	// following pagination to the end of the result set.
	ListIDs(ctx context.Context, filter string) ([]string, error)

	// GetDetail fetches a single message.
	GetDetail(ctx context.Context, id string) (*Detail, error)
}
