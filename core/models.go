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

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is the opaque identifier of a source item. It is the primary key in
// every stage of the pipeline and is always compared in normalized form.
type ID string

// NormalizeID returns the canonical form of a raw identifier.
func NormalizeID(raw string) ID {
	return ID(strings.TrimSpace(raw))
}

// String returns the identifier as a plain string.
func (id ID) String() string {
	return string(id)
}

// ReceivedAtLayout is the layout used for successfully parsed message dates.
const ReceivedAtLayout = "2006-01-02 15:04:05"

// SourceItem is one ingested message. It is created by the fetch stage and
// never modified afterwards.
type SourceItem struct {
	Id         ID
	Sender     string
	Subject    string
	Body       string
	ReceivedAt string // ReceivedAtLayout when parseable, raw header value otherwise
	SourceLink string
}

// ClassificationRecord is the classified form of a SourceItem.
// Label and Probability are nil until the classifier has seen the item.
// Accepted, Status and AppliedFlag are derived by the decision rules.
type ClassificationRecord struct {
	SourceItem
	Label       *int
	Probability *float64
	Accepted    bool
	Status      Status
	AppliedFlag bool
}

// NeedsClassification reports whether the record has not been labelled yet.
func (r *ClassificationRecord) NeedsClassification() bool {
	return r.Label == nil
}

// IndexEntry is one embedded document in the vector store.
type IndexEntry struct {
	DocId       string
	SourceId    ID
	Text        string
	ContentHash string
	Vector      []float32
	Metadata    map[string]string
	InsertedAt  time.Time
}

// Checkpoint records the last completed run of a pipeline stage.
type Checkpoint struct {
	Stage       string
	RunID       string
	Items       int // rows in the stage's store after the run
	Added       int // rows added or labelled by the run
	CompletedAt time.Time
}

// SearchResult is an index entry returned by similarity search.
type SearchResult struct {
	Entry *IndexEntry
	Score float32
}

// ContentHash returns a hex encoded BLAKE2b-256 digest of text.
func ContentHash(text string) string {
	h, _ := blake2b.New(32, nil) // 32 bytes = 256 bits
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// Gmail style link prefix. The account index selects the signed-in account.
const sourceLinkFormat = "https://mail.google.com/mail/u/%d/#all/%s"

// SourceLink derives the deterministic web link of a message.
func SourceLink(account int, id ID) string {
	if id == "" {
		return ""
	}
	return fmt.Sprintf(sourceLinkFormat, account, id)
}

const (
	// SyntheticDocIDPrefix marks doc ids derived from a row position.
	SyntheticDocIDPrefix = "synthetic:row:"

	// escapedDocIDPrefix is prepended to natural keys that happen to start
	// with SyntheticDocIDPrefix.
	escapedDocIDPrefix = "natural:"
)

// DocIDFor derives the vector store key of a classified row.
// The natural key is used as-is; an empty natural key falls back to a
// position based key in the reserved synthetic namespace. Natural keys that
// start with the reserved prefix are escaped so the namespaces never overlap.
func DocIDFor(naturalKey string, position int) string {
	naturalKey = strings.TrimSpace(naturalKey)
	if naturalKey == "" {
		return fmt.Sprintf("%s%d", SyntheticDocIDPrefix, position)
	}
	if strings.HasPrefix(naturalKey, SyntheticDocIDPrefix) || strings.HasPrefix(naturalKey, escapedDocIDPrefix) {
		return escapedDocIDPrefix + naturalKey
	}
	return naturalKey
}

// IsSyntheticDocID reports whether docID was derived from a row position.
func IsSyntheticDocID(docID string) bool {
	return strings.HasPrefix(docID, SyntheticDocIDPrefix)
}
