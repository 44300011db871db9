package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexEntryMUS_RoundTrip(t *testing.T) {
	entry := IndexEntry{
		DocId:       "https://mail.google.com/mail/u/0/#all/abc",
		SourceId:    "abc",
		Text:        "SUBJECT: Thank you for applying",
		ContentHash: ContentHash("SUBJECT: Thank you for applying"),
		Vector:      []float32{0.6, -0.8},
		Metadata:    map[string]string{"status": "APPLICATION_CONFIRMATION", "company_name": "acme"},
		InsertedAt:  time.Date(2025, 12, 5, 10, 30, 0, 0, time.UTC),
	}

	buf := make([]byte, IndexEntryMUS.Size(entry))
	n := IndexEntryMUS.Marshal(entry, buf)
	require.Equal(t, len(buf), n)

	decoded, read, err := IndexEntryMUS.Unmarshal(buf)
	require.NoError(t, err)
	assert.Equal(t, n, read)
	assert.Equal(t, entry, decoded)
}

func TestIndexEntryMUS_DeterministicMetadata(t *testing.T) {
	a := IndexEntry{DocId: "d", Metadata: map[string]string{"a": "1", "b": "2", "c": "3"}}
	b := IndexEntry{DocId: "d", Metadata: map[string]string{"c": "3", "a": "1", "b": "2"}}

	bufA := make([]byte, IndexEntryMUS.Size(a))
	IndexEntryMUS.Marshal(a, bufA)
	bufB := make([]byte, IndexEntryMUS.Size(b))
	IndexEntryMUS.Marshal(b, bufB)

	assert.Equal(t, bufA, bufB)
}

func TestCheckpointMUS_ZeroTime(t *testing.T) {
	cp := Checkpoint{Stage: "fetch", RunID: "r1", Items: 12, Added: 3}

	buf := make([]byte, CheckpointMUS.Size(cp))
	CheckpointMUS.Marshal(cp, buf)

	decoded, _, err := CheckpointMUS.Unmarshal(buf)
	require.NoError(t, err)
	assert.Equal(t, cp, decoded)
	assert.True(t, decoded.CompletedAt.IsZero())
}

func TestIndexEntryMUS_Truncated(t *testing.T) {
	entry := IndexEntry{DocId: "d", Text: "some text", Vector: []float32{1, 2, 3}}
	buf := make([]byte, IndexEntryMUS.Size(entry))
	IndexEntryMUS.Marshal(entry, buf)

	_, _, err := IndexEntryMUS.Unmarshal(buf[:len(buf)/2])
	assert.Error(t, err)
}
