package reembed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/poiesic/jobtrail/ai"
	"github.com/poiesic/jobtrail/ai/mock"
	"github.com/poiesic/jobtrail/core"
	"github.com/poiesic/jobtrail/storage"
	"github.com/poiesic/jobtrail/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupIndex(t *testing.T, n int) storage.IndexRepository {
	t.Helper()
	index, _, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	entries := make([]*core.IndexEntry, n)
	for i := range entries {
		entries[i] = &core.IndexEntry{
			DocId:    fmt.Sprintf("doc-%02d", i),
			SourceId: core.ID(fmt.Sprintf("m%d", i)),
			Text:     fmt.Sprintf("message %d", i),
			Vector:   []float32{1, 0, 0},
			Metadata: map[string]string{"status": "OTHER"},
		}
	}
	if n > 0 {
		_, err = index.InsertEntries(context.Background(), entries...)
		require.NoError(t, err)
	}
	return index
}

func testConfig() *Config {
	return &Config{BatchSize: 3, ReportInterval: 3, MaxRetries: 3, RetryDelay: time.Millisecond}
}

func TestReembedder_Run(t *testing.T) {
	index := setupIndex(t, 10)
	embedder := mock.NewMockEmbedder()
	embedder.Dimensions = 8

	var buf bytes.Buffer
	reembedder, err := NewReembedder(index, embedder, testConfig(), &buf)
	require.NoError(t, err)

	processed, err := reembedder.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, processed)
	assert.Equal(t, []int{3, 3, 3, 1}, embedder.BatchSizes())

	err = index.ForEach(context.Background(), func(entry *core.IndexEntry) error {
		require.Len(t, entry.Vector, 8)
		assert.InDelta(t, 1.0, core.DotProduct(entry.Vector, entry.Vector), 1e-5)
		assert.Equal(t, map[string]string{"status": "OTHER"}, entry.Metadata)
		return nil
	})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "Starting reembedding of 10 entries")
	assert.Contains(t, buf.String(), "Reembedding complete. Processed 10 entries")
}

func TestReembedder_EmptyIndex(t *testing.T) {
	var buf bytes.Buffer
	embedder := mock.NewMockEmbedder()
	reembedder, err := NewReembedder(setupIndex(t, 0), embedder, nil, &buf)
	require.NoError(t, err)

	processed, err := reembedder.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, processed)
	assert.Zero(t, embedder.CallCount())
	assert.Contains(t, buf.String(), "0 entries")
}

func TestReembedder_RetriesTransientFailures(t *testing.T) {
	index := setupIndex(t, 2)
	var calls atomic.Int32
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("temporary outage")
		}
		out := make([][]float32, len(texts))
		for i, text := range texts {
			out[i] = mock.DeterministicVector(text, 4)
		}
		return out, nil
	}

	reembedder, err := NewReembedder(index, embedder, testConfig(), nil)
	require.NoError(t, err)

	processed, err := reembedder.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, processed)
	assert.Equal(t, int32(2), calls.Load())
}

func TestReembedder_Failures(t *testing.T) {
	t.Run("embedder keeps failing", func(t *testing.T) {
		embedder := mock.NewMockEmbedder()
		embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			return nil, errors.New("down")
		}
		reembedder, err := NewReembedder(setupIndex(t, 4), embedder, testConfig(), nil)
		require.NoError(t, err)

		processed, err := reembedder.Run(context.Background())
		require.Error(t, err)
		assert.Zero(t, processed)
		assert.Equal(t, 3, embedder.CallCount())
	})

	t.Run("short batch", func(t *testing.T) {
		embedder := mock.NewMockEmbedder()
		embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			return [][]float32{{1}}, nil
		}
		reembedder, err := NewReembedder(setupIndex(t, 2), embedder, testConfig(), nil)
		require.NoError(t, err)

		_, err = reembedder.Run(context.Background())
		assert.ErrorIs(t, err, ai.ErrResultMismatch)
	})

	t.Run("cancelled", func(t *testing.T) {
		reembedder, err := NewReembedder(setupIndex(t, 2), mock.NewMockEmbedder(), testConfig(), nil)
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = reembedder.Run(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestNewReembedder_RequiresCollaborators(t *testing.T) {
	_, err := NewReembedder(nil, mock.NewMockEmbedder(), nil, nil)
	assert.ErrorIs(t, err, ErrIndexRepositoryRequired)
	_, err = NewReembedder(setupIndex(t, 0), nil, nil, nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)
}

func TestEntryIterator_Batches(t *testing.T) {
	index := setupIndex(t, 5)
	var sizes []int
	var first []string
	err := NewEntryIterator(index, 2).ForEach(context.Background(), func(entries []*core.IndexEntry) error {
		sizes = append(sizes, len(entries))
		first = append(first, entries[0].DocId)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2, 1}, sizes)
	assert.Equal(t, []string{"doc-00", "doc-02", "doc-04"}, first)
}

func TestEntryIterator_StopsOnError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	err := NewEntryIterator(setupIndex(t, 5), 0).ForEach(context.Background(), func(entries []*core.IndexEntry) error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}
