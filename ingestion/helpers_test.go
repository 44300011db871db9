package ingestion

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/poiesic/jobtrail/ai/mock"
	"github.com/poiesic/jobtrail/core"
	"github.com/poiesic/jobtrail/retry"
	"github.com/poiesic/jobtrail/storage"
	"github.com/poiesic/jobtrail/storage/badger"
	"github.com/poiesic/jobtrail/storage/table"
	"github.com/stretchr/testify/require"
)

// fixture wires file stores in a temp dir with in-memory badger repositories
// and mock AI services.
type fixture struct {
	dir         string
	raw         *table.RawStore
	classified  *table.ClassifiedStore
	index       storage.IndexRepository
	checkpoints storage.CheckpointRepository
	embedder    *mock.MockEmbedder
	classifier  *mock.MockClassifier
	extractor   *mock.MockAttributeExtractor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	index, checkpoints, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	return &fixture{
		dir:         dir,
		raw:         table.NewRawStore(filepath.Join(dir, "raw.csv"), nil),
		classified:  table.NewClassifiedStore(filepath.Join(dir, "classified.csv"), nil),
		index:       index,
		checkpoints: checkpoints,
		embedder:    mock.NewMockEmbedder(),
		classifier:  mock.NewMockClassifier(),
		extractor:   mock.NewMockAttributeExtractor(),
	}
}

func testOptions() []Option {
	return []Option{WithRetryPolicy(retry.NoRetry()), WithPoolSize(4)}
}

func (f *fixture) classifyStage(t *testing.T) *ClassifyStage {
	t.Helper()
	stage, err := NewClassifyStage(f.raw, f.classified, f.classifier, testOptions()...)
	require.NoError(t, err)
	return stage
}

func (f *fixture) indexStage(t *testing.T, opts ...Option) *IndexStage {
	t.Helper()
	stage, err := NewIndexStage(f.classified, f.index, f.embedder, append(testOptions(), opts...)...)
	require.NoError(t, err)
	return stage
}

func (f *fixture) saveRaw(t *testing.T, items ...core.SourceItem) {
	t.Helper()
	require.NoError(t, f.raw.SaveRaw(context.Background(), items))
}

func (f *fixture) saveClassified(t *testing.T, rows ...core.ClassificationRecord) {
	t.Helper()
	require.NoError(t, f.classified.SaveClassified(context.Background(), rows))
}

func (f *fixture) loadClassified(t *testing.T) []core.ClassificationRecord {
	t.Helper()
	rows, err := f.classified.LoadClassified(context.Background())
	require.NoError(t, err)
	return rows
}

func item(id, subject, body string) core.SourceItem {
	return core.SourceItem{
		Id:         core.ID(id),
		Sender:     "Recruiting <jobs@acme.com>",
		Subject:    subject,
		Body:       body,
		ReceivedAt: "2025-03-01 09:30:00",
		SourceLink: core.SourceLink(0, core.ID(id)),
	}
}

func labelled(it core.SourceItem, label int, probability float64) core.ClassificationRecord {
	return core.ClassificationRecord{SourceItem: it, Label: &label, Probability: &probability}
}

func labels(rows []core.ClassificationRecord) map[core.ID]int {
	out := make(map[core.ID]int, len(rows))
	for _, row := range rows {
		if row.Label != nil {
			out[row.Id] = *row.Label
		}
	}
	return out
}
