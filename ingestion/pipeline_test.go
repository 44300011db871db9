package ingestion

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/jobtrail/ai/mock"
	"github.com/poiesic/jobtrail/source"
	"github.com/poiesic/jobtrail/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) pipeline(t *testing.T, src source.Source) *Pipeline {
	t.Helper()
	provider := mock.NewMockProviderWithServices(f.embedder, f.classifier, nil, f.extractor)
	p, err := NewPipeline(src, f.raw, f.classified, f.index, f.checkpoints, provider,
		append(testOptions(), WithFilter("category:primary"))...)
	require.NoError(t, err)
	t.Cleanup(p.Release)
	return p
}

func TestPipeline_RunEndToEnd(t *testing.T) {
	f := newFixture(t)
	src := newMailbox()
	src.Add("m1", source.Detail{Sender: "no-reply@acme.com", Subject: "Application received", Body: "Thanks for applying"})
	src.Add("m2", source.Detail{Sender: "friend@example.org", Subject: "Dinner", Body: "Saturday?"})
	src.Add("m3", source.Detail{Sender: "talent@globex.com", Subject: "Interview invitation", Body: "Pick a slot"})

	var filters []string
	var mu sync.Mutex
	src.ListIDsFunc = func(ctx context.Context, filter string) ([]string, error) {
		mu.Lock()
		filters = append(filters, filter)
		mu.Unlock()
		return []string{"m1", "m2", "m3"}, nil
	}

	p := f.pipeline(t, src)
	report, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, report.RunID)
	assert.Len(t, report.Fetch.Items, 3)
	assert.Equal(t, 3, report.Classify.Classified)
	assert.Equal(t, 2, report.Classify.Accepted)
	assert.Equal(t, 2, report.Index.Added)
	assert.Equal(t, []string{"category:primary"}, filters)

	checkpoints, err := f.checkpoints.ListCheckpoints(context.Background())
	require.NoError(t, err)
	require.Len(t, checkpoints, 3)
	for _, cp := range checkpoints {
		assert.Equal(t, report.RunID, cp.RunID)
		assert.False(t, cp.CompletedAt.IsZero())
	}
	indexCP, err := f.checkpoints.LoadCheckpoint(context.Background(), StageIndex)
	require.NoError(t, err)
	assert.Equal(t, 2, indexCP.Items)

	// A second run with no new mail does no model work.
	report, err = p.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.Fetch.Items)
	assert.Zero(t, report.Classify.Classified)
	assert.Zero(t, report.Index.Added)
	assert.Equal(t, 1, f.classifier.CallCount())
	assert.Equal(t, 1, f.embedder.CallCount())
	assert.Len(t, src.DetailIDs(), 3)
}

func TestPipeline_NewMailOnlyTouchesDelta(t *testing.T) {
	f := newFixture(t)
	src := newMailbox("m1")
	p := f.pipeline(t, src)

	_, err := p.Run(context.Background())
	require.NoError(t, err)

	src.Add("m2", source.Detail{Sender: "hr@initech.com", Subject: "Application received", Body: "We will be in touch"})
	report, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, report.Fetch.Items, 1)
	assert.Equal(t, 1, report.Classify.Classified)
	assert.Equal(t, []string{"Application received We will be in touch"}, f.classifier.Inputs()[1])
}

func TestPipeline_StopsAtFailedStage(t *testing.T) {
	f := newFixture(t)
	src := newMailbox("m1")
	f.classifier.ReadyFunc = func(ctx context.Context) error { return errors.New("no model") }
	p := f.pipeline(t, src)

	report, err := p.Run(context.Background())
	require.Error(t, err)
	assert.NotNil(t, report.Fetch)
	assert.Nil(t, report.Classify)
	assert.Nil(t, report.Index)
	assert.Zero(t, f.embedder.CallCount())

	fetchCP, err := f.checkpoints.LoadCheckpoint(context.Background(), StageFetch)
	require.NoError(t, err)
	assert.NotNil(t, fetchCP)
	classifyCP, err := f.checkpoints.LoadCheckpoint(context.Background(), StageClassify)
	require.NoError(t, err)
	assert.Nil(t, classifyCP)
}

// uncountedIndex fails every Count call.
type uncountedIndex struct {
	storage.IndexRepository
}

func (uncountedIndex) Count(ctx context.Context) (int, error) {
	return 0, errors.New("count unavailable")
}

func TestPipeline_RunIndexSkipsCheckpointWhenCountFails(t *testing.T) {
	f := newFixture(t)
	f.index = uncountedIndex{IndexRepository: f.index}
	p := f.pipeline(t, nil)

	f.saveRaw(t, item("1", "Application received", "thanks"))
	_, err := p.RunClassify(context.Background(), NewRunID())
	require.NoError(t, err)

	result, err := p.RunIndex(context.Background(), NewRunID())
	require.NoError(t, err)
	assert.NotNil(t, result)

	indexCP, err := f.checkpoints.LoadCheckpoint(context.Background(), StageIndex)
	require.NoError(t, err)
	assert.Nil(t, indexCP)
	classifyCP, err := f.checkpoints.LoadCheckpoint(context.Background(), StageClassify)
	require.NoError(t, err)
	assert.NotNil(t, classifyCP)
}

func TestPipeline_CancelledBeforeStart(t *testing.T) {
	f := newFixture(t)
	src := newMailbox("m1")
	p := f.pipeline(t, src)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, src.ListCalls())

	checkpoints, err := f.checkpoints.ListCheckpoints(context.Background())
	require.NoError(t, err)
	assert.Empty(t, checkpoints)
}

func TestPipeline_WithoutSource(t *testing.T) {
	f := newFixture(t)
	p := f.pipeline(t, nil)

	_, err := p.RunFetch(context.Background(), NewRunID())
	assert.ErrorIs(t, err, ErrSourceRequired)

	f.saveRaw(t, item("1", "Application received", "thanks"))
	result, err := p.RunClassify(context.Background(), NewRunID())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Accepted)
}

func TestPipeline_Watch(t *testing.T) {
	f := newFixture(t)
	p := f.pipeline(t, newMailbox("m1"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var runs int
	err := p.Watch(ctx, time.Millisecond, func(report *Report, err error) {
		assert.NoError(t, err)
		runs++
		if runs == 2 {
			cancel()
		}
	})
	require.NoError(t, err)
	assert.Equal(t, 2, runs)
	assert.Equal(t, 1, f.classifier.CallCount())
}

func TestNewPipeline_RequiresCollaborators(t *testing.T) {
	f := newFixture(t)
	provider := mock.NewMockProvider()

	_, err := NewPipeline(nil, f.raw, f.classified, f.index, nil, provider)
	assert.ErrorIs(t, err, ErrCheckpointRepositoryRequired)
	_, err = NewPipeline(nil, f.raw, f.classified, f.index, f.checkpoints, nil)
	assert.ErrorIs(t, err, ErrAIProviderRequired)
	_, err = NewPipeline(nil, f.raw, f.classified, nil, f.checkpoints, provider)
	assert.ErrorIs(t, err, ErrIndexRepositoryRequired)
}
