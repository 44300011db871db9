package query

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/poiesic/jobtrail/ai/mock"
	"github.com/poiesic/jobtrail/core"
	"github.com/poiesic/jobtrail/storage"
	"github.com/poiesic/jobtrail/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIndex(t *testing.T) storage.IndexRepository {
	t.Helper()
	index, _, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })
	return index
}

// addDocs embeds texts with the mock embedder so questions equal to a text
// retrieve that entry first.
func addDocs(t *testing.T, index storage.IndexRepository, texts ...string) {
	t.Helper()
	entries := make([]*core.IndexEntry, len(texts))
	for i, text := range texts {
		entries[i] = &core.IndexEntry{
			DocId:    core.SourceLink(0, core.ID(text)),
			Text:     text,
			Vector:   mock.DeterministicVector(text, mock.DefaultDimensions),
			Metadata: map[string]string{"status": "APPLICATION_CONFIRMATION", "company_name": "acme"},
		}
	}
	_, err := index.InsertEntries(context.Background(), entries...)
	require.NoError(t, err)
}

type recordingMonitor struct {
	events []string
	prompt string
}

func (m *recordingMonitor) Start(q string) {
	m.events = append(m.events, "start")
}

func (m *recordingMonitor) AfterRetrieval(r []*core.SearchResult) {
	m.events = append(m.events, "retrieved")
}

func (m *recordingMonitor) VerbatimHit(r *core.SearchResult) {
	m.events = append(m.events, "verbatim:"+r.Entry.Text)
}

func (m *recordingMonitor) BeforeGenerate(p string) {
	m.events = append(m.events, "generate")
	m.prompt = p
}

func (m *recordingMonitor) Finish(a *Answer) {
	m.events = append(m.events, "finish")
}

func TestNewAsker(t *testing.T) {
	index := newIndex(t)
	provider := mock.NewMockProvider()

	t.Run("valid configuration", func(t *testing.T) {
		asker, err := NewAsker(index, provider)
		require.NoError(t, err)
		assert.Equal(t, DefaultK, asker.k)
	})

	t.Run("with options", func(t *testing.T) {
		asker, err := NewAsker(index, provider, WithK(2), WithLogger(slog.Default()))
		require.NoError(t, err)
		assert.Equal(t, 2, asker.k)
	})

	t.Run("invalid k", func(t *testing.T) {
		_, err := NewAsker(index, provider, WithK(0))
		assert.ErrorIs(t, err, ErrInvalidK)
	})

	t.Run("nil index", func(t *testing.T) {
		_, err := NewAsker(nil, provider)
		assert.Equal(t, ErrIndexRepositoryRequired, err)
	})

	t.Run("nil provider", func(t *testing.T) {
		_, err := NewAsker(index, nil)
		assert.Equal(t, ErrAIProviderRequired, err)
	})
}

// An empty index answers without calling the generator.
func TestAsk_NoMatches(t *testing.T) {
	provider := mock.NewMockProvider().(*mock.MockProvider)
	asker, err := NewAsker(newIndex(t), provider)
	require.NoError(t, err)

	answer, err := asker.Ask(context.Background(), "Did Acme reply?")
	require.NoError(t, err)
	assert.Equal(t, NoMatchAnswer, answer.Text)
	assert.Empty(t, answer.Sources)
	assert.Zero(t, provider.GetMockGenerator().CallCount())
}

func TestAsk_UsesRetrievedContext(t *testing.T) {
	index := newIndex(t)
	addDocs(t, index,
		"SUBJ: Application received SENDER: jobs@acme.com BODY: Backend Engineer",
		"SUBJ: Interview invitation SENDER: talent@globex.com BODY: Tuesday",
		"SUBJ: We regret to inform you SENDER: hr@initech.com BODY: other candidates",
	)

	provider := mock.NewMockProvider().(*mock.MockProvider)
	generator := provider.GetMockGenerator()
	generator.Response = "  You applied to Acme.  "

	asker, err := NewAsker(index, provider, WithK(2))
	require.NoError(t, err)

	question := "SUBJ: Application received SENDER: jobs@acme.com BODY: Backend Engineer"
	answer, err := asker.Ask(context.Background(), question)
	require.NoError(t, err)

	assert.Equal(t, "You applied to Acme.", answer.Text)
	require.Len(t, answer.Sources, 2)
	assert.Equal(t, question, answer.Sources[0].Entry.Text)
	assert.Equal(t, 1, generator.CallCount())

	prompt := generator.LastPrompt()
	assert.True(t, strings.HasPrefix(prompt, "You are an assistant specializing in understanding job application emails."))
	assert.Contains(t, prompt, "Use ONLY the context given.")
	assert.Contains(t, prompt, "QUESTION:\n"+question+"\n\nCONTEXT FROM EMAILS:\nEMAIL:\n"+question+
		"\nMETADATA: company_name=acme status=APPLICATION_CONFIRMATION")
	assert.True(t, strings.HasSuffix(prompt, "Provide a concise, accurate status update:"))
	assert.Equal(t, 2, strings.Count(prompt, "EMAIL:\n"))
}

func TestAsk_Monitor(t *testing.T) {
	index := newIndex(t)
	addDocs(t, index, "Interview invitation from Globex")

	asker, err := NewAsker(index, mock.NewMockProvider())
	require.NoError(t, err)

	monitor := &recordingMonitor{}
	_, err = asker.AskWithMonitor(context.Background(), "interview Globex", monitor)
	require.NoError(t, err)
	assert.Equal(t, []string{"start", "retrieved", "verbatim:Interview invitation from Globex", "generate", "finish"}, monitor.events)
	assert.Contains(t, monitor.prompt, "interview Globex")
}

func TestAsk_Errors(t *testing.T) {
	index := newIndex(t)
	addDocs(t, index, "some mail")

	t.Run("empty question", func(t *testing.T) {
		asker, err := NewAsker(index, mock.NewMockProvider())
		require.NoError(t, err)
		_, err = asker.Ask(context.Background(), "   ")
		assert.ErrorIs(t, err, ErrEmptyQuestion)
	})

	t.Run("embedding failure", func(t *testing.T) {
		embedder := mock.NewMockEmbedder()
		embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
			return nil, errors.New("embedder down")
		}
		asker, err := NewAsker(index, mock.NewMockProviderWithServices(embedder, nil, nil, nil))
		require.NoError(t, err)
		_, err = asker.Ask(context.Background(), "status?")
		assert.EqualError(t, err, "embedder down")
	})

	t.Run("generation failure", func(t *testing.T) {
		generator := mock.NewMockGenerator()
		generator.GenerateFunc = func(ctx context.Context, prompt string) (string, error) {
			return "", errors.New("generator down")
		}
		asker, err := NewAsker(index, mock.NewMockProviderWithServices(nil, nil, generator, nil))
		require.NoError(t, err)
		_, err = asker.Ask(context.Background(), "status?")
		assert.EqualError(t, err, "generator down")
	})
}

func TestFormatMetadata(t *testing.T) {
	assert.Equal(t, "a=1 b= c=3", formatMetadata(map[string]string{"c": "3", "a": "1", "b": ""}))
	assert.Equal(t, "", formatMetadata(nil))
}

func TestContainsAllQuestionWords(t *testing.T) {
	assert.True(t, containsAllQuestionWords("Interview invitation from Globex", "any interview invitation from Globex?"))
	assert.False(t, containsAllQuestionWords("Interview invitation from Globex", "globex offer"))
	assert.False(t, containsAllQuestionWords("anything", "the a an"))
}
