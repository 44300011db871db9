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


package query

import (
	"context"
	"log/slog"
	"strings"

	"github.com/poiesic/jobtrail/ai"
	"github.com/poiesic/jobtrail/core"
	"github.com/poiesic/jobtrail/storage"
)

// DefaultK is the number of messages retrieved per question.
const DefaultK = 4

// Answer is the result of one question.
type Answer struct {
	Question string
	Text     string
	Sources  []*core.SearchResult // retrieved entries, most similar first
}

// Asker answers questions from the indexed messages.
type Asker struct {
	index     storage.IndexRepository
	embedder  ai.Embedder
	generator ai.Generator
	k         int
	logger    *slog.Logger
}

// Option configures an Asker.
type Option func(*Asker) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *Asker) error {
		if logger == nil {
			logger = slog.Default()
		}
		a.logger = logger
		return nil
	}
}

// WithK sets how many messages are retrieved. Default is DefaultK.
func WithK(k int) Option {
	return func(a *Asker) error {
		if k < 1 {
			return ErrInvalidK
		}
		a.k = k
		return nil
	}
}

// NewAsker creates a new asker.
func NewAsker(index storage.IndexRepository, provider ai.AIProvider, opts ...Option) (*Asker, error) {
	if index == nil {
		return nil, ErrIndexRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	a := &Asker{
		index:     index,
		embedder:  provider.Embedder(),
		generator: provider.Generator(),
		k:         DefaultK,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	a.logger = a.logger.With("component", "asker")
	return a, nil
}

// Ask answers question using the K most similar messages.
func (a *Asker) Ask(ctx context.Context, question string) (*Answer, error) {
	return a.AskWithMonitor(ctx, question, nil)
}

// AskWithMonitor answers question and reports each step to monitor.
func (a *Asker) AskWithMonitor(ctx context.Context, question string, monitor Monitor) (*Answer, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}
	monitor.Start(question)

	embedding, err := a.embedder.EmbedText(ctx, question)
	if err != nil {
		a.logger.Error("error generating embedding for question", "err", err)
		return nil, err
	}

	results, err := a.index.FindSimilar(ctx, core.NormalizeVector(embedding), a.k)
	if err != nil {
		a.logger.Error("error querying for similar messages", "err", err)
		return nil, err
	}
	monitor.AfterRetrieval(results)
	for _, r := range results {
		if r.Entry != nil && containsAllQuestionWords(r.Entry.Text, question) {
			monitor.VerbatimHit(r)
		}
	}

	answer := &Answer{Question: question, Sources: results}
	if len(results) == 0 {
		a.logger.Debug("no messages matched")
		answer.Text = NoMatchAnswer
		monitor.Finish(answer)
		return answer, nil
	}

	prompt := BuildPrompt(question, results)
	monitor.BeforeGenerate(prompt)

	text, err := a.generator.Generate(ctx, prompt)
	if err != nil {
		a.logger.Error("error generating answer", "err", err)
		return nil, err
	}
	answer.Text = strings.TrimSpace(text)
	monitor.Finish(answer)
	return answer, nil
}
