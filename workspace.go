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


package jobtrail

import (
	"errors"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/poiesic/jobtrail/ai"
	"github.com/poiesic/jobtrail/ai/openai"
	"github.com/poiesic/jobtrail/ingestion"
	"github.com/poiesic/jobtrail/query"
	"github.com/poiesic/jobtrail/reembed"
	"github.com/poiesic/jobtrail/source"
	"github.com/poiesic/jobtrail/storage"
	"github.com/poiesic/jobtrail/storage/badger"
	"github.com/poiesic/jobtrail/storage/table"
)

// File names inside a workspace directory.
const (
	RawFile        = "raw.csv"
	ClassifiedFile = "classified.csv"
	IndexDir       = "index"
)

// Workspace holds the stores of one data directory and the AI provider that
// works on them. Only one process can hold a workspace open at a time.
type Workspace struct {
	dir            string
	backend        *badger.Backend
	raw            *table.RawStore
	classified     *table.ClassifiedStore
	indexRepo      storage.IndexRepository
	checkpointRepo storage.CheckpointRepository
	provider       ai.AIProvider
	logger         *slog.Logger
}

// WorkspaceOption configures a Workspace.
type WorkspaceOption func(*workspaceOptions)

type workspaceOptions struct {
	aiConfig *ai.Config
	provider ai.AIProvider
	logger   *slog.Logger
}

// WithAIConfig sets the configuration of the AI provider.
// Default is ai.DefaultConfig().
func WithAIConfig(config *ai.Config) WorkspaceOption {
	return func(o *workspaceOptions) {
		o.aiConfig = config
	}
}

// WithProvider uses provider instead of building one from the AI config.
// The workspace takes ownership and closes it.
func WithProvider(provider ai.AIProvider) WorkspaceOption {
	return func(o *workspaceOptions) {
		o.provider = provider
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) WorkspaceOption {
	return func(o *workspaceOptions) {
		o.logger = logger
	}
}

// Open opens the workspace in dir, creating the directory on first use.
// Returns storage.ErrWorkspaceLocked when another process has it open.
func Open(dir string, opts ...WorkspaceOption) (*Workspace, error) {
	options := &workspaceOptions{
		aiConfig: ai.DefaultConfig(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	// Opening the index creates dir and takes the directory lock.
	backend, err := badger.OpenBackend(filepath.Join(dir, IndexDir), false)
	if err != nil {
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig, openai.WithLogger(options.logger))
		if err != nil {
			backend.Close()
			return nil, err
		}
	}

	return &Workspace{
		dir:            dir,
		backend:        backend,
		raw:            table.NewRawStore(filepath.Join(dir, RawFile), options.logger),
		classified:     table.NewClassifiedStore(filepath.Join(dir, ClassifiedFile), options.logger),
		indexRepo:      badger.NewIndexRepository(backend),
		checkpointRepo: badger.NewCheckpointRepository(backend),
		provider:       provider,
		logger:         options.logger,
	}, nil
}

// Close releases the provider and the index, which frees the workspace lock.
func (w *Workspace) Close() error {
	var errs []error
	if err := w.provider.Close(); err != nil {
		w.logger.Error("error closing AI provider", "err", err)
		errs = append(errs, err)
	}
	if err := w.backend.Close(); err != nil {
		w.logger.Error("error closing index storage", "err", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Dir returns the workspace directory.
func (w *Workspace) Dir() string {
	return w.dir
}

func (w *Workspace) RawStore() storage.RawStore {
	return w.raw
}

func (w *Workspace) ClassifiedStore() storage.ClassifiedStore {
	return w.classified
}

func (w *Workspace) IndexRepository() storage.IndexRepository {
	return w.indexRepo
}

func (w *Workspace) CheckpointRepository() storage.CheckpointRepository {
	return w.checkpointRepo
}

func (w *Workspace) Provider() ai.AIProvider {
	return w.provider
}

// NewPipeline builds the ingestion pipeline over the workspace stores.
// src may be nil when only the classify and index stages are needed.
func (w *Workspace) NewPipeline(src source.Source, opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	opts = append([]ingestion.Option{ingestion.WithLogger(w.logger)}, opts...)
	return ingestion.NewPipeline(src, w.raw, w.classified, w.indexRepo, w.checkpointRepo, w.provider, opts...)
}

// NewAsker builds a question answerer over the vector store.
func (w *Workspace) NewAsker(opts ...query.Option) (*query.Asker, error) {
	opts = append([]query.Option{query.WithLogger(w.logger)}, opts...)
	return query.NewAsker(w.indexRepo, w.provider, opts...)
}

// NewReembedder builds a reembedder using the provider's embedder.
func (w *Workspace) NewReembedder(config *reembed.Config, progress io.Writer) (*reembed.Reembedder, error) {
	return reembed.NewReembedder(w.indexRepo, w.provider.Embedder(), config, progress)
}
