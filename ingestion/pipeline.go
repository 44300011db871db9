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


package ingestion

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/poiesic/jobtrail/ai"
	"github.com/poiesic/jobtrail/core"
	"github.com/poiesic/jobtrail/source"
	"github.com/poiesic/jobtrail/storage"
)

// Stage names used for logging and checkpoints.
const (
	StageFetch    = "fetch"
	StageClassify = "classify"
	StageIndex    = "index"
)

// Report summarizes one pipeline run.
type Report struct {
	RunID    string
	Fetch    *FetchResult
	Classify *ClassifyResult
	Index    *IndexResult
}

// Pipeline runs the stages in order and records a checkpoint after each one.
type Pipeline struct {
	fetch       *FetchStage // nil without a source
	classify    *ClassifyStage
	index       *IndexStage
	checkpoints storage.CheckpointRepository
	filter      string
	logger      *slog.Logger
}

// NewPipeline creates a pipeline. src may be nil, in which case only the
// classify and index stages can run.
func NewPipeline(
	src source.Source,
	raw storage.RawStore,
	classified storage.ClassifiedStore,
	index storage.IndexRepository,
	checkpoints storage.CheckpointRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Pipeline, error) {
	if checkpoints == nil {
		return nil, ErrCheckpointRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}
	s, err := newSettings(opts)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		checkpoints: checkpoints,
		filter:      s.filter,
		logger:      s.logger.With("component", "pipeline"),
	}

	if src != nil {
		if p.fetch, err = NewFetchStage(src, raw, opts...); err != nil {
			return nil, err
		}
	}
	if p.classify, err = NewClassifyStage(raw, classified, provider.Classifier(), opts...); err != nil {
		p.Release()
		return nil, err
	}
	if p.index, err = NewIndexStage(classified, index, provider.Embedder(), opts...); err != nil {
		p.Release()
		return nil, err
	}
	return p, nil
}

// RunFetch runs the fetch stage alone.
func (p *Pipeline) RunFetch(ctx context.Context, runID string) (*FetchResult, error) {
	if p.fetch == nil {
		return nil, ErrSourceRequired
	}
	result, err := p.fetch.Run(ctx, p.filter)
	if err != nil {
		return nil, err
	}
	p.checkpoint(ctx, StageFetch, runID, result.Total, len(result.Items))
	return result, nil
}

// RunClassify runs the classification stage alone. See ClassifyStage.Run
// for recompute.
func (p *Pipeline) RunClassify(ctx context.Context, runID string, recompute ...core.ID) (*ClassifyResult, error) {
	result, err := p.classify.Run(ctx, recompute...)
	if err != nil {
		return nil, err
	}
	p.checkpoint(ctx, StageClassify, runID, result.Total, result.Classified)
	return result, nil
}

// RunIndex runs the index stage alone.
func (p *Pipeline) RunIndex(ctx context.Context, runID string) (*IndexResult, error) {
	result, err := p.index.Run(ctx)
	if err != nil {
		return nil, err
	}
	total, err := p.index.index.Count(ctx)
	if err != nil {
		// Checkpoints always carry the real index size.
		p.logger.Warn("counting index entries, checkpoint skipped", "err", err)
		return result, nil
	}
	p.checkpoint(ctx, StageIndex, runID, total, result.Added)
	return result, nil
}

// Run executes fetch, classify and index in sequence. Cancellation is
// honored between stages; a stage that fails stops the run.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	report := &Report{RunID: NewRunID()}
	logger := p.logger.With("run", report.RunID)
	logger.Info("run started")
	start := time.Now()

	var err error
	if err = ctx.Err(); err != nil {
		return report, err
	}
	if report.Fetch, err = p.RunFetch(ctx, report.RunID); err != nil {
		logger.Error("fetch failed", "err", err)
		return report, err
	}

	if err = ctx.Err(); err != nil {
		return report, err
	}
	if report.Classify, err = p.RunClassify(ctx, report.RunID); err != nil {
		logger.Error("classify failed", "err", err)
		return report, err
	}

	if err = ctx.Err(); err != nil {
		return report, err
	}
	if report.Index, err = p.RunIndex(ctx, report.RunID); err != nil {
		logger.Error("index failed", "err", err)
		return report, err
	}

	logger.Info("run finished",
		"fetched", len(report.Fetch.Items),
		"classified", report.Classify.Classified,
		"indexed", report.Index.Added,
		"elapsed", time.Since(start))
	return report, nil
}

// Watch runs the pipeline every interval until ctx is done. A failed run is
// logged and retried on the next tick. onRun, if set, receives every report.
func (p *Pipeline) Watch(ctx context.Context, interval time.Duration, onRun func(*Report, error)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		report, err := p.Run(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			p.logger.Warn("run failed, waiting for next interval", "err", err, "interval", interval)
		}
		if onRun != nil {
			onRun(report, err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (p *Pipeline) checkpoint(ctx context.Context, stage, runID string, items, added int) {
	if runID == "" {
		runID = NewRunID()
	}
	err := p.checkpoints.SaveCheckpoint(ctx, &core.Checkpoint{
		Stage: stage,
		RunID: runID,
		Items: items,
		Added: added,
	})
	if err != nil {
		p.logger.Error("error saving checkpoint", "stage", stage, "err", err)
	}
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// Release releases resources including worker pools.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.fetch != nil {
		p.fetch.Release()
	}
}
