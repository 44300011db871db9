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
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/jobtrail/ai"
	"github.com/poiesic/jobtrail/core"
	"github.com/poiesic/jobtrail/ledger"
	"github.com/poiesic/jobtrail/retry"
	"github.com/poiesic/jobtrail/rules"
	"github.com/poiesic/jobtrail/storage"
)

// ClassifyResult is the outcome of one classification run.
type ClassifyResult struct {
	Total      int // rows in the classified store
	Classified int // rows sent to the classifier
	Accepted   int
}

// ClassifyStage merges the raw store into the classified store, labelling
// only rows that have never been labelled.
type ClassifyStage struct {
	raw        storage.RawStore
	classified storage.ClassifiedStore
	classifier ai.Classifier
	engine     *rules.Engine
	policy     retry.Policy
	logger     *slog.Logger
}

// NewClassifyStage creates a classification stage.
func NewClassifyStage(raw storage.RawStore, classified storage.ClassifiedStore, classifier ai.Classifier, opts ...Option) (*ClassifyStage, error) {
	if raw == nil {
		return nil, ErrRawStoreRequired
	}
	if classified == nil {
		return nil, ErrClassifiedStoreRequired
	}
	if classifier == nil {
		return nil, ErrAIProviderRequired
	}
	s, err := newSettings(opts)
	if err != nil {
		return nil, err
	}
	return &ClassifyStage{
		raw:        raw,
		classified: classified,
		classifier: classifier,
		engine:     s.engine,
		policy:     s.policy,
		logger:     s.logger.With("stage", StageClassify),
	}, nil
}

// Run performs the merge. Labels of the ids in recompute are cleared before
// the merge so exactly those rows are predicted again.
func (c *ClassifyStage) Run(ctx context.Context, recompute ...core.ID) (*ClassifyResult, error) {
	items, err := c.raw.LoadRaw(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrStoreNotFound) || errors.Is(err, storage.ErrEmptyStore) {
			return nil, fmt.Errorf("%w: %w", ErrRawStoreMissing, err)
		}
		return nil, err
	}

	previous := c.loadPrevious(ctx)
	forced := ledger.NewSet(recompute...)

	rows := make([]core.ClassificationRecord, 0, len(items))
	position := make(map[core.ID]int, len(items))
	for _, item := range items {
		if _, dup := position[item.Id]; dup {
			c.logger.Warn("duplicate id in raw store, keeping first", "id", item.Id)
			continue
		}
		position[item.Id] = len(rows)

		row := core.ClassificationRecord{SourceItem: item}
		if old, ok := previous[item.Id]; ok && !forced.Contains(item.Id) {
			row.Label = old.Label
			row.Probability = old.Probability
		}
		rows = append(rows, row)
	}

	var pending []int
	for i := range rows {
		if rows[i].NeedsClassification() {
			pending = append(pending, i)
		}
	}

	if len(pending) == 0 {
		c.logger.Info("nothing to classify", "rows", len(rows))
	} else if err := c.predict(ctx, rows, pending); err != nil {
		return nil, err
	}

	accepted := 0
	for i := range rows {
		c.derive(&rows[i])
		if rows[i].Accepted {
			accepted++
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := c.classified.SaveClassified(ctx, rows); err != nil {
		return nil, err
	}

	c.logger.Info("classified store updated", "rows", len(rows), "classified", len(pending), "accepted", accepted)
	return &ClassifyResult{Total: len(rows), Classified: len(pending), Accepted: accepted}, nil
}

// loadPrevious returns the previous labels by id. A missing or damaged store
// yields an empty map.
func (c *ClassifyStage) loadPrevious(ctx context.Context) map[core.ID]core.ClassificationRecord {
	rows, err := c.classified.LoadClassified(ctx)
	switch {
	case errors.Is(err, storage.ErrStoreNotFound):
		c.logger.Info("no classified store yet, classifying everything")
		return nil
	case err != nil:
		c.logger.Warn("ignoring unreadable classified store", "err", err)
		return nil
	}

	previous := make(map[core.ID]core.ClassificationRecord, len(rows))
	for _, row := range rows {
		if _, dup := previous[row.Id]; !dup {
			previous[row.Id] = row
		}
	}
	return previous
}

// predict labels rows[pending] with one classifier batch.
func (c *ClassifyStage) predict(ctx context.Context, rows []core.ClassificationRecord, pending []int) error {
	if checker, ok := c.classifier.(ai.ReadinessChecker); ok {
		if err := checker.Ready(ctx); err != nil {
			if errors.Is(err, ai.ErrModelUnavailable) {
				return err
			}
			return fmt.Errorf("%w: %w", ai.ErrModelUnavailable, err)
		}
	}

	texts := make([]string, len(pending))
	for i, idx := range pending {
		texts[i] = rows[idx].Subject + " " + rows[idx].Body
	}

	c.logger.Debug("predicting labels", "rows", len(texts))
	predictions, err := retry.Value(ctx, c.policy, func(ctx context.Context) ([]ai.Prediction, error) {
		predictions, err := c.classifier.Predict(ctx, texts)
		if err != nil {
			return nil, err
		}
		if len(predictions) != len(texts) {
			return nil, retry.Permanent(fmt.Errorf("%w: expected %d, received %d",
				ai.ErrResultMismatch, len(texts), len(predictions)))
		}
		return predictions, nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrClassificationFailed, err)
	}

	for i, idx := range pending {
		label := predictions[i].Label
		rows[idx].Label = &label
		if p := predictions[i].Probability; p != nil {
			prob := *p
			if err := core.ValidateProbability(prob); err != nil {
				c.logger.Warn("dropping out of range probability", "id", rows[idx].Id, "probability", prob)
			} else {
				rows[idx].Probability = &prob
			}
		}
	}
	return nil
}

// derive fills the rule based fields from the raw fields and stored scores.
func (c *ClassifyStage) derive(row *core.ClassificationRecord) {
	decision := c.engine.Decide(rules.Input{
		Subject:     row.Subject,
		Body:        row.Body,
		Sender:      row.Sender,
		Probability: rules.ProbabilityFor(row.Label, row.Probability),
	})
	row.Accepted = decision.Accepted
	row.Status = decision.Status
	row.AppliedFlag = decision.AppliedFlag
}
