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


package reembed

import (
	"context"
	"fmt"

	"github.com/poiesic/jobtrail/ai"
	"github.com/poiesic/jobtrail/core"
	"github.com/poiesic/jobtrail/retry"
	"github.com/poiesic/jobtrail/storage"
)

// BatchProcessor embeds batches of index entries and stores the new vectors.
type BatchProcessor struct {
	index    storage.IndexRepository
	embedder ai.Embedder
	policy   retry.Policy
}

// NewBatchProcessor creates a new batch processor. Embedding calls are
// retried according to policy.
func NewBatchProcessor(index storage.IndexRepository, embedder ai.Embedder, policy retry.Policy) *BatchProcessor {
	return &BatchProcessor{
		index:    index,
		embedder: embedder,
		policy:   policy,
	}
}

// Process embeds the text of each entry and replaces the stored vectors.
// Vectors are normalized after embedding to ensure compatibility with cosine similarity.
func (bp *BatchProcessor) Process(ctx context.Context, entries []*core.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}

	texts := make([]string, len(entries))
	for i, entry := range entries {
		texts[i] = entry.Text
	}

	embeddings, err := retry.Value(ctx, bp.policy, func(ctx context.Context) ([][]float32, error) {
		return bp.embedder.EmbedTexts(ctx, texts)
	})
	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.policy.MaxAttempts, err)
	}
	if len(embeddings) != len(entries) {
		return fmt.Errorf("%w: expected %d, got %d", ai.ErrResultMismatch, len(entries), len(embeddings))
	}

	for i := range entries {
		entries[i].Vector = core.NormalizeVector(embeddings[i])
	}

	if err := bp.index.ReplaceVectors(ctx, entries...); err != nil {
		return fmt.Errorf("failed to update entries: %w", err)
	}
	return nil
}
