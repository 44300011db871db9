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

// Metadata keys stored with every index entry.
const (
	MetaCompanyName     = "company_name"
	MetaPositionApplied = "position_applied"
	MetaApplicationDate = "application_date"
	MetaStatus          = "status"
	MetaMailLink        = "mail_link"
)

// IndexResult is the outcome of one index run.
type IndexResult struct {
	Candidates int // accepted rows in the classified store
	Added      int // entries written to the vector store
}

// IndexStage embeds accepted rows that are not yet in the vector store.
type IndexStage struct {
	classified storage.ClassifiedStore
	index      storage.IndexRepository
	embedder   ai.Embedder
	extractor  ai.AttributeExtractor
	policy     retry.Policy
	logger     *slog.Logger
}

// NewIndexStage creates an index stage.
func NewIndexStage(classified storage.ClassifiedStore, index storage.IndexRepository, embedder ai.Embedder, opts ...Option) (*IndexStage, error) {
	if classified == nil {
		return nil, ErrClassifiedStoreRequired
	}
	if index == nil {
		return nil, ErrIndexRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrAIProviderRequired
	}
	s, err := newSettings(opts)
	if err != nil {
		return nil, err
	}
	return &IndexStage{
		classified: classified,
		index:      index,
		embedder:   embedder,
		extractor:  s.extractor,
		policy:     s.policy,
		logger:     s.logger.With("stage", StageIndex),
	}, nil
}

// Run adds the accepted rows missing from the vector store. Existing doc ids
// are never embedded again.
func (s *IndexStage) Run(ctx context.Context) (*IndexResult, error) {
	rows, err := s.classified.LoadClassified(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrStoreNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrClassifiedStoreMissing, err)
		}
		return nil, err
	}

	candidates := make(map[string]*core.ClassificationRecord)
	var docIDs []string
	for i := range rows {
		if !rows[i].Accepted {
			continue
		}
		docID := core.DocIDFor(rows[i].SourceLink, i)
		if _, dup := candidates[docID]; dup {
			continue
		}
		candidates[docID] = &rows[i]
		docIDs = append(docIDs, docID)
	}

	existing, err := s.index.ExistingDocIDs(ctx)
	if err != nil {
		return nil, err
	}
	delta := ledger.Delta(ledger.NewSet(existing...), docIDs)

	result := &IndexResult{Candidates: len(docIDs)}
	if len(delta) == 0 {
		s.logger.Info("vector store is up to date", "candidates", len(docIDs), "existing", len(existing))
		return result, nil
	}
	s.logger.Info("indexing new documents", "new", len(delta), "existing", len(existing))

	texts := make([]string, len(delta))
	entries := make([]*core.IndexEntry, len(delta))
	for i, docID := range delta {
		row := candidates[docID]
		texts[i] = DocumentText(row)
		entries[i] = &core.IndexEntry{
			DocId:    docID,
			SourceId: row.Id,
			Text:     texts[i],
			Metadata: s.metadata(ctx, row, texts[i]),
		}
	}

	vectors, err := retry.Value(ctx, s.policy, func(ctx context.Context) ([][]float32, error) {
		vectors, err := s.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return nil, err
		}
		if len(vectors) != len(texts) {
			return nil, retry.Permanent(fmt.Errorf("%w: expected %d, received %d",
				ai.ErrResultMismatch, len(texts), len(vectors)))
		}
		return vectors, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmbeddingFailed, err)
	}
	for i := range entries {
		entries[i].Vector = core.NormalizeVector(vectors[i])
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	added, err := s.index.InsertEntries(ctx, entries...)
	if err != nil {
		return nil, err
	}
	result.Added = added
	s.logger.Info("vector store updated", "added", added)
	return result, nil
}

// metadata builds the entry metadata. Extractor failures fall back to values
// inferred from the message headers.
func (s *IndexStage) metadata(ctx context.Context, row *core.ClassificationRecord, text string) map[string]string {
	attrs := &ai.Attributes{}
	if s.extractor != nil {
		extracted, err := s.extractor.ExtractAttributes(ctx, text)
		switch {
		case err != nil:
			s.logger.Warn("attribute extraction failed", "id", row.Id, "err", err)
		case extracted != nil:
			attrs = extracted
		}
	}
	if attrs.CompanyName == "" {
		attrs.CompanyName = rules.InferCompany(row.Sender)
	}
	if attrs.ApplicationDate == "" {
		attrs.ApplicationDate = row.ReceivedAt
	}
	return map[string]string{
		MetaCompanyName:     attrs.CompanyName,
		MetaPositionApplied: attrs.PositionApplied,
		MetaApplicationDate: attrs.ApplicationDate,
		MetaStatus:          string(row.Status),
		MetaMailLink:        row.SourceLink,
	}
}

// DocumentText renders the text that is embedded for a row.
func DocumentText(row *core.ClassificationRecord) string {
	return fmt.Sprintf("SUBJ: %s SENDER: %s BODY: %s",
		rules.CleanText(row.Subject), rules.CleanText(row.Sender), rules.CleanText(row.Body))
}
