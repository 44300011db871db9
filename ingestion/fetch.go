package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/jobtrail/core"
	"github.com/poiesic/jobtrail/ledger"
	"github.com/poiesic/jobtrail/source"
	"github.com/poiesic/jobtrail/storage"
)

// FetchResult is the outcome of one fetch cycle.
type FetchResult struct {
	// Items holds the newly fetched messages in upstream listing order.
	Items []core.SourceItem

	// Failed holds ids whose detail could not be fetched. They are not in
	// Seen, so the next cycle retries them.
	Failed []core.ID

	// Seen is the caller's set grown by the fetched ids.
	Seen ledger.Set[core.ID]

	// Total is the raw store size after Run. Fetch leaves it zero.
	Total int
}

// FetchStage pulls unseen messages from a source into the raw store.
type FetchStage struct {
	source  source.Source
	raw     storage.RawStore
	pool    *ants.Pool
	account int
	logger  *slog.Logger
}

// NewFetchStage creates a fetch stage. Release must be called when done.
func NewFetchStage(src source.Source, raw storage.RawStore, opts ...Option) (*FetchStage, error) {
	if src == nil {
		return nil, ErrSourceRequired
	}
	if raw == nil {
		return nil, ErrRawStoreRequired
	}
	s, err := newSettings(opts)
	if err != nil {
		return nil, err
	}
	pool, err := ants.NewPool(s.poolSize)
	if err != nil {
		return nil, err
	}
	return &FetchStage{
		source:  src,
		raw:     raw,
		pool:    pool,
		account: s.account,
		logger:  s.logger.With("stage", StageFetch),
	}, nil
}

// Fetch lists the source and fetches detail for every id not in seen.
// seen is not modified; the grown set is returned in the result.
// A listing failure aborts the cycle with ErrListingFailed.
func (f *FetchStage) Fetch(ctx context.Context, filter string, seen ledger.Set[core.ID]) (*FetchResult, error) {
	listed, err := f.source.ListIDs(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrListingFailed, err)
	}

	upstream := make([]core.ID, len(listed))
	for i, id := range listed {
		upstream[i] = core.NormalizeID(id)
	}
	delta := ledger.Delta(seen, upstream)
	f.logger.Info("listed messages", "listed", len(upstream), "new", len(delta))

	grown := ledger.NewSyncSet(seen)
	fetched := make([]*core.SourceItem, len(delta))

	var wg sync.WaitGroup
	var submitErr error
	for i, id := range delta {
		if err := ctx.Err(); err != nil {
			submitErr = err
			break
		}
		wg.Add(1)
		err := f.pool.Submit(func() {
			defer wg.Done()
			item, err := f.fetchOne(ctx, id)
			if err != nil {
				f.logger.Warn("skipping message", "id", id, "err", err)
				return
			}
			fetched[i] = item
			grown.Add(id)
		})
		if err != nil {
			wg.Done()
			submitErr = err
			break
		}
	}
	wg.Wait()

	if submitErr != nil {
		return nil, submitErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &FetchResult{Items: make([]core.SourceItem, 0, len(delta))}
	for i, item := range fetched {
		if item == nil {
			result.Failed = append(result.Failed, delta[i])
			continue
		}
		result.Items = append(result.Items, *item)
	}
	result.Seen = grown.Snapshot()

	if len(result.Failed) > 0 {
		f.logger.Warn("some messages could not be fetched", "failed", len(result.Failed))
	}
	return result, nil
}

func (f *FetchStage) fetchOne(ctx context.Context, id core.ID) (*core.SourceItem, error) {
	detail, err := f.source.GetDetail(ctx, id.String())
	if err != nil {
		return nil, err
	}
	if detail == nil {
		return nil, fmt.Errorf("%w: empty detail", source.ErrMessageNotFound)
	}
	item := &core.SourceItem{
		Id:         id,
		Sender:     detail.Sender,
		Subject:    detail.Subject,
		Body:       detail.Body,
		ReceivedAt: detail.ReceivedAt,
		SourceLink: core.SourceLink(f.account, id),
	}
	if err := core.ValidateSourceItem(item); err != nil {
		return nil, err
	}
	return item, nil
}

// Run fetches new messages and appends them to the raw store. Existing rows
// are kept as they are. The store is written once, after every detail fetch
// has finished, and not at all when the cycle fails.
func (f *FetchStage) Run(ctx context.Context, filter string) (*FetchResult, error) {
	existing, err := f.raw.LoadRaw(ctx)
	storeMissing := errors.Is(err, storage.ErrStoreNotFound) || errors.Is(err, storage.ErrEmptyStore)
	if err != nil && !storeMissing {
		return nil, err
	}
	if storeMissing {
		f.logger.Info("no raw store yet, fetching everything")
	}

	ids := make([]core.ID, len(existing))
	for i, item := range existing {
		ids[i] = item.Id
	}

	result, err := f.Fetch(ctx, filter, ledger.NewSet(ids...))
	if err != nil {
		return nil, err
	}
	result.Total = len(existing) + len(result.Items)

	if len(result.Items) == 0 && !storeMissing {
		f.logger.Info("raw store is up to date", "rows", result.Total)
		return result, nil
	}

	if err := f.raw.SaveRaw(ctx, append(existing, result.Items...)); err != nil {
		return nil, err
	}
	f.logger.Info("raw store updated", "added", len(result.Items), "rows", result.Total)
	return result, nil
}

// Release releases the worker pool.
func (f *FetchStage) Release() {
	if f.pool != nil {
		f.pool.Release()
	}
}
