package table

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/jobtrail/core"
	"github.com/poiesic/jobtrail/storage"
)

// Column names shared by both tables.
const (
	colID         = "id"
	colSender     = "sender"
	colSubject    = "subject"
	colBody       = "body"
	colReceivedAt = "received_at"
	colSourceLink = "source_link"
)

var rawHeader = []string{colID, colSender, colSubject, colBody, colReceivedAt, colSourceLink}

// RawStore is a storage.RawStore backed by a CSV file.
type RawStore struct {
	path   string
	logger *slog.Logger
}

var _ storage.RawStore = (*RawStore)(nil)

// NewRawStore returns a store for the file at path. The file need not exist.
func NewRawStore(path string, logger *slog.Logger) *RawStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &RawStore{path: path, logger: logger.With("store", "raw")}
}

// Path returns the file location.
func (s *RawStore) Path() string {
	return s.path
}

// LoadRaw reads every item. Rows with an empty id are skipped. A zero-length
// file is reported as ErrEmptyStore rather than as missing columns.
func (s *RawStore) LoadRaw(ctx context.Context) ([]core.SourceItem, error) {
	rows, columns, err := readTable(s.path)
	if err != nil {
		if errors.Is(err, storage.ErrEmptyStore) {
			return nil, err
		}
		if isCorrupt(err) {
			// An unreadable raw table has no usable header.
			return nil, fmt.Errorf("%w: %w", storage.ErrMissingColumns, err)
		}
		return nil, err
	}
	if missing := missingColumns(columns, colID, colSubject, colBody); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s lacks %s", storage.ErrMissingColumns, s.path, strings.Join(missing, ", "))
	}

	items := make([]core.SourceItem, 0, len(rows))
	for i, r := range rows {
		item := sourceItemFromRow(r)
		if item.Id == "" {
			s.logger.Warn("skipping row without id", "row", i+1)
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// SaveRaw replaces the file with items.
func (s *RawStore) SaveRaw(ctx context.Context, items []core.SourceItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	records := make([][]string, len(items))
	for i, item := range items {
		records[i] = sourceItemFields(item)
	}
	if err := writeTable(s.path, rawHeader, records); err != nil {
		return fmt.Errorf("saving raw store: %w", err)
	}
	s.logger.Debug("saved raw store", "rows", len(items))
	return nil
}

func sourceItemFromRow(r row) core.SourceItem {
	return core.SourceItem{
		Id:         core.NormalizeID(r.get(colID)),
		Sender:     r.get(colSender),
		Subject:    r.get(colSubject),
		Body:       r.get(colBody),
		ReceivedAt: r.get(colReceivedAt),
		SourceLink: r.get(colSourceLink),
	}
}

func sourceItemFields(item core.SourceItem) []string {
	return []string{
		item.Id.String(),
		item.Sender,
		item.Subject,
		item.Body,
		item.ReceivedAt,
		item.SourceLink,
	}
}
