package table

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/poiesic/jobtrail/core"
	"github.com/poiesic/jobtrail/storage"
)

const (
	colLabel       = "label"
	colProbability = "probability"
	colAccepted    = "accepted"
	colStatus      = "status"
	colApplied     = "applied"
)

var classifiedHeader = append(append([]string(nil), rawHeader...),
	colLabel, colProbability, colAccepted, colStatus, colApplied)

// ClassifiedStore is a storage.ClassifiedStore backed by a CSV file.
type ClassifiedStore struct {
	path   string
	logger *slog.Logger
}

var _ storage.ClassifiedStore = (*ClassifiedStore)(nil)

// NewClassifiedStore returns a store for the file at path. The file need not exist.
func NewClassifiedStore(path string, logger *slog.Logger) *ClassifiedStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &ClassifiedStore{path: path, logger: logger.With("store", "classified")}
}

// Path returns the file location.
func (s *ClassifiedStore) Path() string {
	return s.path
}

// LoadClassified reads every row. Cells that cannot be parsed load as nil so
// the row is classified again rather than failing the load.
func (s *ClassifiedStore) LoadClassified(ctx context.Context) ([]core.ClassificationRecord, error) {
	rows, columns, err := readTable(s.path)
	if err != nil {
		return nil, err
	}
	if missing := missingColumns(columns, colID); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s has no id column", storage.ErrCorruptStore, s.path)
	}

	records := make([]core.ClassificationRecord, 0, len(rows))
	for i, r := range rows {
		rec := core.ClassificationRecord{SourceItem: sourceItemFromRow(r)}
		if rec.Id == "" {
			s.logger.Warn("skipping row without id", "row", i+1)
			continue
		}
		rec.Label = parseLabel(r.get(colLabel))
		rec.Probability = parseProbability(r.get(colProbability))
		rec.Accepted = parseBool(r.get(colAccepted))
		rec.AppliedFlag = parseBool(r.get(colApplied))
		rec.Status, _ = core.ParseStatus(r.get(colStatus)) // unknown values read as OTHER
		records = append(records, rec)
	}
	return records, nil
}

// SaveClassified replaces the file with rows.
func (s *ClassifiedStore) SaveClassified(ctx context.Context, rows []core.ClassificationRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	records := make([][]string, len(rows))
	for i, rec := range rows {
		records[i] = append(sourceItemFields(rec.SourceItem),
			formatLabel(rec.Label),
			formatProbability(rec.Probability),
			strconv.FormatBool(rec.Accepted),
			string(rec.Status),
			strconv.FormatBool(rec.AppliedFlag),
		)
	}
	if err := writeTable(s.path, classifiedHeader, records); err != nil {
		return fmt.Errorf("saving classified store: %w", err)
	}
	s.logger.Debug("saved classified store", "rows", len(rows))
	return nil
}

// parseLabel accepts integers and integral floats such as "1.0".
func parseLabel(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if v, err := strconv.Atoi(s); err == nil {
		return &v
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return nil
	}
	v := int(f)
	return &v
}

func parseProbability(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || core.ValidateProbability(f) != nil {
		return nil
	}
	return &f
}

func parseBool(s string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(s))
	return err == nil && v
}

func formatLabel(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatProbability(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func isCorrupt(err error) bool {
	return errors.Is(err, storage.ErrCorruptStore)
}
