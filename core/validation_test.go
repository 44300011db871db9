package core

import (
	"errors"
	"testing"
)

func TestValidateSourceItem(t *testing.T) {
	tests := []struct {
		name    string
		item    *SourceItem
		wantErr error
	}{
		{
			name:    "valid item",
			item:    &SourceItem{Id: "abc", Subject: "Thanks for applying"},
			wantErr: nil,
		},
		{
			name:    "valid item with empty body",
			item:    &SourceItem{Id: "abc", Body: ""},
			wantErr: nil,
		},
		{
			name:    "nil item",
			item:    nil,
			wantErr: ErrInvalidSourceItem,
		},
		{
			name:    "blank id",
			item:    &SourceItem{Id: "  "},
			wantErr: ErrEmptyID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSourceItem(tt.item)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateSourceItem() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateSourceItem() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateIndexEntry(t *testing.T) {
	tests := []struct {
		name    string
		entry   *IndexEntry
		wantErr error
	}{
		{
			name:  "valid entry",
			entry: &IndexEntry{DocId: "link1", Vector: []float32{1}},
		},
		{
			name:    "missing doc id",
			entry:   &IndexEntry{Vector: []float32{1}},
			wantErr: ErrEmptyDocID,
		},
		{
			name:    "missing vector",
			entry:   &IndexEntry{DocId: "link1"},
			wantErr: ErrEmptyVector,
		},
		{
			name:    "nil entry",
			wantErr: ErrInvalidIndexEntry,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIndexEntry(tt.entry)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateIndexEntry() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateIndexEntry() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateProbability(t *testing.T) {
	for _, p := range []float64{0, 0.2, 1} {
		if err := ValidateProbability(p); err != nil {
			t.Errorf("ValidateProbability(%v) unexpected error = %v", p, err)
		}
	}
	for _, p := range []float64{-0.1, 1.01} {
		if err := ValidateProbability(p); !errors.Is(err, ErrInvalidProbability) {
			t.Errorf("ValidateProbability(%v) error = %v, want %v", p, err, ErrInvalidProbability)
		}
	}
}
