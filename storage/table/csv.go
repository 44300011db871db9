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


// Package table stores the raw and classified message tables as CSV files.
//
// Files carry a header row. Columns are located by name, so extra columns are
// ignored and absent columns read as empty. Saves write a temporary file in
// the same directory and rename it over the target, so a reader never sees a
// partially written table.
package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/jobtrail/storage"
)

// row gives access to one record by column name.
type row struct {
	columns map[string]int
	fields  []string
}

func (r row) get(name string) string {
	i, ok := r.columns[name]
	if !ok || i >= len(r.fields) {
		return ""
	}
	return r.fields[i]
}

func (r row) has(name string) bool {
	i, ok := r.columns[name]
	return ok && i < len(r.fields)
}

// readTable loads path and indexes its header. Returns ErrStoreNotFound when
// the file does not exist and ErrCorruptStore when it is empty or malformed.
// A zero-length file additionally matches ErrEmptyStore.
func readTable(path string) ([]row, map[string]int, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil, fmt.Errorf("%w: %s", storage.ErrStoreNotFound, path)
	}
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("%w: %w: %s", storage.ErrCorruptStore, storage.ErrEmptyStore, path)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %w", storage.ErrCorruptStore, path, err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := columns[name]; !dup {
			columns[name] = i
		}
	}

	var rows []row
	for {
		fields, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s: %w", storage.ErrCorruptStore, path, err)
		}
		rows = append(rows, row{columns: columns, fields: fields})
	}
	return rows, columns, nil
}

func missingColumns(columns map[string]int, required ...string) []string {
	var missing []string
	for _, name := range required {
		if _, ok := columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// writeTable replaces path with the given header and records.
func writeTable(path string, header []string, records [][]string) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	w := csv.NewWriter(tmp)
	if err = w.Write(header); err != nil {
		return err
	}
	if err = w.WriteAll(records); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
