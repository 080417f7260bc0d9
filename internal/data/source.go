// Package data loads CSV and JSON row files that back the "data" field type.
package data

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
)

// Mode defines how rows are selected.
type Mode string

const (
	// ModeSequential walks the rows in order, wrapping around.
	ModeSequential Mode = "sequential"
	// ModeRandom picks a random row on every call.
	ModeRandom Mode = "random"
)

// ParseMode validates a mode name. Empty means sequential.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeSequential:
		return ModeSequential, nil
	case ModeRandom:
		return ModeRandom, nil
	}
	return "", fmt.Errorf("unknown data mode %q (use sequential or random)", s)
}

// Source is a loaded row file. A Source belongs to one field generator and
// is not safe for concurrent use.
type Source struct {
	path    string
	columns []string
	rows    []map[string]any
	mode    Mode
	next    int
	rng     *rand.Rand
}

// NewSource creates a source from rows already in memory. columns fixes the
// column order; nil means the sorted keys of the first row.
func NewSource(rows []map[string]any, columns []string, mode Mode, rng *rand.Rand) *Source {
	if mode == "" {
		mode = ModeSequential
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	if columns == nil && len(rows) > 0 {
		for k := range rows[0] {
			columns = append(columns, k)
		}
		sort.Strings(columns)
	}
	return &Source{rows: rows, columns: columns, mode: mode, rng: rng}
}

func (s *Source) Len() int { return len(s.rows) }

// Columns returns the column names in file order.
func (s *Source) Columns() []string { return s.columns }

// HasColumn reports whether name is one of the columns.
func (s *Source) HasColumn(name string) bool {
	for _, c := range s.columns {
		if c == name {
			return true
		}
	}
	return false
}

// Next returns the next row based on the mode.
func (s *Source) Next() map[string]any {
	if len(s.rows) == 0 {
		return nil
	}

	var idx int
	switch s.mode {
	case ModeRandom:
		idx = s.rng.Intn(len(s.rows))
	default:
		idx = s.next % len(s.rows)
		s.next++
	}
	return s.rows[idx]
}

// Reset rewinds sequential iteration to the first row.
func (s *Source) Reset() {
	s.next = 0
}

// LoadFile loads a .csv or .json file. Relative paths are resolved against
// baseDir (the template's directory) when it is set.
func LoadFile(path string, mode Mode, baseDir string, rng *rand.Rand) (*Source, error) {
	if !filepath.IsAbs(path) && baseDir != "" {
		path = filepath.Join(baseDir, path)
	}

	var (
		rows    []map[string]any
		columns []string
		err     error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		rows, columns, err = loadCSV(path)
	case ".json":
		rows, columns, err = loadJSON(path)
	default:
		return nil, fmt.Errorf("unsupported file format %q (use .csv or .json)", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("data file %s is empty", path)
	}

	src := NewSource(rows, columns, mode, rng)
	src.path = path
	return src, nil
}

// loadCSV loads a CSV file. First row is headers, subsequent rows are data.
func loadCSV(path string) ([]map[string]any, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) < 2 {
		return nil, nil, fmt.Errorf("CSV must have header row and at least one data row")
	}

	headers := records[0]
	rows := make([]map[string]any, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(map[string]any, len(headers))
		for i, header := range headers {
			if i < len(record) {
				row[header] = record[i]
			} else {
				row[header] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, headers, nil
}

// loadJSON loads a JSON array of objects. Columns follow the key order of
// the first object.
func loadJSON(path string) ([]map[string]any, []string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	if !gjson.ValidBytes(raw) {
		return nil, nil, fmt.Errorf("invalid JSON")
	}
	doc := gjson.ParseBytes(raw)
	if !doc.IsArray() {
		return nil, nil, fmt.Errorf("JSON must be an array of objects")
	}

	var (
		rows    []map[string]any
		columns []string
		bad     = -1
	)
	doc.ForEach(func(idx, item gjson.Result) bool {
		if !item.IsObject() {
			bad = int(idx.Int())
			return false
		}
		row := make(map[string]any)
		item.ForEach(func(key, value gjson.Result) bool {
			if len(rows) == 0 {
				columns = append(columns, key.String())
			}
			row[key.String()] = value.Value()
			return true
		})
		rows = append(rows, row)
		return true
	})
	if bad >= 0 {
		return nil, nil, fmt.Errorf("JSON element %d is not an object", bad)
	}
	return rows, columns, nil
}
