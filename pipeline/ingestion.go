package pipeline

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"flightdelay/ml"
)

// LoadDataset reads the historical flight CSV into a frame. The export is
// Latin-1 encoded (Spanish operator names carry accented characters), so the
// bytes are transformed to UTF-8 before parsing.
func LoadDataset(path string) (*ml.Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(transform.NewReader(file, charmap.ISO8859_1.NewDecoder()))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse dataset: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("dataset %s has no data rows", path)
	}

	header := records[0]
	rows := make([][]string, 0, len(records)-1)
	for i, record := range records[1:] {
		if len(record) != len(header) {
			return nil, fmt.Errorf("row %d has %d fields, want %d", i+1, len(record), len(header))
		}
		rows = append(rows, record)
	}

	return ml.NewFrame(header, rows)
}

// OperatorCatalog returns the sorted distinct operator values seen in the
// training data. Serving-time validation accepts only these.
func OperatorCatalog(f *ml.Frame) ([]string, error) {
	operators, ok := f.Column(ml.ColOperator)
	if !ok {
		return nil, &ml.SchemaError{Missing: []string{ml.ColOperator}}
	}

	seen := make(map[string]bool)
	catalog := make([]string, 0)
	for _, op := range operators {
		if !seen[op] {
			seen[op] = true
			catalog = append(catalog, op)
		}
	}
	sort.Strings(catalog)
	return catalog, nil
}
