package ml

import (
	"fmt"
)

// Frame is an ordered column table over raw string values. Columns keep the
// order they were declared in and rows are immutable after construction.
type Frame struct {
	cols  []string
	index map[string]int
	rows  [][]string
}

// NewFrame builds a frame from a header and rows. Every row must have exactly
// one value per column.
func NewFrame(cols []string, rows [][]string) (*Frame, error) {
	if len(cols) == 0 {
		return nil, fmt.Errorf("frame requires at least one column")
	}
	index := make(map[string]int, len(cols))
	for i, col := range cols {
		if _, dup := index[col]; dup {
			return nil, fmt.Errorf("duplicate column %q", col)
		}
		index[col] = i
	}
	for i, row := range rows {
		if len(row) != len(cols) {
			return nil, fmt.Errorf("row %d has %d values, want %d", i, len(row), len(cols))
		}
	}
	return &Frame{cols: cols, index: index, rows: rows}, nil
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	return len(f.rows)
}

// Columns returns a copy of the column names in declaration order.
func (f *Frame) Columns() []string {
	return append([]string(nil), f.cols...)
}

// Has reports whether the named column exists.
func (f *Frame) Has(col string) bool {
	_, ok := f.index[col]
	return ok
}

// Column returns all values of the named column in row order.
func (f *Frame) Column(col string) ([]string, bool) {
	idx, ok := f.index[col]
	if !ok {
		return nil, false
	}
	values := make([]string, len(f.rows))
	for i, row := range f.rows {
		values[i] = row[idx]
	}
	return values, true
}

// Value returns the value at (row, col).
func (f *Frame) Value(row int, col string) (string, bool) {
	idx, ok := f.index[col]
	if !ok || row < 0 || row >= len(f.rows) {
		return "", false
	}
	return f.rows[row][idx], true
}
