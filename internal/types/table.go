package types

import (
	"errors"
	"fmt"
)

var ErrColumnNotFound = errors.New("column not found")

type Column struct {
	Name   string
	Values []Value
}

// Table is an ordered set of equal-length columns. Row order is the order
// rows were appended.
type Table struct {
	Columns []Column
	rows    int
}

func NewTable(headers []string) *Table {
	t := &Table{Columns: make([]Column, len(headers))}
	for i, h := range headers {
		t.Columns[i].Name = h
	}
	return t
}

func (t *Table) NumRows() int {
	return t.rows
}

func (t *Table) Headers() []string {
	headers := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		headers[i] = c.Name
	}
	return headers
}

// Index returns the position of the first column called name, or -1.
func (t *Table) Index(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

func (t *Table) Column(name string) (*Column, error) {
	idx := t.Index(name)
	if idx == -1 {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	return &t.Columns[idx], nil
}

// AppendRow adds a row. Short rows are padded with missing values and
// extra cells are dropped.
func (t *Table) AppendRow(values []Value) {
	for i := range t.Columns {
		var v Value
		if i < len(values) {
			v = values[i]
		}
		t.Columns[i].Values = append(t.Columns[i].Values, v)
	}
	t.rows++
}

func (t *Table) Row(i int) []Value {
	row := make([]Value, len(t.Columns))
	for j, c := range t.Columns {
		row[j] = c.Values[i]
	}
	return row
}

// Rename applies mapping to every column name at once, so a mapping of
// a->b and b->c renames a to b and b to c. Names absent from the table
// are ignored. It returns the new names of the columns that changed.
func (t *Table) Rename(mapping map[string]string) []string {
	var renamed []string
	for i, c := range t.Columns {
		if to, ok := mapping[c.Name]; ok && to != c.Name {
			t.Columns[i].Name = to
			renamed = append(renamed, to)
		}
	}
	return renamed
}

// SetConstant fills the column called name with v on every row. An
// existing column keeps its position and is overwritten; otherwise the
// column is appended. It reports whether a column was overwritten.
func (t *Table) SetConstant(name string, v Value) bool {
	values := make([]Value, t.rows)
	for i := range values {
		values[i] = v
	}

	if idx := t.Index(name); idx != -1 {
		t.Columns[idx].Values = values
		return true
	}
	t.Columns = append(t.Columns, Column{Name: name, Values: values})
	return false
}

// Distinct returns the non-missing values of a column in the order they
// are first seen.
func (t *Table) Distinct(name string) ([]Value, error) {
	col, err := t.Column(name)
	if err != nil {
		return nil, err
	}

	seen := make(map[key]bool)
	var distinct []Value
	for _, v := range col.Values {
		if v.IsMissing() {
			continue
		}
		k := v.key()
		if seen[k] {
			continue
		}
		seen[k] = true
		distinct = append(distinct, v)
	}
	return distinct, nil
}

// Filter returns a new table holding the rows whose value in the named
// column equals v.
func (t *Table) Filter(name string, v Value) (*Table, error) {
	idx := t.Index(name)
	if idx == -1 {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}

	out := NewTable(t.Headers())
	for i, cell := range t.Columns[idx].Values {
		if cell.Equal(v) {
			out.AppendRow(t.Row(i))
		}
	}
	return out, nil
}

// CountMissing returns how many rows have no value in the named column.
func (t *Table) CountMissing(name string) (int, error) {
	col, err := t.Column(name)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, v := range col.Values {
		if v.IsMissing() {
			n++
		}
	}
	return n, nil
}
