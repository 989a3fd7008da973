/*
 * Copyright 2024 ScopeDB, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package influxdb

import (
	"cmp"
	"slices"
	"time"

	"github.com/pkg/errors"
)

const timeColumn = "time"

// columnIndex maps column names to positions. It is shared by every row of a
// series and never modified after creation.
type columnIndex struct {
	names     []string
	positions map[string]int
}

func newColumnIndex(columns []string) *columnIndex {
	idx := &columnIndex{
		names:     slices.Clone(columns),
		positions: make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		if _, dup := idx.positions[c]; !dup {
			idx.positions[c] = i
		}
	}
	return idx
}

func (idx *columnIndex) equal(other *columnIndex) bool {
	return idx == other || slices.Equal(idx.names, other.names)
}

// Row is a single result row. Values are reachable by position or by column name.
type Row struct {
	index  *columnIndex
	values []Value
}

// newRow copies values and parses the time column, if any, into a time.Time.
func newRow(index *columnIndex, values []Value) (Row, error) {
	row := Row{index: index, values: slices.Clone(values)}
	if i, ok := index.positions[timeColumn]; ok {
		if s, ok := row.values[i].(string); ok {
			t, err := time.Parse(time.RFC3339Nano, s)
			if err != nil {
				return Row{}, errors.Wrapf(err, "influxdb: parse time column")
			}
			row.values[i] = t.UTC()
		}
	}
	return row, nil
}

// NewRow builds a row over the given columns, as a decoded series would.
func NewRow(columns []string, values []Value) (Row, error) {
	if len(columns) != len(values) {
		return Row{}, errors.Errorf("influxdb: %d values for %d columns", len(values), len(columns))
	}
	return newRow(newColumnIndex(columns), values)
}

// Len returns the number of values.
func (r Row) Len() int {
	return len(r.values)
}

// At returns the i-th value. It panics if i is out of range.
func (r Row) At(i int) Value {
	return r.values[i]
}

// Get returns the value of the named column, or a *NoSuchColumnError.
func (r Row) Get(column string) (Value, error) {
	if r.index != nil {
		if i, ok := r.index.positions[column]; ok {
			return r.values[i], nil
		}
	}
	return nil, &NoSuchColumnError{Column: column}
}

// Time returns the parsed time column.
func (r Row) Time() (time.Time, bool) {
	v, err := r.Get(timeColumn)
	if err != nil {
		return time.Time{}, false
	}
	t, ok := v.(time.Time)
	return t, ok
}

// Columns returns the column names.
func (r Row) Columns() []string {
	if r.index == nil {
		return nil
	}
	return slices.Clone(r.index.names)
}

// Values returns a copy of the values.
func (r Row) Values() []Value {
	return slices.Clone(r.values)
}

// Equal reports whether both rows have the same columns and the same values.
func (r Row) Equal(other Row) bool {
	if r.index == nil || other.index == nil {
		return r.index == other.index && len(r.values) == 0 && len(other.values) == 0
	}
	if !r.index.equal(other.index) || len(r.values) != len(other.values) {
		return false
	}
	for i := range r.values {
		if c, err := compareValues(r.values[i], other.values[i]); err != nil || c != 0 {
			return false
		}
	}
	return true
}

// Compare orders rows of the same columns value by value, like tuples.
// It returns ErrIncomparableRows if the column sets differ or two values at
// the same position cannot be ordered against each other.
func (r Row) Compare(other Row) (int, error) {
	if r.index == nil || other.index == nil || !r.index.equal(other.index) {
		return 0, ErrIncomparableRows
	}
	for i := range min(len(r.values), len(other.values)) {
		c, err := compareValues(r.values[i], other.values[i])
		if err != nil {
			return 0, err
		}
		if c != 0 {
			return c, nil
		}
	}
	return cmp.Compare(len(r.values), len(other.values)), nil
}

func compareValues(a, b Value) (int, error) {
	switch x := a.(type) {
	case nil:
		if b == nil {
			return 0, nil
		}
	case string:
		if y, ok := b.(string); ok {
			return cmp.Compare(x, y), nil
		}
	case bool:
		if y, ok := b.(bool); ok {
			return cmp.Compare(boolRank(x), boolRank(y)), nil
		}
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y), nil
		}
	case int64:
		switch y := b.(type) {
		case int64:
			return cmp.Compare(x, y), nil
		case float64:
			return cmp.Compare(float64(x), y), nil
		}
	case float64:
		switch y := b.(type) {
		case float64:
			return cmp.Compare(x, y), nil
		case int64:
			return cmp.Compare(x, float64(y)), nil
		}
	}
	return 0, errors.Wrapf(ErrIncomparableRows, "%T and %T", a, b)
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}
