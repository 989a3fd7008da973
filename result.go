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
	"fmt"
	"iter"
	"maps"
	"slices"
	"strings"

	"github.com/pkg/errors"
	"github.com/valyala/fastjson"
)

// Value stores the contents of a single cell of a query result:
// nil, string, bool, int64, float64 or time.Time.
type Value any

// ResultKind tells which shape a Result or StatementResult has.
type ResultKind int

const (
	// ResultEmpty is a statement that produced no series.
	ResultEmpty ResultKind = iota
	// ResultSeries is a statement that produced exactly one series.
	ResultSeries
	// ResultSeriesList is a statement that produced several series, e.g. from
	// several measurements or a GROUP BY expansion.
	ResultSeriesList
	// ResultError is a statement the server reported an error for. It only
	// appears inside ResultStatements.
	ResultError
	// ResultStatements holds one StatementResult per statement of a
	// multi-statement query.
	ResultStatements
)

func (k ResultKind) String() string {
	switch k {
	case ResultEmpty:
		return "empty"
	case ResultSeries:
		return "series"
	case ResultSeriesList:
		return "series-list"
	case ResultError:
		return "error"
	case ResultStatements:
		return "statements"
	default:
		return fmt.Sprintf("ResultKind(%d)", int(k))
	}
}

// StatementResult is the outcome of one statement: no series, one series,
// several series, or an error.
type StatementResult struct {
	id     int
	series []*Series
	err    *StatementError
}

// StatementID is the position of the statement in the query, as reported by the server.
func (r *StatementResult) StatementID() int {
	return r.id
}

// Kind returns ResultEmpty, ResultSeries, ResultSeriesList or ResultError.
func (r *StatementResult) Kind() ResultKind {
	switch {
	case r.err != nil:
		return ResultError
	case len(r.series) == 0:
		return ResultEmpty
	case len(r.series) == 1:
		return ResultSeries
	default:
		return ResultSeriesList
	}
}

// Series returns the series of a ResultSeries statement, nil otherwise.
func (r *StatementResult) Series() *Series {
	if r.Kind() != ResultSeries {
		return nil
	}
	return r.series[0]
}

// SeriesList returns every series of the statement, whatever the kind.
func (r *StatementResult) SeriesList() []*Series {
	return slices.Clone(r.series)
}

// Err returns the *StatementError of a ResultError statement, nil otherwise.
func (r *StatementResult) Err() error {
	if r.err == nil {
		return nil
	}
	return r.err
}

// Result is a decoded query response.
//
// A response with a single statement is unwrapped: its kind is the kind of that
// statement, and a failed single statement is returned as an error instead.
// Otherwise the kind is ResultStatements, and failed statements stay in place
// next to the ones that succeeded.
type Result struct {
	single     *StatementResult
	statements []*StatementResult
}

// Kind returns ResultEmpty, ResultSeries, ResultSeriesList or ResultStatements.
func (r *Result) Kind() ResultKind {
	if r.single == nil {
		return ResultStatements
	}
	return r.single.Kind()
}

// Series returns the series of a ResultSeries result, nil otherwise.
func (r *Result) Series() *Series {
	if r.single == nil {
		return nil
	}
	return r.single.Series()
}

// SeriesList returns the series of a single-statement result, nil for ResultStatements.
func (r *Result) SeriesList() []*Series {
	if r.single == nil {
		return nil
	}
	return r.single.SeriesList()
}

// Statements returns the per-statement results of a ResultStatements result,
// nil otherwise.
func (r *Result) Statements() []*StatementResult {
	return slices.Clone(r.statements)
}

// DecodeResult decodes the body of a successful /query response.
//
// Chunked bodies, made of several JSON documents, are merged per statement.
func DecodeResult(body []byte) (*Result, error) {
	var statements []*StatementResult
	byID := map[int]*StatementResult{}

	var sc fastjson.Scanner
	sc.InitBytes(body)
	for sc.Next() {
		doc := sc.Value()
		if doc.Get("error") != nil {
			return nil, &ServerError{StatusCode: 200, Message: string(doc.GetStringBytes("error"))}
		}
		results := doc.Get("results")
		if results == nil || results.Type() != fastjson.TypeArray {
			return nil, errors.New("influxdb: response has no results")
		}
		for i, item := range results.GetArray() {
			id := i
			if v := item.Get("statement_id"); v != nil {
				id = v.GetInt()
			}
			stmt, seen := byID[id]
			if !seen {
				stmt = &StatementResult{id: id}
				byID[id] = stmt
				statements = append(statements, stmt)
			}
			// a statement already seen belongs to an earlier chunk
			if err := decodeStatement(stmt, item, seen); err != nil {
				return nil, errors.WithMessagef(err, "statement %d", id)
			}
		}
	}
	if err := sc.Error(); err != nil {
		return nil, errors.Wrap(err, "influxdb: decode query response")
	}

	if len(statements) == 1 {
		if err := statements[0].Err(); err != nil {
			return nil, err
		}
		return &Result{single: statements[0]}, nil
	}
	if statements == nil {
		statements = []*StatementResult{}
	}
	return &Result{statements: statements}, nil
}

func decodeStatement(stmt *StatementResult, item *fastjson.Value, continued bool) error {
	if item.Get("error") != nil {
		stmt.err = &StatementError{StatementID: stmt.id, Message: string(item.GetStringBytes("error"))}
		return nil
	}
	for i, raw := range item.GetArray("series") {
		s, err := decodeSeries(raw)
		if err != nil {
			return err
		}
		if n := len(stmt.series); continued && i == 0 && n > 0 && stmt.series[n-1].continuedBy(s) {
			stmt.series[n-1].values = append(stmt.series[n-1].values, s.values...)
			continue
		}
		stmt.series = append(stmt.series, s)
	}
	return nil
}

func decodeSeries(raw *fastjson.Value) (*Series, error) {
	var columns []string
	for _, c := range raw.GetArray("columns") {
		name, err := c.StringBytes()
		if err != nil {
			return nil, errors.Wrap(err, "column name")
		}
		columns = append(columns, string(name))
	}

	var tags map[string]string
	if obj := raw.GetObject("tags"); obj != nil {
		tags = make(map[string]string, obj.Len())
		obj.Visit(func(key []byte, v *fastjson.Value) {
			if b, err := v.StringBytes(); err == nil {
				tags[string(key)] = string(b)
			} else {
				tags[string(key)] = v.String()
			}
		})
	}

	var values [][]Value
	for _, r := range raw.GetArray("values") {
		cells := r.GetArray()
		row := make([]Value, 0, len(cells))
		for _, cell := range cells {
			v, err := decodeValue(cell)
			if err != nil {
				return nil, err
			}
			row = append(row, v)
		}
		values = append(values, row)
	}

	s, err := NewSeries(string(raw.GetStringBytes("name")), columns, values)
	if err != nil {
		return nil, err
	}
	s.Tags = tags
	return s, nil
}

func decodeValue(v *fastjson.Value) (Value, error) {
	switch v.Type() {
	case fastjson.TypeNull:
		return nil, nil
	case fastjson.TypeString:
		b, err := v.StringBytes()
		return string(b), err
	case fastjson.TypeTrue:
		return true, nil
	case fastjson.TypeFalse:
		return false, nil
	case fastjson.TypeNumber:
		lit := v.String()
		if !strings.ContainsAny(lit, ".eE") {
			if n, err := v.Int64(); err == nil {
				return n, nil
			}
		}
		return v.Float64()
	default:
		return v.String(), nil
	}
}

// Series is the set of rows returned for one measurement, or one measurement
// and tag set of a GROUP BY query.
type Series struct {
	Name string
	// Tags is the tag set of a GROUP BY series; nil otherwise.
	Tags    map[string]string
	Columns []string

	values [][]Value
	index  *columnIndex
}

// NewSeries builds a series. Every row must have one value per column.
func NewSeries(name string, columns []string, values [][]Value) (*Series, error) {
	for i, row := range values {
		if len(row) != len(columns) {
			return nil, errors.Errorf("influxdb: series %q row %d has %d values for %d columns",
				name, i, len(row), len(columns))
		}
	}
	return &Series{
		Name:    name,
		Columns: slices.Clone(columns),
		values:  values,
		index:   newColumnIndex(columns),
	}, nil
}

// Len returns the number of rows.
func (s *Series) Len() int {
	return len(s.values)
}

// Row builds the i-th row.
func (s *Series) Row(i int) (Row, error) {
	if i < 0 || i >= len(s.values) {
		return Row{}, errors.Errorf("influxdb: row %d out of range [0, %d)", i, len(s.values))
	}
	return newRow(s.index, s.values[i])
}

// Rows yields the typed rows of the series. Rows are built on demand, and the
// sequence can be iterated any number of times.
func (s *Series) Rows() iter.Seq2[Row, error] {
	return func(yield func(Row, error) bool) {
		for _, values := range s.values {
			row, err := newRow(s.index, values)
			if !yield(row, err) {
				return
			}
		}
	}
}

// RawValues returns the undecoded cells of the i-th row.
func (s *Series) RawValues(i int) []Value {
	return slices.Clone(s.values[i])
}

func (s *Series) continuedBy(next *Series) bool {
	return s.Name == next.Name &&
		maps.Equal(s.Tags, next.Tags) &&
		slices.Equal(s.Columns, next.Columns)
}
