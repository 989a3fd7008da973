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
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDecodeSingleSeries(t *testing.T) {
	r, err := DecodeResult([]byte(`{"results":[{"statement_id":0,"series":[
		{"name":"cpu","columns":["time","value","host"],"values":[
			["2016-12-03T19:26:51.053212Z",0.64,"a"],
			["2016-12-03T19:27:51Z",12,null]
		]}
	]}]}`))
	require.NoError(t, err)
	require.Equal(t, ResultSeries, r.Kind())

	s := r.Series()
	require.NotNil(t, s)
	require.Equal(t, "cpu", s.Name)
	require.Equal(t, []string{"time", "value", "host"}, s.Columns)
	require.Equal(t, 2, s.Len())
	require.Nil(t, r.Statements())

	row, err := s.Row(0)
	require.NoError(t, err)
	ts, ok := row.Time()
	require.True(t, ok)
	require.Equal(t, time.Date(2016, 12, 3, 19, 26, 51, 53212000, time.UTC), ts)
	v, err := row.Get("value")
	require.NoError(t, err)
	require.Equal(t, 0.64, v)

	row, err = s.Row(1)
	require.NoError(t, err)
	require.Equal(t, int64(12), row.At(1))
	require.Nil(t, row.At(2))

	_, err = s.Row(2)
	require.Error(t, err)
	require.Equal(t, []Value{"2016-12-03T19:27:51Z", int64(12), nil}, s.RawValues(1))
}

func TestDecodeEmptyStatement(t *testing.T) {
	r, err := DecodeResult([]byte(`{"results":[{"statement_id":0}]}`))
	require.NoError(t, err)
	require.Equal(t, ResultEmpty, r.Kind())
	require.Nil(t, r.Series())
	require.Empty(t, r.SeriesList())
}

func TestDecodeSeriesList(t *testing.T) {
	r, err := DecodeResult([]byte(`{"results":[{"statement_id":0,"series":[
		{"name":"cpu","tags":{"host":"a"},"columns":["time","mean"],"values":[["2016-12-03T00:00:00Z",1]]},
		{"name":"cpu","tags":{"host":"b"},"columns":["time","mean"],"values":[["2016-12-03T00:00:00Z",2]]}
	]}]}`))
	require.NoError(t, err)
	require.Equal(t, ResultSeriesList, r.Kind())
	require.Nil(t, r.Series())

	list := r.SeriesList()
	require.Len(t, list, 2)
	require.Equal(t, map[string]string{"host": "a"}, list[0].Tags)
	require.Equal(t, map[string]string{"host": "b"}, list[1].Tags)
}

func TestDecodeStatements(t *testing.T) {
	r, err := DecodeResult([]byte(`{"results":[
		{"statement_id":0,"series":[{"name":"a","columns":["v"],"values":[[1]]}]},
		{"statement_id":1,"error":"measurement not found"},
		{"statement_id":2}
	]}`))
	require.NoError(t, err)
	require.Equal(t, ResultStatements, r.Kind())
	require.Nil(t, r.Series())
	require.Nil(t, r.SeriesList())

	stmts := r.Statements()
	require.Len(t, stmts, 3)

	require.Equal(t, ResultSeries, stmts[0].Kind())
	require.Equal(t, "a", stmts[0].Series().Name)
	require.NoError(t, stmts[0].Err())

	require.Equal(t, ResultError, stmts[1].Kind())
	require.Equal(t, 1, stmts[1].StatementID())
	var serr *StatementError
	require.ErrorAs(t, stmts[1].Err(), &serr)
	require.Equal(t, "measurement not found", serr.Message)
	require.Nil(t, stmts[1].Series())

	require.Equal(t, ResultEmpty, stmts[2].Kind())
}

func TestDecodeTwoStatementsOfOneSeries(t *testing.T) {
	r, err := DecodeResult([]byte(`{"results":[
		{"statement_id":0,"series":[{"name":"a","columns":["time","v"],"values":[[1,1.5]]}]},
		{"statement_id":1,"series":[{"name":"b","columns":["time","v"],"values":[[2,2.5]]}]}
	]}`))
	require.NoError(t, err)
	require.Equal(t, ResultStatements, r.Kind())
	require.Nil(t, r.Series())
	require.Nil(t, r.SeriesList())

	stmts := r.Statements()
	require.Len(t, stmts, 2)
	for i, name := range []string{"a", "b"} {
		require.Equal(t, i, stmts[i].StatementID())
		require.Equal(t, ResultSeries, stmts[i].Kind())
		require.NoError(t, stmts[i].Err())
		require.Equal(t, name, stmts[i].Series().Name)
		require.Equal(t, 1, stmts[i].Series().Len())
	}
}

func TestDecodeSingleStatementError(t *testing.T) {
	_, err := DecodeResult([]byte(`{"results":[{"statement_id":0,"error":"database not found: db0"}]}`))
	var serr *StatementError
	require.ErrorAs(t, err, &serr)
	require.Equal(t, "database not found: db0", err.Error())
}

func TestDecodeTopLevelError(t *testing.T) {
	_, err := DecodeResult([]byte(`{"error":"error parsing query: found EOF"}`))
	var serr *ServerError
	require.ErrorAs(t, err, &serr)
	require.Equal(t, "error parsing query: found EOF", serr.Message)
}

func TestDecodeNoStatements(t *testing.T) {
	r, err := DecodeResult([]byte(`{"results":[]}`))
	require.NoError(t, err)
	require.Equal(t, ResultStatements, r.Kind())
	require.NotNil(t, r.Statements())
	require.Empty(t, r.Statements())
}

func TestDecodeMalformed(t *testing.T) {
	_, err := DecodeResult([]byte(`{"results":`))
	require.Error(t, err)

	_, err = DecodeResult([]byte(`{"foo":1}`))
	require.Error(t, err)

	_, err = DecodeResult([]byte(`{"results":[{"series":[{"name":"a","columns":["x","y"],"values":[[1]]}]}]}`))
	require.Error(t, err)
}

func TestDecodeChunked(t *testing.T) {
	body := `{"results":[{"statement_id":0,"series":[{"name":"cpu","columns":["time","v"],"values":[["2016-12-03T00:00:00Z",1]],"partial":true}],"partial":true}]}
{"results":[{"statement_id":0,"series":[{"name":"cpu","columns":["time","v"],"values":[["2016-12-03T00:00:01Z",2]]},{"name":"mem","columns":["time","v"],"values":[["2016-12-03T00:00:01Z",3]]}]}]}
{"results":[{"statement_id":1,"series":[{"name":"disk","columns":["v"],"values":[[4]]}]}]}
`
	r, err := DecodeResult([]byte(body))
	require.NoError(t, err)
	require.Equal(t, ResultStatements, r.Kind())

	stmts := r.Statements()
	require.Len(t, stmts, 2)
	list := stmts[0].SeriesList()
	require.Len(t, list, 2)
	require.Equal(t, "cpu", list[0].Name)
	require.Equal(t, 2, list[0].Len())
	require.Equal(t, "mem", list[1].Name)
	require.Equal(t, "disk", stmts[1].Series().Name)
}

func TestDecodeValues(t *testing.T) {
	r, err := DecodeResult([]byte(`{"results":[{"series":[{"name":"m","columns":["a","b","c","d","e","f"],
		"values":[[1,1.0,1e3,true,"s",[1,2]]]}]}]}`))
	require.NoError(t, err)
	require.Equal(t, []Value{int64(1), 1.0, 1000.0, true, "s", "[1,2]"}, r.Series().RawValues(0))
}

func TestSeriesRows(t *testing.T) {
	s, err := NewSeries("m", []string{"a"}, [][]Value{{int64(1)}, {int64(2)}, {int64(3)}})
	require.NoError(t, err)

	var got []Value
	for row, err := range s.Rows() {
		require.NoError(t, err)
		got = append(got, row.At(0))
		if len(got) == 2 {
			break
		}
	}
	require.Equal(t, []Value{int64(1), int64(2)}, got)

	// re-iterable
	n := 0
	for range s.Rows() {
		n++
	}
	require.Equal(t, 3, n)
}

func TestSeriesRowsBadTime(t *testing.T) {
	s, err := NewSeries("m", []string{"time"}, [][]Value{{"yesterday"}})
	require.NoError(t, err)
	for _, err := range s.Rows() {
		require.Error(t, err)
	}
}

func TestResultKindString(t *testing.T) {
	require.Equal(t, "series-list", ResultSeriesList.String())
	require.Equal(t, "ResultKind(42)", ResultKind(42).String())
}
