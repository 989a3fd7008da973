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

package itcases

import (
	"context"
	"fmt"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/stretchr/testify/require"
	influxdb "github.com/tsclient/influxdb-go"
)

func TestMeasurementRoundTrip(t *testing.T) {
	c := NewClient(t)
	defer c.Close()

	ctx := context.Background()
	db := c.Database(RandomName(t))
	require.NoError(t, db.Create(ctx))
	defer func() {
		require.NoError(t, db.Drop(ctx))
	}()

	var points []*influxdb.DataPoint
	for i, host := range []string{"server01", "server02", "server01"} {
		p, err := influxdb.NewDataPoint("cpu",
			[]influxdb.Tag{{Key: "host", Value: host}},
			[]influxdb.Field{
				{Key: "usage", Value: 0.25 * float64(i+1)},
				{Key: "procs", Value: 100 + i},
				{Key: "up", Value: true},
				{Key: "state", Value: fmt.Sprintf("state %d", i)},
			},
			influxdb.Ticks(1480793211+int64(i)))
		require.NoError(t, err)
		points = append(points, p)
	}
	require.NoError(t, c.WriteMany(ctx, points, &influxdb.WriteParams{
		Database:  db.Name,
		Precision: influxdb.PrecisionSecond,
	}))

	m := db.Measurement("cpu")
	keys, err := m.FieldKeys(ctx)
	require.NoError(t, err)
	snaps.MatchSnapshot(t, keys)

	result, err := m.Select("usage", "procs", "up", "state", "host").OrderBy("time ASC").Execute(ctx)
	require.NoError(t, err)
	require.Equal(t, influxdb.ResultSeries, result.Kind())

	var rows [][]influxdb.Value
	for row, err := range result.Series().Rows() {
		require.NoError(t, err)
		rows = append(rows, row.Values())
	}
	snaps.MatchSnapshot(t, result.Series().Columns, rows)

	grouped, err := m.Select("max(usage)").GroupBy("host").Execute(ctx)
	require.NoError(t, err)
	require.Equal(t, influxdb.ResultSeriesList, grouped.Kind())
	require.Len(t, grouped.SeriesList(), 2)
}

func TestMultiStatementQuery(t *testing.T) {
	c := NewClient(t)
	defer c.Close()

	ctx := context.Background()
	db := c.Database(RandomName(t))
	require.NoError(t, db.Create(ctx))
	defer func() {
		require.NoError(t, db.Drop(ctx))
	}()

	p, err := influxdb.NewDataPoint("mem", nil, []influxdb.Field{{Key: "used", Value: 1024}}, influxdb.NoTimestamp)
	require.NoError(t, err)
	require.NoError(t, c.Write(ctx, p, &influxdb.WriteParams{Database: db.Name}))

	missing := influxdb.Measurement{Database: "itcases_missing_database", Measurement: "mem"}
	result, err := c.Query(ctx,
		fmt.Sprintf(`SELECT used FROM mem; SELECT used FROM %s; SHOW MEASUREMENTS`, missing.Identifier()),
		&influxdb.QueryParams{Database: db.Name})
	require.NoError(t, err)
	require.Equal(t, influxdb.ResultStatements, result.Kind())

	stmts := result.Statements()
	require.Len(t, stmts, 3)
	require.Equal(t, influxdb.ResultSeries, stmts[0].Kind())
	require.Equal(t, influxdb.ResultError, stmts[1].Kind())
	require.Equal(t, influxdb.ResultSeries, stmts[2].Kind())
	snaps.MatchSnapshot(t, stmts[1].Err().Error())
}
