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

	"github.com/influxdata/influxql"
	"github.com/stretchr/testify/require"
)

func TestSelectQueryString(t *testing.T) {
	q := NewSelectQuery("m1", "m2").
		Select("key1", "key2").
		Into("m3").
		Where("m1 > 6.54").
		GroupBy("m1", "m2").
		OrderBy("m2 DESC", "m1 ASC")
	require.Equal(t,
		`SELECT key1,key2 INTO "m3" FROM "m1","m2" WHERE m1 > 6.54 GROUP BY m1,m2 ORDER BY m2 DESC,m1 ASC`,
		q.String())
}

func TestSelectQueryDefaults(t *testing.T) {
	require.Equal(t, `SELECT * FROM "cpu"`, NewSelectQuery("cpu").String())
	require.Equal(t, `SELECT * FROM "my \"quoted\" m"`, NewSelectQuery(`my "quoted" m`).String())
}

func TestSelectQueryAugmentAndReset(t *testing.T) {
	q := NewSelectQuery("m").Where("a > 1").Where("b < 2")
	require.Equal(t, `SELECT * FROM "m" WHERE a > 1 AND b < 2`, q.String())

	require.Equal(t, `SELECT * FROM "m"`, q.Where().String())
	require.Equal(t, `SELECT * FROM "m","n"`, q.Where().From("n").String())
	require.Equal(t, `SELECT * FROM "m" WHERE a > 1 AND b < 2`, q.Into("x").Into("").String())
	require.Equal(t, `SELECT a,b FROM "m"`, q.Where().Select("a").Select("b").String())
	require.Equal(t, `SELECT * FROM "m"`, q.Where().Select("a").Select().String())
}

func TestSelectQueryAlwaysParses(t *testing.T) {
	q := NewSelectQuery("m").Select("a").Where("a > 1").GroupBy("b").OrderBy("time DESC")
	for _, derived := range []SelectQuery{
		q,
		q.Select(),
		q.Where(),
		q.GroupBy(),
		q.OrderBy(),
		q.Into(""),
		q.Select().Where().GroupBy().OrderBy(),
		q.From("n").Into("o"),
	} {
		_, err := influxql.ParseStatement(derived.String())
		require.NoError(t, err, derived.String())
	}
}

func TestSelectQueryAssociative(t *testing.T) {
	once := NewSelectQuery("m").Select("a", "b").GroupBy("x", "y").OrderBy("time DESC", "v")
	twice := NewSelectQuery("m").Select("a").Select("b").GroupBy("x").GroupBy("y").OrderBy("time DESC").OrderBy("v")
	require.Equal(t, once.String(), twice.String())

	require.Equal(t, NewSelectQuery("a", "b", "c").String(), NewSelectQuery("a").From("b").From("c").String())
}

func TestSelectQueryDoesNotAlias(t *testing.T) {
	base := NewSelectQuery("m").Where("a = 1")
	// leave spare capacity in the shared prefix
	base = base.Where("b = 2").Where().Where("a = 1")

	left := base.Where("left = 1")
	right := base.Where("right = 1")
	require.Equal(t, `SELECT * FROM "m" WHERE a = 1 AND left = 1`, left.String())
	require.Equal(t, `SELECT * FROM "m" WHERE a = 1 AND right = 1`, right.String())
	require.Equal(t, `SELECT * FROM "m" WHERE a = 1`, base.String())

	require.Equal(t, `SELECT * FROM "m","x"`, base.Where().From("x").String())
	require.Equal(t, `SELECT * FROM "m","y"`, base.Where().From("y").String())
}

func TestSelectQueryWhereEq(t *testing.T) {
	q := NewSelectQuery("m").
		WhereEq("host", "server's").
		WhereEq("count", 7).
		WhereEq("ratio", 0.5).
		WhereEq("ok", true).
		WhereEq("time", time.Date(2016, 12, 3, 0, 0, 0, 0, time.UTC)).
		WhereEq("my key", uint8(3))
	require.Equal(t,
		`SELECT * FROM "m" WHERE "host" = 'server\'s' AND "count" = 7 AND "ratio" = 0.5 AND "ok" = true`+
			` AND "time" = '2016-12-03T00:00:00Z' AND "my key" = 3`,
		q.String())
}

func TestSelectQueryParses(t *testing.T) {
	for _, q := range []SelectQuery{
		NewSelectQuery("cpu"),
		NewSelectQuery("cpu", "mem").Select("mean(value)").Where("time > now() - 1h").GroupBy("time(1m)", "host"),
		NewSelectQuery("cpu").Select("value").Into("cpu_copy").WhereEq("host", "a").OrderBy("time DESC"),
		NewSelectQuery("cpu").Select("value").WhereEq("region", `us "west"`).WhereEq("value", 1.5),
	} {
		stmt, err := influxql.ParseStatement(q.String())
		require.NoError(t, err, q.String())
		require.IsType(t, &influxql.SelectStatement{}, stmt)
	}
}

func TestSelectQueryQuotesIdentifiers(t *testing.T) {
	for _, name := range []string{
		"plain",
		"tab\there",
		"carriage\rreturn",
		`double "quoted"`,
		`back\slash`,
		"line\nbreak",
		"single 'quoted'",
	} {
		q := NewSelectQuery(name).Into(name).WhereEq(name, 1)
		stmt, err := influxql.ParseStatement(q.String())
		require.NoError(t, err, q.String())

		sel, ok := stmt.(*influxql.SelectStatement)
		require.True(t, ok)
		require.Len(t, sel.Sources, 1)
		require.Equal(t, name, sel.Sources[0].(*influxql.Measurement).Name)
		require.Equal(t, name, sel.Target.Measurement.Name)

		cond, ok := sel.Condition.(*influxql.BinaryExpr)
		require.True(t, ok)
		require.Equal(t, name, cond.LHS.(*influxql.VarRef).Val)
	}
}

func TestSelectQueryStatement(t *testing.T) {
	_, err := NewSelectQuery("m").Statement()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = SelectQuery{}.Statement()
	require.ErrorAs(t, err, &verr)

	c, err := NewClient(nil)
	require.NoError(t, err)
	defer c.Close()

	_, err = SelectQuery{c: c}.Select("a").Statement()
	require.ErrorAs(t, err, &verr)

	_, err = c.From("").Select("a").Statement()
	require.ErrorAs(t, err, &verr)

	s, err := c.From("m").Select("a").Statement()
	require.NoError(t, err)
	require.Equal(t, "GET", s.Method)
	require.Equal(t, `SELECT a FROM "m"`, s.Text())

	s, err = c.From("m").Select("a").Into("n").Params(QueryParams{Database: "db"}).Statement()
	require.NoError(t, err)
	require.Equal(t, "POST", s.Method)
	require.Equal(t, "db", s.Params.Database)
}

func TestDetectMethod(t *testing.T) {
	for stmt, want := range map[string]string{
		"SELECT * FROM m":           "GET",
		"  select * from m":         "GET",
		"SHOW DATABASES":            "GET",
		"\nshow measurements":       "GET",
		"CREATE DATABASE db":        "POST",
		"DROP MEASUREMENT m":        "POST",
		"SELECTED":                  "POST",
		"SELECT * INTO n FROM m":    "GET",
		"ALTER RETENTION POLICY rp": "POST",
	} {
		require.Equal(t, want, detectMethod(stmt), stmt)
	}
}
