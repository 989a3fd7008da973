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
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/influxdata/influxql"
)

// SelectQuery builds a SELECT statement.
//
// SelectQuery is a value: every method returns a new query and leaves the
// receiver untouched, so a query can be shared, cached and extended freely.
// A query always selects from at least one measurement; start one with
// NewSelectQuery or Client.From. The zero SelectQuery has no FROM clause and
// cannot be executed.
type SelectQuery struct {
	c *Client

	keys         []string
	measurements []string
	into         string
	where        []string
	groupBy      []string
	orderBy      []string
	params       QueryParams
}

// NewSelectQuery returns a query over the given measurements that is not
// bound to a client. It can be rendered with String but not executed.
func NewSelectQuery(measurement string, more ...string) SelectQuery {
	return SelectQuery{}.From(measurement, more...)
}

// From starts a query bound to the client.
func (c *Client) From(measurement string, more ...string) SelectQuery {
	return SelectQuery{c: c}.From(measurement, more...)
}

// Select appends keys to the SELECT clause; with no keys it resets the clause.
// An empty clause renders as "*".
func (q SelectQuery) Select(keys ...string) SelectQuery {
	q.keys = extend(q.keys, keys)
	return q
}

// From appends measurements to the FROM clause. The clause cannot be reset.
func (q SelectQuery) From(measurement string, more ...string) SelectQuery {
	q.measurements = extend(q.measurements, append([]string{measurement}, more...))
	return q
}

// Into sets or replaces the INTO target; the empty string removes it.
func (q SelectQuery) Into(measurement string) SelectQuery {
	q.into = measurement
	return q
}

// Where appends conditions joined with AND; with no arguments it resets the clause.
// Conditions are raw InfluxQL expressions.
func (q SelectQuery) Where(conditions ...string) SelectQuery {
	q.where = extend(q.where, conditions)
	return q
}

// WhereEq appends the condition "key = value", quoting the key as an
// identifier and rendering the value as an InfluxQL literal of its type.
func (q SelectQuery) WhereEq(key string, value any) SelectQuery {
	return q.Where(quoteIdent(key) + " = " + literal(value))
}

// GroupBy appends GROUP BY expressions; with no arguments it resets the clause.
func (q SelectQuery) GroupBy(expressions ...string) SelectQuery {
	q.groupBy = extend(q.groupBy, expressions)
	return q
}

// OrderBy appends ORDER BY expressions; with no arguments it resets the clause.
func (q SelectQuery) OrderBy(expressions ...string) SelectQuery {
	q.orderBy = extend(q.orderBy, expressions)
	return q
}

// Params sets or replaces the HTTP query parameters sent with the query.
func (q SelectQuery) Params(params QueryParams) SelectQuery {
	q.params = params
	return q
}

// String renders the statement.
func (q SelectQuery) String() string {
	var b strings.Builder
	b.WriteString("SELECT ")
	if len(q.keys) == 0 {
		b.WriteByte('*')
	} else {
		b.WriteString(strings.Join(q.keys, ","))
	}

	if q.into != "" {
		b.WriteString(" INTO ")
		b.WriteString(quoteIdent(q.into))
	}

	b.WriteString(" FROM ")
	for i, m := range q.measurements {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(quoteIdent(m))
	}

	if len(q.where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(q.where, " AND "))
	}
	if len(q.groupBy) > 0 {
		b.WriteString(" GROUP BY ")
		b.WriteString(strings.Join(q.groupBy, ","))
	}
	if len(q.orderBy) > 0 {
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(q.orderBy, ","))
	}
	return b.String()
}

// Statement converts the query into a Statement. A query with an INTO clause
// writes, so it is sent with POST; otherwise GET.
func (q SelectQuery) Statement() (*Statement, error) {
	if q.c == nil {
		return nil, validationErrorf("query is not bound to a client")
	}
	if len(q.measurements) == 0 {
		return nil, validationErrorf("query has no measurement to select from")
	}
	for _, m := range q.measurements {
		if m == "" {
			return nil, validationErrorf("empty measurement name")
		}
	}
	s := q.c.Statement(q.String())
	s.Method = http.MethodGet
	if q.into != "" {
		s.Method = http.MethodPost
	}
	params := q.params
	s.Params = &params
	return s, nil
}

// Execute runs the query on the bound client.
func (q SelectQuery) Execute(ctx context.Context) (*Result, error) {
	s, err := q.Statement()
	if err != nil {
		return nil, err
	}
	return s.Execute(ctx)
}

// extend returns base followed by more in a fresh slice, or nil when more is
// empty. The fresh slice keeps derived queries from sharing backing arrays.
func extend(base, more []string) []string {
	if len(more) == 0 {
		return nil
	}
	out := make([]string, 0, len(base)+len(more))
	out = append(out, base...)
	return append(out, more...)
}

// literal renders a value the way InfluxQL compares it against fields and tags.
func literal(value any) string {
	switch v := value.(type) {
	case string:
		return influxql.QuoteString(v)
	case []byte:
		return influxql.QuoteString(string(v))
	case time.Time:
		return influxql.QuoteString(v.UTC().Format(time.RFC3339Nano))
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case fmt.Stringer:
		return influxql.QuoteString(v.String())
	default:
		return influxql.QuoteString(fmt.Sprint(v))
	}
}
