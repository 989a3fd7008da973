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
	"net/http"
	"strings"
)

// readOnlyPrefixes are the statement keywords that are sent with GET.
var readOnlyPrefixes = []string{"SELECT ", "SHOW "}

// Statement is a raw InfluxQL query to be executed on the server.
type Statement struct {
	c *Client

	stmt string

	// Method is the HTTP verb, GET or POST.
	//
	// When empty, statements starting with SELECT or SHOW are sent with GET and
	// everything else with POST. The prefix cannot tell a SELECT ... INTO, which
	// also writes, from a plain SELECT: set Method to POST for those.
	Method string
	// Params override the client defaults for this statement.
	Params *QueryParams
}

// Statement creates a new statement with the given InfluxQL text.
// Several statements may be separated by semicolons.
func (c *Client) Statement(stmt string) *Statement {
	return &Statement{
		c:    c,
		stmt: stmt,
	}
}

// Text returns the query text.
func (s *Statement) Text() string {
	return s.stmt
}

// Execute sends the statement and decodes the result.
func (s *Statement) Execute(ctx context.Context) (*Result, error) {
	return s.c.query(ctx, s.method(), s.stmt, s.c.queryParams.Merge(s.Params))
}

func (s *Statement) method() string {
	if s.Method != "" {
		return strings.ToUpper(s.Method)
	}
	return detectMethod(s.stmt)
}

func detectMethod(stmt string) string {
	text := strings.ToUpper(strings.TrimLeft(stmt, " \t\r\n"))
	for _, prefix := range readOnlyPrefixes {
		if strings.HasPrefix(text, prefix) {
			return http.MethodGet
		}
	}
	return http.MethodPost
}
