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
	"bytes"
	"context"
	"fmt"
	"net/http"
)

type Database struct {
	c *Client

	// Name is the name of the database.
	Name string
}

func (c *Client) Database(name string) *Database {
	return &Database{
		c:    c,
		Name: name,
	}
}

func (d *Database) Create(ctx context.Context) error {
	return d.exec(ctx, fmt.Sprintf(`CREATE DATABASE %s`, quoteIdent(d.Name)))
}

func (d *Database) Drop(ctx context.Context) error {
	return d.exec(ctx, fmt.Sprintf(`DROP DATABASE %s`, quoteIdent(d.Name)))
}

func (d *Database) exec(ctx context.Context, stmt string) error {
	s := d.c.Statement(stmt)
	s.Method = http.MethodPost
	_, err := s.Execute(ctx)
	return err
}

// Measurement returns a handle on a measurement of the database.
func (d *Database) Measurement(name string) *Measurement {
	return &Measurement{
		c:           d.c,
		Database:    d.Name,
		Measurement: name,
	}
}

type Measurement struct {
	c *Client

	// Database is the name of the database.
	//
	// This is optional and may be empty, in which case the client default applies.
	Database string
	// RetentionPolicy is the name of the retention policy.
	//
	// This is optional and may be empty. It is only rendered together with Database.
	RetentionPolicy string
	// Measurement is the name of the measurement.
	Measurement string
}

// Identifier renders the fully qualified, quoted measurement name.
func (m *Measurement) Identifier() string {
	var b bytes.Buffer
	if m.Database != "" {
		b.WriteString(quoteIdent(m.Database))
		b.WriteByte('.')
		if m.RetentionPolicy != "" {
			b.WriteString(quoteIdent(m.RetentionPolicy))
		}
		b.WriteByte('.')
	}
	b.WriteString(quoteIdent(m.Measurement))
	return b.String()
}

func (m *Measurement) params() *QueryParams {
	return &QueryParams{Database: m.Database, RetentionPolicy: m.RetentionPolicy}
}

func (m *Measurement) Drop(ctx context.Context) error {
	s := m.c.Statement(fmt.Sprintf(`DROP MEASUREMENT %s`, quoteIdent(m.Measurement)))
	s.Method = http.MethodPost
	s.Params = m.params()
	_, err := s.Execute(ctx)
	return err
}

// FieldKey describes a field of a measurement.
type FieldKey struct {
	Name string
	// Type is one of "float", "integer", "string" or "boolean".
	Type string
}

// FieldKeys lists the fields of the measurement and their types.
func (m *Measurement) FieldKeys(ctx context.Context) ([]FieldKey, error) {
	s := m.c.Statement(fmt.Sprintf(`SHOW FIELD KEYS FROM %s`, quoteIdent(m.Measurement)))
	s.Params = m.params()
	r, err := s.Execute(ctx)
	if err != nil {
		return nil, err
	}

	series := r.Series()
	if series == nil {
		return nil, nil
	}
	var keys []FieldKey
	for row, err := range series.Rows() {
		if err != nil {
			return nil, err
		}
		name, err := row.Get("fieldKey")
		if err != nil {
			return nil, err
		}
		typ, err := row.Get("fieldType")
		if err != nil {
			return nil, err
		}
		n, ok := name.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", name)
		}
		t, ok := typ.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", typ)
		}
		keys = append(keys, FieldKey{Name: n, Type: t})
	}
	return keys, nil
}

// Select starts a query over this measurement.
func (m *Measurement) Select(keys ...string) SelectQuery {
	return m.c.From(m.Measurement).Select(keys...).Params(*m.params())
}

// quoteIdent double-quotes an identifier. InfluxQL only knows the escapes
// \n, \\ and \" inside identifiers; tabs and carriage returns are valid as is.
func quoteIdent(s string) string {
	var b bytes.Buffer
	b.WriteByte('"')
	for _, c := range s {
		switch c {
		case '\n':
			b.WriteString(`\n`)
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		default:
			b.WriteRune(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}
