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
	"time"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/pkg/errors"
)

// ToArrowRecord converts the series into an Arrow record with one column per
// series column. The caller must Release the record.
//
// Column types are inferred from the values: time.Time becomes a nanosecond
// UTC timestamp, int64, float64 and bool map to their Arrow counterparts, and
// anything else becomes a string. A column mixing int64 and float64 is a
// float64 column. Nulls are preserved. A nil allocator means the default one.
func (s *Series) ToArrowRecord(mem memory.Allocator) (arrow.Record, error) {
	if mem == nil {
		mem = memory.DefaultAllocator
	}

	rows := make([][]Value, 0, len(s.values))
	for row, err := range s.Rows() {
		if err != nil {
			return nil, err
		}
		rows = append(rows, row.values)
	}

	fields := make([]arrow.Field, len(s.Columns))
	for i, name := range s.Columns {
		fields[i] = arrow.Field{Name: name, Type: inferArrowType(rows, i), Nullable: true}
	}
	md := arrow.NewMetadata([]string{"measurement"}, []string{s.Name})
	schema := arrow.NewSchema(fields, &md)

	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()
	for i := range fields {
		fb := b.Field(i)
		for _, row := range rows {
			if err := appendArrowValue(fb, row[i]); err != nil {
				return nil, errors.WithMessagef(err, "column %q", s.Columns[i])
			}
		}
	}
	return b.NewRecord(), nil
}

func inferArrowType(rows [][]Value, col int) arrow.DataType {
	var dt arrow.DataType
	for _, row := range rows {
		var next arrow.DataType
		switch row[col].(type) {
		case nil:
			continue
		case int64:
			next = arrow.PrimitiveTypes.Int64
		case float64:
			next = arrow.PrimitiveTypes.Float64
		case bool:
			next = arrow.FixedWidthTypes.Boolean
		case time.Time:
			next = arrow.FixedWidthTypes.Timestamp_ns
		default:
			return arrow.BinaryTypes.String
		}
		switch {
		case dt == nil || arrow.TypeEqual(dt, next):
			dt = next
		case isNumeric(dt) && isNumeric(next):
			dt = arrow.PrimitiveTypes.Float64
		default:
			return arrow.BinaryTypes.String
		}
	}
	if dt == nil {
		return arrow.BinaryTypes.String
	}
	return dt
}

func isNumeric(dt arrow.DataType) bool {
	return dt.ID() == arrow.INT64 || dt.ID() == arrow.FLOAT64
}

func appendArrowValue(b array.Builder, v Value) error {
	if v == nil {
		b.AppendNull()
		return nil
	}
	switch b := b.(type) {
	case *array.Int64Builder:
		b.Append(v.(int64))
	case *array.Float64Builder:
		switch n := v.(type) {
		case int64:
			b.Append(float64(n))
		case float64:
			b.Append(n)
		}
	case *array.BooleanBuilder:
		b.Append(v.(bool))
	case *array.TimestampBuilder:
		b.Append(arrow.Timestamp(v.(time.Time).UnixNano()))
	case *array.StringBuilder:
		if s, ok := v.(string); ok {
			b.Append(s)
		} else {
			b.Append(fmt.Sprint(v))
		}
	default:
		return errors.Errorf("unsupported builder %T", b)
	}
	return nil
}
