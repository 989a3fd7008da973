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
	"encoding/json"
	"math"
	"sort"
	"strings"
	"time"
)

// Precision is the time unit of an integer timestamp.
type Precision string

const (
	PrecisionNanosecond  Precision = "n"
	PrecisionMicrosecond Precision = "u"
	PrecisionMillisecond Precision = "ms"
	PrecisionSecond      Precision = "s"
	PrecisionMinute      Precision = "m"
	PrecisionHour        Precision = "h"
)

// Duration returns the length of one tick. The empty precision means nanoseconds.
func (p Precision) Duration() (time.Duration, error) {
	switch p {
	case "", PrecisionNanosecond, "ns":
		return time.Nanosecond, nil
	case PrecisionMicrosecond, "us":
		return time.Microsecond, nil
	case PrecisionMillisecond:
		return time.Millisecond, nil
	case PrecisionSecond:
		return time.Second, nil
	case PrecisionMinute:
		return time.Minute, nil
	case PrecisionHour:
		return time.Hour, nil
	default:
		return 0, validationErrorf("unknown precision %q", string(p))
	}
}

// Tag is an indexed dimension of a data point. Its value is always sent as a string.
type Tag struct {
	Key   string
	Value any
}

// Field is a typed value of a data point: a number, a boolean or a string.
type Field struct {
	Key   string
	Value any
}

type timestampKind uint8

const (
	timestampNone timestampKind = iota
	timestampTime
	timestampTicks
)

// Timestamp is the time of a data point: absent, an absolute instant, or
// integer ticks in the precision of the write.
type Timestamp struct {
	kind  timestampKind
	t     time.Time
	ticks int64
}

// NoTimestamp lets the server assign its own time.
var NoTimestamp = Timestamp{}

// At is an absolute timestamp, converted to ticks of the write precision when encoded.
func At(t time.Time) Timestamp {
	return Timestamp{kind: timestampTime, t: t}
}

// Ticks is an integer timestamp sent verbatim. The caller is responsible for
// it matching the write precision.
func Ticks(n int64) Timestamp {
	return Timestamp{kind: timestampTicks, ticks: n}
}

// IsZero reports whether the timestamp is absent.
func (ts Timestamp) IsZero() bool {
	return ts.kind == timestampNone
}

// Time returns the absolute instant, if the timestamp was built with At.
func (ts Timestamp) Time() (time.Time, bool) {
	return ts.t, ts.kind == timestampTime
}

// Ticks returns the integer value, if the timestamp was built with Ticks.
func (ts Timestamp) Ticks() (int64, bool) {
	return ts.ticks, ts.kind == timestampTicks
}

// DataPoint is a single record to be written. It is immutable once built.
type DataPoint struct {
	measurement string
	tags        []Tag
	fields      []Field
	timestamp   Timestamp
}

// NewDataPoint validates and copies the given record.
//
// It fails with a *ValidationError if the measurement is empty, there are no
// fields, a key is empty, or a field value is not a number, boolean or string.
// Line protocol has no escape for line breaks, so they are rejected everywhere
// except in string field values, which are quoted.
func NewDataPoint(measurement string, tags []Tag, fields []Field, ts Timestamp) (*DataPoint, error) {
	if measurement == "" {
		return nil, validationErrorf("measurement name is required")
	}
	if hasLineBreak(measurement) {
		return nil, validationErrorf("measurement name %q contains a line break", measurement)
	}
	if len(fields) == 0 {
		return nil, validationErrorf("at least one field is required")
	}
	for _, t := range tags {
		if t.Key == "" {
			return nil, validationErrorf("empty tag key in measurement %q", measurement)
		}
		if hasLineBreak(t.Key) {
			return nil, validationErrorf("tag key %q contains a line break", t.Key)
		}
		if hasLineBreak(tagValueString(t.Value)) {
			return nil, validationErrorf("tag %q: value contains a line break", t.Key)
		}
	}
	for _, f := range fields {
		if f.Key == "" {
			return nil, validationErrorf("empty field key in measurement %q", measurement)
		}
		if hasLineBreak(f.Key) {
			return nil, validationErrorf("field key %q contains a line break", f.Key)
		}
		if err := checkFieldValue(f); err != nil {
			return nil, err
		}
	}

	return &DataPoint{
		measurement: measurement,
		tags:        append([]Tag(nil), tags...),
		fields:      append([]Field(nil), fields...),
		timestamp:   ts,
	}, nil
}

// NewDataPointFromMaps is NewDataPoint for unordered maps; keys are sorted.
func NewDataPointFromMaps(measurement string, tags map[string]any, fields map[string]any, ts Timestamp) (*DataPoint, error) {
	tagList := make([]Tag, 0, len(tags))
	for _, k := range sortedKeys(tags) {
		tagList = append(tagList, Tag{Key: k, Value: tags[k]})
	}
	fieldList := make([]Field, 0, len(fields))
	for _, k := range sortedKeys(fields) {
		fieldList = append(fieldList, Field{Key: k, Value: fields[k]})
	}
	return NewDataPoint(measurement, tagList, fieldList, ts)
}

func hasLineBreak(s string) bool {
	return strings.ContainsAny(s, "\r\n")
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func checkFieldValue(f Field) error {
	switch v := f.Value.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return validationErrorf("field %q: %v is not representable", f.Key, v)
		}
	case float32:
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return validationErrorf("field %q: %v is not representable", f.Key, v)
		}
	case json.Number:
		if _, err := v.Float64(); err != nil {
			return validationErrorf("field %q: %q is not a number", f.Key, string(v))
		}
	case bool, string, []byte,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
	default:
		return validationErrorf("field %q: unsupported value type %T", f.Key, f.Value)
	}
	return nil
}

// Measurement returns the measurement name.
func (p *DataPoint) Measurement() string {
	return p.measurement
}

// Tags returns a copy of the tags in their original order.
func (p *DataPoint) Tags() []Tag {
	return append([]Tag(nil), p.tags...)
}

// Fields returns a copy of the fields in their original order.
func (p *DataPoint) Fields() []Field {
	return append([]Field(nil), p.fields...)
}

// Timestamp returns the timestamp of the point.
func (p *DataPoint) Timestamp() Timestamp {
	return p.timestamp
}
