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
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/influxdata/influxdb/models"
	"github.com/influxdata/influxdb/pkg/escape"
)

// Line encodes the point as a single line of line protocol.
func (p *DataPoint) Line(precision Precision) (string, error) {
	b, err := p.AppendLine(nil, precision)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// AppendLine appends the line protocol form of the point to dst:
//
//	measurement[,tag=value...] field=value[,field=value...][ timestamp]
//
// Absolute timestamps are converted to ticks of precision.
func (p *DataPoint) AppendLine(dst []byte, precision Precision) ([]byte, error) {
	tick, err := precision.Duration()
	if err != nil {
		return nil, err
	}

	dst = append(dst, models.EscapeMeasurement([]byte(p.measurement))...)

	for _, t := range p.tags {
		v := tagValueString(t.Value)
		if v == "" {
			// empty tag values are rejected by the server
			continue
		}
		dst = append(dst, ',')
		dst = append(dst, escape.String(t.Key)...)
		dst = append(dst, '=')
		dst = append(dst, escape.String(v)...)
	}

	dst = append(dst, ' ')
	for i, f := range p.fields {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = append(dst, escape.String(f.Key)...)
		dst = append(dst, '=')
		dst = appendFieldValue(dst, f.Value)
	}

	switch p.timestamp.kind {
	case timestampTime:
		ticks, err := toTicks(p.timestamp.t, tick)
		if err != nil {
			return nil, err
		}
		dst = append(dst, ' ')
		dst = strconv.AppendInt(dst, ticks, 10)
	case timestampTicks:
		dst = append(dst, ' ')
		dst = strconv.AppendInt(dst, p.timestamp.ticks, 10)
	}
	return dst, nil
}

// EncodePoints renders the points as a newline separated write body.
func EncodePoints(points []*DataPoint, precision Precision) ([]byte, error) {
	var body []byte
	for i, p := range points {
		if i > 0 {
			body = append(body, '\n')
		}
		var err error
		body, err = p.AppendLine(body, precision)
		if err != nil {
			return nil, err
		}
	}
	return body, nil
}

var (
	minNanoTime = time.Unix(0, math.MinInt64)
	maxNanoTime = time.Unix(0, math.MaxInt64)
)

// toTicks converts t without going through UnixNano for coarse precisions, so
// instants outside the nanosecond range still encode in seconds and above.
func toTicks(t time.Time, tick time.Duration) (int64, error) {
	switch tick {
	case time.Nanosecond:
		if t.Before(minNanoTime) || t.After(maxNanoTime) {
			return 0, validationErrorf("time %s is out of range for nanosecond precision", t.Format(time.RFC3339))
		}
		return t.UnixNano(), nil
	case time.Microsecond:
		return t.UnixMicro(), nil
	case time.Millisecond:
		return t.UnixMilli(), nil
	default:
		return t.Unix() / int64(tick/time.Second), nil
	}
}

func appendFieldValue(dst []byte, value any) []byte {
	switch v := value.(type) {
	case bool:
		return strconv.AppendBool(dst, v)
	case float64:
		return strconv.AppendFloat(dst, v, 'f', -1, 64)
	case float32:
		return strconv.AppendFloat(dst, float64(v), 'f', -1, 32)
	case json.Number:
		return append(dst, v...)
	case int:
		return append(strconv.AppendInt(dst, int64(v), 10), 'i')
	case int8:
		return append(strconv.AppendInt(dst, int64(v), 10), 'i')
	case int16:
		return append(strconv.AppendInt(dst, int64(v), 10), 'i')
	case int32:
		return append(strconv.AppendInt(dst, int64(v), 10), 'i')
	case int64:
		return append(strconv.AppendInt(dst, v, 10), 'i')
	case uint:
		return append(strconv.AppendUint(dst, uint64(v), 10), 'i')
	case uint8:
		return append(strconv.AppendUint(dst, uint64(v), 10), 'i')
	case uint16:
		return append(strconv.AppendUint(dst, uint64(v), 10), 'i')
	case uint32:
		return append(strconv.AppendUint(dst, uint64(v), 10), 'i')
	case uint64:
		return append(strconv.AppendUint(dst, v, 10), 'i')
	case []byte:
		return appendQuoted(dst, string(v))
	case string:
		return appendQuoted(dst, v)
	default:
		return appendQuoted(dst, fmt.Sprint(v))
	}
}

func appendQuoted(dst []byte, s string) []byte {
	dst = append(dst, '"')
	dst = append(dst, models.EscapeStringField(s)...)
	return append(dst, '"')
}

func tagValueString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case fmt.Stringer:
		return v.String()
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
