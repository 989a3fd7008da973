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
	"net/url"
	"strconv"
)

// WriteParams are the HTTP query parameters of a /write request.
//
// Empty values are unset: they are omitted from the request and do not
// override defaults when merged.
type WriteParams struct {
	Database        string
	Username        string
	Password        string
	RetentionPolicy string
	// Consistency is one of "any", "one", "quorum" or "all".
	Consistency string
	// Precision is the unit of integer timestamps and the unit time.Time
	// timestamps are converted to.
	Precision Precision
}

// Merge returns a copy of p where every set key of override replaces p's.
func (p WriteParams) Merge(override *WriteParams) WriteParams {
	if override == nil {
		return p
	}
	mergeString(&p.Database, override.Database)
	mergeString(&p.Username, override.Username)
	mergeString(&p.Password, override.Password)
	mergeString(&p.RetentionPolicy, override.RetentionPolicy)
	mergeString(&p.Consistency, override.Consistency)
	if override.Precision != "" {
		p.Precision = override.Precision
	}
	return p
}

func (p WriteParams) values() url.Values {
	v := url.Values{}
	setString(v, "db", p.Database)
	setString(v, "u", p.Username)
	setString(v, "p", p.Password)
	setString(v, "rp", p.RetentionPolicy)
	setString(v, "consistency", p.Consistency)
	setString(v, "precision", string(p.Precision))
	return v
}

// QueryParams are the HTTP query parameters of a /query request.
//
// Empty values and nil pointers are unset.
type QueryParams struct {
	Database        string
	Username        string
	Password        string
	RetentionPolicy string
	// Epoch makes the server return integer timestamps in the given precision
	// instead of RFC3339 strings.
	Epoch   Precision
	Chunked *bool
	// ChunkSize is the number of rows per chunk; zero leaves the server default.
	ChunkSize int
}

// Merge returns a copy of p where every set key of override replaces p's.
func (p QueryParams) Merge(override *QueryParams) QueryParams {
	if override == nil {
		return p
	}
	mergeString(&p.Database, override.Database)
	mergeString(&p.Username, override.Username)
	mergeString(&p.Password, override.Password)
	mergeString(&p.RetentionPolicy, override.RetentionPolicy)
	if override.Epoch != "" {
		p.Epoch = override.Epoch
	}
	if override.Chunked != nil {
		p.Chunked = Bool(*override.Chunked)
	}
	if override.ChunkSize > 0 {
		p.ChunkSize = override.ChunkSize
	}
	return p
}

func (p QueryParams) values() url.Values {
	v := url.Values{}
	setString(v, "db", p.Database)
	setString(v, "u", p.Username)
	setString(v, "p", p.Password)
	setString(v, "rp", p.RetentionPolicy)
	setString(v, "epoch", string(p.Epoch))
	if p.Chunked != nil {
		v.Set("chunked", strconv.FormatBool(*p.Chunked))
	}
	if p.ChunkSize > 0 {
		v.Set("chunk_size", strconv.Itoa(p.ChunkSize))
	}
	return v
}

// Bool returns a pointer to b, for optional parameters.
func Bool(b bool) *bool {
	return &b
}

func mergeString(dst *string, override string) {
	if override != "" {
		*dst = override
	}
}

func setString(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}
