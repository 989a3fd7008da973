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
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

const (
	// DefaultEndpoint is used when a Config lists no endpoints.
	DefaultEndpoint = "http://localhost:8086"
	// DefaultTimeout bounds every single HTTP attempt.
	DefaultTimeout = 60 * time.Second
)

// Config defines the configuration for the client.
type Config struct {
	// Endpoints are the base URLs of the InfluxDB servers, tried in order.
	// Several URLs are given for an InfluxEnterprise cluster.
	Endpoints []string `json:"endpoints" toml:"endpoints"`

	// Database is the default database for writes and queries.
	Database string `json:"database" toml:"database"`
	// Username and Password are sent with every request for per-request authentication.
	Username string `json:"username" toml:"username"`
	Password string `json:"password" toml:"password"`
	// Token is sent as "Authorization: Token <token>".
	Token string `json:"token" toml:"token"`
	// RetentionPolicy is the default retention policy for writes and queries.
	RetentionPolicy string `json:"retention_policy" toml:"retention-policy"`
	// Consistency is the default write consistency (InfluxEnterprise):
	// one of "any", "one", "quorum" or "all".
	Consistency string `json:"consistency" toml:"consistency"`
	// Precision is the default timestamp precision for writes.
	Precision Precision `json:"precision" toml:"precision"`
	// Epoch is the default timestamp precision for query results.
	Epoch Precision `json:"epoch" toml:"epoch"`
	// Chunked asks the server to stream query results in chunks.
	Chunked bool `json:"chunked" toml:"chunked"`
	// ChunkSize is the number of rows per chunk when Chunked is set.
	ChunkSize int `json:"chunk_size" toml:"chunk-size"`

	// Timeout bounds each HTTP attempt against a single host.
	Timeout Duration `json:"timeout" toml:"timeout"`
	// Gzip compresses write bodies.
	Gzip bool `json:"gzip" toml:"gzip"`
}

// Duration is a time.Duration that decodes from strings like "10s".
type Duration time.Duration

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText renders the duration in time.Duration notation.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// LoadConfig reads a TOML configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	return ParseConfig(data)
}

// ParseConfig decodes a TOML configuration document.
func ParseConfig(data []byte) (*Config, error) {
	var config Config
	if _, err := toml.Decode(string(data), &config); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	return &config, nil
}

func (c *Config) endpoints() ([]string, error) {
	if len(c.Endpoints) == 0 {
		return []string{DefaultEndpoint}, nil
	}
	hosts := make([]string, 0, len(c.Endpoints))
	for _, e := range c.Endpoints {
		e = strings.TrimRight(strings.TrimSpace(e), "/")
		if e == "" {
			return nil, validationErrorf("empty endpoint")
		}
		hosts = append(hosts, e)
	}
	return hosts, nil
}

func (c *Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return time.Duration(c.Timeout)
}

func (c *Config) writeParams() WriteParams {
	return WriteParams{
		Database:        c.Database,
		Username:        c.Username,
		Password:        c.Password,
		RetentionPolicy: c.RetentionPolicy,
		Consistency:     c.Consistency,
		Precision:       c.Precision,
	}
}

func (c *Config) queryParams() QueryParams {
	p := QueryParams{
		Database:        c.Database,
		Username:        c.Username,
		Password:        c.Password,
		RetentionPolicy: c.RetentionPolicy,
		Epoch:           c.Epoch,
		ChunkSize:       c.ChunkSize,
	}
	if c.Chunked {
		p.Chunked = Bool(true)
	}
	return p
}
