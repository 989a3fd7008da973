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
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Client talks to one InfluxDB server or a cluster of them.
//
// Client is safe for concurrent use. Every request is tried against the
// configured endpoints in order; the first endpoint that answers is moved to
// the front so it is tried first next time.
type Client struct {
	config *Config

	http     HTTPClient
	ownsHTTP bool
	router   *hostRouter
	logger   *zap.Logger

	writeParams WriteParams
	queryParams QueryParams

	closed atomic.Bool
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient injects the transport. The client does not close it.
func WithHTTPClient(h HTTPClient) Option {
	return func(c *Client) {
		c.http = h
		c.ownsHTTP = false
	}
}

// WithLogger sets the logger. Failed hosts are logged at error level.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new client.
func NewClient(config *Config, opts ...Option) (*Client, error) {
	if config == nil {
		config = &Config{}
	}
	hosts, err := config.endpoints()
	if err != nil {
		return nil, err
	}

	c := &Client{
		config:      config,
		logger:      zap.NewNop(),
		writeParams: config.writeParams(),
		queryParams: config.queryParams(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = NewHTTPClient()
		c.ownsHTTP = true
	}
	c.router = newHostRouter(hosts, c.http, config.timeout(), c.logger)
	return c, nil
}

// Close invalidates the client and releases the transport if the client created it.
func (c *Client) Close() {
	if c.closed.Swap(true) {
		return
	}
	if c.ownsHTTP {
		c.http.Close()
	}
}

func (c *Client) checkOpen() error {
	if c.closed.Load() {
		return ErrClientClosed
	}
	return nil
}

// Hosts returns the endpoints in the order the next request will try them.
func (c *Client) Hosts() []string {
	return c.router.Hosts()
}

// Collectors returns the Prometheus collectors of this client's host routing.
// They are not registered anywhere; register them on a registry of your choice.
func (c *Client) Collectors() []prometheus.Collector {
	return c.router.metrics.collectors()
}

// Write writes a single data point. Non-empty fields of params override the
// client defaults.
func (c *Client) Write(ctx context.Context, point *DataPoint, params *WriteParams) error {
	return c.WriteMany(ctx, []*DataPoint{point}, params)
}

// WriteMany writes the data points in a single request.
func (c *Client) WriteMany(ctx context.Context, points []*DataPoint, params *WriteParams) error {
	return c.write(ctx, points, c.writeParams.Merge(params))
}

// Query sends a raw InfluxQL query. The HTTP verb is detected from the
// statement; use Statement to set it explicitly, e.g. for SELECT ... INTO.
func (c *Client) Query(ctx context.Context, query string, params *QueryParams) (*Result, error) {
	s := c.Statement(query)
	s.Params = params
	return s.Execute(ctx)
}

// Ping checks connectivity and returns the server version.
func (c *Client) Ping(ctx context.Context) (string, error) {
	return c.ping(ctx)
}

func (c *Client) header() http.Header {
	h := http.Header{}
	if c.config.Token != "" {
		h.Set("Authorization", "Token "+c.config.Token)
	}
	return h
}
