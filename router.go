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
	"io"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-Id"

// routedRequest is one logical request, replayed against each host in turn.
type routedRequest struct {
	method string
	path   string
	params url.Values
	header http.Header
	body   []byte
}

// hostRouter tries the hosts in order and moves the first host that answers
// to the front of the list.
type hostRouter struct {
	mu    sync.Mutex
	hosts []string

	http    HTTPClient
	timeout time.Duration
	logger  *zap.Logger
	metrics *routerMetrics
}

func newHostRouter(hosts []string, transport HTTPClient, timeout time.Duration, logger *zap.Logger) *hostRouter {
	return &hostRouter{
		hosts:   append([]string(nil), hosts...),
		http:    transport,
		timeout: timeout,
		logger:  logger,
		metrics: newRouterMetrics(),
	}
}

// Hosts returns the current host order.
func (r *hostRouter) Hosts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.hosts...)
}

// execute returns the response of the first host that answers, whatever its
// status. The caller must close the response body.
func (r *hostRouter) execute(ctx context.Context, req *routedRequest) (*http.Response, error) {
	requestID := uuid.NewString()
	header := req.header.Clone()
	if header == nil {
		header = http.Header{}
	}
	header.Set(requestIDHeader, requestID)

	hosts := r.Hosts()
	var failures []error
	for _, host := range hosts {
		u, err := url.Parse(host + req.path)
		if err != nil {
			return nil, &ClientError{Host: host, Err: err}
		}
		u.RawQuery = req.params.Encode()

		start := time.Now()
		resp, err := r.attempt(ctx, req.method, u, header, req.body)
		if err == nil {
			r.metrics.observe(host, outcomeResponse, start)
			r.promote(host)
			return resp, nil
		}

		if ctx.Err() != nil {
			r.metrics.observe(host, outcomeTransportError, start)
			return nil, &TransportError{Host: host, Err: ctx.Err()}
		}
		if !isConnectionError(err) {
			r.metrics.observe(host, outcomeClientError, start)
			return nil, &ClientError{Host: host, Err: err}
		}

		r.metrics.observe(host, outcomeTransportError, start)
		r.logger.Error("error connecting to host",
			zap.String("host", host),
			zap.String("request_id", requestID),
			zap.Error(err))
		failures = append(failures, &TransportError{Host: host, Err: err})
	}

	r.metrics.exhausted.Inc()
	return nil, &NoReachableHostError{Errors: failures}
}

func (r *hostRouter) attempt(ctx context.Context, method string, u *url.URL, header http.Header, body []byte) (*http.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	resp, err := r.http.Do(ctx, method, u, header, body)
	if err != nil {
		cancel()
		return nil, err
	}
	// the attempt deadline keeps bounding the body read
	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

// promote moves host to the front of the list. The host is located by value
// since concurrent calls may have reordered the list meanwhile.
func (r *hostRouter) promote(host string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.hosts) < 2 || r.hosts[0] == host {
		return
	}
	for i, h := range r.hosts {
		if h == host {
			copy(r.hosts[1:i+1], r.hosts[:i])
			r.hosts[0] = host
			r.metrics.promotions.Inc()
			r.logger.Debug("promoted host", zap.String("host", host))
			return
		}
	}
}

// isConnectionError reports whether err means the host could not be reached,
// as opposed to a malformed request.
func isConnectionError(err error) bool {
	var connErr *connectionError
	if errors.As(err, &connErr) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		// *url.Error implements net.Error itself; look at what it wraps
		err = urlErr.Err
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}
