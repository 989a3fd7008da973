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
	"io"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
)

// HTTPClient is the transport used to reach the InfluxDB servers.
type HTTPClient interface {
	// Do sends a request and returns the response, whatever its status.
	//
	// Failures to reach the server should be, or wrap, a net.Error, io.EOF or
	// context.DeadlineExceeded, or be marked with ConnectionError, so that
	// the next host is tried.
	Do(ctx context.Context, method string, u *url.URL, header http.Header, body []byte) (*http.Response, error)
	// Close releases the resources held by the transport.
	Close()
}

type httpClient struct {
	client *http.Client
}

// NewHTTPClient creates an HTTPClient backed by its own *http.Client.
func NewHTTPClient() HTTPClient {
	return &httpClient{
		client: &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()},
	}
}

// WrapHTTPClient adapts an existing *http.Client. Closing the result releases
// idle connections of the wrapped client.
func WrapHTTPClient(client *http.Client) HTTPClient {
	return &httpClient{client: client}
}

// Ensure httpClient implements HTTPClient.
var _ HTTPClient = (*httpClient)(nil)

func (c *httpClient) Do(ctx context.Context, method string, u *url.URL, header http.Header, body []byte) (*http.Response, error) {
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.Errorf("unsupported protocol scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, errors.Errorf("no host in URL %q", u.String())
	}

	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), r)
	if err != nil {
		return nil, err
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	resp, err := c.client.Do(req)
	if err != nil {
		// the request is well-formed, so the round trip itself failed
		return nil, ConnectionError(err)
	}
	return resp, nil
}

type connectionError struct {
	err error
}

// ConnectionError marks err as a failure to reach the server.
func ConnectionError(err error) error {
	return &connectionError{err: err}
}

func (e *connectionError) Error() string {
	return e.err.Error()
}

func (e *connectionError) Unwrap() error {
	return e.err
}

func (c *httpClient) Close() {
	c.client.CloseIdleConnections()
}
