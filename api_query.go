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
	"net/http"

	"github.com/pkg/errors"
)

const versionHeader = "X-Influxdb-Version"

// queryAPI defines interfaces under /query and /ping.
type queryAPI interface {
	// query sends InfluxQL text and decodes the result.
	query(ctx context.Context, method string, text string, params QueryParams) (*Result, error)
	// ping checks the server is alive and returns its version.
	ping(ctx context.Context) (string, error)
}

var _ queryAPI = (*Client)(nil)

func (c *Client) query(ctx context.Context, method string, text string, params QueryParams) (*Result, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}

	values := params.values()
	values.Set("q", text)
	resp, err := c.router.execute(ctx, &routedRequest{
		method: method,
		path:   "/query",
		params: values,
		header: c.header(),
	})
	if err != nil {
		return nil, err
	}
	defer sneakyBodyClose(resp.Body)
	if err := checkStatusCode(resp, http.StatusOK); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "influxdb: read query response")
	}
	return DecodeResult(data)
}

func (c *Client) ping(ctx context.Context) (string, error) {
	if err := c.checkOpen(); err != nil {
		return "", err
	}

	resp, err := c.router.execute(ctx, &routedRequest{
		method: http.MethodGet,
		path:   "/ping",
		header: c.header(),
	})
	if err != nil {
		return "", err
	}
	defer sneakyBodyClose(resp.Body)
	if resp.StatusCode != http.StatusNoContent {
		return "", &UnexpectedStatusError{StatusCode: resp.StatusCode}
	}
	return resp.Header.Get(versionHeader), nil
}
