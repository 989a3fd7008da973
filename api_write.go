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
	"net/http"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// writeAPI defines interfaces under /write.
type writeAPI interface {
	// write sends a line protocol body.
	write(ctx context.Context, points []*DataPoint, params WriteParams) error
}

var _ writeAPI = (*Client)(nil)

func (c *Client) write(ctx context.Context, points []*DataPoint, params WriteParams) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	if len(points) == 0 {
		return validationErrorf("no points to write")
	}

	body, err := EncodePoints(points, params.Precision)
	if err != nil {
		return err
	}

	header := c.header()
	header.Set("Content-Type", "text/plain; charset=utf-8")
	if c.config.Gzip {
		if body, err = gzipBody(body); err != nil {
			return err
		}
		header.Set("Content-Encoding", "gzip")
	}

	resp, err := c.router.execute(ctx, &routedRequest{
		method: http.MethodPost,
		path:   "/write",
		params: params.values(),
		header: header,
		body:   body,
	})
	if err != nil {
		return err
	}
	defer sneakyBodyClose(resp.Body)
	return checkStatusCode(resp, http.StatusNoContent)
}

func gzipBody(body []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(body); err != nil {
		return nil, errors.Wrap(err, "influxdb: compress write body")
	}
	if err := w.Close(); err != nil {
		return nil, errors.Wrap(err, "influxdb: compress write body")
	}
	return buf.Bytes(), nil
}
