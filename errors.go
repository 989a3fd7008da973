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
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/valyala/fastjson"
)

var (
	// ErrNoReachableHost is matched by every NoReachableHostError.
	ErrNoReachableHost = errors.New("influxdb: no servers could be reached")
	// ErrClientClosed is returned by any call made after Close.
	ErrClientClosed = errors.New("influxdb: client is closed")
	// ErrIncomparableRows is returned when ordering rows of different column sets
	// or rows holding values that cannot be ordered against each other.
	ErrIncomparableRows = errors.New("influxdb: rows are not comparable")
	// ErrCableClosed is delivered for points sent to a closed PointCable.
	ErrCableClosed = errors.New("influxdb: cable is closed")
)

// ValidationError is a local, pre-flight failure. It never reaches the network.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return "influxdb: invalid input: " + e.Message
}

func validationErrorf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// TransportError is a connection-level failure reaching a specific host.
type TransportError struct {
	Host string
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("influxdb: error connecting to %s: %v", e.Host, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NoReachableHostError is returned when every configured host failed with a
// connection-level error.
type NoReachableHostError struct {
	// Errors holds one *TransportError per host, in the order they were tried.
	Errors []error
}

func (e *NoReachableHostError) Error() string {
	return fmt.Sprintf("%s (%d hosts tried)", ErrNoReachableHost.Error(), len(e.Errors))
}

func (e *NoReachableHostError) Is(target error) bool {
	return target == ErrNoReachableHost
}

// ClientError is an unexpected failure while attempting a request. It points
// at a programming or protocol defect rather than a host problem, so the
// remaining hosts are not tried.
type ClientError struct {
	Host string
	Err  error
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("influxdb: unexpected error when connecting to %s: %v", e.Host, e.Err)
}

func (e *ClientError) Unwrap() error {
	return e.Err
}

// ServerError represents a structured error response from the InfluxDB server.
type ServerError struct {
	StatusCode int
	// Message is the server-provided text, verbatim.
	Message string
}

func (e *ServerError) Error() string {
	return e.Message
}

// UnexpectedStatusError is returned for any status and content type
// combination that is not explicitly handled.
type UnexpectedStatusError struct {
	StatusCode int
}

func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("influxdb: unexpected HTTP status code: %d", e.StatusCode)
}

// StatementError is the error reported by the server for a single statement
// of a query. Inside a multi-statement Result it is kept inline.
type StatementError struct {
	StatementID int
	Message     string
}

func (e *StatementError) Error() string {
	return e.Message
}

// NoSuchColumnError is returned by name lookups on a Row.
type NoSuchColumnError struct {
	Column string
}

func (e *NoSuchColumnError) Error() string {
	return "no such column: " + e.Column
}

// checkStatusCode maps a response to nil when its status equals expected,
// otherwise to a *ServerError or *UnexpectedStatusError.
func checkStatusCode(resp *http.Response, expected int) error {
	if resp.StatusCode == expected {
		return nil
	}

	switch resp.StatusCode {
	case http.StatusBadRequest, http.StatusNotFound, http.StatusInternalServerError:
		if !isJSON(resp.Header.Get("Content-Type")) {
			break
		}
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			break
		}
		v, err := fastjson.ParseBytes(data)
		if err != nil || v.Get("error") == nil {
			break
		}
		return &ServerError{
			StatusCode: resp.StatusCode,
			Message:    string(v.GetStringBytes("error")),
		}
	}
	return &UnexpectedStatusError{StatusCode: resp.StatusCode}
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.HasPrefix(contentType, "application/json")
	}
	return mediaType == "application/json"
}

// sneakyBodyClose drains and closes the body and ignores the error.
// This is useful to close the HTTP response body when we don't care about the error.
func sneakyBodyClose(body io.ReadCloser) {
	if body != nil {
		_, _ = io.Copy(io.Discard, body)
		_ = body.Close()
	}
}
