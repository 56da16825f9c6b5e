/*
   Copyright 2025 The DIRPX Authors

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package upstream

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"dirpx.dev/problem/apis"
)

// maxErrorBody bounds how much of a failed response is read for its message.
const maxErrorBody = 64 << 10

// StatusError is a dependency answer with a non-2xx status.
// It implements apis.UpstreamError.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	// Message is the dependency's own explanation, possibly empty.
	Message string
}

var _ apis.UpstreamError = (*StatusError)(nil)

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upstream: %s %s: %d", e.Method, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("upstream: %s %s: %d: %s", e.Method, e.URL, e.StatusCode, e.Message)
}

// UpstreamStatus implements apis.UpstreamError.
func (e *StatusError) UpstreamStatus() int { return e.StatusCode }

// UpstreamMessage implements apis.UpstreamError.
func (e *StatusError) UpstreamMessage() string { return e.Message }

// Temporary reports whether retrying the same request may succeed.
func (e *StatusError) Temporary() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// CheckResponse returns nil for 2xx responses and a *StatusError otherwise.
// The message is taken, in order, from a problem/JSON "detail" or "message"
// member, from the trimmed text body, and finally from the status text.
// The body is consumed but not closed.
func CheckResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return nil
	}
	e := &StatusError{StatusCode: resp.StatusCode}
	if resp.Request != nil {
		e.Method = resp.Request.Method
		if resp.Request.URL != nil {
			e.URL = resp.Request.URL.Redacted()
		}
	}

	var body []byte
	if resp.Body != nil {
		body, _ = io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	}
	e.Message = responseMessage(resp.Header.Get("Content-Type"), body)
	if e.Message == "" {
		e.Message = http.StatusText(resp.StatusCode)
	}
	return e
}

func responseMessage(contentType string, body []byte) string {
	mt, _, _ := mime.ParseMediaType(contentType)
	if strings.HasSuffix(mt, "json") {
		var m struct {
			Detail  string `json:"detail"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(body, &m); err == nil {
			if m.Detail != "" {
				return m.Detail
			}
			if m.Message != "" {
				return m.Message
			}
		}
	}
	return strings.TrimSpace(string(body))
}
