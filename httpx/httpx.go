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

// Package httpx writes problems to net/http responses and adapts
// error-returning handlers through a normalizer.
package httpx

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"dirpx.dev/problem"
	"dirpx.dev/problem/apis"
	"dirpx.dev/problem/normalizer"
)

// HandlerFunc is an http.HandlerFunc that may fail. A returned error is
// normalized into a problem response.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Writer is a thin adapter that knows how to turn a failure into an HTTP
// problem response using the provided normalizer.
type Writer struct {
	Normalizer apis.Normalizer
}

// Write serializes p as application/problem+json with p.Status as the
// response status. A nil p writes nothing. When p cannot be encoded (an
// unknown category, an out-of-range timestamp) a generic 500 problem for the
// same resource is written instead.
func (w Writer) Write(rw http.ResponseWriter, p *problem.Detail) {
	if p == nil {
		return
	}
	b, err := json.Marshal(p)
	if err != nil {
		p = unencodable(p)
		if b, err = json.Marshal(p); err != nil {
			b = []byte(fallbackBody)
		}
	}
	rw.Header().Set("Content-Type", problem.ContentType)
	rw.Header().Set("X-Content-Type-Options", "nosniff")
	rw.WriteHeader(p.Status)
	_, _ = rw.Write(b)
}

// fallbackBody is written only if even the generic problem fails to encode.
const fallbackBody = `{"status":500,"title":"Internal Server Error","detail":"` + normalizer.DetailUnexpected + `","type":"","instance":"","errorCategory":"Generic","timestamp":"1970-01-01T00:00:00Z"}`

func unencodable(p *problem.Detail) *problem.Detail {
	fb := problem.New(http.StatusInternalServerError,
		problem.WithDetailOption(normalizer.DetailUnexpected),
		problem.WithTimestampOption(time.Now()),
	)
	fb.Type, fb.Instance = p.Type, p.Instance
	return fb
}

// Error normalizes err raised while serving r and writes the result.
func (w Writer) Error(rw http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}
	w.Write(rw, w.Normalizer.Normalize(r.Context(), err, r.URL.Path))
}

// Wrap adapts h into an http.Handler. Errors returned by h, and panics raised
// by it, are answered with a problem. http.ErrAbortHandler is re-raised.
func (w Writer) Wrap(h HandlerFunc) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				w.Error(rw, r, Recovered(rec))
			}
		}()
		if err := h(rw, r); err != nil {
			w.Error(rw, r, err)
		}
	})
}

// Recovered turns a recovered panic value into an error. Error values are
// wrapped so that errors.Is/As still see them.
func Recovered(rec any) error {
	if err, ok := rec.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", rec)
}
