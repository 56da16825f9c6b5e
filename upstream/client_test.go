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
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"dirpx.dev/problem/apis"
	"dirpx.dev/problem/logging"
	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type trip struct {
	ID   string `json:"id"`
	City string `json:"city"`
}

func fastBackOff() backoff.BackOff { return backoff.NewConstantBackOff(time.Millisecond) }

func newTestClient(t *testing.T, h http.Handler, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL+"/api", append([]Option{WithBackOff(fastBackOff)}, opts...)...)
	require.NoError(t, err)
	return c
}

func TestNew_InvalidBaseURL(t *testing.T) {
	for _, raw := range []string{"://bad", "ftp://example.com", "example.com"} {
		_, err := New(raw)
		assert.Error(t, err, raw)
	}
}

func TestGetJSON_OK(t *testing.T) {
	var gotPath, gotTrace string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotTrace = r.Header.Get(TraceHeader)
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, `{"id":"42","city":"Lisbon"}`)
	}))

	var out trip
	ctx := logging.WithTraceID(context.Background(), "t-1")
	require.NoError(t, c.GetJSON(ctx, "/trips/42", &out))

	assert.Equal(t, trip{ID: "42", City: "Lisbon"}, out)
	assert.Equal(t, "/api/trips/42", gotPath)
	assert.Equal(t, "t-1", gotTrace)
}

func TestGetJSON_ClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/problem+json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = fmt.Fprint(w, `{"status":404,"title":"Not Found","detail":"Trip 42 does not exist"}`)
	}))

	err := c.GetJSON(context.Background(), "/trips/42", &trip{})

	var ue apis.UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, http.StatusNotFound, ue.UpstreamStatus())
	assert.Equal(t, "Trip 42 does not exist", ue.UpstreamMessage())
	assert.Equal(t, int32(1), calls.Load())
}

func TestGetJSON_ServerErrorIsRetried(t *testing.T) {
	var calls atomic.Int32
	core, logs := observer.New(zapcore.WarnLevel)
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "warming up", http.StatusServiceUnavailable)
			return
		}
		_, _ = fmt.Fprint(w, `{"id":"7"}`)
	}), WithLogger(zap.New(core)))

	var out trip
	require.NoError(t, c.GetJSON(context.Background(), "/trips/7", &out))

	assert.Equal(t, "7", out.ID)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, 2, logs.FilterMessage("Retrying upstream call.").Len())
}

func TestGetJSON_RetriesExhausted(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "  database down  ", http.StatusInternalServerError)
	}), WithMaxRetries(1))

	err := c.GetJSON(context.Background(), "/trips", nil)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
	assert.Equal(t, "database down", se.Message)
	assert.Equal(t, http.MethodGet, se.Method)
	assert.Equal(t, int32(2), calls.Load())
}

func TestDo_PostsJSON(t *testing.T) {
	var gotCT, gotBody string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCT = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusNoContent)
	}))

	require.NoError(t, c.Do(context.Background(), http.MethodPost, "trips", trip{ID: "1", City: "Porto"}, &trip{}))
	assert.Equal(t, "application/json", gotCT)
	assert.JSONEq(t, `{"id":"1","city":"Porto"}`, gotBody)
}

func TestDo_CanceledContext(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.GetJSON(ctx, "/trips", nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCheckResponse(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://fares.internal/quote?token=secret", nil)
	tests := []struct {
		name    string
		status  int
		ct      string
		body    string
		wantNil bool
		wantMsg string
	}{
		{name: "2xx", status: 200, wantNil: true},
		{name: "problem detail", status: 409, ct: "application/problem+json", body: `{"detail":"seat taken"}`, wantMsg: "seat taken"},
		{name: "json message", status: 400, ct: "application/json; charset=utf-8", body: `{"message":"bad date"}`, wantMsg: "bad date"},
		{name: "text body", status: 502, ct: "text/plain", body: "\n gateway exploded \n", wantMsg: "gateway exploded"},
		{name: "empty body", status: 503, wantMsg: "Service Unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			if tt.ct != "" {
				rec.Header().Set("Content-Type", tt.ct)
			}
			rec.WriteHeader(tt.status)
			_, _ = rec.WriteString(tt.body)
			resp := rec.Result()
			resp.Request = req

			err := CheckResponse(resp)
			if tt.wantNil {
				assert.NoError(t, err)
				return
			}
			var se *StatusError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.status, se.UpstreamStatus())
			assert.Equal(t, tt.wantMsg, se.UpstreamMessage())
			assert.Contains(t, se.Error(), "fares.internal/quote")
		})
	}
}

func TestStatusError_Temporary(t *testing.T) {
	assert.True(t, (&StatusError{StatusCode: 503}).Temporary())
	assert.True(t, (&StatusError{StatusCode: 429}).Temporary())
	assert.False(t, (&StatusError{StatusCode: 404}).Temporary())
}

func TestNewHTTPClient(t *testing.T) {
	hc := NewHTTPClient(WithTimeout(-1), WithMaxConnsPerHost(8), WithDialerTimeout(time.Second), WithResponseHeaderTimeout(0))
	assert.Equal(t, defaultClientTimeout, hc.Timeout)
	tr, ok := hc.Transport.(*http.Transport)
	require.True(t, ok)
	assert.Equal(t, 8, tr.MaxConnsPerHost)
	assert.Equal(t, defaultResponseHeaderTimeout, tr.ResponseHeaderTimeout)
}
