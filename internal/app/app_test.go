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

package app

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"dirpx.dev/problem"
	"dirpx.dev/problem/category"
	"dirpx.dev/problem/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// backend fakes the trips service.
func backend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /trips/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/problem+json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"status":500,"detail":"Trip `+r.PathValue("id")+` not found"}`)
	})
	mux.HandleFunc("GET /trips/{id}/legs", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, "legs index rebuilding\n")
	})
	mux.HandleFunc("POST /trips", func(w http.ResponseWriter, r *http.Request) {
		var req TripRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(Trip{ID: "t-1", Origin: req.Origin, Destination: req.Destination, Passengers: req.Passengers})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		Port:            0,
		Env:             "dev",
		LogLevel:        "debug",
		ShutdownTimeout: time.Second,
		Upstream: config.Upstream{
			BaseURL:    baseURL,
			Timeout:    time.Second,
			MaxRetries: 0,
		},
		Problems: config.Problems{
			UpstreamRoutes: []config.Route{{Prefix: "/trips/*/legs", Status: http.StatusBadGateway}},
		},
	}
}

func newApp(t *testing.T, baseURL string) *App {
	t.Helper()
	a, err := New(testConfig(baseURL), zaptest.NewLogger(t))
	require.NoError(t, err)
	return a
}

func serve(t *testing.T, a *App, method, target, body string) (*httptest.ResponseRecorder, *problem.Detail) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)

	if rec.Header().Get("Content-Type") != "application/problem+json" {
		return rec, nil
	}
	var p problem.Detail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	return rec, &p
}

func TestHealth(t *testing.T) {
	a := newApp(t, "")
	rec, _ := serve(t, a, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Trace-Id"))
}

func TestMetricsEndpoint(t *testing.T) {
	a := newApp(t, "")
	serve(t, a, http.MethodGet, "/trips/1", "")

	rec, _ := serve(t, a, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "travelsvc_problems_total")
}

func TestGetTrip_UpstreamFailureIsNotFound(t *testing.T) {
	a := newApp(t, backend(t).URL)

	rec, p := serve(t, a, http.MethodGet, "/trips/42", "")

	require.NotNil(t, p)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, http.StatusNotFound, p.Status)
	assert.Equal(t, "Not Found", p.Title)
	assert.Equal(t, "Trip 42 not found", p.Detail)
	assert.Equal(t, "/trips/42", p.Type)
	assert.Equal(t, "/trips/42", p.Instance)
	assert.Equal(t, category.Generic, p.Category)
}

func TestGetLegs_RouteOverride(t *testing.T) {
	a := newApp(t, backend(t).URL)

	rec, p := serve(t, a, http.MethodGet, "/trips/42/legs", "")

	require.NotNil(t, p)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "Bad Gateway", p.Title)
	assert.Equal(t, "legs index rebuilding", p.Detail)
}

func TestCreateTrip(t *testing.T) {
	a := newApp(t, backend(t).URL)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantErrors []string
	}{
		{
			name:       "created",
			body:       `{"origin":"LIS","destination":"ROM","passengers":2,"departAt":"2024-07-05T10:30:00Z"}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "field errors",
			body:       `{"origin":"","destination":"ROM","passengers":0,"departAt":"2024-07-05T10:30:00Z"}`,
			wantStatus: http.StatusBadRequest,
			wantErrors: []string{"origin: must not be blank", "passengers: must be positive"},
		},
		{
			name:       "object error",
			body:       `{"origin":"ROM","destination":"ROM","passengers":1,"departAt":"2024-07-05T10:30:00Z"}`,
			wantStatus: http.StatusBadRequest,
			wantErrors: []string{"tripRequest: origin and destination must differ"},
		},
		{
			name:       "malformed",
			body:       `{"origin":`,
			wantStatus: http.StatusBadRequest,
			wantErrors: []string{"tripRequest: payload is not valid JSON"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, p := serve(t, a, http.MethodPost, "/trips", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantErrors == nil {
				var trip Trip
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &trip))
				assert.Equal(t, "t-1", trip.ID)
				return
			}
			require.NotNil(t, p)
			assert.Equal(t, "Bad Request on payload", p.Title)
			assert.Equal(t, "Validation error on supplied payload", p.Detail)
			assert.Equal(t, category.Parameters, p.Category)
			assert.Equal(t, tt.wantErrors, p.Errors)
		})
	}
}

func TestTrips_NoBackendConfigured(t *testing.T) {
	a := newApp(t, "")

	rec, p := serve(t, a, http.MethodGet, "/trips/7", "")

	require.NotNil(t, p)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "Trips backend is not configured.", p.Detail)
	assert.Equal(t, "/trips/7", p.Instance)
	assert.False(t, p.Timestamp.IsZero())
}

func TestNew_InvalidProblemsConfig(t *testing.T) {
	cfg := testConfig("")
	cfg.Problems.UpstreamStatus = 200
	_, err := New(cfg, nil)
	assert.Error(t, err)
}

func TestRun_StopsOnCancel(t *testing.T) {
	a := newApp(t, "")
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
