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

package grpcx

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"dirpx.dev/problem"
	"dirpx.dev/problem/apis"
	"dirpx.dev/problem/category"
	"dirpx.dev/problem/normalizer"
	"dirpx.dev/problem/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/proto"
)

var fixedNow = time.Date(2024, 7, 5, 10, 30, 0, 0, time.UTC)

func newNormalizer(t *testing.T) apis.Normalizer {
	t.Helper()
	n, err := normalizer.New(normalizer.WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	return n
}

func TestCodeMapping(t *testing.T) {
	tests := []struct {
		http int
		code codes.Code
	}{
		{http.StatusBadRequest, codes.InvalidArgument},
		{http.StatusUnauthorized, codes.Unauthenticated},
		{http.StatusForbidden, codes.PermissionDenied},
		{http.StatusNotFound, codes.NotFound},
		{http.StatusTooManyRequests, codes.ResourceExhausted},
		{http.StatusInternalServerError, codes.Internal},
		{http.StatusNotImplemented, codes.Unimplemented},
		{http.StatusServiceUnavailable, codes.Unavailable},
		{http.StatusGatewayTimeout, codes.DeadlineExceeded},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.http), func(t *testing.T) {
			assert.Equal(t, tt.code, CodeFromHTTPStatus(tt.http))
			assert.Equal(t, tt.http, HTTPStatusFromCode(tt.code))
		})
	}
	assert.Equal(t, codes.FailedPrecondition, CodeFromHTTPStatus(418))
	assert.Equal(t, codes.Internal, CodeFromHTTPStatus(599))
	assert.Equal(t, codes.OK, CodeFromHTTPStatus(204))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatusFromCode(codes.Code(99)))
}

func TestToStatus_Generic(t *testing.T) {
	p := problem.New(http.StatusNotFound,
		problem.WithDetailOption("Not Found"),
		problem.WithInstanceOption("/trips/42"),
		problem.WithTimestampOption(fixedNow),
	)

	st := ToStatus(p)

	assert.Equal(t, codes.NotFound, st.Code())
	assert.Equal(t, "Not Found", st.Message())
	require.Len(t, st.Details(), 1)
	info, ok := st.Details()[0].(*errdetails.ErrorInfo)
	require.True(t, ok)
	assert.Equal(t, "GENERIC", info.GetReason())
	assert.Equal(t, ErrorDomain, info.GetDomain())
	assert.Equal(t, "/trips/42", info.GetMetadata()[MetaInstance])
	assert.Equal(t, "2024-07-05T10:30:00Z", info.GetMetadata()[MetaTimestamp])

	back, ok := FromError(st.Err())
	require.True(t, ok)
	assert.Equal(t, p.Normalized(), back)
}

func TestToStatus_Parameters(t *testing.T) {
	p := problem.New(http.StatusBadRequest,
		problem.WithTitleOption("Bad Request on payload"),
		problem.WithDetailOption("Validation error on supplied payload"),
		problem.WithInstanceOption("/trips"),
		problem.WithCategoryOption(category.Parameters),
		problem.WithTimestampOption(fixedNow),
		problem.WithErrorsOption([]string{"name: must not be blank", "age: must be positive"}),
	)

	st := ToStatus(p)

	assert.Equal(t, codes.InvalidArgument, st.Code())
	require.Len(t, st.Details(), 2)
	br, ok := st.Details()[1].(*errdetails.BadRequest)
	require.True(t, ok)
	want := &errdetails.BadRequest{FieldViolations: []*errdetails.BadRequest_FieldViolation{
		{Field: "age", Description: "must be positive"},
		{Field: "name", Description: "must not be blank"},
	}}
	assert.True(t, proto.Equal(want, br), "got %v", br)

	back, ok := FromError(st.Err())
	require.True(t, ok)
	assert.Equal(t, category.Parameters, back.Category)
	assert.Equal(t, []string{"age: must be positive", "name: must not be blank"}, back.Errors)
	assert.Equal(t, "Bad Request on payload", back.Title)
}

func TestFromError_Foreign(t *testing.T) {
	_, ok := FromError(errors.New("plain"))
	assert.False(t, ok)
	_, ok = FromError(status.Error(codes.NotFound, "no details"))
	assert.False(t, ok)
	_, ok = FromError(nil)
	assert.False(t, ok)
}

func TestUpstreamError(t *testing.T) {
	assert.NoError(t, UpstreamError(nil))

	plain := errors.New("plain")
	assert.Same(t, plain, UpstreamError(plain))

	err := UpstreamError(status.Error(codes.Unavailable, "fares backend down"))
	var ue apis.UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, http.StatusServiceUnavailable, ue.UpstreamStatus())
	assert.Equal(t, "fares backend down", ue.UpstreamMessage())
	assert.Equal(t, err, UpstreamError(err), "wrapping is idempotent")
	assert.Equal(t, codes.Unavailable, status.Code(errors.Unwrap(err)))
}

func TestUnaryServerInterceptor(t *testing.T) {
	n := newNormalizer(t)
	intercept := UnaryServerInterceptor(n)
	info := &grpc.UnaryServerInfo{FullMethod: "/travel.v1.Trips/Get"}

	tests := []struct {
		name     string
		handler  grpc.UnaryHandler
		wantCode codes.Code
		wantMsg  string
	}{
		{
			name:     "success",
			handler:  func(context.Context, any) (any, error) { return "ok", nil },
			wantCode: codes.OK,
		},
		{
			name: "upstream",
			handler: func(context.Context, any) (any, error) {
				return nil, UpstreamError(status.Error(codes.Internal, "Trip 42 not found"))
			},
			wantCode: codes.NotFound,
			wantMsg:  "Trip 42 not found",
		},
		{
			name: "validation",
			handler: func(context.Context, any) (any, error) {
				return nil, validation.NewError(http.StatusBadRequest, []apis.FieldError{{Field: "id", Message: "must not be blank"}}, nil)
			},
			wantCode: codes.InvalidArgument,
			wantMsg:  "Validation error on supplied payload",
		},
		{
			name: "status passthrough",
			handler: func(context.Context, any) (any, error) {
				return nil, status.Error(codes.PermissionDenied, "nope")
			},
			wantCode: codes.PermissionDenied,
			wantMsg:  "nope",
		},
		{
			name:     "panic",
			handler:  func(context.Context, any) (any, error) { panic("boom") },
			wantCode: codes.Internal,
			wantMsg:  normalizer.DetailUnexpected,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := intercept(context.Background(), nil, info, tt.handler)
			if tt.wantCode == codes.OK {
				require.NoError(t, err)
				assert.Equal(t, "ok", resp)
				return
			}
			assert.Nil(t, resp)
			st, ok := status.FromError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, st.Code())
			assert.Equal(t, tt.wantMsg, st.Message())
		})
	}
}

type healthServer struct {
	healthpb.UnimplementedHealthServer
	check func(context.Context) (*healthpb.HealthCheckResponse, error)
}

func (s *healthServer) Check(ctx context.Context, _ *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	return s.check(ctx)
}

// dial starts an in-memory server running srv behind the server interceptor
// and returns a client wired with the client interceptor.
func dial(t *testing.T, srv healthpb.HealthServer, opts ...grpc.ServerOption) healthpb.HealthClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer(opts...)
	healthpb.RegisterHealthServer(s, srv)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(UnaryClientInterceptor()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return healthpb.NewHealthClient(conn)
}

func TestEndToEnd_DownstreamFailureIsNormalized(t *testing.T) {
	// The dependency answers a bare status.
	dependency := dial(t, &healthServer{check: func(context.Context) (*healthpb.HealthCheckResponse, error) {
		return nil, status.Error(codes.Unavailable, "inventory offline")
	}})

	// Our service calls the dependency and returns whatever error it got.
	n := newNormalizer(t)
	service := dial(t, &healthServer{check: func(ctx context.Context) (*healthpb.HealthCheckResponse, error) {
		return dependency.Check(ctx, &healthpb.HealthCheckRequest{})
	}}, grpc.UnaryInterceptor(UnaryServerInterceptor(n)))

	_, err := service.Check(context.Background(), &healthpb.HealthCheckRequest{})

	// The client interceptor wraps the answer as an upstream failure too.
	var ue apis.UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, http.StatusNotFound, ue.UpstreamStatus())

	p, ok := FromError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, p.Status)
	assert.Equal(t, "inventory offline", p.Detail)
	assert.Equal(t, "/grpc.health.v1.Health/Check", p.Instance)
	assert.Equal(t, category.Generic, p.Category)
	assert.Equal(t, fixedNow, p.Timestamp)
}
