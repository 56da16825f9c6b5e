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

	"dirpx.dev/problem/apis"
	"dirpx.dev/problem/httpx"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

type grpcStatus interface {
	GRPCStatus() *status.Status
}

// UnaryServerInterceptor returns a gRPC UnaryServerInterceptor that maps
// handler failures into statuses built with ToStatus. The request path given
// to the normalizer is the full method name.
//
// Errors that already are a status (the handler returned status.Error
// itself) are returned as-is. Panics are recovered and normalized.
func UnaryServerInterceptor(n apis.Normalizer) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if rec := recover(); rec != nil {
				resp = nil
				err = ToStatus(n.Normalize(ctx, httpx.Recovered(rec), info.FullMethod)).Err()
			}
		}()

		resp, err = handler(ctx, req)
		if err == nil {
			return resp, nil
		}
		if _, ok := err.(grpcStatus); ok {
			return nil, err
		}
		return nil, ToStatus(n.Normalize(ctx, err, info.FullMethod)).Err()
	}
}

// UnaryClientInterceptor returns a gRPC UnaryClientInterceptor that wraps
// failure statuses answered by the remote side with UpstreamError.
func UnaryClientInterceptor() grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		return UpstreamError(invoker(ctx, method, req, reply, cc, opts...))
	}
}
