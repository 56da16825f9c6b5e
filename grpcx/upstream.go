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
	"errors"

	"dirpx.dev/problem/apis"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// upstreamError is a failure status answered by a gRPC dependency.
// It deliberately does not implement GRPCStatus, so the server interceptor
// normalizes it instead of forwarding the dependency's status.
type upstreamError struct {
	st  *status.Status
	err error
}

var _ apis.UpstreamError = (*upstreamError)(nil)

// UpstreamError wraps err as an apis.UpstreamError when it carries a non-OK
// status (including context errors converted by grpc). Other errors, and nil,
// are returned unchanged.
func UpstreamError(err error) error {
	if err == nil {
		return nil
	}
	var ue *upstreamError
	if errors.As(err, &ue) {
		return err
	}
	st, ok := status.FromError(err)
	if !ok || st.Code() == codes.OK {
		return err
	}
	return &upstreamError{st: st, err: err}
}

func (e *upstreamError) Error() string {
	return "upstream: grpc " + e.st.Code().String() + ": " + e.st.Message()
}

func (e *upstreamError) Unwrap() error { return e.err }

// UpstreamStatus implements apis.UpstreamError.
func (e *upstreamError) UpstreamStatus() int { return HTTPStatusFromCode(e.st.Code()) }

// UpstreamMessage implements apis.UpstreamError.
func (e *upstreamError) UpstreamMessage() string { return e.st.Message() }

// Code returns the gRPC code the dependency answered with.
func (e *upstreamError) Code() codes.Code { return e.st.Code() }
