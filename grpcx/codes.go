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
	"net/http"

	"google.golang.org/grpc/codes"
)

// StatusClientClosedRequest is the non-standard (nginx) status used for
// canceled calls.
const StatusClientClosedRequest = 499

var codeToHTTP = map[codes.Code]int{
	codes.OK:                 http.StatusOK,
	codes.Canceled:           StatusClientClosedRequest,
	codes.Unknown:            http.StatusInternalServerError,
	codes.InvalidArgument:    http.StatusBadRequest,
	codes.DeadlineExceeded:   http.StatusGatewayTimeout,
	codes.NotFound:           http.StatusNotFound,
	codes.AlreadyExists:      http.StatusConflict,
	codes.PermissionDenied:   http.StatusForbidden,
	codes.ResourceExhausted:  http.StatusTooManyRequests,
	codes.FailedPrecondition: http.StatusBadRequest,
	codes.Aborted:            http.StatusConflict,
	codes.OutOfRange:         http.StatusBadRequest,
	codes.Unimplemented:      http.StatusNotImplemented,
	codes.Internal:           http.StatusInternalServerError,
	codes.Unavailable:        http.StatusServiceUnavailable,
	codes.DataLoss:           http.StatusInternalServerError,
	codes.Unauthenticated:    http.StatusUnauthorized,
}

var httpToCode = map[int]codes.Code{
	http.StatusBadRequest:          codes.InvalidArgument,
	http.StatusUnauthorized:        codes.Unauthenticated,
	http.StatusForbidden:           codes.PermissionDenied,
	http.StatusNotFound:            codes.NotFound,
	http.StatusRequestTimeout:      codes.DeadlineExceeded,
	http.StatusConflict:            codes.Aborted,
	http.StatusGone:                codes.NotFound, // gRPC has no 410
	http.StatusPreconditionFailed:  codes.FailedPrecondition,
	http.StatusUnprocessableEntity: codes.InvalidArgument,
	http.StatusTooEarly:            codes.FailedPrecondition,
	http.StatusTooManyRequests:     codes.ResourceExhausted,
	StatusClientClosedRequest:      codes.Canceled,
	http.StatusInternalServerError: codes.Internal,
	http.StatusNotImplemented:      codes.Unimplemented,
	http.StatusBadGateway:          codes.Unavailable,
	http.StatusServiceUnavailable:  codes.Unavailable,
	http.StatusGatewayTimeout:      codes.DeadlineExceeded,
}

// HTTPStatusFromCode returns the HTTP equivalent of c. Unknown codes map to 500.
func HTTPStatusFromCode(c codes.Code) int {
	if v, ok := codeToHTTP[c]; ok {
		return v
	}
	return http.StatusInternalServerError
}

// CodeFromHTTPStatus returns the gRPC equivalent of an HTTP status. Statuses
// without a dedicated code map to FailedPrecondition (4xx) or Internal.
func CodeFromHTTPStatus(status int) codes.Code {
	if c, ok := httpToCode[status]; ok {
		return c
	}
	switch {
	case status >= 200 && status <= 299:
		return codes.OK
	case status >= 400 && status <= 499:
		return codes.FailedPrecondition
	default:
		return codes.Internal
	}
}
