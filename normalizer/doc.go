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

// Package normalizer turns any failure raised while serving a request into
// exactly one problem.Detail.
//
// # Overview
//
// Handlers, the validation step and outbound clients fail in different ways.
// A Normalizer is the single place where those signals are classified and
// rendered into the uniform problem body, so every transport adapter (httpx,
// ginx, grpcx) produces the same wire format.
//
// # Rules
//
// Failures are classified by a fixed chain of rules; the first match wins:
//
//  1. custom rules registered with WithRule, in registration order;
//  2. passthrough: the error is (or wraps) a *problem.Detail;
//  3. payload validation: the error implements apis.ValidationError;
//  4. upstream call: the error implements apis.UpstreamError;
//  5. fallback: anything else.
//
// Payload validation produces a Parameters problem titled
// "Bad Request on payload" whose errors list is the sorted union of
// "<field>: <message>" and "<object>: <message>" entries. It is not logged.
//
// Upstream failures produce a Generic problem whose detail is the dependency's
// message verbatim. The dependency's own status is not propagated: the
// response carries 404 unless WithUpstreamStatus or WithUpstreamRoute say
// otherwise. Each upstream failure is logged once at error level with the
// message "Rest Client API call issue.".
//
// The fallback produces a Generic 500 with a fixed detail and logs the
// original failure with "Unhandled request failure.".
//
// # Route overrides
//
// WithUpstreamRoute selects the upstream status by request path. Prefixes are
// "/"-separated segments and "*" matches exactly one segment:
//
//	n, err := normalizer.New(
//	    normalizer.WithLogger(logger),
//	    normalizer.WithUpstreamRoute("/fares", http.StatusBadGateway),
//	    normalizer.WithUpstreamRoute("/trips/*/legs", http.StatusServiceUnavailable),
//	)
//
// The longest matching prefix wins.
//
// # Guarantees
//
// Normalize never fails and never panics. A panicking rule, a misbehaving
// error value or a panicking logger core results in the fallback problem (or,
// for the logger, in a silently dropped entry). A nil error yields a nil
// problem.
//
// All user-provided inputs are copied during New. A Normalizer holds no
// mutable state and is safe to share across goroutines.
//
// # Diagnostics
//
// Normalizer.Explain returns a human-readable trace of which rule matched
// and where the status came from. It does not log and is not intended for
// machine parsing.
package normalizer
