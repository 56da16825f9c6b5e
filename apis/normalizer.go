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

package apis

import (
	"context"
	"time"

	"dirpx.dev/problem"
	"dirpx.dev/problem/kind"
)

// Normalizer is an immutable, concurrency-safe translator from arbitrary
// request failures into problem details.
type Normalizer interface {
	// Normalize maps err, raised while serving the request at path, into
	// exactly one problem. It never fails and never returns nil for a non-nil
	// err. A nil err yields a nil problem.
	Normalize(ctx context.Context, err error, path string) *problem.Detail

	// Classify returns the kind of the rule that would handle err.
	Classify(err error) kind.Kind

	// Explain returns a human-readable description of which rule matched and
	// where the resulting status came from. Intended for diagnostics only.
	Explain(err error, path string) string
}

// Rule is one classification rule of the normalizer.
//
// Custom rules are evaluated before the built-in ones, in registration order.
// The first rule whose Match returns true builds the problem.
type Rule interface {
	// Kind names the failure kind this rule handles.
	Kind() kind.Kind

	// Match reports whether the rule handles err.
	Match(err error) bool

	// Build constructs the problem for err. now is the normalization instant
	// and path the request path. Build must not return nil.
	Build(ctx context.Context, err error, path string, now time.Time) *problem.Detail
}
