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

package normalizer

import (
	"time"

	"dirpx.dev/problem/apis"
	"go.uber.org/zap"
)

// Option configures the Normalizer at build time.
// All options are applied to an internal builder and then frozen into
// an immutable Normalizer.
type Option func(*builder)

// WithLogger sets the logger used for upstream and fallback failures.
// A nil logger keeps the no-op default.
func WithLogger(l *zap.Logger) Option {
	return func(b *builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithClock replaces time.Now as the source of problem timestamps.
func WithClock(now func() time.Time) Option {
	return func(b *builder) {
		if now != nil {
			b.now = now
		}
	}
}

// WithRule registers a custom rule. Custom rules are evaluated before the
// built-in ones, in registration order.
func WithRule(r apis.Rule) Option {
	return func(b *builder) { b.custom = append(b.custom, r) }
}

// WithUpstreamStatus replaces the status every upstream failure is reported
// with (404 by default). It must be a 4xx or 5xx status.
func WithUpstreamStatus(status int) Option {
	return func(b *builder) {
		b.upstreamStatus = status
		b.upstreamSet = true
	}
}

// WithUpstreamRoute reports upstream failures raised under the request path
// prefix with status. Prefixes are "/"-separated; "*" matches exactly one
// segment and the longest matching prefix wins. Route rules take precedence
// over WithUpstreamStatus.
func WithUpstreamRoute(prefix string, status int) Option {
	return func(b *builder) { b.routes = append(b.routes, routeRule{prefix, status}) }
}
