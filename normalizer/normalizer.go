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
	"context"
	"fmt"
	"strings"
	"time"

	"dirpx.dev/problem"
	"dirpx.dev/problem/apis"
	"dirpx.dev/problem/category"
	"dirpx.dev/problem/kind"
	"dirpx.dev/problem/logging"
	"dirpx.dev/problem/normalizer/internal/segmenttrie"
	"go.uber.org/zap"
)

// New constructs an immutable apis.Normalizer snapshot.
//
// Build process overview:
//
//  1. Seed the builder with library defaults (404 for upstream failures,
//     no-op logger, time.Now).
//  2. Apply user-provided options.
//  3. Validate custom rules and statuses.
//  4. Build the route trie used for per-path upstream statuses.
//  5. Freeze the rule chain: custom rules first, then passthrough, payload
//     validation and upstream call.
//
// Errors returned from this function indicate configuration issues only;
// a built normalizer never fails.
func New(opts ...Option) (apis.Normalizer, error) {
	b := newBuilder()

	for _, opt := range opts {
		opt(b)
	}

	if !validStatus(b.upstreamStatus) {
		return nil, fmt.Errorf("normalizer: invalid upstream status %d", b.upstreamStatus)
	}
	for i, r := range b.custom {
		if isNilRule(r) {
			return nil, fmt.Errorf("normalizer: custom rule #%d is nil", i)
		}
		if err := kind.Validate(r.Kind()); err != nil {
			return nil, fmt.Errorf("normalizer: custom rule #%d has invalid kind %q: %w", i, r.Kind(), err)
		}
	}

	var routes *segmenttrie.Trie[int]
	if len(b.routes) > 0 {
		routes = segmenttrie.New[int]()
		for _, r := range b.routes {
			if !validStatus(r.status) {
				return nil, fmt.Errorf("normalizer: invalid upstream status %d for route %q", r.status, r.prefix)
			}
			if err := routes.Insert(r.prefix, r.status); err != nil {
				return nil, fmt.Errorf("normalizer: cannot insert route %q: %w", r.prefix, err)
			}
		}
	}

	n := &normalizer{
		logger:         b.logger,
		now:            b.now,
		upstreamStatus: b.upstreamStatus,
		upstreamSet:    b.upstreamSet,
		routes:         routes,
	}
	n.rules = freezeRules(b.custom, n.builtins())
	return n, nil
}

// normalizer is the immutable implementation of apis.Normalizer. After New
// returns nothing in it is written again, so it is safe for concurrent use.
type normalizer struct {
	logger *zap.Logger
	now    func() time.Time

	// rules is the frozen chain: custom rules, then the built-ins.
	rules []apis.Rule

	upstreamStatus int
	upstreamSet    bool
	routes         *segmenttrie.Trie[int]
}

// Normalize maps err into exactly one problem. It never panics: a panic
// inside a rule, the clock or a misbehaving error value yields the fallback
// problem. Whatever a rule builds is completed (see complete), so an unknown
// category never reaches the wire.
func (n *normalizer) Normalize(ctx context.Context, err error, path string) (p *problem.Detail) {
	if err == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	var now time.Time
	defer func() {
		if r := recover(); r != nil {
			if now.IsZero() {
				now = time.Now().UTC()
			}
			p = n.fallback(ctx, fmt.Errorf("normalizer: recovered panic: %v: %w", r, err), path, now)
		}
	}()
	now = n.now().UTC()

	r := n.match(err)
	if r == nil {
		return n.fallback(ctx, err, path, now)
	}
	built := r.Build(ctx, err, path, now)
	if built == nil {
		return n.fallback(ctx, fmt.Errorf("normalizer: rule %q built no problem: %w", r.Kind(), err), path, now)
	}
	if !validStatus(built.Status) {
		return n.fallback(ctx, fmt.Errorf("normalizer: rule %q built status %d: %w", r.Kind(), built.Status, err), path, now)
	}
	return complete(built, path, now)
}

// Classify returns the kind of the first rule that matches err, or
// kind.Unhandled.
func (n *normalizer) Classify(err error) (k kind.Kind) {
	if err == nil {
		return kind.Empty
	}
	defer func() {
		if r := recover(); r != nil {
			k = kind.Unhandled
		}
	}()
	if r := n.match(err); r != nil {
		return r.Kind()
	}
	return kind.Unhandled
}

// Explain produces a textual trace of how err raised at path would be
// normalized.
//
// Example output:
//
//	kind="upstream.call" path="/trips/42"
//	status: source=route pattern="/trips" -> 502 Generic
//
// Notes:
//   - source ∈ {builtin | override | route | supplied | passthrough | custom | fallback}
//   - for custom rules the status is only known after Build, so it is not shown
func (n *normalizer) Explain(err error, path string) (out string) {
	var b strings.Builder
	if err == nil {
		_, _ = fmt.Fprintf(&b, "kind=%q path=%q\nstatus: none", kind.Empty, path)
		return b.String()
	}

	defer func() {
		if r := recover(); r != nil {
			b.Reset()
			_, _ = fmt.Fprintf(&b, "kind=%q path=%q\n", kind.Unhandled, path)
			_, _ = fmt.Fprintf(&b, "status: source=%s -> %d %s", sourceFallback, fallbackStatus, category.Generic)
			out = b.String()
		}
	}()

	r := n.match(err)
	if r == nil {
		_, _ = fmt.Fprintf(&b, "kind=%q path=%q\n", kind.Unhandled, path)
		_, _ = fmt.Fprintf(&b, "status: source=%s -> %d %s", sourceFallback, fallbackStatus, category.Generic)
		return b.String()
	}
	_, _ = fmt.Fprintf(&b, "kind=%q path=%q\n", r.Kind(), path)

	switch rule := r.(type) {
	case upstreamRule:
		status, src, pat := n.upstreamStatusFor(path)
		if src == sourceRoute {
			_, _ = fmt.Fprintf(&b, "status: source=%s pattern=%q -> %d %s", src, pat, status, category.Generic)
		} else {
			_, _ = fmt.Fprintf(&b, "status: source=%s -> %d %s", src, status, category.Generic)
		}
	case validationRule:
		status, src := validationStatus(rule.target(err).Status())
		_, _ = fmt.Fprintf(&b, "status: source=%s -> %d %s", src, status, category.Parameters)
	case passthroughRule:
		c := complete(rule.target(err), path, time.Time{})
		_, _ = fmt.Fprintf(&b, "status: source=%s -> %d %s", sourcePassthrough, c.Status, c.Category)
	default:
		_, _ = fmt.Fprintf(&b, "status: source=%s", sourceCustom)
	}
	return b.String()
}

// match returns the first rule whose Match reports true, or nil.
func (n *normalizer) match(err error) apis.Rule {
	for _, r := range n.rules {
		if r.Match(err) {
			return r
		}
	}
	return nil
}

// upstreamStatusFor resolves the status of an upstream failure raised at path.
//
// Resolution order (highest to lowest):
//  1. longest-prefix route rule on the path;
//  2. WithUpstreamStatus override;
//  3. built-in 404.
func (n *normalizer) upstreamStatusFor(path string) (status int, source, pattern string) {
	if n.routes != nil {
		if v, ok, pat := n.routes.MatchWithPattern(path); ok {
			return v, sourceRoute, pat
		}
	}
	if n.upstreamSet {
		return n.upstreamStatus, sourceOverride, ""
	}
	return n.upstreamStatus, sourceBuiltin, ""
}

// fallback builds the generic 500 problem for failures no rule claimed and
// logs the original failure once.
func (n *normalizer) fallback(ctx context.Context, err error, path string, now time.Time) *problem.Detail {
	n.logError(ctx, LogUnhandledFailure, err, kind.Unhandled, path)
	return problem.New(fallbackStatus,
		problem.WithDetailOption(DetailUnexpected),
		problem.WithInstanceOption(path),
		problem.WithCategoryOption(category.Generic),
		problem.WithTimestampOption(now),
	)
}

// logError emits one error-level entry. A panicking logger core is swallowed:
// logging must never change the response.
func (n *normalizer) logError(ctx context.Context, msg string, err error, k kind.Kind, path string) {
	defer func() { _ = recover() }()
	fields := append([]zap.Field{
		zap.Error(err),
		zap.String("kind", k.String()),
		zap.String("path", path),
	}, logging.Fields(ctx)...)
	n.logger.Error(msg, fields...)
}
