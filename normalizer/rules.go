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
	"errors"
	"net/http"
	"time"

	"dirpx.dev/problem"
	"dirpx.dev/problem/apis"
	"dirpx.dev/problem/category"
	"dirpx.dev/problem/kind"
)

// builtins returns the built-in rule chain in evaluation order.
func (n *normalizer) builtins() []apis.Rule {
	return []apis.Rule{
		passthroughRule{},
		validationRule{},
		upstreamRule{n: n},
	}
}

// passthroughRule lets a handler return a ready-made *problem.Detail.
type passthroughRule struct{}

func (passthroughRule) Kind() kind.Kind { return kind.Passthrough }

func (r passthroughRule) Match(err error) bool { return r.target(err) != nil }

func (r passthroughRule) Build(_ context.Context, err error, path string, now time.Time) *problem.Detail {
	return complete(r.target(err), path, now)
}

func (passthroughRule) target(err error) *problem.Detail {
	var pd *problem.Detail
	if errors.As(err, &pd) {
		return pd
	}
	return nil
}

// complete fills in what a rule or handler left out: type and instance
// default to the request path, the timestamp to now and the title to the
// reason phrase. A status outside 4xx/5xx is replaced by 500 and an unknown
// category by Generic. pd is not modified.
func complete(pd *problem.Detail, path string, now time.Time) *problem.Detail {
	cp := *pd
	if !validStatus(cp.Status) {
		cp.Status = fallbackStatus
		cp.Title = ""
	}
	if cp.Title == "" {
		cp.Title = http.StatusText(cp.Status)
	}
	if cp.Type == "" {
		cp.Type = path
	}
	if cp.Instance == "" {
		cp.Instance = path
	}
	if cp.Timestamp.IsZero() {
		cp.Timestamp = now
	}
	if category.Validate(cp.Category) != nil {
		cp.Category = category.Generic
	}
	return cp.Normalized()
}

// validationRule handles inbound payload validation failures.
type validationRule struct{}

func (validationRule) Kind() kind.Kind { return kind.PayloadValidation }

func (r validationRule) Match(err error) bool { return r.target(err) != nil }

func (r validationRule) Build(_ context.Context, err error, path string, now time.Time) *problem.Detail {
	ve := r.target(err)
	status, _ := validationStatus(ve.Status())
	return problem.New(status,
		problem.WithTitleOption(TitleBadRequestOnPayload),
		problem.WithDetailOption(DetailValidationError),
		problem.WithInstanceOption(path),
		problem.WithCategoryOption(category.Parameters),
		problem.WithTimestampOption(now),
		problem.WithErrorsOption(collectErrors(ve.FieldErrors(), ve.ObjectErrors())),
	)
}

func (validationRule) target(err error) apis.ValidationError {
	var ve apis.ValidationError
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}

// validationStatus returns the supplied status when it is a 4xx/5xx, 400
// otherwise.
func validationStatus(supplied int) (int, string) {
	if validStatus(supplied) {
		return supplied, sourceSupplied
	}
	return defaultValidationStatus, sourceBuiltin
}

// upstreamRule handles failed outbound dependency calls. The status reported
// by the dependency is deliberately not propagated.
type upstreamRule struct {
	n *normalizer
}

func (upstreamRule) Kind() kind.Kind { return kind.UpstreamCall }

func (r upstreamRule) Match(err error) bool {
	var ue apis.UpstreamError
	return errors.As(err, &ue)
}

func (r upstreamRule) Build(ctx context.Context, err error, path string, now time.Time) *problem.Detail {
	var ue apis.UpstreamError
	errors.As(err, &ue)

	r.n.logError(ctx, LogUpstreamCallIssue, err, kind.UpstreamCall, path)

	status, _, _ := r.n.upstreamStatusFor(path)
	return problem.New(status,
		problem.WithDetailOption(upstreamMessage(ue)),
		problem.WithInstanceOption(path),
		problem.WithCategoryOption(category.Generic),
		problem.WithTimestampOption(now),
	)
}
