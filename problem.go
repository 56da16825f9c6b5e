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

package problem

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"dirpx.dev/problem/category"
)

// ContentType is the media type of a serialized Detail.
const ContentType = "application/problem+json"

// Delimiter separates the field (or object) name from the message in every
// entry of Detail.Errors, e.g. "name: must not be blank".
const Delimiter = ": "

// Names of the extension properties carried next to the standard problem
// members.
const (
	PropertyTimestamp     = "timestamp"
	PropertyErrorCategory = "errorCategory"
	PropertyErrors        = "errors"
)

var (
	// ErrStatusOutOfRange is returned by Validate when Status is not a 4xx/5xx.
	ErrStatusOutOfRange = errors.New("problem: status must be 4xx or 5xx")
	// ErrErrorsMismatch is returned by Validate when Errors and Category
	// disagree.
	ErrErrorsMismatch = errors.New("problem: errors list does not match category")
)

// Detail is the uniform error payload returned for every failed request.
//
// It carries:
//   - Status: HTTP status code sent with the response;
//   - Title: short human summary, by default the status reason phrase;
//   - Detail: longer human explanation;
//   - Type / Instance: URI references, both set to the request path;
//   - Category: coarse classification (Generic or Parameters);
//   - Timestamp: the instant the failure was normalized;
//   - Errors: sorted "<name>: <message>" entries, Parameters only.
//
// A Detail is built fresh for each failed request. All WithX helpers return
// a shallow copy, so an instance handed to a transport is never mutated.
type Detail struct {
	Status    int
	Title     string
	Detail    string
	Type      string
	Instance  string
	Category  category.Category
	Timestamp time.Time
	Errors    []string
}

// New is a convenience constructor for Detail.
//
// Usage:
//
//	return problem.New(http.StatusConflict,
//	    problem.WithDetailOption("trip already booked"),
//	    problem.WithInstanceOption(r.URL.Path),
//	)
//
// The title defaults to the reason phrase of status and the category
// defaults to Generic. Options are applied in order.
func New(status int, opts ...Option) *Detail {
	p := &Detail{
		Status:   status,
		Title:    http.StatusText(status),
		Category: category.Generic,
	}
	for _, opt := range opts {
		p = opt(p)
	}
	return p
}

// Error implements the built-in error interface, so a handler may return
// a ready-made Detail and have it passed through unchanged.
//
// The format is:
//
//	<status> <title>: <detail>
func (p *Detail) Error() string {
	if p == nil {
		return "<nil>"
	}
	if p.Detail == "" {
		return fmt.Sprintf("%d %s", p.Status, p.Title)
	}
	return fmt.Sprintf("%d %s: %s", p.Status, p.Title, p.Detail)
}

// WithTitle returns a shallow copy of p with the given title.
func (p *Detail) WithTitle(title string) *Detail {
	cp := *p
	cp.Title = title
	return &cp
}

// WithDetail returns a shallow copy of p with the given detail message.
func (p *Detail) WithDetail(detail string) *Detail {
	cp := *p
	cp.Detail = detail
	return &cp
}

// WithInstance returns a shallow copy of p whose Type and Instance are both
// set to path.
func (p *Detail) WithInstance(path string) *Detail {
	cp := *p
	cp.Type = path
	cp.Instance = path
	return &cp
}

// WithCategory returns a shallow copy of p with the given category.
func (p *Detail) WithCategory(c category.Category) *Detail {
	cp := *p
	cp.Category = c
	return &cp
}

// WithTimestamp returns a shallow copy of p with the timestamp set to ts in UTC.
func (p *Detail) WithTimestamp(ts time.Time) *Detail {
	cp := *p
	cp.Timestamp = ts.UTC()
	return &cp
}

// WithErrors returns a copy of p holding a private copy of errs.
// The caller's slice is never retained.
func (p *Detail) WithErrors(errs []string) *Detail {
	cp := *p
	cp.Errors = slices.Clone(errs)
	return &cp
}

// Normalized returns a copy of p that satisfies the category invariant:
//
//   - an empty category becomes Generic;
//   - Generic problems carry no errors;
//   - Parameters problems carry a non-nil, lexicographically sorted list.
//
// The receiver is not modified.
func (p *Detail) Normalized() *Detail {
	cp := *p
	if cp.Category == category.Empty {
		cp.Category = category.Generic
	}
	if cp.Category.CarriesErrors() {
		errs := make([]string, len(p.Errors))
		copy(errs, p.Errors)
		slices.Sort(errs)
		cp.Errors = errs
	} else {
		cp.Errors = nil
	}
	return &cp
}

// Validate checks that p can be sent as-is.
func (p *Detail) Validate() error {
	if p == nil {
		return nil
	}
	if p.Status < 400 || p.Status > 599 {
		return ErrStatusOutOfRange
	}
	if err := category.Validate(p.Category); err != nil {
		return err
	}
	if !p.Category.CarriesErrors() && len(p.Errors) > 0 {
		return ErrErrorsMismatch
	}
	if p.Category.CarriesErrors() && !slices.IsSorted(p.Errors) {
		return ErrErrorsMismatch
	}
	return nil
}

// wireDetail is the JSON shape of Detail. Errors is a pointer so that a
// Parameters problem with no entries still renders "errors": [].
type wireDetail struct {
	Status    int               `json:"status"`
	Title     string            `json:"title"`
	Detail    string            `json:"detail"`
	Type      string            `json:"type"`
	Instance  string            `json:"instance"`
	Category  category.Category `json:"errorCategory"`
	Timestamp time.Time         `json:"timestamp"`
	Errors    *[]string         `json:"errors,omitempty"`
}

// MarshalJSON implements json.Marshaler. The normalized form of p is
// written, so the wire body always honours the category invariant.
// It has a value receiver so that both Detail and *Detail encode the same way.
func (p Detail) MarshalJSON() ([]byte, error) {
	n := p.Normalized()
	w := wireDetail{
		Status:    n.Status,
		Title:     n.Title,
		Detail:    n.Detail,
		Type:      n.Type,
		Instance:  n.Instance,
		Category:  n.Category,
		Timestamp: n.Timestamp.UTC(),
	}
	if n.Category.CarriesErrors() {
		w.Errors = &n.Errors
	}
	return json.Marshal(w)
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Detail) UnmarshalJSON(b []byte) error {
	var w wireDetail
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*p = Detail{
		Status:    w.Status,
		Title:     w.Title,
		Detail:    w.Detail,
		Type:      w.Type,
		Instance:  w.Instance,
		Category:  w.Category,
		Timestamp: w.Timestamp,
	}
	if w.Errors != nil {
		p.Errors = *w.Errors
	}
	return nil
}
