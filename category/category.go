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

package category

import (
	"bytes"
	"encoding"
	"errors"
	"strings"
)

// Category is the canonical, validated representation of a problem category.
//
// It is a separate type (not just string) so that the problem model cannot be
// populated with arbitrary user input by accident.
type Category string

const (
	// Generic marks failures that are not tied to the caller's input:
	// upstream dependency errors, unexpected server-side failures.
	Generic Category = "Generic"

	// Parameters marks failures caused by the supplied payload or parameters.
	// Problems in this category always expose the "errors" list.
	Parameters Category = "Parameters"
)

// Empty is the zero-value category. It is never valid on the wire.
var Empty Category = ""

var (
	// ErrCategoryInvalid is returned when a value is not one of the known
	// categories.
	ErrCategoryInvalid = errors.New("problem: invalid category")
)

// Ensure Category implements encoding.TextMarshaler / encoding.TextUnmarshaler
// so it can be embedded into JSON payloads and config structs.
var (
	_ encoding.TextMarshaler   = (*Category)(nil)
	_ encoding.TextUnmarshaler = (*Category)(nil)
)

// known lists every category, keyed by its lower-case spelling.
var known = map[string]Category{
	"generic":    Generic,
	"parameters": Parameters,
}

// Normalize trims surrounding spaces and lower-cases s. The result is the
// lookup key used by Parse, not a canonical category.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Parse takes a user-provided string and returns the matching Category.
// Matching is case-insensitive: "parameters", "PARAMETERS" and "Parameters"
// all yield Parameters.
func Parse(s string) (Category, error) {
	if c, ok := known[Normalize(s)]; ok {
		return c, nil
	}
	return Empty, ErrCategoryInvalid
}

// MustParse is the panic-on-error variant of Parse.
func MustParse(s string) Category {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Validate checks whether c is exactly one of the known categories.
// The empty category is invalid.
func Validate(c Category) error {
	switch c {
	case Generic, Parameters:
		return nil
	default:
		return ErrCategoryInvalid
	}
}

// CarriesErrors reports whether problems of this category must expose the
// per-field "errors" list.
func (c Category) CarriesErrors() bool {
	return c == Parameters
}

// String returns the wire spelling of the category.
func (c Category) String() string {
	return string(c)
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) {
	if err := Validate(c); err != nil {
		return nil, err
	}
	return []byte(c), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(bytes.TrimSpace(text)))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
