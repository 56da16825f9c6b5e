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

package kind

import (
	"bytes"
	"encoding"
	"errors"
	"regexp"
	"strings"
)

// Kind is the canonical, validated name of a failure kind.
//
// Kinds are dot-separated hierarchical identifiers. The first segment names
// the failure family, the following ones refine it:
//
//   - "upstream.call": an outbound HTTP or gRPC call returned a failure status
//   - "payload.validation": inbound binding or validation failed
//   - "internal.unhandled": nothing else matched
//
// Every normalization rule is registered under exactly one Kind. The kind is
// what shows up in logs, metrics labels and Explain output.
type Kind string

// MinLength and MaxLength define the allowed length range for a kind.
const (
	// MinLength is the minimum length for a kind.
	MinLength = 3

	// MaxLength is the maximum length for a kind.
	MaxLength = 128
)

const (
	// kindFmt accepts 1 to 4 segments, dot-separated, each segment:
	//
	//   - starts with a lowercase ASCII letter [a-z]
	//   - continues with lowercase letters, digits, or underscore [a-z0-9_]*
	kindFmt = `^[a-z][a-z0-9_]*(\.[a-z][a-z0-9_]*){0,3}$`
)

var (
	kindRe = regexp.MustCompile(kindFmt)
)

var (
	// ErrKindInvalidFormat is returned when a kind does not conform to the
	// expected format.
	ErrKindInvalidFormat = errors.New("problem: invalid kind format")
	// ErrKindInvalidLength is returned when a kind is too short or too long.
	ErrKindInvalidLength = errors.New("problem: invalid kind length")
)

var (
	_ encoding.TextMarshaler   = (*Kind)(nil)
	_ encoding.TextUnmarshaler = (*Kind)(nil)
)

// Empty is the zero-value kind. It is never valid.
var Empty Kind = ""

// Built-in kinds used by the normalizer.
const (
	// UpstreamCall is an outbound dependency call (HTTP or gRPC) that
	// returned a failure status.
	UpstreamCall Kind = "upstream.call"

	// PayloadValidation is an inbound binding/validation violation.
	PayloadValidation Kind = "payload.validation"

	// Passthrough is a ready-made problem returned by a handler.
	Passthrough Kind = "problem.passthrough"

	// Unhandled is the fallback for everything no rule claimed.
	Unhandled Kind = "internal.unhandled"
)

// Normalize trims surrounding spaces and lower-cases s. It does not
// guarantee validity.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Parse normalizes and validates s. The empty string is rejected.
func Parse(s string) (Kind, error) {
	s = Normalize(s)
	if err := validate(s); err != nil {
		return Empty, err
	}
	return Kind(s), nil
}

// MustParse is the panic-on-error variant of Parse, meant for package-level
// declarations of custom kinds.
func MustParse(s string) Kind {
	k, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return k
}

// Validate checks whether k is in canonical form.
func Validate(k Kind) error {
	return validate(string(k))
}

// String returns the canonical string representation of the kind.
func (k Kind) String() string {
	return string(k)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if err := Validate(k); err != nil {
		return nil, err
	}
	return []byte(k), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(bytes.TrimSpace(text)))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

func validate(s string) error {
	if len(s) < MinLength || len(s) > MaxLength {
		return ErrKindInvalidLength
	}
	if !kindRe.MatchString(s) {
		return ErrKindInvalidFormat
	}
	return nil
}
