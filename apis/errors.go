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

// UpstreamError represents a failed outbound dependency call that was
// answered with a non-success status.
//
// The normalizer consumes exactly two things from it: the status reported by
// the dependency and its message. Everything else (URL, method, raw body)
// is only used for logging through the error value itself.
type UpstreamError interface {
	error

	// UpstreamStatus returns the status code the dependency answered with.
	// For HTTP this is the response status; for gRPC it is the HTTP
	// equivalent of the status code.
	UpstreamStatus() int

	// UpstreamMessage returns the dependency's message. It MAY be empty when
	// the dependency provided none; callers must not substitute Error().
	UpstreamMessage() string
}

// FieldError is a validation failure scoped to a single input field.
// It is transient: it only lives for one normalization call.
type FieldError struct {
	// Field is the logical path to the failing field as the client sent it,
	// e.g. "name" or "address.city".
	Field string `json:"field"`

	// Message is a short human explanation, e.g. "must not be blank".
	Message string `json:"message"`
}

// ObjectError is a validation failure scoped to the whole submitted object
// rather than to one of its fields (cross-field rules, malformed payloads).
type ObjectError struct {
	// Object names the submitted object, e.g. "tripRequest".
	Object string `json:"object"`

	// Message is a short human explanation.
	Message string `json:"message"`
}

// ValidationError represents an inbound binding/validation failure.
//
// Implementations SHOULD return slices that are safe to iterate over and that
// will not be modified afterwards. Returning nil is allowed and simply means
// "none of that kind".
type ValidationError interface {
	error

	// FieldErrors returns the field-level violations. May return nil.
	FieldErrors() []FieldError

	// ObjectErrors returns the object-level (global) violations. May return nil.
	ObjectErrors() []ObjectError

	// Status returns the HTTP status the validation subsystem wants the
	// response to carry, typically 400.
	Status() int
}
