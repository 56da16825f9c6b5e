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

package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"dirpx.dev/problem/apis"
	"github.com/go-playground/validator/v10"
)

// DefaultTagName is the struct tag holding the validation rules.
const DefaultTagName = "binding"

// Object error messages produced for bodies that cannot be decoded.
const (
	MessageEmptyBody    = "request body must not be empty"
	MessageMalformed    = "payload is not valid JSON"
	MessageInvalidType  = "has an invalid type"
	defaultObjectName   = "object"
	jsonTagName         = "json"
	jsonTagIgnoredValue = "-"
)

// ObjectValidator is implemented by payloads with rules spanning several
// fields. Every returned message becomes one object error named after the
// payload type.
type ObjectValidator interface {
	ValidateObject() []string
}

// Validator validates payload structs. It is safe for concurrent use once
// built.
type Validator struct {
	validate *validator.Validate
	messages map[string]MessageFunc
	status   int
	tagName  string
}

// Option configures a Validator.
type Option func(*Validator)

// WithTagName changes the struct tag the rules are read from.
func WithTagName(name string) Option {
	return func(v *Validator) {
		if name != "" {
			v.tagName = name
		}
	}
}

// WithMessage adds or replaces the message for a validator tag.
func WithMessage(tag string, fn MessageFunc) Option {
	return func(v *Validator) {
		if tag != "" && fn != nil {
			v.messages[tag] = fn
		}
	}
}

// WithStatus sets the HTTP status reported with validation failures.
func WithStatus(status int) Option {
	return func(v *Validator) { v.status = status }
}

// New builds a Validator.
func New(opts ...Option) *Validator {
	v := &Validator{
		messages: make(map[string]MessageFunc, len(defaultMessages)),
		status:   http.StatusBadRequest,
		tagName:  DefaultTagName,
	}
	for tag, fn := range defaultMessages {
		v.messages[tag] = fn
	}
	for _, opt := range opts {
		opt(v)
	}

	v.validate = validator.New(validator.WithRequiredStructEnabled())
	v.validate.SetTagName(v.tagName)
	v.validate.RegisterTagNameFunc(jsonFieldName)
	return v
}

// Struct validates obj. It returns nil when obj is valid, an *Error when
// field or object rules are violated, and the validator's own error when obj
// cannot be validated at all (e.g. it is not a struct).
func (v *Validator) Struct(obj any) error {
	var fields []apis.FieldError
	if err := v.validate.Struct(obj); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		fields = v.fieldErrors(verrs)
	}

	var objects []apis.ObjectError
	if ov, ok := obj.(ObjectValidator); ok {
		name := ObjectName(obj)
		for _, msg := range ov.ValidateObject() {
			objects = append(objects, apis.ObjectError{Object: name, Message: msg})
		}
	}

	if len(fields) == 0 && len(objects) == 0 {
		return nil
	}
	return &Error{fields: fields, objects: objects, status: v.status}
}

// ValidateStruct implements gin's binding.StructValidator. Non-struct values
// (maps, scalars) are accepted as is.
func (v *Validator) ValidateStruct(obj any) error {
	if obj == nil {
		return nil
	}
	t := reflect.TypeOf(obj)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	return v.Struct(obj)
}

// Engine implements gin's binding.StructValidator.
func (v *Validator) Engine() any {
	return v.validate
}

// FromValidationErrors converts raw validator errors (e.g. produced by gin's
// default validator) into an *Error.
func (v *Validator) FromValidationErrors(verrs validator.ValidationErrors) *Error {
	return &Error{fields: v.fieldErrors(verrs), status: v.status}
}

// DecodeError turns a body decoding failure for obj into an *Error. Type
// mismatches on a known field are reported against that field; anything else
// becomes an object error.
func (v *Validator) DecodeError(obj any, err error) *Error {
	e := &Error{status: v.status}

	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &typeErr) && typeErr.Field != "":
		e.fields = []apis.FieldError{{Field: typeErr.Field, Message: MessageInvalidType}}
	case errors.Is(err, io.EOF):
		e.objects = []apis.ObjectError{{Object: ObjectName(obj), Message: MessageEmptyBody}}
	default:
		e.objects = []apis.ObjectError{{Object: ObjectName(obj), Message: MessageMalformed}}
	}
	return e
}

func (v *Validator) fieldErrors(verrs validator.ValidationErrors) []apis.FieldError {
	out := make([]apis.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, apis.FieldError{Field: fieldPath(fe), Message: v.message(fe)})
	}
	return out
}

func (v *Validator) message(fe validator.FieldError) string {
	if fn, ok := v.messages[fe.Tag()]; ok {
		return fn(fe)
	}
	return defaultMessage(fe)
}

// ObjectName returns the lower-camel name of obj's type ("TripRequest" ->
// "tripRequest"), or "object" for unnamed types.
func ObjectName(obj any) string {
	if obj == nil {
		return defaultObjectName
	}
	t := reflect.TypeOf(obj)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	name := t.Name()
	if name == "" {
		return defaultObjectName
	}
	r, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToLower(r)) + name[size:]
}

// fieldPath strips the root struct name from the namespace, keeping the
// client-facing path ("TripRequest.address.city" -> "address.city").
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

// jsonFieldName reports a field by its JSON name.
func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get(jsonTagName), ",")
	switch name {
	case jsonTagIgnoredValue:
		return ""
	case "":
		return f.Name
	default:
		return name
	}
}

// Error is a failed validation pass. It implements apis.ValidationError.
type Error struct {
	fields  []apis.FieldError
	objects []apis.ObjectError
	status  int
}

var _ apis.ValidationError = (*Error)(nil)

// NewError builds an Error by hand, e.g. for rules checked in a handler.
func NewError(status int, fields []apis.FieldError, objects []apis.ObjectError) *Error {
	return &Error{
		fields:  append([]apis.FieldError(nil), fields...),
		objects: append([]apis.ObjectError(nil), objects...),
		status:  status,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	parts := make([]string, 0, len(e.fields)+len(e.objects))
	for _, f := range e.fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	for _, o := range e.objects {
		parts = append(parts, o.Object+": "+o.Message)
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(parts, "; "))
}

// FieldErrors implements apis.ValidationError.
func (e *Error) FieldErrors() []apis.FieldError { return e.fields }

// ObjectErrors implements apis.ValidationError.
func (e *Error) ObjectErrors() []apis.ObjectError { return e.objects }

// Status implements apis.ValidationError.
func (e *Error) Status() int { return e.status }
