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
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MessageFunc renders one violated tag into a short human message.
type MessageFunc func(fe validator.FieldError) string

// defaultMessages is the built-in catalog keyed by validator tag.
var defaultMessages = map[string]MessageFunc{
	"required": func(validator.FieldError) string { return "must not be blank" },
	"gt": func(fe validator.FieldError) string {
		if fe.Param() == "0" {
			return "must be positive"
		}
		return "must be greater than " + fe.Param()
	},
	"gte": func(fe validator.FieldError) string {
		if fe.Param() == "0" {
			return "must be positive or zero"
		}
		return "must be greater than or equal to " + fe.Param()
	},
	"lt": func(fe validator.FieldError) string {
		if fe.Param() == "0" {
			return "must be negative"
		}
		return "must be less than " + fe.Param()
	},
	"lte": func(fe validator.FieldError) string { return "must be less than or equal to " + fe.Param() },
	"min": func(fe validator.FieldError) string {
		if isSized(fe.Kind()) {
			return "size must be at least " + fe.Param()
		}
		return "must be greater than or equal to " + fe.Param()
	},
	"max": func(fe validator.FieldError) string {
		if isSized(fe.Kind()) {
			return "size must be at most " + fe.Param()
		}
		return "must be less than or equal to " + fe.Param()
	},
	"len":      func(fe validator.FieldError) string { return "size must be " + fe.Param() },
	"email":    func(validator.FieldError) string { return "must be a well-formed email address" },
	"url":      func(validator.FieldError) string { return "must be a valid URL" },
	"uuid":     func(validator.FieldError) string { return "must be a valid UUID" },
	"datetime": func(fe validator.FieldError) string { return "must match the format " + fe.Param() },
	"oneof": func(fe validator.FieldError) string {
		return "must be one of [" + strings.Join(strings.Fields(fe.Param()), ", ") + "]"
	},
}

// defaultMessage is used for tags missing from the catalog.
func defaultMessage(fe validator.FieldError) string {
	return fmt.Sprintf("failed on the '%s' tag", fe.Tag())
}

func isSized(k reflect.Kind) bool {
	switch k {
	case reflect.String, reflect.Slice, reflect.Array, reflect.Map:
		return true
	default:
		return false
	}
}
