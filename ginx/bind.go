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

package ginx

import (
	"errors"

	"dirpx.dev/problem/validation"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// UseValidator installs v as gin's struct validator, so that every gin
// binding reports *validation.Error.
func UseValidator(v *validation.Validator) {
	binding.Validator = v
}

// BindJSON decodes the request body into obj and validates it with v.
// Any failure is returned as a *validation.Error, ready for c.Error. Field
// names are the JSON names whether or not UseValidator was called:
//
//	var req TripRequest
//	if err := ginx.BindJSON(c, v, &req); err != nil {
//	    _ = c.Error(err)
//	    return
//	}
func BindJSON(c *gin.Context, v *validation.Validator, obj any) error {
	if err := c.ShouldBindWith(obj, binding.JSON); err != nil {
		var verr *validation.Error
		if errors.As(err, &verr) {
			return verr
		}
		var ves validator.ValidationErrors
		if errors.As(err, &ves) {
			// gin's own validator reports Go field names; validating again
			// with v yields the JSON names and the object errors.
			var own *validation.Error
			if errors.As(v.Struct(obj), &own) {
				return own
			}
			return v.FromValidationErrors(ves)
		}
		return v.DecodeError(obj, err)
	}
	if binding.Validator == binding.StructValidator(v) {
		return nil
	}
	return v.Struct(obj)
}
