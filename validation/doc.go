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

// Package validation runs struct validation on inbound payloads and reports
// the outcome as an apis.ValidationError the normalizer understands.
//
// Field rules are expressed with go-playground/validator tags (by default the
// "binding" tag, the same tag gin uses). Field names are reported as the
// client sent them, i.e. by their JSON names, and violations are rendered
// with a small message catalog ("required" -> "must not be blank", "gt=0" ->
// "must be positive", ...). Rules spanning several fields are implemented by
// the payload itself through ObjectValidator and reported as object errors.
//
// A *Validator also implements gin's binding.StructValidator, so installing
// it as binding.Validator makes c.ShouldBindJSON return *Error directly.
package validation
