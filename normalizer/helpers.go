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
	"reflect"
	"slices"

	"dirpx.dev/problem"
	"dirpx.dev/problem/apis"
)

// freezeRules concatenates custom and built-in rules into a fresh slice so
// that later appends on the builder cannot reach the normalizer.
func freezeRules(custom, builtins []apis.Rule) []apis.Rule {
	out := make([]apis.Rule, 0, len(custom)+len(builtins))
	out = append(out, custom...)
	return append(out, builtins...)
}

// collectErrors formats field errors as "<field>: <message>" and object
// errors as "<object>: <message>", merges both and sorts the result
// lexicographically. Nil inputs are treated as empty; the result is never nil.
func collectErrors(fields []apis.FieldError, objects []apis.ObjectError) []string {
	out := make([]string, 0, len(fields)+len(objects))
	for _, f := range fields {
		out = append(out, f.Field+problem.Delimiter+f.Message)
	}
	for _, o := range objects {
		out = append(out, o.Object+problem.Delimiter+o.Message)
	}
	slices.Sort(out)
	return out
}

// upstreamMessage returns the dependency's message verbatim, or "" when the
// error carries none or cannot produce one.
func upstreamMessage(ue apis.UpstreamError) (msg string) {
	if ue == nil {
		return ""
	}
	defer func() {
		if r := recover(); r != nil {
			msg = ""
		}
	}()
	return ue.UpstreamMessage()
}

// validStatus reports whether status is a 4xx or 5xx HTTP status.
func validStatus(status int) bool {
	return status >= 400 && status <= 599
}

// isNilRule reports whether r is nil or a typed nil pointer.
func isNilRule(r apis.Rule) bool {
	if r == nil {
		return true
	}
	v := reflect.ValueOf(r)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
