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
	"net/http"
)

// Fixed texts of the built-in rules. They are part of the wire contract and
// of the log contract; changing them is a breaking change for clients and for
// log-based alerting.
const (
	// TitleBadRequestOnPayload is the title of every payload validation problem.
	TitleBadRequestOnPayload = "Bad Request on payload"

	// DetailValidationError is the detail of every payload validation problem.
	DetailValidationError = "Validation error on supplied payload"

	// DetailUnexpected is the detail of the fallback problem. The original
	// failure text is never exposed to clients.
	DetailUnexpected = "Unexpected error while processing the request."

	// LogUpstreamCallIssue is the message logged once per upstream failure.
	LogUpstreamCallIssue = "Rest Client API call issue."

	// LogUnhandledFailure is the message logged once per fallback problem.
	LogUnhandledFailure = "Unhandled request failure."
)

const (
	// defaultUpstreamStatus is the status every upstream failure is reported
	// with, whatever the dependency answered.
	defaultUpstreamStatus = http.StatusNotFound

	// defaultValidationStatus replaces a validation status outside 4xx/5xx.
	defaultValidationStatus = http.StatusBadRequest

	// fallbackStatus is the status of the fallback problem.
	fallbackStatus = http.StatusInternalServerError
)

// Explain sources.
const (
	sourceBuiltin     = "builtin"
	sourceOverride    = "override"
	sourceRoute       = "route"
	sourceSupplied    = "supplied"
	sourcePassthrough = "passthrough"
	sourceCustom      = "custom"
	sourceFallback    = "fallback"
)
