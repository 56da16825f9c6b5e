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

// Package kind names the failure kinds the normalizer knows how to translate.
//
// A kind is a short dot-separated identifier ("upstream.call",
// "payload.validation"). It is internal vocabulary: it never appears in the
// problem body, only in logs, metrics and diagnostics. The public
// classification on the wire is the category (see package category).
package kind
