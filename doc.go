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

// Package problem defines the uniform, machine-readable error body returned
// by dirpx HTTP services ("application/problem+json").
//
// The body has the standard problem members (status, title, detail, type,
// instance) plus three extension properties:
//
//   - errorCategory: "Generic" or "Parameters" (see package category);
//   - timestamp: when the failure was normalized;
//   - errors: sorted "<name>: <message>" entries, present only for
//     the Parameters category.
//
// Building a Detail from an arbitrary failure is the job of package
// normalizer. Writing it to a transport is the job of httpx, ginx and grpcx.
package problem
