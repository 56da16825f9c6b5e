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

// Package category provides the coarse classification tag attached to every
// problem response under the "errorCategory" property.
//
// Only two categories exist:
//
//   - Generic: dependency and server-side failures; the problem carries
//     no per-field error list;
//   - Parameters: input validation failures; the problem always carries
//     a sorted "errors" list.
//
// Unlike codes in other dirpx packages, categories are part of a published
// wire contract, so their spelling is fixed (capitalized, no separators) and
// parsing is case-insensitive only to be forgiving with configuration input.
package category
