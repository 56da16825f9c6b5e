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

// Package ginx plugs the normalizer into gin.
//
// Handlers report failures with c.Error(err) (or by panicking) and return;
// the Problems middleware normalizes the last error and writes the problem
// response. TraceID and Metrics are the usual companions:
//
//	r := gin.New()
//	r.Use(ginx.TraceID(), ginx.Metrics(), ginx.Problems(n))
package ginx
