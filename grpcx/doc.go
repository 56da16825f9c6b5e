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

// Package grpcx plugs the normalizer into gRPC.
//
// On the server side UnaryServerInterceptor normalizes handler failures and
// returns them as a status carrying the problem in rich error details
// (errdetails.ErrorInfo and errdetails.BadRequest). On the client side
// UnaryClientInterceptor turns failure statuses answered by a dependency into
// apis.UpstreamError values, so they are reported as upstream call failures.
package grpcx
