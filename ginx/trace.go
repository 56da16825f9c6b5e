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
	"dirpx.dev/problem/logging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// HeaderTraceID is read from the request and echoed on the response.
	HeaderTraceID = "X-Trace-Id"

	// TraceIDKey is the gin context key holding the trace id.
	TraceIDKey = "traceId"
)

// TraceID returns middleware that assigns every request a trace id, taken
// from the X-Trace-Id header or freshly generated. The id is stored in the
// gin context, in the request context (see logging.TraceID) and echoed in
// the response header.
func TraceID() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(HeaderTraceID)
		if traceID == "" {
			traceID = uuid.NewString()
		}
		c.Set(TraceIDKey, traceID)
		c.Request = c.Request.WithContext(logging.WithTraceID(c.Request.Context(), traceID))
		c.Writer.Header().Set(HeaderTraceID, traceID)
		c.Next()
	}
}
