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
	"net/http"
	"strconv"

	"dirpx.dev/problem/apis"
	"dirpx.dev/problem/httpx"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var problemsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "problems_total",
		Help:      "Total number of problem responses by category, status and failure kind",
	},
	[]string{"category", "status", "kind"},
)

// Problems returns the catch-all middleware. It must be registered before
// the routes it protects.
//
// After the handler chain returns, the last error pushed with c.Error is
// normalized and written, unless the response was already written. Panics
// are recovered and normalized the same way; http.ErrAbortHandler is
// re-raised.
func Problems(n apis.Normalizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				abortWithProblem(c, n, httpx.Recovered(rec))
			}
		}()

		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		abortWithProblem(c, n, c.Errors.Last().Err)
	}
}

func abortWithProblem(c *gin.Context, n apis.Normalizer, err error) {
	p := n.Normalize(c.Request.Context(), err, c.Request.URL.Path)
	problemsTotal.WithLabelValues(p.Category.String(), strconv.Itoa(p.Status), n.Classify(err).String()).Inc()
	c.Abort()
	httpx.Writer{Normalizer: n}.Write(c.Writer, p)
}
