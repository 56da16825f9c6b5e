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
	"time"

	"dirpx.dev/problem/apis"
	"go.uber.org/zap"
)

type routeRule struct {
	// prefix is the raw path prefix (may contain "*"). It is validated when
	// the route trie is built.
	prefix string
	// status is the HTTP status upstream failures under prefix are reported with.
	status int
}

type builder struct {
	logger *zap.Logger
	now    func() time.Time

	// custom rules, evaluated before the built-in ones in this order.
	custom []apis.Rule

	// upstreamStatus replaces defaultUpstreamStatus when upstreamSet is true.
	upstreamStatus int
	upstreamSet    bool

	// routes are per-path overrides of the upstream status (LPM).
	routes []routeRule
}

// newBuilder creates a builder seeded with library defaults.
func newBuilder() *builder {
	return &builder{
		logger:         zap.NewNop(),
		now:            time.Now,
		upstreamStatus: defaultUpstreamStatus,
	}
}
