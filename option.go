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

package problem

import (
	"time"

	"dirpx.dev/problem/category"
)

// Option is a functional option for constructing or transforming a Detail.
// It always takes a *Detail and returns a (possibly new) *Detail.
type Option func(*Detail) *Detail

// WithTitleOption overrides the default reason-phrase title.
func WithTitleOption(title string) Option {
	return func(p *Detail) *Detail {
		return p.WithTitle(title)
	}
}

// WithDetailOption sets the detail message on construction.
func WithDetailOption(detail string) Option {
	return func(p *Detail) *Detail {
		return p.WithDetail(detail)
	}
}

// WithInstanceOption sets both Type and Instance to path on construction.
func WithInstanceOption(path string) Option {
	return func(p *Detail) *Detail {
		return p.WithInstance(path)
	}
}

// WithCategoryOption sets the category on construction.
func WithCategoryOption(c category.Category) Option {
	return func(p *Detail) *Detail {
		return p.WithCategory(c)
	}
}

// WithTimestampOption sets the timestamp on construction.
func WithTimestampOption(ts time.Time) Option {
	return func(p *Detail) *Detail {
		return p.WithTimestamp(ts)
	}
}

// WithErrorsOption attaches the error list on construction.
// Intended to be used together with WithCategoryOption(category.Parameters).
func WithErrorsOption(errs []string) Option {
	return func(p *Detail) *Detail {
		return p.WithErrors(errs)
	}
}
