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

// Package logging builds the service's zap logger and carries the request
// trace id through context.Context so that deep collaborators (the normalizer,
// the upstream client) can stamp their log entries without seeing the router.
package logging

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// TraceIDKey is the log field name carrying the request trace id.
const TraceIDKey = "trace_id"

// Environments recognized by New.
const (
	EnvDev  = "dev"
	EnvQA   = "qa"
	EnvProd = "prod"
)

type traceIDKey struct{}

// New builds a logger for env. "dev" and "qa" get a human-friendly console
// encoder with colored levels; everything else gets the production JSON
// encoder writing to stdout. level is a zap level name ("debug", "info", ...),
// empty means info.
func New(env, level string) (*zap.Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(strings.TrimSpace(env)) {
	case EnvDev, EnvQA:
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		cfg = zap.NewProductionConfig()
		cfg.OutputPaths = []string{"stdout"}
		cfg.ErrorOutputPaths = []string{"stderr"}
	}

	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("logging: invalid level %q: %w", level, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	return cfg.Build(zap.AddStacktrace(zap.DPanicLevel))
}

// WithTraceID returns a copy of ctx carrying id.
func WithTraceID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, traceIDKey{}, id)
}

// TraceID returns the trace id stored in ctx, or "".
func TraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(traceIDKey{}).(string)
	return id
}

// Fields returns the trace id as a zap field list, empty when ctx has none.
func Fields(ctx context.Context) []zap.Field {
	if id := TraceID(ctx); id != "" {
		return []zap.Field{zap.String(TraceIDKey, id)}
	}
	return nil
}
