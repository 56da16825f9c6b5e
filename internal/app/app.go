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

// Package app wires the travelsvc HTTP service: configuration, logging,
// payload validation, the problem normalizer and the upstream trips client
// behind a gin engine.
//
// The trip routes and their payload types are demo wiring. They carry no
// business logic and exist to drive the normalizer end to end: an upstream
// failure, a payload validation failure and a ready-made problem.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"dirpx.dev/problem/apis"
	"dirpx.dev/problem/config"
	"dirpx.dev/problem/ginx"
	"dirpx.dev/problem/normalizer"
	"dirpx.dev/problem/upstream"
	"dirpx.dev/problem/validation"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const readHeaderTimeout = 5 * time.Second

// App is a fully wired service, ready to Run.
type App struct {
	cfg        *config.Config
	logger     *zap.Logger
	validator  *validation.Validator
	normalizer apis.Normalizer
	trips      *upstream.Client
	engine     *gin.Engine
}

// New builds the service from cfg. The trips client is only created when
// cfg.Upstream.BaseURL is set; without it the trip routes answer 503.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{
		cfg:       cfg,
		logger:    logger,
		validator: validation.New(),
	}

	opts := []normalizer.Option{normalizer.WithLogger(logger)}
	if s := cfg.Problems.UpstreamStatus; s != 0 {
		opts = append(opts, normalizer.WithUpstreamStatus(s))
	}
	for _, r := range cfg.Problems.UpstreamRoutes {
		opts = append(opts, normalizer.WithUpstreamRoute(r.Prefix, r.Status))
	}
	n, err := normalizer.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	a.normalizer = n

	if cfg.Upstream.BaseURL != "" {
		trips, err := upstream.New(cfg.Upstream.BaseURL,
			upstream.WithHTTPClient(upstream.NewHTTPClient(upstream.WithTimeout(cfg.Upstream.Timeout))),
			upstream.WithLogger(logger),
			upstream.WithMaxRetries(cfg.Upstream.MaxRetries),
		)
		if err != nil {
			return nil, fmt.Errorf("app: %w", err)
		}
		a.trips = trips
	}

	a.engine = a.routes()
	return a, nil
}

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler {
	return a.engine
}

// Normalizer returns the normalizer the service answers failures with.
func (a *App) Normalizer() apis.Normalizer {
	return a.normalizer
}

func (a *App) routes() *gin.Engine {
	if a.cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	ginx.UseValidator(a.validator)

	r := gin.New()
	r.Use(ginx.TraceID(), ginx.Metrics(), ginx.Problems(a.normalizer))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h := tripHandler{trips: a.trips, validator: a.validator}
	r.GET("/trips/:id", h.get)
	r.GET("/trips/:id/legs", h.legs)
	r.POST("/trips", h.create)
	return r
}

// Run serves until ctx is cancelled, then drains in-flight requests for at
// most cfg.ShutdownTimeout.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.Addr(),
		Handler:           a.engine,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("Travel service started.", zap.String("addr", srv.Addr), zap.String("env", a.cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down.")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("app: shutdown: %w", err)
	}
	return <-errCh
}
