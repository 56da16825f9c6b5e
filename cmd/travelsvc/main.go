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

// Command travelsvc runs the travel HTTP service.
//
//	travelsvc --config travelsvc.yaml
//	travelsvc explain --path /trips/42/legs --upstream-status 500
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"dirpx.dev/problem/config"
	"dirpx.dev/problem/internal/app"
	"dirpx.dev/problem/logging"
	"dirpx.dev/problem/upstream"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:          "travelsvc",
		Short:        "Travel service answering every failure with problem+json",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), configFile)
		},
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "path to the YAML configuration file")
	root.AddCommand(newExplainCmd(&configFile))
	return root
}

func serve(ctx context.Context, configFile string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("Failed to build the service.", zap.Error(err))
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Run(ctx); err != nil {
		logger.Error("Service stopped with error.", zap.Error(err))
		return err
	}
	logger.Info("Service stopped.")
	return nil
}

// newExplainCmd prints how the configured normalizer would answer an upstream
// failure on a given request path.
func newExplainCmd(configFile *string) *cobra.Command {
	var (
		path           string
		upstreamStatus int
		message        string
	)
	cmd := &cobra.Command{
		Use:   "explain",
		Short: "Show which rule and status an upstream failure on --path resolves to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configFile)
			if err != nil {
				return err
			}
			a, err := app.New(cfg, zap.NewNop())
			if err != nil {
				return err
			}
			failure := &upstream.StatusError{
				Method:     "GET",
				URL:        cfg.Upstream.BaseURL + path,
				StatusCode: upstreamStatus,
				Message:    message,
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), a.Normalizer().Explain(failure, path))
			return err
		},
	}
	cmd.Flags().StringVar(&path, "path", "/", "request path")
	cmd.Flags().IntVar(&upstreamStatus, "upstream-status", 500, "status answered by the dependency")
	cmd.Flags().StringVar(&message, "message", "", "message answered by the dependency")
	return cmd
}
