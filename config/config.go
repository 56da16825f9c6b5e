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

// Package config loads the travelsvc configuration from defaults, an optional
// YAML file and TRAVELSVC_* environment variables, in that order of
// precedence (later wins).
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable. Nested keys use "_",
// e.g. TRAVELSVC_UPSTREAM_BASE_URL.
const EnvPrefix = "TRAVELSVC"

// Config is the full service configuration.
type Config struct {
	Port            int           `mapstructure:"port" validate:"gte=1,lte=65535"`
	Env             string        `mapstructure:"env" validate:"oneof=dev qa prod"`
	LogLevel        string        `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
	Upstream        Upstream      `mapstructure:"upstream"`
	Problems        Problems      `mapstructure:"problems"`
}

// Upstream configures the outbound REST client.
type Upstream struct {
	BaseURL    string        `mapstructure:"base_url" validate:"omitempty,url"`
	Timeout    time.Duration `mapstructure:"timeout" validate:"gt=0"`
	MaxRetries uint64        `mapstructure:"max_retries" validate:"lte=10"`
}

// Problems configures the error normalizer.
type Problems struct {
	// UpstreamStatus replaces the status used for failed upstream calls.
	// Zero keeps the built-in default.
	UpstreamStatus int `mapstructure:"upstream_status" validate:"omitempty,gte=400,lte=599"`

	// UpstreamRoutes override UpstreamStatus for request paths below a
	// prefix. A list rather than a map, since viper folds map keys to lower
	// case and request paths are case-sensitive.
	UpstreamRoutes []Route `mapstructure:"upstream_routes" validate:"dive"`
}

// Route binds an upstream failure status to a request path prefix.
type Route struct {
	Prefix string `mapstructure:"prefix" validate:"required,startswith=/"`
	Status int    `mapstructure:"status" validate:"gte=400,lte=599"`
}

var defaults = map[string]any{
	"port":                     8080,
	"env":                      "prod",
	"log_level":                "info",
	"shutdown_timeout":         10 * time.Second,
	"upstream.base_url":        "",
	"upstream.timeout":         5 * time.Second,
	"upstream.max_retries":     2,
	"problems.upstream_status": 0,
}

// Load reads the configuration. When file is empty, "travelsvc.yaml" in the
// working directory is used if present; an explicitly named file must exist.
func Load(file string) (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", file, err)
		}
	} else {
		v.SetConfigName("travelsvc")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every field against its constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Addr is the listen address for Port.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
