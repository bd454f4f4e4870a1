// SPDX-License-Identifier: MIT

// Package daemon manages the salesd process lifecycle.
package daemon

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
)

// Deps bundles everything the daemon manager needs to run.
type Deps struct {
	// APIHandler serves the analytics API. Required.
	APIHandler http.Handler

	// MetricsHandler serves Prometheus metrics on its own listener.
	// Nil disables the metrics server.
	MetricsHandler http.Handler
	MetricsAddr    string

	Logger zerolog.Logger
}

// Validate checks that all required dependencies are present.
func (d Deps) Validate() error {
	if d.APIHandler == nil {
		return fmt.Errorf("daemon: API handler is required")
	}
	if d.MetricsHandler != nil && d.MetricsAddr == "" {
		return fmt.Errorf("daemon: metrics handler set without a metrics address")
	}
	return nil
}
