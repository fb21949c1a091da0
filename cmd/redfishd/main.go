// redfishtree is a Redfish resource-tree server.
// Copyright (C) 2025  Matthew Burns
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"redfishtree/internal/api"
	"redfishtree/internal/bootstrap"
	"redfishtree/internal/logging"
	"redfishtree/internal/metrics"
	"redfishtree/internal/session"
)

func main() {
	var (
		addr     = flag.String("addr", ":8443", "HTTP listen address")
		logLevel = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	)
	flag.Parse()

	if *logLevel == "info" {
		if env := os.Getenv("REDFISH_LOG_LEVEL"); env != "" {
			*logLevel = env
		}
	}
	slog.SetDefault(logging.New(*logLevel))

	adminPassword := os.Getenv("REDFISH_ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "admin"
		slog.Warn("REDFISH_ADMIN_PASSWORD not set, using default admin password")
	}

	tr, _ := bootstrap.Build(adminPassword)
	sessions := session.New()
	apiHandler := api.New(tr, sessions)

	mux := http.NewServeMux()
	mux.Handle("/redfish/", api.WithLogging(api.WithMetrics(apiHandler)))
	mux.Handle("/redfish", api.WithLogging(api.WithMetrics(apiHandler)))
	mux.Handle("/metrics", metrics.Handler())

	server := &http.Server{
		Addr:         *addr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("starting redfish server", "addr", *addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	slog.Info("server exited")
}
