/*
redfishtree is a Redfish resource-tree server.
Copyright (C) 2025  Matthew Burns

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU Affero General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU Affero General Public License for more details.

You should have received a copy of the GNU Affero General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

// Package api implements the Redfish HTTP request pipeline: path
// normalization, the OData-Version precondition, identity resolution,
// request body validation, dispatch to the tree, and response shaping.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"redfishtree/internal/metrics"
	"redfishtree/internal/session"
	"redfishtree/internal/tree"
)

// Handler is the top-level http.Handler for the /redfish namespace.
type Handler struct {
	tree     *tree.Tree
	sessions *session.Store
}

// New builds a Handler over the given tree and session store.
func New(t *tree.Tree, sessions *session.Store) *Handler {
	return &Handler{tree: t, sessions: sessions}
}

// WithMetrics wraps h so every request is timed and counted by method
// and resulting status code.
func WithMetrics(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		h.ServeHTTP(rec, r)
		metrics.ObserveRequest(r.Method, rec.status, time.Since(start))
	})
}

// WithLogging logs one line per completed request.
func WithLogging(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		h.ServeHTTP(rec, r)
		slog.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
