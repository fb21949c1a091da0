// redfishtree is a Redfish resource-tree server.
// Copyright (C) 2025 Matthew Burns
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

// Package metrics exposes the HTTP pipeline's request counters and
// latency histogram for scraping at /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	mu  sync.RWMutex
	reg *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
)

func init() {
	resetLocked()
}

// Reset clears and reinitializes all collectors. Used by tests to ensure
// clean state between runs.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	resetLocked()
}

// Handler returns an HTTP handler exposing metrics in Prometheus
// exposition format.
func Handler() http.Handler {
	mu.RLock()
	registry := reg
	mu.RUnlock()
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one completed request: its method, resulting
// status code, and duration.
func ObserveRequest(method string, status int, duration time.Duration) {
	mu.RLock()
	defer mu.RUnlock()
	if requestsTotal != nil {
		requestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	}
	if requestDuration != nil {
		requestDuration.WithLabelValues(method).Observe(duration.Seconds())
	}
}

func resetLocked() {
	registry := prometheus.NewRegistry()

	reqTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "redfishtree",
		Name:      "requests_total",
		Help:      "Total HTTP requests handled, by method and status code.",
	}, []string{"method", "status"})

	reqDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "redfishtree",
		Name:      "request_duration_seconds",
		Help:      "Duration of HTTP requests by method.",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method"})

	registry.MustRegister(reqTotal, reqDuration)

	reg = registry
	requestsTotal = reqTotal
	requestDuration = reqDuration
}
