// Quill - Blog Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package api

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// ReadinessCheck reports whether one dependency can serve traffic.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// CheckResult is the outcome of one ReadinessCheck.
type CheckResult struct {
	Name  string `json:"name"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	checks    []ReadinessCheck
	timeout   time.Duration
	startTime time.Time
}

// NewHealthHandler creates a handler running checks on every readiness
// probe. Each check gets timeout; zero means two seconds.
func NewHealthHandler(timeout time.Duration, checks ...ReadinessCheck) *HealthHandler {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &HealthHandler{
		checks:    checks,
		timeout:   timeout,
		startTime: time.Now(),
	}
}

// HealthLive returns 200 while the process is up.
func (h *HealthHandler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondData(w, r, http.StatusOK, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady runs every check concurrently and returns 503 if any fails.
func (h *HealthHandler) HealthReady(w http.ResponseWriter, r *http.Request) {
	results := make([]CheckResult, len(h.checks))

	var wg sync.WaitGroup
	for i := range h.checks {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
			defer cancel()

			res := CheckResult{Name: h.checks[i].Name, OK: true}
			if err := h.checks[i].Check(ctx); err != nil {
				res.OK = false
				res.Error = err.Error()
			}
			results[i] = res
		}(i)
	}
	wg.Wait()

	ready := true
	for _, res := range results {
		ready = ready && res.OK
	}

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	respondData(w, r, status, map[string]interface{}{
		"ready":  ready,
		"checks": results,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}
