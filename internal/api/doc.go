// Quill - Blog Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

/*
Package api serves Quill's operational HTTP endpoints on a chi router.

Routes:

	GET /healthz   liveness, always 200 while the process runs
	GET /readyz    readiness, 503 when any registered check fails
	GET /metrics   Prometheus exposition

Every request gets an X-Request-ID header and a correlation id in its
context, so handler logs can be joined with engine and database logs.
*/
package api
