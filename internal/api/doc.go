// Package api hosts the optional status server that runs alongside a long
// scrape. Routes:
//   - GET /healthz for liveness probes.
//   - GET /metrics for Prometheus scraping.
//   - GET /v1/status for the current run's progress as JSON.
package api
