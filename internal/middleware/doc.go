// Package middleware provides HTTP middleware for the love letter
// application.
//
// It includes:
//   - Request logging in W3C Extended Log Format
//   - Prometheus request metrics with bounded path cardinality
//   - Response compression (gzip)
//   - Configurable filtering for static files and health checks
package middleware
