// Package middleware holds the gin middleware shared by all routes: CORS for
// browser-based agent hosts and a per-IP token bucket limiter.
package middleware
