// Package middleware contains helpers for adding standard behavior like metrics to the HTTP API's
// endpoints.
package middleware
