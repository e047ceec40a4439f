package middleware

import (
	"context"
	"net/http"

	"github.com/launchdarkly/ld-openfeature-bridge/internal/metrics"

	"github.com/gorilla/mux"
)

// RequestCount is a middleware function that counts each request to a route, tagged with the route's
// path template and method. It does nothing if recorder is nil.
func RequestCount(recorder *metrics.Recorder) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		if recorder == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			route := req.URL.Path
			if current := mux.CurrentRoute(req); current != nil {
				// Ignoring internal routing error that would have been ignored anyway
				if tmpl, err := current.GetPathTemplate(); err == nil {
					route = tmpl
				}
			}
			recorder.WithRouteCount(req.Context(), route, req.Method, func(ctx context.Context) {
				next.ServeHTTP(w, req.WithContext(ctx))
			})
		})
	}
}

// CountStreamConns is a middleware function that tracks the number of active change stream
// connections until the handler ends. It does nothing if recorder is nil.
func CountStreamConns(recorder *metrics.Recorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if recorder == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			recorder.WithStreamConnection(func() {
				next.ServeHTTP(w, req)
			})
		})
	}
}
