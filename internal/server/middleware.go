package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/arbor/pkg/observability"
)

// requestLogger logs each request and reports it to the registered HTTP
// hooks, keyed by route pattern. It sits outside Recoverer, so a panic
// shows up as a 500 response.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hooks := observability.HTTP()
		ctx := r.Context()
		start := time.Now()
		hooks.OnRequest(ctx, r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		defer func() {
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			if status >= http.StatusInternalServerError {
				hooks.OnError(ctx, r.Method, route(r), fmt.Errorf("%s", http.StatusText(status)))
			}
			elapsed := time.Since(start)
			hooks.OnResponse(ctx, r.Method, route(r), status, elapsed)
			s.logger.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"took", elapsed,
				"request_id", middleware.GetReqID(ctx),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}

func route(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}
