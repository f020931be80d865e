package api

import (
	"net/http"
	"time"

	"github.com/codegangsta/negroni"
	"github.com/gorilla/mux"

	"github.com/jmylchreest/swatch/internal/metrics"
)

// logRequest logs every request once it has been served.
func (s *Server) logRequest(rw http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	start := time.Now()
	next(rw, r)

	status := http.StatusOK
	if res, ok := rw.(negroni.ResponseWriter); ok && res.Status() != 0 {
		status = res.Status()
	}

	args := []any{
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
		"duration", time.Since(start),
	}
	switch {
	case status >= http.StatusInternalServerError:
		s.logger.Error("request", args...)
	case status >= http.StatusBadRequest:
		s.logger.Warn("request", args...)
	default:
		s.logger.Debug("request", args...)
	}
}

// instrument records request metrics labelled by route template, so only
// matched routes reach it.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tmpl, err := current.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}

		start := time.Now()
		res := negroni.NewResponseWriter(w)
		next.ServeHTTP(res, r)

		status := res.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.ObserveRequest(route, status, time.Since(start).Seconds())
	})
}
