package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/CreativeUnicorns/usersettings"
)

// LoggerMiddleware logs every request with its route pattern and, on user routes, the user id.
// Server errors are logged at Warn and health probes at Debug.
func LoggerMiddleware(logger usersettings.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			t0 := time.Now()
			defer func() {
				args := []any{
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"latency_ms", float64(time.Since(t0).Microseconds()) / 1000.0,
					"request_id", middleware.GetReqID(r.Context()),
				}
				if rctx := chi.RouteContext(r.Context()); rctx != nil {
					if pattern := rctx.RoutePattern(); pattern != "" {
						args = append(args, "route", pattern)
					}
					if id := rctx.URLParam("userID"); id != "" {
						args = append(args, "user_id", id)
					}
				}

				switch {
				case ww.Status() >= http.StatusInternalServerError:
					logger.Warn("Served request", args...)
				case r.URL.Path == "/api/v1/health":
					logger.Debug("Served request", args...)
				default:
					logger.Info("Served request", args...)
				}
			}()
			next.ServeHTTP(ww, r)
		}
		return http.HandlerFunc(fn)
	}
}
