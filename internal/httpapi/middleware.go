// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskFlow Contributors

package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/taskflow/taskflow/internal/auth"
	"github.com/taskflow/taskflow/internal/logging"
	"github.com/taskflow/taskflow/internal/observability"
)

type accountContextKey struct{}

// accountFromContext returns the authenticated account placed in the request
// context by the authenticate middleware.
func accountFromContext(ctx context.Context) (*auth.Account, bool) {
	account, ok := ctx.Value(accountContextKey{}).(*auth.Account)
	return account, ok
}

// requestID assigns each request a ULID, exposes it in the X-Request-ID
// response header, and threads it through the logging context.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = ulid.Make().String()
		}
		w.Header().Set("X-Request-ID", id)

		ctx := logging.WithRequestID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// statusRecorder captures the response status for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// instrument logs each request and records HTTP metrics labeled by the chi
// route pattern, not the raw path, to keep cardinality bounded.
func instrument(logger *slog.Logger, metrics *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			elapsed := time.Since(start)
			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = r.URL.Path
			}

			logger.InfoContext(r.Context(), "request handled",
				"method", r.Method,
				"route", route,
				"status", rec.status,
				"duration_ms", elapsed.Milliseconds(),
			)

			if metrics != nil {
				metrics.HTTPRequestsTotal.
					WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
				metrics.HTTPRequestDuration.
					WithLabelValues(r.Method, route).Observe(elapsed.Seconds())
			}
		})
	}
}

// authenticate requires a valid bearer token and stores the resolved account
// in the request context.
func authenticate(authSvc AuthService, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := bearerToken(r)
			if err != nil {
				writeError(w, r, logger, err)
				return
			}

			account, err := authSvc.Resolve(r.Context(), token)
			if err != nil {
				writeError(w, r, logger, err)
				return
			}

			ctx := context.WithValue(r.Context(), accountContextKey{}, account)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", oops.Code("AUTH_REQUIRED").Errorf("missing Authorization header")
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", oops.Code("AUTH_REQUIRED").Errorf("Authorization header must be a bearer token")
	}
	return token, nil
}
