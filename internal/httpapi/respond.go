// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskFlow Contributors

package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/samber/oops"

	"github.com/taskflow/taskflow/pkg/errutil"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// statusForCode maps business error codes to HTTP statuses. Unknown codes
// are treated as internal errors.
func statusForCode(code string) int {
	switch code {
	case "INVALID_CREDENTIALS", "INVALID_TOKEN", "AUTH_REQUIRED":
		return http.StatusUnauthorized
	case "FORBIDDEN":
		return http.StatusForbidden
	case "USER_NOT_FOUND", "ORG_NOT_FOUND", "NOT_A_MEMBER", "ACCOUNT_NOT_FOUND", "NOT_FOUND":
		return http.StatusNotFound
	case "DUPLICATE_EMAIL", "DUPLICATE_USERNAME", "ALREADY_MEMBER":
		return http.StatusConflict
	case "CANNOT_REMOVE_OWNER", "LAST_OWNER":
		return http.StatusBadRequest
	case "INVALID_ROLE", "ORG_INVALID_NAME", "AUTH_INVALID_USERNAME",
		"AUTH_INVALID_EMAIL", "AUTH_INVALID_PASSWORD", "BAD_REQUEST":
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	//nolint:errcheck // response write failure means the client is gone
	json.NewEncoder(w).Encode(body)
}

// writeError translates a service error into a JSON error response. Internal
// errors are logged with full context and returned with a generic message so
// storage details never leak to clients.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	code := "INTERNAL"
	message := err.Error()
	if oopsErr, ok := oops.AsOops(err); ok {
		if c, ok := oopsErr.Code().(string); ok && c != "" {
			code = c
		}
	}

	status := statusForCode(code)
	if status == http.StatusInternalServerError {
		errutil.LogError(logger.With("method", r.Method, "path", r.URL.Path), "request failed", err)
		message = "internal server error"
		code = "INTERNAL"
	}

	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: message}})
}

// decodeJSON strictly decodes the request body into dst.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return oops.Code("BAD_REQUEST").Wrap(err)
	}
	return nil
}
