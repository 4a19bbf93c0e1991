// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskFlow Contributors

package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/samber/oops"

	"github.com/taskflow/taskflow/internal/auth"
	"github.com/taskflow/taskflow/internal/observability"
)

// handlers holds the services every endpoint dispatches to.
type handlers struct {
	authSvc  AuthService
	accounts AccountService
	orgs     OrgService
	logger   *slog.Logger
	metrics  *observability.Metrics
}

func (h *handlers) recordRegistration(status string) {
	if h.metrics != nil {
		h.metrics.RegistrationsTotal.WithLabelValues(status).Inc()
	}
}

func (h *handlers) recordLogin(status string) {
	if h.metrics != nil {
		h.metrics.LoginsTotal.WithLabelValues(status).Inc()
	}
}

type registerRequest struct {
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	FullName *string `json:"full_name"`
}

// register creates an account and issues a token for it.
func (h *handlers) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	account, token, err := h.authSvc.RegisterAndIssue(r.Context(), auth.RegisterParams{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		h.recordRegistration("failure")
		writeError(w, r, h.logger, err)
		return
	}

	h.recordRegistration("success")
	writeJSON(w, http.StatusCreated, newAuthView(account, token))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// login authenticates an email/password pair and issues a token.
func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	account, token, err := h.authSvc.LoginAndIssue(r.Context(), req.Email, req.Password)
	if err != nil {
		h.recordLogin("failure")
		writeError(w, r, h.logger, err)
		return
	}

	h.recordLogin("success")
	writeJSON(w, http.StatusOK, newAuthView(account, token))
}

// token is the form-encoded variant of login for OAuth2 password-flow
// clients; the form's username field carries the email.
func (h *handlers) token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, r, h.logger, oops.Code("BAD_REQUEST").Wrap(err))
		return
	}

	email := r.PostFormValue("username")
	password := r.PostFormValue("password")

	_, token, err := h.authSvc.LoginAndIssue(r.Context(), email, password)
	if err != nil {
		h.recordLogin("failure")
		writeError(w, r, h.logger, err)
		return
	}

	h.recordLogin("success")
	writeJSON(w, http.StatusOK, tokenView{AccessToken: token, TokenType: "bearer"})
}
