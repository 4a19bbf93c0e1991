// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskFlow Contributors

package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/samber/oops"

	"github.com/taskflow/taskflow/internal/auth"
)

// currentUser returns the authenticated account.
func (h *handlers) currentUser(w http.ResponseWriter, r *http.Request) {
	account, ok := accountFromContext(r.Context())
	if !ok {
		writeError(w, r, h.logger, oops.Code("AUTH_REQUIRED").Errorf("authentication required"))
		return
	}
	writeJSON(w, http.StatusOK, newAccountView(account))
}

type updateUserRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	FullName *string `json:"full_name"`
}

// updateCurrentUser patches the authenticated account; omitted fields are
// left unchanged.
func (h *handlers) updateCurrentUser(w http.ResponseWriter, r *http.Request) {
	account, ok := accountFromContext(r.Context())
	if !ok {
		writeError(w, r, h.logger, oops.Code("AUTH_REQUIRED").Errorf("authentication required"))
		return
	}

	var req updateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	updated, err := h.accounts.Update(r.Context(), account.ID, auth.UpdateParams{
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newAccountView(updated))
}

// userByID returns another account's public profile.
func (h *handlers) userByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		writeError(w, r, h.logger, oops.Code("BAD_REQUEST").Errorf("user id must be an integer"))
		return
	}

	account, err := h.accounts.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newAccountView(account))
}
