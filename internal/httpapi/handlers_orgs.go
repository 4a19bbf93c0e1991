// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskFlow Contributors

package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/samber/oops"

	"github.com/taskflow/taskflow/internal/auth"
	"github.com/taskflow/taskflow/internal/org"
)

// requireAccount pulls the authenticated account from the context; the
// authenticate middleware guarantees it is present on gated routes.
func (h *handlers) requireAccount(w http.ResponseWriter, r *http.Request) (*auth.Account, bool) {
	account, ok := accountFromContext(r.Context())
	if !ok {
		writeError(w, r, h.logger, oops.Code("AUTH_REQUIRED").Errorf("authentication required"))
		return nil, false
	}
	return account, true
}

// resolveOrganization loads the organization named by the slug URL param and
// the caller's role in it. Non-members are rejected with FORBIDDEN.
func (h *handlers) resolveOrganization(w http.ResponseWriter, r *http.Request, callerID int64) (*org.Organization, org.Role, bool) {
	slug := chi.URLParam(r, "slug")

	organization, err := h.orgs.GetBySlug(r.Context(), slug)
	if err != nil {
		writeError(w, r, h.logger, err)
		return nil, "", false
	}

	role, isMember, err := h.orgs.RoleOf(r.Context(), callerID, organization.ID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return nil, "", false
	}
	if !isMember {
		writeError(w, r, h.logger, oops.Code("FORBIDDEN").
			With("slug", slug).
			Errorf("not a member of this organization"))
		return nil, "", false
	}
	return organization, role, true
}

// listOrganizations returns the caller's organizations with their role in
// each.
func (h *handlers) listOrganizations(w http.ResponseWriter, r *http.Request) {
	account, ok := h.requireAccount(w, r)
	if !ok {
		return
	}

	orgs, err := h.orgs.ListForUser(r.Context(), account.ID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	views := make([]userOrganizationView, 0, len(orgs))
	for _, uo := range orgs {
		views = append(views, userOrganizationView{
			organizationView: newOrganizationView(&uo.Organization),
			Role:             uo.Role.String(),
		})
	}

	pageNum, size := pageParams(r)
	writeJSON(w, http.StatusOK, paginate(views, pageNum, size))
}

type createOrganizationRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// createOrganization creates an organization with the caller as owner.
func (h *handlers) createOrganization(w http.ResponseWriter, r *http.Request) {
	account, ok := h.requireAccount(w, r)
	if !ok {
		return
	}

	var req createOrganizationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	organization, err := h.orgs.CreateOrganization(r.Context(), req.Name, req.Description, account.ID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, newOrganizationView(organization))
}

// getOrganization returns an organization the caller belongs to.
func (h *handlers) getOrganization(w http.ResponseWriter, r *http.Request) {
	account, ok := h.requireAccount(w, r)
	if !ok {
		return
	}

	organization, _, ok := h.resolveOrganization(w, r, account.ID)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newOrganizationView(organization))
}

type updateOrganizationRequest struct {
	Name        *string        `json:"name"`
	Description *string        `json:"description"`
	Settings    map[string]any `json:"settings"`
}

// updateOrganization patches an organization. Owners and admins only.
func (h *handlers) updateOrganization(w http.ResponseWriter, r *http.Request) {
	account, ok := h.requireAccount(w, r)
	if !ok {
		return
	}

	organization, role, ok := h.resolveOrganization(w, r, account.ID)
	if !ok {
		return
	}
	if !role.CanManageMembers() {
		writeError(w, r, h.logger, oops.Code("FORBIDDEN").
			Errorf("only owners and admins can update an organization"))
		return
	}

	var req updateOrganizationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	updated, err := h.orgs.UpdateOrganization(r.Context(), organization.ID, org.OrganizationPatch{
		Name:        req.Name,
		Description: req.Description,
		Settings:    req.Settings,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newOrganizationView(updated))
}

// deleteOrganization soft-deletes an organization. Owners only.
func (h *handlers) deleteOrganization(w http.ResponseWriter, r *http.Request) {
	account, ok := h.requireAccount(w, r)
	if !ok {
		return
	}

	organization, role, ok := h.resolveOrganization(w, r, account.ID)
	if !ok {
		return
	}
	if role != org.RoleOwner {
		writeError(w, r, h.logger, oops.Code("FORBIDDEN").
			Errorf("only owners can delete an organization"))
		return
	}

	if err := h.orgs.DeleteOrganization(r.Context(), organization.ID); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// listMembers returns the organization's members, newest joiners first.
func (h *handlers) listMembers(w http.ResponseWriter, r *http.Request) {
	account, ok := h.requireAccount(w, r)
	if !ok {
		return
	}

	organization, _, ok := h.resolveOrganization(w, r, account.ID)
	if !ok {
		return
	}

	members, err := h.orgs.ListMembers(r.Context(), organization.ID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	views := make([]memberView, 0, len(members))
	for _, m := range members {
		views = append(views, newMemberView(m))
	}

	pageNum, size := pageParams(r)
	writeJSON(w, http.StatusOK, paginate(views, pageNum, size))
}

type addMemberRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// addMember invites an existing account into the organization. Owners and
// admins only.
func (h *handlers) addMember(w http.ResponseWriter, r *http.Request) {
	account, ok := h.requireAccount(w, r)
	if !ok {
		return
	}

	organization, role, ok := h.resolveOrganization(w, r, account.ID)
	if !ok {
		return
	}
	if !role.CanManageMembers() {
		writeError(w, r, h.logger, oops.Code("FORBIDDEN").
			Errorf("only owners and admins can add members"))
		return
	}

	var req addMemberRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if req.Role == "" {
		req.Role = org.RoleMember.String()
	}

	membership, err := h.orgs.AddMember(r.Context(), organization.ID, req.Email, req.Role, account.ID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, newMembershipView(membership))
}

type updateMemberRequest struct {
	Role string `json:"role"`
}

// updateMemberRole changes a member's role. Owners and admins only.
func (h *handlers) updateMemberRole(w http.ResponseWriter, r *http.Request) {
	account, ok := h.requireAccount(w, r)
	if !ok {
		return
	}

	organization, role, ok := h.resolveOrganization(w, r, account.ID)
	if !ok {
		return
	}
	if !role.CanManageMembers() {
		writeError(w, r, h.logger, oops.Code("FORBIDDEN").
			Errorf("only owners and admins can change member roles"))
		return
	}

	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		writeError(w, r, h.logger, oops.Code("BAD_REQUEST").Errorf("user id must be an integer"))
		return
	}

	var req updateMemberRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	membership, err := h.orgs.UpdateMemberRole(r.Context(), organization.ID, userID, req.Role)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newMembershipView(membership))
}

// removeMember removes a member from the organization. Owners and admins
// only; owner memberships can never be removed.
func (h *handlers) removeMember(w http.ResponseWriter, r *http.Request) {
	account, ok := h.requireAccount(w, r)
	if !ok {
		return
	}

	organization, role, ok := h.resolveOrganization(w, r, account.ID)
	if !ok {
		return
	}
	if !role.CanManageMembers() {
		writeError(w, r, h.logger, oops.Code("FORBIDDEN").
			Errorf("only owners and admins can remove members"))
		return
	}

	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		writeError(w, r, h.logger, oops.Code("BAD_REQUEST").Errorf("user id must be an integer"))
		return
	}

	if err := h.orgs.RemoveMember(r.Context(), organization.ID, userID); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
