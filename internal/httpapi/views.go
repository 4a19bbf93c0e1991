// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskFlow Contributors

package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/taskflow/taskflow/internal/auth"
	"github.com/taskflow/taskflow/internal/org"
)

// accountView is the public JSON shape of an account. The password hash is
// never serialized.
type accountView struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  *string   `json:"full_name"`
	Active    bool      `json:"is_active"`
	Superuser bool      `json:"is_superuser"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newAccountView(a *auth.Account) accountView {
	return accountView{
		ID:        a.ID,
		Username:  a.Username,
		Email:     a.Email,
		FullName:  a.FullName,
		Active:    a.Active,
		Superuser: a.Superuser,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

type organizationView struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Slug        string         `json:"slug"`
	Description *string        `json:"description"`
	Plan        string         `json:"plan"`
	Settings    map[string]any `json:"settings"`
	Active      bool           `json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func newOrganizationView(o *org.Organization) organizationView {
	settings := o.Settings
	if settings == nil {
		settings = map[string]any{}
	}
	return organizationView{
		ID:          o.ID,
		Name:        o.Name,
		Slug:        o.Slug,
		Description: o.Description,
		Plan:        o.Plan,
		Settings:    settings,
		Active:      o.Active,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

type userOrganizationView struct {
	organizationView
	Role string `json:"role"`
}

type membershipView struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	OrganizationID int64     `json:"organization_id"`
	Role           string    `json:"role"`
	JoinedAt       time.Time `json:"joined_at"`
	InvitedBy      *int64    `json:"invited_by_id"`
}

func newMembershipView(m *org.Membership) membershipView {
	return membershipView{
		ID:             m.ID,
		UserID:         m.UserID,
		OrganizationID: m.OrganizationID,
		Role:           m.Role.String(),
		JoinedAt:       m.JoinedAt,
		InvitedBy:      m.InvitedBy,
	}
}

type memberView struct {
	User              accountView `json:"user"`
	Role              string      `json:"role"`
	JoinedAt          time.Time   `json:"joined_at"`
	InvitedByUsername *string     `json:"invited_by"`
}

func newMemberView(m org.Member) memberView {
	return memberView{
		User:              newAccountView(&m.Account),
		Role:              m.Membership.Role.String(),
		JoinedAt:          m.Membership.JoinedAt,
		InvitedByUsername: m.InvitedByUsername,
	}
}

type tokenView struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type authView struct {
	tokenView
	User accountView `json:"user"`
}

func newAuthView(a *auth.Account, token string) authView {
	return authView{
		tokenView: tokenView{AccessToken: token, TokenType: "bearer"},
		User:      newAccountView(a),
	}
}

// Pagination defaults and cap for list endpoints.
const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// page is the envelope list endpoints wrap their items in.
type page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Size  int `json:"size"`
}

// pageParams reads "page" and "size" query parameters, clamping them to
// sane bounds.
func pageParams(r *http.Request) (pageNum, size int) {
	pageNum = 1
	size = defaultPageSize
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			pageNum = n
		}
	}
	if v := r.URL.Query().Get("size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			size = min(n, maxPageSize)
		}
	}
	return pageNum, size
}

// paginate slices items for the requested page. Out-of-range pages yield an
// empty item list with the true total.
func paginate[T any](items []T, pageNum, size int) page[T] {
	total := len(items)

	// pageNum is unbounded client input; past the last page, return empty
	// items before the offset multiplication can overflow.
	if pageNum-1 > total/size {
		return page[T]{Items: []T{}, Total: total, Page: pageNum, Size: size}
	}

	start := (pageNum - 1) * size
	if start > total {
		start = total
	}
	end := min(start+size, total)

	out := items[start:end]
	if out == nil {
		out = []T{}
	}
	return page[T]{Items: out, Total: total, Page: pageNum, Size: size}
}
