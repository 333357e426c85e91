package session

import (
	"github.com/pkg/errors"
)

// Role represents a user's role within the closed role set. Authorization
// decisions are keyed by Role rather than raw strings so that an unexpected
// value coming out of durable storage or a login response is caught in one
// place (ParseRole) instead of failing silently at comparison sites.
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// Roles lists every role the client knows about.
var Roles = []Role{RoleUser, RoleAdmin, RoleSuperAdmin}

// ParseRole converts a raw role string into a Role. Anything outside the
// closed set returns ErrUnknownRole.
func ParseRole(s string) (Role, error) {
	role := Role(s)
	if !role.Valid() {
		return "", errors.Wrapf(ErrUnknownRole, "[ParseRole] %q", s)
	}
	return role, nil
}

// Valid reports whether the role is within the closed set.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// Session is the authenticated identity held by the client: the token pair,
// the role and who the tokens belong to. Either every field is present
// (the session is established) or the whole Session is absent - a partial
// session is never valid.
type Session struct {
	AccessToken  string `json:"access"`
	RefreshToken string `json:"refresh"`
	Role         Role   `json:"role"`
	SubjectID    string `json:"user_id"`
	DisplayName  string `json:"name"`
}

// Established reports whether every field of the session is present.
func (s *Session) Established() bool {
	if s == nil {
		return false
	}
	return s.AccessToken != "" && s.RefreshToken != "" && s.Role != "" && s.SubjectID != "" && s.DisplayName != ""
}

// Validate checks the all-or-nothing invariant and the role set.
func (s *Session) Validate() error {
	if s == nil {
		return errors.New("[Session.Validate] nil session")
	}
	if !s.Established() {
		return errors.Wrap(ErrPartialSession, "[Session.Validate]")
	}
	if !s.Role.Valid() {
		return errors.Wrapf(ErrUnknownRole, "[Session.Validate] %q", s.Role)
	}
	return nil
}
