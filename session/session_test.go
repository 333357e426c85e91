package session_test

import (
	"testing"

	"github.com/jrsteele09/go-task-client/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSession() *session.Session {
	return &session.Session{
		AccessToken:  "access-token-1",
		RefreshToken: "refresh-token-1",
		Role:         session.RoleUser,
		SubjectID:    "user-1",
		DisplayName:  "John Doe",
	}
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    session.Role
		wantErr bool
	}{
		{name: "user", input: "user", want: session.RoleUser},
		{name: "admin", input: "admin", want: session.RoleAdmin},
		{name: "super admin", input: "super_admin", want: session.RoleSuperAdmin},
		{name: "unknown role", input: "root", wantErr: true},
		{name: "empty role", input: "", wantErr: true},
		{name: "case sensitive", input: "Admin", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			role, err := session.ParseRole(tc.input)
			if tc.wantErr {
				require.Error(t, err)
				require.ErrorIs(t, err, session.ErrUnknownRole)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, role)
		})
	}
}

func TestSessionEstablished(t *testing.T) {
	var nilSession *session.Session
	assert.False(t, nilSession.Established())
	assert.False(t, (&session.Session{}).Established())
	assert.True(t, testSession().Established())
}

func TestSessionValidateRejectsPartialSessions(t *testing.T) {
	mutations := []struct {
		name   string
		mutate func(s *session.Session)
	}{
		{"missing access token", func(s *session.Session) { s.AccessToken = "" }},
		{"missing refresh token", func(s *session.Session) { s.RefreshToken = "" }},
		{"missing role", func(s *session.Session) { s.Role = "" }},
		{"missing subject", func(s *session.Session) { s.SubjectID = "" }},
		{"missing display name", func(s *session.Session) { s.DisplayName = "" }},
	}

	for _, tc := range mutations {
		t.Run(tc.name, func(t *testing.T) {
			s := testSession()
			tc.mutate(s)
			require.ErrorIs(t, s.Validate(), session.ErrPartialSession)
		})
	}

	t.Run("unknown role", func(t *testing.T) {
		s := testSession()
		s.Role = "root"
		require.ErrorIs(t, s.Validate(), session.ErrUnknownRole)
	})

	t.Run("complete session", func(t *testing.T) {
		require.NoError(t, testSession().Validate())
	})
}
