package routes_test

import (
	"testing"

	"github.com/jrsteele09/go-task-client/routes"
	"github.com/jrsteele09/go-task-client/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTableValidation(t *testing.T) {
	validEntries := func() []routes.Entry {
		return []routes.Entry{
			{Role: session.RoleUser, Destinations: []string{"/task"}, Default: "/task"},
			{Role: session.RoleAdmin, Destinations: []string{"/admin/users"}, Default: "/admin/users"},
			{Role: session.RoleSuperAdmin, Destinations: []string{"/admin/users"}, Default: "/admin/users"},
		}
	}

	t.Run("valid table", func(t *testing.T) {
		_, err := routes.NewTable(validEntries()...)
		require.NoError(t, err)
	})

	t.Run("missing role entry", func(t *testing.T) {
		_, err := routes.NewTable(validEntries()[:2]...)
		require.Error(t, err)
	})

	t.Run("duplicate role entry", func(t *testing.T) {
		entries := append(validEntries(), routes.Entry{Role: session.RoleUser, Destinations: []string{"/x"}, Default: "/x"})
		_, err := routes.NewTable(entries...)
		require.Error(t, err)
	})

	t.Run("default not among destinations", func(t *testing.T) {
		entries := validEntries()
		entries[0].Default = "/elsewhere"
		_, err := routes.NewTable(entries...)
		require.Error(t, err)
	})

	t.Run("role outside closed set", func(t *testing.T) {
		entries := append(validEntries(), routes.Entry{Role: "root", Destinations: []string{"/x"}, Default: "/x"})
		_, err := routes.NewTable(entries...)
		require.ErrorIs(t, err, session.ErrUnknownRole)
	})
}

func TestReachabilityBoundary(t *testing.T) {
	table, err := routes.NewTable(
		routes.Entry{Role: session.RoleUser, Destinations: []string{"/task"}, Default: "/task"},
		routes.Entry{Role: session.RoleAdmin, Destinations: []string{"/admin/users"}, Default: "/admin/users"},
		routes.Entry{Role: session.RoleSuperAdmin, Destinations: []string{"/admin/users"}, Default: "/admin/users"},
	)
	require.NoError(t, err)

	tests := []struct {
		name string
		role session.Role
		path string
		want bool
	}{
		{name: "exact match", role: session.RoleAdmin, path: "/admin/users", want: true},
		{name: "strict sub-path", role: session.RoleAdmin, path: "/admin/users/42", want: true},
		{name: "deep sub-path", role: session.RoleAdmin, path: "/admin/users/form/42", want: true},
		{name: "prefix without separator", role: session.RoleAdmin, path: "/admin/users2", want: false},
		{name: "parent path", role: session.RoleAdmin, path: "/admin", want: false},
		{name: "unrelated path", role: session.RoleAdmin, path: "/task2", want: false},
		{name: "trailing slash", role: session.RoleAdmin, path: "/admin/users/", want: true},
		{name: "other role's destination", role: session.RoleUser, path: "/admin/users", want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, table.IsReachable(tc.role, tc.path))
		})
	}
}

func TestResolve(t *testing.T) {
	table := routes.DefaultTable()

	tests := []struct {
		name    string
		role    session.Role
		path    string
		want    routes.Resolution
		wantErr error
	}{
		{name: "absent role to protected path", role: "", path: "/task", want: routes.Resolution{RedirectTo: routes.LoginPath}},
		{name: "absent role to login", role: "", path: routes.LoginPath, want: routes.Resolution{Allow: true}},
		{name: "signed in never sees login", role: session.RoleUser, path: routes.LoginPath, want: routes.Resolution{RedirectTo: "/task"}},
		{name: "reachable path allowed", role: session.RoleUser, path: "/task", want: routes.Resolution{Allow: true}},
		{name: "user denied admin view", role: session.RoleUser, path: "/admin/users", want: routes.Resolution{RedirectTo: "/task"}},
		{name: "user reaches own profile", role: session.RoleUser, path: "/admin/users/profile", want: routes.Resolution{Allow: true}},
		{name: "admin default landing", role: session.RoleAdmin, path: routes.LoginPath, want: routes.Resolution{RedirectTo: "/admin/users"}},
		{name: "admin reaches user form", role: session.RoleSuperAdmin, path: "/admin/users/form/7", want: routes.Resolution{Allow: true}},
		{name: "unknown role", role: "root", path: "/task", wantErr: session.ErrUnknownRole},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := table.Resolve(tc.role, tc.path)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

// Resolve must be a pure function: same inputs, same outputs, no state.
func TestResolveIsDeterministic(t *testing.T) {
	table := routes.DefaultTable()

	first, err := table.Resolve(session.RoleUser, "/admin/users")
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		again, err := table.Resolve(session.RoleUser, "/admin/users")
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestResolveSession(t *testing.T) {
	table := routes.DefaultTable()

	t.Run("nil session is absent", func(t *testing.T) {
		got, err := table.ResolveSession(nil, "/task")
		require.NoError(t, err)
		assert.Equal(t, routes.Resolution{RedirectTo: routes.LoginPath}, got)
	})

	t.Run("established session uses its role", func(t *testing.T) {
		s := &session.Session{
			AccessToken:  "a",
			RefreshToken: "r",
			Role:         session.RoleAdmin,
			SubjectID:    "user-1",
			DisplayName:  "Jane Admin",
		}
		got, err := table.ResolveSession(s, "/admin/users/7")
		require.NoError(t, err)
		assert.Equal(t, routes.Resolution{Allow: true}, got)
	})
}
