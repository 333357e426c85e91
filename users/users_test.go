package users_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jrsteele09/go-task-client/api"
	"github.com/jrsteele09/go-task-client/session"
	"github.com/jrsteele09/go-task-client/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func userServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) *users.Service {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(handler))
	t.Cleanup(srv.Close)

	client, err := api.NewClient(srv.URL, nil)
	require.NoError(t, err)
	service, err := users.NewService(client)
	require.NoError(t, err)
	return service
}

func TestUserList(t *testing.T) {
	service := userServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/get-users/", r.URL.Path)
		assert.Equal(t, "jane", r.URL.Query().Get("search"))
		_ = json.NewEncoder(w).Encode(users.Page{
			Count:   1,
			Results: []users.User{{ID: 3, Username: "jane", Role: session.RoleAdmin}},
		})
	})

	page, err := service.List(context.Background(), users.ListParams{Search: "jane"})
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Equal(t, session.RoleAdmin, page.Results[0].Role)
}

func TestUserCreateValidatesRole(t *testing.T) {
	service := userServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for an invalid role")
	})

	_, err := service.Create(context.Background(), users.User{Username: "eve", Role: "owner"})
	require.ErrorIs(t, err, session.ErrUnknownRole)
}

func TestUserCRUD(t *testing.T) {
	service := userServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/auth/create-user/":
			var user users.User
			require.NoError(t, json.NewDecoder(r.Body).Decode(&user))
			assert.Equal(t, "s3cret", user.Password)
			user.ID = 9
			user.Password = ""
			_ = json.NewEncoder(w).Encode(user)
		case r.Method == http.MethodGet && r.URL.Path == "/auth/user/9/":
			_ = json.NewEncoder(w).Encode(users.User{ID: 9, Username: "jane"})
		case r.Method == http.MethodPatch && r.URL.Path == "/auth/update-user/9/":
			_ = json.NewEncoder(w).Encode(users.User{ID: 9, Username: "jane", Role: session.RoleSuperAdmin})
		case r.Method == http.MethodDelete && r.URL.Path == "/auth/delete-user/9/":
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	})
	ctx := context.Background()

	created, err := service.Create(ctx, users.User{Username: "jane", Password: "s3cret", Role: session.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, int64(9), created.ID)
	assert.Empty(t, created.Password)

	fetched, err := service.Get(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, "jane", fetched.Username)

	promoted, err := service.Update(ctx, 9, users.User{Role: session.RoleSuperAdmin})
	require.NoError(t, err)
	assert.Equal(t, session.RoleSuperAdmin, promoted.Role)

	require.NoError(t, service.Delete(ctx, 9))
}
