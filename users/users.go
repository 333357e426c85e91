// Package users is the thin wrapper around the backend's user management
// endpoints, reachable only by admin roles.
package users

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/jrsteele09/go-task-client/api"
	"github.com/jrsteele09/go-task-client/session"
	"github.com/pkg/errors"
)

type User struct {
	ID       int64        `json:"id,omitempty"`
	Username string       `json:"username"`
	Name     string       `json:"name,omitempty"`
	Email    string       `json:"email,omitempty"`
	Role     session.Role `json:"role,omitempty"`
	Password string       `json:"password,omitempty"` // write-only, never returned
}

// ListParams narrows a user listing. Zero values are omitted from the query.
type ListParams struct {
	Page     int
	PageSize int
	Search   string
}

func (p ListParams) query() string {
	values := url.Values{}
	if p.Page > 0 {
		values.Set("page", strconv.Itoa(p.Page))
	}
	if p.PageSize > 0 {
		values.Set("page_size", strconv.Itoa(p.PageSize))
	}
	if p.Search != "" {
		values.Set("search", p.Search)
	}
	if len(values) == 0 {
		return ""
	}
	return "?" + values.Encode()
}

// Page is one page of a user listing.
type Page struct {
	Count   int    `json:"count"`
	Results []User `json:"results"`
}

// Service issues user CRUD calls through the authenticated client.
type Service struct {
	client *api.Client
}

func NewService(client *api.Client) (*Service, error) {
	if client == nil {
		return nil, errors.New("[users.NewService] client is required")
	}
	return &Service{client: client}, nil
}

func (s *Service) List(ctx context.Context, params ListParams) (*Page, error) {
	var page Page
	if err := s.client.Get(ctx, "/auth/get-users/"+params.query(), &page); err != nil {
		return nil, errors.Wrap(err, "[users.Service.List]")
	}
	return &page, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	var user User
	if err := s.client.Get(ctx, fmt.Sprintf("/auth/user/%d/", id), &user); err != nil {
		return nil, errors.Wrapf(err, "[users.Service.Get] %d", id)
	}
	return &user, nil
}

func (s *Service) Create(ctx context.Context, user User) (*User, error) {
	if !user.Role.Valid() {
		return nil, errors.Wrapf(session.ErrUnknownRole, "[users.Service.Create] %q", user.Role)
	}
	var created User
	if err := s.client.Post(ctx, "/auth/create-user/", user, &created); err != nil {
		return nil, errors.Wrap(err, "[users.Service.Create]")
	}
	return &created, nil
}

func (s *Service) Update(ctx context.Context, id int64, updates User) (*User, error) {
	var updated User
	if err := s.client.Patch(ctx, fmt.Sprintf("/auth/update-user/%d/", id), updates, &updated); err != nil {
		return nil, errors.Wrapf(err, "[users.Service.Update] %d", id)
	}
	return &updated, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.client.Delete(ctx, fmt.Sprintf("/auth/delete-user/%d/", id), nil, nil); err != nil {
		return errors.Wrapf(err, "[users.Service.Delete] %d", id)
	}
	return nil
}
