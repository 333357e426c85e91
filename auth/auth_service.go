// Package auth owns the edges of the credential lifecycle: establishing a
// session through login, destroying it through logout, and reconstructing it
// at process start. Mid-session renewal lives in the token package.
package auth

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-task-client/api"
	"github.com/jrsteele09/go-task-client/internal/utils"
	"github.com/jrsteele09/go-task-client/session"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	loginEndpoint  = "/login"
	logoutEndpoint = "/logout"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginResponse covers both shapes the backend uses: a token payload on
// success, and a success/message pair when the login failed but was delivered
// with a success-style transport status.
type loginResponse struct {
	Success *bool  `json:"success,omitempty"`
	Message string `json:"message,omitempty"`
	Role    string `json:"role"`
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
	UserID  string `json:"user_id"`
	Name    string `json:"name"`
}

type logoutRequest struct {
	Refresh string `json:"refresh"`
}

// Service performs the login and logout exchanges and funnels their outcomes
// into the session store.
type Service struct {
	client *api.Client
	store  session.Store
	log    zerolog.Logger
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.log = log
	}
}

// NewService creates an auth Service.
func NewService(client *api.Client, store session.Store, options ...ServiceOption) (*Service, error) {
	if client == nil {
		return nil, errors.New("[NewService] client is required")
	}
	if store == nil {
		return nil, errors.New("[NewService] store is required")
	}

	service := &Service{
		client: client,
		store:  store,
		log:    zerolog.Nop(),
	}
	for _, opt := range options {
		opt(service)
	}
	return service, nil
}

// Login exchanges credentials for a session and persists it. A rejected
// login - whether signalled by the transport status or by a failure flag in
// a success-status body - returns ErrInvalidCredentials and leaves no
// session behind. A role outside the closed set also establishes nothing.
func (s *Service) Login(ctx context.Context, username, password string) (*session.Session, error) {
	if username == "" || password == "" {
		return nil, errors.Wrap(ErrInvalidCredentials, "[Service.Login] username and password are required")
	}

	var response loginResponse
	err := s.client.Post(ctx, loginEndpoint, loginRequest{Username: username, Password: password}, &response)
	if err != nil {
		switch api.Status(err) {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
			return nil, errors.Wrap(ErrInvalidCredentials, "[Service.Login]")
		}
		return nil, errors.Wrap(err, "[Service.Login]")
	}

	// The backend sometimes reports a failed login inside a success-status
	// body; the flag and the absence of tokens both count.
	if (response.Success != nil && !utils.Value(response.Success)) || response.Access == "" {
		s.log.Debug().Str("message", response.Message).Msg("login rejected")
		return nil, errors.Wrapf(ErrInvalidCredentials, "[Service.Login] %s", response.Message)
	}

	role, err := session.ParseRole(response.Role)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Login]")
	}

	established := &session.Session{
		AccessToken:  response.Access,
		RefreshToken: response.Refresh,
		Role:         role,
		SubjectID:    response.UserID,
		DisplayName:  response.Name,
	}
	if err := s.store.Save(established); err != nil {
		return nil, errors.Wrap(err, "[Service.Login] save session")
	}

	s.log.Info().Str("subject", established.SubjectID).Str("role", string(role)).Msg("session established")
	return established, nil
}

// Logout revokes the refresh credential with the backend and destroys the
// session. The local session is cleared no matter how the revocation call
// ends; logging out never fails because the network did.
func (s *Service) Logout(ctx context.Context) error {
	current, err := s.store.Load()
	if err != nil || current == nil {
		return errors.Wrap(s.store.Clear(), "[Service.Logout] clear")
	}

	if err := s.client.Post(ctx, logoutEndpoint, logoutRequest{Refresh: current.RefreshToken}, nil); err != nil {
		s.log.Debug().Err(err).Msg("logout call failed, clearing session anyway")
	}
	return errors.Wrap(s.store.Clear(), "[Service.Logout] clear")
}

// Current returns the established session, or nil when absent.
func (s *Service) Current() (*session.Session, error) {
	current, err := s.store.Load()
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Current]")
	}
	return current, nil
}
