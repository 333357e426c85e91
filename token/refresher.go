// Package token owns the client side of the credential lifecycle: exchanging
// the refresh credential for a new access credential, and reading claims out
// of tokens the server issued.
package token

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/jrsteele09/go-task-client/session"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const (
	// RefreshEndpoint is the backend's token exchange path.
	RefreshEndpoint = "/auth/refresh/"

	refreshKey            = "refresh"
	defaultRefreshTimeout = 15 * time.Second
)

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type refreshResponse struct {
	Access string `json:"access"`
}

// Refresher exchanges the stored refresh credential for a new access
// credential. All concurrent callers share a single in-flight exchange: the
// first caller performs it, later callers attach to the same outcome, and the
// in-flight marker is cleared only once that outcome has been delivered.
//
// On an unrecoverable failure (refresh credential rejected, expired or
// absent) the session is destroyed and every waiter receives
// session.ErrSessionExpired. The exchange itself never carries the expired
// access credential and never retries its own 401.
type Refresher struct {
	refreshURL       string
	store            session.Store
	httpClient       *http.Client
	onSessionExpired func()
	log              zerolog.Logger
	group            singleflight.Group
}

// RefresherOption defines a function type to modify the Refresher instance.
type RefresherOption func(*Refresher)

// WithHTTPClient sets the HTTP client used for the exchange call.
func WithHTTPClient(client *http.Client) RefresherOption {
	return func(r *Refresher) {
		r.httpClient = client
	}
}

// WithOnSessionExpired sets a hook fired once per unrecoverable refresh
// failure, after the store has been cleared. Navigation back to the login
// destination belongs here.
func WithOnSessionExpired(hook func()) RefresherOption {
	return func(r *Refresher) {
		r.onSessionExpired = hook
	}
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) RefresherOption {
	return func(r *Refresher) {
		r.log = log
	}
}

// NewRefresher creates a Refresher posting to refreshURL (the absolute URL of
// the refresh endpoint) and persisting outcomes through store.
func NewRefresher(refreshURL string, store session.Store, options ...RefresherOption) (*Refresher, error) {
	if refreshURL == "" {
		return nil, errors.New("[NewRefresher] refreshURL is required")
	}
	if store == nil {
		return nil, errors.New("[NewRefresher] store is required")
	}

	refresher := &Refresher{
		refreshURL: refreshURL,
		store:      store,
		httpClient: &http.Client{Timeout: defaultRefreshTimeout},
		log:        zerolog.Nop(),
	}
	for _, opt := range options {
		opt(refresher)
	}
	return refresher, nil
}

// Refresh returns a freshly issued access credential, coalescing concurrent
// callers onto one exchange. The exchange runs detached from any single
// caller's context so that one cancelled waiter cannot fail the shared
// flight; the cancelled caller itself stops waiting and returns ctx.Err().
func (r *Refresher) Refresh(ctx context.Context) (string, error) {
	ch := r.group.DoChan(refreshKey, func() (interface{}, error) {
		return r.exchange()
	})

	select {
	case <-ctx.Done():
		return "", errors.Wrap(ctx.Err(), "[Refresher.Refresh]")
	case result := <-ch:
		if result.Err != nil {
			return "", result.Err
		}
		if result.Shared {
			r.log.Debug().Msg("attached to in-flight token refresh")
		}
		return result.Val.(string), nil
	}
}

func (r *Refresher) exchange() (string, error) {
	current, err := r.store.Load()
	if err != nil {
		return "", r.expireSession(errors.Wrap(err, "[Refresher.exchange] load"))
	}
	if current == nil || current.RefreshToken == "" {
		return "", r.expireSession(errors.New("[Refresher.exchange] no refresh credential"))
	}

	body, err := json.Marshal(refreshRequest{Refresh: current.RefreshToken})
	if err != nil {
		return "", errors.Wrap(err, "[Refresher.exchange] Marshal")
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRefreshTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.refreshURL, bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "[Refresher.exchange] NewRequest")
	}
	// The exchange authenticates with the refresh credential in the body.
	// It must never carry the (expired) access credential.
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		// A transport failure says nothing about the refresh credential;
		// keep the session and let the caller handle the outage.
		return "", errors.Wrap(err, "[Refresher.exchange] Do")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		// Accepted, decoded below.
	case resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusForbidden,
		resp.StatusCode == http.StatusBadRequest:
		return "", r.expireSession(errors.Errorf("[Refresher.exchange] refresh rejected with status %d", resp.StatusCode))
	default:
		return "", errors.Errorf("[Refresher.exchange] unexpected status %d", resp.StatusCode)
	}

	var exchanged refreshResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&exchanged); err != nil {
		return "", errors.Wrap(err, "[Refresher.exchange] Decode")
	}
	if exchanged.Access == "" {
		return "", r.expireSession(errors.New("[Refresher.exchange] empty access credential in response"))
	}

	if err := r.store.UpdateAccessToken(exchanged.Access); err != nil {
		if errors.Is(err, session.ErrNoSession) {
			// Session was torn down while the exchange was in flight.
			return "", r.expireSession(err)
		}
		return "", errors.Wrap(err, "[Refresher.exchange] UpdateAccessToken")
	}

	r.log.Debug().Msg("access credential renewed")
	return exchanged.Access, nil
}

// expireSession destroys the session and reports the failure as a hard
// sign-out. It runs inside the single-flight critical section, so the hook
// fires once per failed exchange no matter how many requests were waiting.
func (r *Refresher) expireSession(cause error) error {
	if err := r.store.Clear(); err != nil {
		r.log.Error().Err(err).Msg("clearing session after failed refresh")
	}
	r.log.Info().Err(cause).Msg("session expired")
	if r.onSessionExpired != nil {
		r.onSessionExpired()
	}
	return errors.Wrap(session.ErrSessionExpired, cause.Error())
}
