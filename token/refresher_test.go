package token_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/go-task-client/session"
	"github.com/jrsteele09/go-task-client/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func establishedSession() *session.Session {
	return &session.Session{
		AccessToken:  "expired-access",
		RefreshToken: "refresh-token-1",
		Role:         session.RoleUser,
		SubjectID:    "user-1",
		DisplayName:  "John Doe",
	}
}

// refreshBackend is a stub of the refresh endpoint that records every call.
type refreshBackend struct {
	calls       atomic.Int64
	gate        chan struct{} // when set, handlers block until it closes
	reject      bool
	lastRequest struct {
		sync.Mutex
		authHeader string
		refresh    string
	}
}

func (b *refreshBackend) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.calls.Add(1)

		var body struct {
			Refresh string `json:"refresh"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		b.lastRequest.Lock()
		b.lastRequest.authHeader = r.Header.Get("Authorization")
		b.lastRequest.refresh = body.Refresh
		b.lastRequest.Unlock()

		if b.gate != nil {
			<-b.gate
		}
		if b.reject {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"access": "renewed-access"})
	}
}

func TestRefreshSuccessUpdatesStore(t *testing.T) {
	backend := &refreshBackend{}
	srv := httptest.NewServer(backend.handler(t))
	defer srv.Close()

	store := session.NewInMemoryStore()
	require.NoError(t, store.Save(establishedSession()))

	refresher, err := token.NewRefresher(srv.URL, store)
	require.NoError(t, err)

	access, err := refresher.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "renewed-access", access)

	loaded, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "renewed-access", loaded.AccessToken)
	assert.Equal(t, "refresh-token-1", loaded.RefreshToken)

	// The exchange must not carry the expired access credential.
	backend.lastRequest.Lock()
	assert.Empty(t, backend.lastRequest.authHeader)
	assert.Equal(t, "refresh-token-1", backend.lastRequest.refresh)
	backend.lastRequest.Unlock()
}

func TestRefreshSingleFlight(t *testing.T) {
	backend := &refreshBackend{gate: make(chan struct{})}
	srv := httptest.NewServer(backend.handler(t))
	defer srv.Close()

	store := session.NewInMemoryStore()
	require.NoError(t, store.Save(establishedSession()))

	refresher, err := token.NewRefresher(srv.URL, store)
	require.NoError(t, err)

	const concurrentCallers = 8
	results := make(chan string, concurrentCallers)
	errs := make(chan error, concurrentCallers)

	var wg sync.WaitGroup
	for i := 0; i < concurrentCallers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			access, err := refresher.Refresh(context.Background())
			results <- access
			errs <- err
		}()
	}

	// Give every caller time to reach the in-flight exchange, then let the
	// single backend call complete.
	time.Sleep(100 * time.Millisecond)
	close(backend.gate)
	wg.Wait()
	close(results)
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	for access := range results {
		assert.Equal(t, "renewed-access", access)
	}
	assert.Equal(t, int64(1), backend.calls.Load(), "expected exactly one exchange for all concurrent callers")
}

func TestRefreshRejectionDestroysSession(t *testing.T) {
	backend := &refreshBackend{reject: true}
	srv := httptest.NewServer(backend.handler(t))
	defer srv.Close()

	store := session.NewInMemoryStore()
	require.NoError(t, store.Save(establishedSession()))

	var hookFired atomic.Int64
	refresher, err := token.NewRefresher(srv.URL, store,
		token.WithOnSessionExpired(func() { hookFired.Add(1) }),
	)
	require.NoError(t, err)

	_, err = refresher.Refresh(context.Background())
	require.ErrorIs(t, err, session.ErrSessionExpired)

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded, "session must be destroyed after a rejected refresh")
	assert.Equal(t, int64(1), hookFired.Load())
}

func TestRefreshRejectionSharedByConcurrentWaiters(t *testing.T) {
	backend := &refreshBackend{reject: true, gate: make(chan struct{})}
	srv := httptest.NewServer(backend.handler(t))
	defer srv.Close()

	store := session.NewInMemoryStore()
	require.NoError(t, store.Save(establishedSession()))

	var hookFired atomic.Int64
	refresher, err := token.NewRefresher(srv.URL, store,
		token.WithOnSessionExpired(func() { hookFired.Add(1) }),
	)
	require.NoError(t, err)

	const concurrentCallers = 5
	errs := make(chan error, concurrentCallers)
	var wg sync.WaitGroup
	for i := 0; i < concurrentCallers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := refresher.Refresh(context.Background())
			errs <- err
		}()
	}
	time.Sleep(100 * time.Millisecond)
	close(backend.gate)
	wg.Wait()
	close(errs)

	for err := range errs {
		require.ErrorIs(t, err, session.ErrSessionExpired)
	}
	assert.Equal(t, int64(1), backend.calls.Load(), "no duplicate refresh attempts")
	assert.Equal(t, int64(1), hookFired.Load(), "teardown fires once per failure, not per waiter")
}

func TestRefreshWithoutSessionFailsWithoutCalling(t *testing.T) {
	backend := &refreshBackend{}
	srv := httptest.NewServer(backend.handler(t))
	defer srv.Close()

	refresher, err := token.NewRefresher(srv.URL, session.NewInMemoryStore())
	require.NoError(t, err)

	_, err = refresher.Refresh(context.Background())
	require.ErrorIs(t, err, session.ErrSessionExpired)
	assert.Equal(t, int64(0), backend.calls.Load())
}

func TestRefreshTransportFailureKeepsSession(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // refused connections from here on

	store := session.NewInMemoryStore()
	require.NoError(t, store.Save(establishedSession()))

	refresher, err := token.NewRefresher(srv.URL, store)
	require.NoError(t, err)

	_, err = refresher.Refresh(context.Background())
	require.Error(t, err)
	require.NotErrorIs(t, err, session.ErrSessionExpired)

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.NotNil(t, loaded, "a network failure must not destroy the session")
}

func TestRefreshCancelledWaiterDoesNotFailFlight(t *testing.T) {
	backend := &refreshBackend{gate: make(chan struct{})}
	srv := httptest.NewServer(backend.handler(t))
	defer srv.Close()

	store := session.NewInMemoryStore()
	require.NoError(t, store.Save(establishedSession()))

	refresher, err := token.NewRefresher(srv.URL, store)
	require.NoError(t, err)

	cancelled, cancel := context.WithCancel(context.Background())
	cancelledErr := make(chan error, 1)
	go func() {
		_, err := refresher.Refresh(cancelled)
		cancelledErr <- err
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()
	require.ErrorIs(t, <-cancelledErr, context.Canceled)

	// The shared flight keeps going and still succeeds for a second caller.
	done := make(chan error, 1)
	go func() {
		_, err := refresher.Refresh(context.Background())
		done <- err
	}()
	time.Sleep(50 * time.Millisecond)
	close(backend.gate)
	require.NoError(t, <-done)
}
