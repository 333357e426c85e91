package session

import (
	"sync"

	"github.com/pkg/errors"
)

var _ Store = (*InMemoryStore)(nil)

// InMemoryStore keeps the session in process memory. Used by tests and by
// callers that explicitly do not want credentials on disk.
type InMemoryStore struct {
	session *Session
	lock    sync.RWMutex
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (ms *InMemoryStore) Load() (*Session, error) {
	ms.lock.RLock()
	defer ms.lock.RUnlock()

	if ms.session == nil {
		return nil, nil
	}
	copied := *ms.session
	return &copied, nil
}

func (ms *InMemoryStore) Save(session *Session) error {
	if err := session.Validate(); err != nil {
		return errors.Wrap(err, "[InMemoryStore.Save]")
	}

	ms.lock.Lock()
	defer ms.lock.Unlock()

	copied := *session
	ms.session = &copied
	return nil
}

func (ms *InMemoryStore) Clear() error {
	ms.lock.Lock()
	defer ms.lock.Unlock()

	ms.session = nil
	return nil
}

func (ms *InMemoryStore) UpdateAccessToken(accessToken string) error {
	if accessToken == "" {
		return errors.New("[InMemoryStore.UpdateAccessToken] empty access token")
	}

	ms.lock.Lock()
	defer ms.lock.Unlock()

	if ms.session == nil {
		return errors.Wrap(ErrNoSession, "[InMemoryStore.UpdateAccessToken]")
	}
	ms.session.AccessToken = accessToken
	return nil
}
