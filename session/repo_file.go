package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

var _ Store = (*FileStore)(nil)

// FileStore persists the session as a small JSON document on disk. The file
// survives process restarts and is shared with any other client instance
// pointed at the same path; writes go through a temp file and rename so a
// concurrent reader sees either the previous session or the new one, never
// a half-written mix.
type FileStore struct {
	path string
	lock sync.Mutex
}

// NewFileStore creates a FileStore at the given path, creating the parent
// directory if needed.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("[NewFileStore] path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, errors.Wrap(err, "[NewFileStore] MkdirAll")
	}
	return &FileStore{path: path}, nil
}

func (fs *FileStore) Load() (*Session, error) {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	return fs.load()
}

func (fs *FileStore) Save(session *Session) error {
	if err := session.Validate(); err != nil {
		return errors.Wrap(err, "[FileStore.Save]")
	}

	fs.lock.Lock()
	defer fs.lock.Unlock()
	return fs.write(session)
}

func (fs *FileStore) Clear() error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	if err := os.Remove(fs.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "[FileStore.Clear] Remove")
	}
	return nil
}

func (fs *FileStore) UpdateAccessToken(accessToken string) error {
	if accessToken == "" {
		return errors.New("[FileStore.UpdateAccessToken] empty access token")
	}

	fs.lock.Lock()
	defer fs.lock.Unlock()

	current, err := fs.load()
	if err != nil {
		return errors.Wrap(err, "[FileStore.UpdateAccessToken] load")
	}
	if current == nil {
		return errors.Wrap(ErrNoSession, "[FileStore.UpdateAccessToken]")
	}
	current.AccessToken = accessToken
	return fs.write(current)
}

// load reads the session file. A missing file means no session. Anything
// partial or unparseable is reported as an error rather than handed to
// callers as a half-session.
func (fs *FileStore) load() (*Session, error) {
	data, err := os.ReadFile(fs.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "[FileStore.load] ReadFile")
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, errors.Wrap(err, "[FileStore.load] Unmarshal")
	}
	if err := session.Validate(); err != nil {
		return nil, errors.Wrap(err, "[FileStore.load]")
	}
	return &session, nil
}

func (fs *FileStore) write(session *Session) error {
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return errors.Wrap(err, "[FileStore.write] Marshal")
	}

	tmp, err := os.CreateTemp(filepath.Dir(fs.path), ".credentials-*")
	if err != nil {
		return errors.Wrap(err, "[FileStore.write] CreateTemp")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, "[FileStore.write] Write")
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, "[FileStore.write] Chmod")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "[FileStore.write] Close")
	}
	if err := os.Rename(tmpName, fs.path); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "[FileStore.write] Rename")
	}
	return nil
}
