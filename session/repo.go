package session

// Store is the single owner of the persisted Session. Every other component
// reads through it or requests a mutation through it; nothing else writes
// session state.
//
// Load returns (nil, nil) when no session is established. Save persists all
// fields atomically - a reader never observes a mix of present and absent
// fields. Clear is idempotent. UpdateAccessToken replaces only the access
// token of an established session and returns ErrNoSession when there is
// no session to update.
type Store interface {
	Load() (*Session, error)
	Save(session *Session) error
	Clear() error
	UpdateAccessToken(accessToken string) error
}
