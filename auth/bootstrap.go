package auth

import (
	"github.com/jrsteele09/go-task-client/routes"
	"github.com/jrsteele09/go-task-client/session"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Restore loads the persisted session, destroying anything unreadable.
// Durable storage is outside the client's control (another process, a hand
// edit, an older version), so a load failure is treated as no session rather
// than a permanent error.
func Restore(store session.Store, log zerolog.Logger) (*session.Session, error) {
	current, err := store.Load()
	if err != nil {
		log.Warn().Err(err).Msg("discarding unreadable session data")
		if clearErr := store.Clear(); clearErr != nil {
			return nil, errors.Wrap(clearErr, "[Restore] clear")
		}
		return nil, nil
	}
	return current, nil
}

// Bootstrap reconstructs session state at process start and decides the
// initial destination, so nothing protected is ever rendered for a role that
// may not see it. A role that maps to no destination set is destroyed and
// treated as no session rather than crashing or leaking a half-trusted
// identity.
func Bootstrap(store session.Store, table *routes.Table, requestedPath string, log zerolog.Logger) (routes.Resolution, *session.Session, error) {
	current, err := Restore(store, log)
	if err != nil {
		return routes.Resolution{}, nil, errors.Wrap(err, "[Bootstrap]")
	}

	resolution, err := table.ResolveSession(current, requestedPath)
	if err != nil {
		// Resolve only fails on an unknown role; force sign-out.
		log.Warn().Err(err).Msg("session role maps to no destinations, signing out")
		if clearErr := store.Clear(); clearErr != nil {
			return routes.Resolution{}, nil, errors.Wrap(clearErr, "[Bootstrap] clear")
		}
		resolution, err = table.Resolve("", requestedPath)
		if err != nil {
			return routes.Resolution{}, nil, errors.Wrap(err, "[Bootstrap] resolve absent")
		}
		return resolution, nil, nil
	}
	return resolution, current, nil
}
