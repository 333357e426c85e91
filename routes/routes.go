// Package routes decides which destinations a role may reach and where a
// denied navigation lands. The table is a pure configuration surface: Resolve
// performs no I/O and has no side effects, so every authorization decision is
// testable in isolation.
package routes

import (
	"strings"

	"github.com/jrsteele09/go-task-client/session"
	"github.com/pkg/errors"
)

// LoginPath is the one destination reachable without a session.
const LoginPath = "/login"

// Entry binds a role to its reachable destinations and its default landing
// destination. The default must be one of the destinations.
type Entry struct {
	Role         session.Role
	Destinations []string
	Default      string
}

// Resolution is the outcome of resolving a requested destination: either the
// navigation is allowed, or it is denied and RedirectTo names where to go
// instead.
type Resolution struct {
	Allow      bool
	RedirectTo string
}

// Table maps every role in the closed set to its destinations and default.
type Table struct {
	destinations map[session.Role][]string
	defaults     map[session.Role]string
}

// NewTable builds a Table from entries. Every role in the closed set must be
// covered by exactly one entry, and each entry must mark exactly one default
// that is among its destinations.
func NewTable(entries ...Entry) (*Table, error) {
	table := &Table{
		destinations: make(map[session.Role][]string),
		defaults:     make(map[session.Role]string),
	}

	for _, entry := range entries {
		if !entry.Role.Valid() {
			return nil, errors.Wrapf(session.ErrUnknownRole, "[NewTable] %q", entry.Role)
		}
		if _, exists := table.defaults[entry.Role]; exists {
			return nil, errors.Errorf("[NewTable] duplicate entry for role %q", entry.Role)
		}
		if len(entry.Destinations) == 0 {
			return nil, errors.Errorf("[NewTable] role %q has no destinations", entry.Role)
		}
		if entry.Default == "" {
			return nil, errors.Errorf("[NewTable] role %q has no default destination", entry.Role)
		}
		if !containsPath(entry.Destinations, entry.Default) {
			return nil, errors.Errorf("[NewTable] role %q default %q not among its destinations", entry.Role, entry.Default)
		}
		table.destinations[entry.Role] = append([]string(nil), entry.Destinations...)
		table.defaults[entry.Role] = entry.Default
	}

	for _, role := range session.Roles {
		if _, ok := table.defaults[role]; !ok {
			return nil, errors.Errorf("[NewTable] missing entry for role %q", role)
		}
	}

	return table, nil
}

// DefaultTable returns the client's route table: regular users land on the
// task board, both admin roles land on user management.
func DefaultTable() *Table {
	table, err := NewTable(
		Entry{
			Role:         session.RoleUser,
			Destinations: []string{"/task", "/admin/users/profile"},
			Default:      "/task",
		},
		Entry{
			Role:         session.RoleAdmin,
			Destinations: []string{"/task", "/admin/users"},
			Default:      "/admin/users",
		},
		Entry{
			Role:         session.RoleSuperAdmin,
			Destinations: []string{"/task", "/admin/users"},
			Default:      "/admin/users",
		},
	)
	if err != nil {
		panic(err)
	}
	return table
}

// DefaultDestination returns the landing destination configured for the role.
func (t *Table) DefaultDestination(role session.Role) (string, error) {
	destination, ok := t.defaults[role]
	if !ok {
		return "", errors.Wrapf(session.ErrUnknownRole, "[Table.DefaultDestination] %q", role)
	}
	return destination, nil
}

// IsReachable reports whether the path equals, or is a strict sub-path of,
// one of the role's destinations. Sub-paths are delimited by the path
// separator: "/admin/users/42" is under "/admin/users", "/admin/users2"
// is not.
func (t *Table) IsReachable(role session.Role, path string) bool {
	path = normalizePath(path)
	for _, destination := range t.destinations[role] {
		if pathWithin(path, destination) {
			return true
		}
	}
	return false
}

// Resolve decides whether the role may navigate to requestedPath. An empty
// role means no session: everything but the login destination is denied and
// redirected to login. A signed-in role never sees the login destination and
// is silently redirected to its default on any denial. A role outside the
// closed set yields ErrUnknownRole; callers must treat that as an expired
// session, not a crash.
func (t *Table) Resolve(role session.Role, requestedPath string) (Resolution, error) {
	requestedPath = normalizePath(requestedPath)

	if role == "" {
		if requestedPath == LoginPath {
			return Resolution{Allow: true}, nil
		}
		return Resolution{RedirectTo: LoginPath}, nil
	}

	defaultDestination, err := t.DefaultDestination(role)
	if err != nil {
		return Resolution{}, errors.Wrap(err, "[Table.Resolve]")
	}

	if requestedPath == LoginPath {
		return Resolution{RedirectTo: defaultDestination}, nil
	}
	if t.IsReachable(role, requestedPath) {
		return Resolution{Allow: true}, nil
	}
	return Resolution{RedirectTo: defaultDestination}, nil
}

// ResolveSession is Resolve keyed by an optional session, absent sessions
// resolving as the absent role.
func (t *Table) ResolveSession(s *session.Session, requestedPath string) (Resolution, error) {
	if !s.Established() {
		return t.Resolve("", requestedPath)
	}
	return t.Resolve(s.Role, requestedPath)
}

func pathWithin(path, destination string) bool {
	if destination == "/" {
		return true
	}
	return path == destination || strings.HasPrefix(path, destination+"/")
}

func normalizePath(path string) string {
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	if path == "" || path[0] != '/' {
		path = "/" + path
	}
	return path
}

func containsPath(paths []string, wanted string) bool {
	for _, p := range paths {
		if p == wanted {
			return true
		}
	}
	return false
}
