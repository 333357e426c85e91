package cli

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/go-task-client/api"
	"github.com/jrsteele09/go-task-client/auth"
	"github.com/jrsteele09/go-task-client/internal/output"
	"github.com/jrsteele09/go-task-client/routes"
	"github.com/jrsteele09/go-task-client/session"
	"github.com/jrsteele09/go-task-client/tasks"
	"github.com/jrsteele09/go-task-client/token"
	"github.com/jrsteele09/go-task-client/transport"
	"github.com/jrsteele09/go-task-client/users"
	"github.com/pkg/errors"
)

// app wires the session store, the refreshing transport and the domain
// services together for one command invocation.
type app struct {
	printer *output.Printer
	store   session.Store
	table   *routes.Table
	auth    *auth.Service
	tasks   *tasks.Service
	users   *users.Service
}

func newApp() (*app, error) {
	printer := output.NewPrinter(cfg.Output.Colors)

	store, err := session.NewFileStore(cfg.Session.CredentialsFile)
	if err != nil {
		return nil, errors.Wrap(err, "[newApp] session store")
	}

	// Both unrecoverable refresh failures and a rejected replay end the
	// session; the hint is the same either way.
	expiredHint := func() {
		printer.Warning("session expired, sign in again with 'taskctl login'")
	}

	baseURL := strings.TrimSuffix(cfg.Server.BaseURL, "/")
	refresher, err := token.NewRefresher(baseURL+token.RefreshEndpoint, store,
		token.WithLogger(log),
		token.WithOnSessionExpired(expiredHint),
	)
	if err != nil {
		return nil, errors.Wrap(err, "[newApp] refresher")
	}

	pipeline, err := transport.NewPipeline(store, refresher,
		transport.WithLogger(log),
		transport.WithOnSessionExpired(expiredHint),
	)
	if err != nil {
		return nil, errors.Wrap(err, "[newApp] pipeline")
	}

	client, err := api.NewClient(baseURL, &http.Client{
		Transport: pipeline,
		Timeout:   cfg.Server.Timeout,
	}, api.WithClientLogger(log))
	if err != nil {
		return nil, errors.Wrap(err, "[newApp] client")
	}

	authService, err := auth.NewService(client, store, auth.WithLogger(log))
	if err != nil {
		return nil, errors.Wrap(err, "[newApp] auth service")
	}
	taskService, err := tasks.NewService(client)
	if err != nil {
		return nil, errors.Wrap(err, "[newApp] task service")
	}
	userService, err := users.NewService(client)
	if err != nil {
		return nil, errors.Wrap(err, "[newApp] user service")
	}

	return &app{
		printer: printer,
		store:   store,
		table:   routes.DefaultTable(),
		auth:    authService,
		tasks:   taskService,
		users:   userService,
	}, nil
}

// requireSession restores the established session or fails with a sign-in
// hint. Unreadable or foreign session data counts as signed out, not as a
// command failure.
func (a *app) requireSession() (*session.Session, error) {
	current, err := auth.Restore(a.store, log)
	if err != nil {
		return nil, errors.Wrap(err, "[app.requireSession]")
	}
	if !current.Established() {
		return nil, errors.New("not signed in, run 'taskctl login' first")
	}
	if !current.Role.Valid() {
		if clearErr := a.store.Clear(); clearErr != nil {
			return nil, errors.Wrap(clearErr, "[app.requireSession] clear")
		}
		return nil, errors.New("not signed in, run 'taskctl login' first")
	}
	return current, nil
}

// authorize checks that the current role may reach destination before any
// request is issued. A denial is not a failure: it reports where the role
// belongs instead, the way the original UI silently redirects.
func (a *app) authorize(destination string) (bool, error) {
	current, err := a.requireSession()
	if err != nil {
		return false, err
	}
	resolution, err := a.table.Resolve(current.Role, destination)
	if err != nil {
		return false, errors.Wrap(err, "[app.authorize]")
	}
	if !resolution.Allow {
		a.printer.Warning("role %q may not access %s, your workspace is %s", current.Role, destination, resolution.RedirectTo)
		return false, nil
	}
	return true, nil
}
