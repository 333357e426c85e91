// Package transport wraps every outbound call to the backend: it attaches
// the current access credential, detects an expired-credential response,
// coordinates renewal through the refresher and replays the original call
// exactly once with the renewed credential. Domain code above it only ever
// sees "succeeded" or "failed for a domain reason" - never that a credential
// needed refreshing.
package transport

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-task-client/session"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// TokenRefresher exchanges the refresh credential for a new access
// credential, coalescing concurrent callers onto a single exchange.
type TokenRefresher interface {
	Refresh(ctx context.Context) (string, error)
}

// Pipeline is an http.RoundTripper implementing the request state machine:
//
//	Sent -> (ok) -> Done
//	Sent -> (401, not retried) -> Refreshing -> (ok) -> Retried -> Done
//	Sent|Retried -> (401) -> Failed(SessionExpired)
//
// The session is re-read from the store immediately before each attempt and
// never cached across the refresh await.
type Pipeline struct {
	base             http.RoundTripper
	store            session.Store
	refresher        TokenRefresher
	onSessionExpired func()
	log              zerolog.Logger
	teardownMu       sync.Mutex
}

var _ http.RoundTripper = (*Pipeline)(nil)

// PipelineOption defines a function type to modify the Pipeline instance.
type PipelineOption func(*Pipeline)

// WithBase sets the underlying RoundTripper (defaults to
// http.DefaultTransport).
func WithBase(base http.RoundTripper) PipelineOption {
	return func(p *Pipeline) {
		p.base = base
	}
}

// WithOnSessionExpired sets a hook fired when a replayed request still comes
// back unauthorized and the session is torn down.
func WithOnSessionExpired(hook func()) PipelineOption {
	return func(p *Pipeline) {
		p.onSessionExpired = hook
	}
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.log = log
	}
}

// NewPipeline creates a Pipeline reading credentials from store and renewing
// them through refresher.
func NewPipeline(store session.Store, refresher TokenRefresher, options ...PipelineOption) (*Pipeline, error) {
	if store == nil {
		return nil, errors.New("[NewPipeline] store is required")
	}
	if refresher == nil {
		return nil, errors.New("[NewPipeline] refresher is required")
	}

	pipeline := &Pipeline{
		base:      http.DefaultTransport,
		store:     store,
		refresher: refresher,
		log:       zerolog.Nop(),
	}
	for _, opt := range options {
		opt(pipeline)
	}
	return pipeline, nil
}

func (p *Pipeline) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := ensureReplayable(req); err != nil {
		return nil, err
	}
	requestID := uuid.New().String()

	attempt, attached, err := p.prepare(req, requestID)
	if err != nil {
		return nil, err
	}

	resp, err := p.base.RoundTrip(attempt)
	if err != nil {
		return nil, err
	}
	// A 401 without an attached credential is an ordinary domain failure,
	// not an expired credential; pass it through.
	if resp.StatusCode != http.StatusUnauthorized || !attached {
		return resp, nil
	}
	drain(resp)

	p.log.Debug().Str("request_id", requestID).Str("path", req.URL.Path).Msg("credential expired, refreshing")
	if _, err := p.refresher.Refresh(req.Context()); err != nil {
		return nil, errors.Wrapf(err, "[Pipeline.RoundTrip] refresh for %s", req.URL.Path)
	}

	retry, attached, err := p.prepare(req, requestID)
	if err != nil {
		return nil, err
	}
	if !attached {
		// Session vanished between refresh and replay.
		return nil, errors.Wrap(session.ErrSessionExpired, "[Pipeline.RoundTrip] session cleared before replay")
	}

	resp, err = p.base.RoundTrip(retry)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		// The renewed credential was rejected too. One retry is the bound;
		// this is a hard sign-out, not another refresh.
		drain(resp)
		p.teardown()
		return nil, errors.Wrapf(session.ErrSessionExpired, "[Pipeline.RoundTrip] still unauthorized after refresh for %s", req.URL.Path)
	}
	return resp, nil
}

// prepare clones the request for one attempt, re-reading the store so a
// credential renewed by a concurrent request is picked up. It reports whether
// a credential was attached.
func (p *Pipeline) prepare(req *http.Request, requestID string) (*http.Request, bool, error) {
	attempt := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, false, errors.Wrap(err, "[Pipeline.prepare] GetBody")
		}
		attempt.Body = body
	}

	if attempt.Body != nil && attempt.Header.Get("Content-Type") == "" {
		attempt.Header.Set("Content-Type", "application/json")
	}
	attempt.Header.Set("X-Request-ID", requestID)

	current, err := p.store.Load()
	if err != nil {
		return nil, false, errors.Wrap(err, "[Pipeline.prepare] load session")
	}
	if !current.Established() {
		return attempt, false, nil
	}
	attempt.Header.Set("Authorization", "Bearer "+current.AccessToken)
	return attempt, true, nil
}

// teardown destroys the session after a rejected replay. Concurrent requests
// can all observe the same rejected credential; only the request that finds
// the session still present destroys it and fires the hook, so the hook
// fires once per failure.
func (p *Pipeline) teardown() {
	p.teardownMu.Lock()
	defer p.teardownMu.Unlock()

	current, err := p.store.Load()
	if err == nil && !current.Established() {
		return
	}
	if err := p.store.Clear(); err != nil {
		p.log.Error().Err(err).Msg("clearing session after rejected replay")
	}
	if p.onSessionExpired != nil {
		p.onSessionExpired()
	}
}

// ensureReplayable buffers a one-shot body so the request can be re-issued
// after a refresh.
func ensureReplayable(req *http.Request) error {
	if req.Body == nil || req.GetBody != nil {
		return nil
	}
	data, err := io.ReadAll(req.Body)
	req.Body.Close()
	if err != nil {
		return errors.Wrap(err, "[ensureReplayable] ReadAll")
	}
	req.Body = io.NopCloser(bytes.NewReader(data))
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}
	return nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
	resp.Body.Close()
}
