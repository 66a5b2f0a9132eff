package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/opencua/gateway/internal/domain/action"
	"github.com/opencua/gateway/internal/domain/agent"
	"github.com/opencua/gateway/internal/infrastructure/logging"
	"github.com/opencua/gateway/internal/infrastructure/monitoring"
	"github.com/opencua/gateway/internal/providers/scrapybara"
	"github.com/opencua/gateway/internal/shared/errdefs"
	"github.com/opencua/gateway/internal/shared/id"
	"github.com/opencua/gateway/internal/shared/types"
)

// DefaultStartURL is opened in new browser sessions when the caller does
// not supply one.
const DefaultStartURL = "https://bing.com"

// Provisioner starts remote instances. Satisfied by *scrapybara.Client.
type Provisioner interface {
	Start(ctx context.Context, instanceType scrapybara.InstanceType) (scrapybara.Instance, error)
}

// Manager is the session registry: it owns the id to session mapping and
// is the only path to a session's instance handle. A single lock guards
// the mapping; per-session work is serialized by the session's own
// operation lock so one slow interaction never blocks other sessions.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	provider Provisioner
	loop     *agent.Loop
	logger   *logging.Logger
	metrics  *monitoring.Metrics
}

// NewManager creates a session registry backed by the given provisioner
// and agent loop.
func NewManager(provider Provisioner, loop *agent.Loop) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		provider: provider,
		loop:     loop,
		logger:   logging.NewNop(),
	}
}

// WithLogger attaches a logger.
func (m *Manager) WithLogger(logger *logging.Logger) *Manager {
	m.logger = logger
	return m
}

// WithMetrics attaches metrics collection.
func (m *Manager) WithMetrics(metrics *monitoring.Metrics) *Manager {
	m.metrics = metrics
	return m
}

// Create provisions a new instance and registers a session around it.
// Browser sessions are navigated to the start URL (DefaultStartURL when
// unset) before the session becomes visible. The initial screenshot is
// returned alongside the session; any failure after provisioning
// releases the instance before returning.
func (m *Manager) Create(ctx context.Context, params types.CreateParams) (*Session, string, error) {
	instanceType, err := instanceTypeFor(params.ComputerType)
	if err != nil {
		return nil, "", err
	}

	inst, err := m.provider.Start(ctx, instanceType)
	if err != nil {
		return nil, "", err
	}

	sess := &Session{
		ID:        id.NewSessionID().String(),
		Computer:  params.ComputerType,
		CreatedAt: time.Now().UTC(),
		Debug:     params.Debug,
		Show:      params.Show,
		instance:  inst,
	}

	if url, err := inst.StreamURL(ctx); err == nil {
		sess.StreamURL = url
	} else {
		m.logger.Debug("Stream URL unavailable", zap.String("session_id", sess.ID), zap.Error(err))
	}

	if params.ComputerType.IsBrowser() {
		startURL := params.StartURL
		if startURL == "" {
			startURL = DefaultStartURL
		}
		if err := inst.Navigate(ctx, startURL); err != nil {
			m.release(ctx, sess)
			return nil, "", err
		}
	}

	screenshot, err := inst.Screenshot(ctx)
	if err != nil {
		m.release(ctx, sess)
		return nil, "", err
	}

	m.mu.Lock()
	m.sessions[sess.ID] = sess
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.RecordSessionCreated(string(params.ComputerType))
	}
	m.logger.Info("Session created",
		zap.String("session_id", sess.ID),
		zap.String("computer_type", string(params.ComputerType)),
		zap.String("instance_id", inst.ID()))

	return sess, screenshot, nil
}

// Get returns the session for id, or *errdefs.NotFoundError.
func (m *Manager) Get(sessionID string) (*Session, error) {
	m.mu.RLock()
	sess, ok := m.sessions[sessionID]
	m.mu.RUnlock()
	if !ok {
		return nil, &errdefs.NotFoundError{SessionID: sessionID}
	}
	return sess, nil
}

// List returns metadata for every live session, keyed by session id.
func (m *Manager) List() map[string]types.SessionMetadata {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]types.SessionMetadata, len(m.sessions))
	for sid, sess := range m.sessions {
		out[sid] = sess.Metadata()
	}
	return out
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Delete releases the session's instance and removes it from the
// registry. If releasing the handle fails the session stays registered
// so the caller can retry; once the handle is released the session is
// gone and a second delete reports *errdefs.NotFoundError.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	m.mu.RLock()
	sess, ok := m.sessions[sessionID]
	m.mu.RUnlock()
	if !ok {
		return &errdefs.NotFoundError{SessionID: sessionID}
	}

	sess.opMu.Lock()
	defer sess.opMu.Unlock()
	if sess.closed {
		return &errdefs.NotFoundError{SessionID: sessionID}
	}

	if err := sess.instance.Stop(ctx); err != nil {
		m.logger.Error("Instance release failed",
			zap.String("session_id", sessionID),
			zap.String("instance_id", sess.instance.ID()),
			zap.Error(err))
		return err
	}
	sess.closed = true
	m.mu.Lock()
	delete(m.sessions, sessionID)
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.RecordSessionDeleted()
	}
	m.logger.Info("Session deleted", zap.String("session_id", sessionID))
	return nil
}

// Interact runs one agent interaction against the session: the input and
// everything the model produces are appended to the session history, and
// every model action is executed before the result returns.
func (m *Manager) Interact(ctx context.Context, sessionID, input string) (*agent.RunResult, error) {
	sess, release, err := m.acquire(sessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	return m.loop.Run(ctx, sess, input)
}

// ExecuteAction validates and dispatches a single caller-supplied action
// against the session, returning the dispatch result.
func (m *Manager) ExecuteAction(ctx context.Context, sessionID string, payload json.RawMessage) (*action.Action, *action.Result, error) {
	sess, release, err := m.acquire(sessionID)
	if err != nil {
		return nil, nil, err
	}
	defer release()

	a, err := action.Parse(payload)
	if err != nil {
		return nil, nil, err
	}
	res, err := action.Dispatch(ctx, sess.instance, sess.Computer, a)
	if err != nil {
		return nil, nil, err
	}
	return a, res, nil
}

// Screenshot captures the session's current visual state.
func (m *Manager) Screenshot(ctx context.Context, sessionID string) (string, error) {
	sess, release, err := m.acquire(sessionID)
	if err != nil {
		return "", err
	}
	defer release()

	return sess.instance.Screenshot(ctx)
}

// Shutdown releases every live instance. Used on server close; release
// failures are logged and do not stop the sweep.
func (m *Manager) Shutdown(ctx context.Context) {
	m.mu.Lock()
	remaining := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for sid, sess := range remaining {
		sess.opMu.Lock()
		if !sess.closed {
			if err := sess.instance.Stop(ctx); err != nil {
				m.logger.Error("Instance release failed on shutdown",
					zap.String("session_id", sid), zap.Error(err))
			}
			sess.closed = true
		}
		sess.opMu.Unlock()
	}
	m.logger.Info("Session registry shut down")
}

// acquire looks the session up and takes its operation lock, re-checking
// liveness under the lock so an operation that lost a race with delete
// reports not found instead of touching a released handle.
func (m *Manager) acquire(sessionID string) (*Session, func(), error) {
	m.mu.RLock()
	sess, ok := m.sessions[sessionID]
	m.mu.RUnlock()
	if !ok {
		return nil, nil, &errdefs.NotFoundError{SessionID: sessionID}
	}
	sess.opMu.Lock()
	if sess.closed {
		sess.opMu.Unlock()
		return nil, nil, &errdefs.NotFoundError{SessionID: sessionID}
	}
	return sess, func() { sess.opMu.Unlock() }, nil
}

// release stops an instance belonging to a session that never became
// visible. Errors are logged only; the caller already has a better one.
func (m *Manager) release(ctx context.Context, sess *Session) {
	if err := sess.instance.Stop(ctx); err != nil {
		m.logger.Warn("Instance release failed during create",
			zap.String("instance_id", sess.instance.ID()), zap.Error(err))
	}
	sess.closed = true
}

func instanceTypeFor(ct types.ComputerType) (scrapybara.InstanceType, error) {
	switch ct {
	case types.ComputerBrowser:
		return scrapybara.InstanceBrowser, nil
	case types.ComputerDesktop:
		return scrapybara.InstanceUbuntu, nil
	default:
		return "", fmt.Errorf("unknown computer type: %s", ct)
	}
}
