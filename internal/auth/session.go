package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"idm_bridge/internal/api"
	"idm_bridge/internal/mapper"
	"idm_bridge/internal/scheduler"
	"idm_bridge/internal/statetree"
	"idm_bridge/internal/types"
)

// DefaultReloadInterval is how often the session is re-established.
const DefaultReloadInterval = 5 * time.Minute

// Credentials holds authentication credentials.
type Credentials struct {
	Username string
	Password string
}

// LoginClient is the part of the API client the session manager needs.
type LoginClient interface {
	Login(ctx context.Context, username, passwordHash string) (*types.LoginResponse, error)
}

// SessionManager logs in, owns the current Session and re-arms the reload timer.
// The session is always replaced wholesale, so readers see a consistent
// token/installation pair.
type SessionManager struct {
	client   LoginClient
	creds    Credentials
	store    statetree.Store
	logger   *slog.Logger
	interval time.Duration
	reload   func()
	timer    scheduler.Timer
	now      func() time.Time

	mu      sync.RWMutex
	session *types.Session
}

// NewSessionManager creates a session manager. reload is invoked by the
// reload timer, interval after every login attempt.
func NewSessionManager(client LoginClient, creds Credentials, store statetree.Store, interval time.Duration, reload func(), logger *slog.Logger) *SessionManager {
	if interval <= 0 {
		interval = DefaultReloadInterval
	}
	return &SessionManager{
		client:   client,
		creds:    creds,
		store:    store,
		logger:   logger,
		interval: interval,
		reload:   reload,
		now:      time.Now,
	}
}

// Login authenticates and replaces the cached session.
// On failure the session is cleared and info.connection is set to false.
// The reload timer is re-armed regardless of the outcome.
func (m *SessionManager) Login(ctx context.Context) (*types.Session, error) {
	defer m.rearm()

	m.logger.Debug("Starting login", "username", m.creds.Username)

	resp, err := m.client.Login(ctx, m.creds.Username, HashPassword(m.creds.Password))
	if err == nil && (resp.Token == "" || len(resp.Installations) == 0 || strings.TrimSpace(resp.Installations[0].Name) == "") {
		err = fmt.Errorf("%w: no token, installation or installation name", api.ErrMalformed)
	}
	if err != nil {
		m.fail(ctx, err)
		return nil, fmt.Errorf("login: %w", err)
	}

	inst := resp.Installations[0]
	session := &types.Session{
		Token:            resp.Token,
		InstallationID:   inst.ID.Text,
		InstallationName: strings.TrimSpace(inst.Name),
		AcquiredAt:       m.now(),
	}

	m.mu.Lock()
	m.session = session
	m.mu.Unlock()

	m.logger.Debug("Successfully received session token", "installation_id", session.InstallationID)

	m.publish(ctx, mapper.StateInstallationName, session.InstallationName)
	m.publish(ctx, mapper.StateInstallationID, mapper.ParseInstallationID(session.InstallationID))

	return session, nil
}

// Current returns the cached session, or nil when not logged in.
func (m *SessionManager) Current() *types.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session
}

// ReloadPending reports whether a re-login is scheduled.
func (m *SessionManager) ReloadPending() bool {
	return m.timer.Pending()
}

// Stop cancels the reload timer. It must be called on shutdown.
func (m *SessionManager) Stop() {
	m.timer.Stop()
	m.logger.Debug("Reload timer stopped")
}

func (m *SessionManager) fail(ctx context.Context, err error) {
	m.mu.Lock()
	m.session = nil
	m.mu.Unlock()

	var se *api.StatusError
	switch {
	case errors.As(err, &se):
		m.logger.Warn("Server is returning", "status", se.Status)
		// the server answers 404 for bad credentials too
		m.logger.Info("Please check if your e-mail and password are correct")
	case errors.Is(err, api.ErrMalformed):
		m.logger.Error("Unexpected login response", "error", err)
	case errors.Is(err, api.ErrTransport):
		m.logger.Error("Login request failed", "error", err)
	default:
		m.logger.Error("Login failed", "error", err)
	}

	m.publish(ctx, mapper.StateConnection, false)
}

func (m *SessionManager) rearm() {
	if m.reload == nil {
		return
	}
	m.timer.Schedule(m.interval, m.reload)
	m.logger.Debug("Reload scheduled", "in", m.interval)
}

func (m *SessionManager) publish(ctx context.Context, id string, val any) {
	if err := m.store.SetState(ctx, id, val, true); err != nil {
		m.logger.Error("Failed to publish state", "id", id, "error", err)
	}
}
