// Package poller fetches device values for a session and publishes them.
package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"idm_bridge/internal/api"
	"idm_bridge/internal/mapper"
	"idm_bridge/internal/statetree"
	"idm_bridge/internal/types"
)

// ValuesClient is the part of the API client the poller needs.
type ValuesClient interface {
	GetValues(ctx context.Context, token, installationID string) (*types.ValuesResponse, error)
}

// Poller turns values responses into published state.
type Poller struct {
	client ValuesClient
	codec  *mapper.Codec
	store  statetree.Store
	logger *slog.Logger
	now    func() time.Time

	mu   sync.RWMutex
	last *types.DeviceSnapshot
}

// New creates a poller.
func New(client ValuesClient, codec *mapper.Codec, store statetree.Store, logger *slog.Logger) *Poller {
	return &Poller{
		client: client,
		codec:  codec,
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Fetch retrieves and normalizes the current device values.
// Nothing is published; a failed fetch leaves the tree untouched.
func (p *Poller) Fetch(ctx context.Context, session *types.Session) (*types.DeviceSnapshot, error) {
	if session == nil {
		return nil, errors.New("no session")
	}

	resp, err := p.client.GetValues(ctx, session.Token, session.InstallationID)
	if err != nil {
		return nil, fmt.Errorf("get values: %w", err)
	}

	snap, unmapped, err := p.codec.BuildSnapshot(resp, p.now())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", api.ErrMalformed, err)
	}

	for _, u := range unmapped {
		p.logger.Warn("Unmapped vendor code", "field", u.Field, "context", u.Context.String(), "code", u.Code)
	}

	p.logger.Debug("Current system mode", "code", resp.Mode.Text, "mode", snap.SystemMode)
	p.logger.Debug("Current system state", "code", resp.State.Text, "state", snap.SystemState)
	p.logger.Debug("Current circuit mode", "code", resp.Circuits[0].Mode.Text, "mode", snap.CircuitMode)
	p.logger.Debug("Current circuit state", "code", resp.Circuits[0].State.Text, "state", snap.CircuitState)
	p.logger.Debug("Current errors", "errors", snap.Errors)

	return snap, nil
}

// Publish writes every snapshot field with ack=true, then sets info.connection.
func (p *Poller) Publish(ctx context.Context, snap *types.DeviceSnapshot) error {
	var errs []error
	for _, sv := range mapper.StateValues(snap) {
		if err := p.store.SetState(ctx, sv.ID, sv.Value, true); err != nil {
			p.logger.Error("Failed to publish state", "id", sv.ID, "error", err)
			errs = append(errs, err)
		}
	}

	p.mu.Lock()
	p.last = snap
	p.mu.Unlock()

	if err := p.store.SetState(ctx, mapper.StateConnection, true, true); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Poll fetches and publishes. On fetch failure it only logs; connectivity is left alone.
func (p *Poller) Poll(ctx context.Context, session *types.Session) error {
	snap, err := p.Fetch(ctx, session)
	if err != nil {
		var se *api.StatusError
		if errors.As(err, &se) {
			p.logger.Warn("Server is returning", "status", se.Status)
		} else {
			p.logger.Error("Failed to fetch device data", "error", err)
		}
		return err
	}

	p.logger.Debug("Successfully received device data")

	return p.Publish(ctx, snap)
}

// Last returns the most recently published snapshot, or nil.
func (p *Poller) Last() *types.DeviceSnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.last
}
