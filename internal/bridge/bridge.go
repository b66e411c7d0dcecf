// Package bridge runs the login/fetch cycle and routes command writes to the vendor API.
package bridge

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"idm_bridge/internal/api"
	"idm_bridge/internal/collector"
	"idm_bridge/internal/mapper"
	"idm_bridge/internal/statetree"
	"idm_bridge/internal/types"
)

// Sessions owns login and the current session.
type Sessions interface {
	Login(ctx context.Context) (*types.Session, error)
	Current() *types.Session
	Stop()
}

// Poller fetches and publishes device values for a session.
type Poller interface {
	Poll(ctx context.Context, session *types.Session) error
}

// CommandClient sends vendor commands.
type CommandClient interface {
	SendCommand(ctx context.Context, token, installationID string, cmd api.Command) (*types.CommandResponse, error)
}

// Metrics records bridge activity. *collector.BridgeCollector implements it.
type Metrics interface {
	ObserveLogin(err error)
	ObserveFetch(err error)
	ObserveCommand(result string)
	ObserveCycle(d time.Duration)
}

// Bridge is the control loop. Login and fetch only ever run on the Run
// goroutine; HandleWrite may be called concurrently from the state tree.
type Bridge struct {
	sessions Sessions
	poller   Poller
	commands CommandClient
	store    statetree.Store
	metrics  Metrics
	logger   *slog.Logger

	trigger chan struct{}
}

// New creates a bridge. metrics may be nil.
func New(sessions Sessions, poller Poller, commands CommandClient, store statetree.Store, metrics Metrics, logger *slog.Logger) *Bridge {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &Bridge{
		sessions: sessions,
		poller:   poller,
		commands: commands,
		store:    store,
		metrics:  metrics,
		logger:   logger,
		trigger:  make(chan struct{}, 1),
	}
}

// Run performs an immediate cycle and then one cycle per Refresh until ctx
// is cancelled. The reload timer is stopped on return.
func (b *Bridge) Run(ctx context.Context) error {
	defer b.sessions.Stop()

	b.cycle(ctx)

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Control loop stopped")
			return nil
		case <-b.trigger:
			b.cycle(ctx)
		}
	}
}

// Refresh requests a cycle. Requests made while one is already pending are merged.
func (b *Bridge) Refresh() {
	select {
	case b.trigger <- struct{}{}:
	default:
	}
}

func (b *Bridge) cycle(ctx context.Context) {
	start := time.Now()
	defer func() { b.metrics.ObserveCycle(time.Since(start)) }()

	session, err := b.sessions.Login(ctx)
	b.metrics.ObserveLogin(err)
	if err != nil {
		return
	}

	b.metrics.ObserveFetch(b.poller.Poll(ctx, session))
}

// Handler adapts HandleWrite to a statetree.WriteHandler bound to ctx.
func (b *Bridge) Handler(ctx context.Context) statetree.WriteHandler {
	return func(id string, st statetree.State) {
		b.HandleWrite(ctx, id, st)
	}
}

// HandleWrite dispatches a user write on a command address.
// Confirmed writes (ack=true) are the bridge's own and are ignored.
func (b *Bridge) HandleWrite(ctx context.Context, id string, st statetree.State) {
	if st.Ack {
		return
	}

	intent, ok := mapper.ParseCommandAddress(id)
	if !ok {
		b.logger.Debug("Ignoring write on non-command address", "id", id)
		return
	}

	if intent.Scope == mapper.ScopeCircuit && intent.Circuit != mapper.PrimaryCircuit {
		b.logger.Warn("Unsupported circuit", "id", id, "circuit", intent.Circuit)
		b.metrics.ObserveCommand(collector.ResultDropped)
		return
	}

	vc, ok := mapper.Translate(intent)
	if !ok {
		b.logger.Warn("Unknown command", "id", id, "scope", intent.Scope.String(), "action", intent.Action)
		b.metrics.ObserveCommand(collector.ResultDropped)
		return
	}

	session := b.sessions.Current()
	if session == nil {
		b.logger.Error("Cannot send command without session", "id", id)
		b.metrics.ObserveCommand(collector.ResultDropped)
		return
	}

	b.logger.Info("Sending command", "id", id, "command", vc.Name, "value", vc.Value)

	resp, err := b.commands.SendCommand(ctx, session.Token, session.InstallationID, api.Command{
		Name:    vc.Name,
		Value:   vc.Value,
		Circuit: vc.Circuit,
	})
	if err != nil {
		var se *api.StatusError
		if errors.As(err, &se) {
			b.logger.Warn("Server is returning", "status", se.Status, "id", id)
		} else {
			b.logger.Error("Failed to send command", "id", id, "error", err)
		}
		b.metrics.ObserveCommand(collector.ResultFailure)
		return
	}

	if !resp.Status {
		b.logger.Warn("Command was not acknowledged", "id", id)
		b.metrics.ObserveCommand(collector.ResultNack)
		return
	}

	if err := b.store.SetState(ctx, id, st.Val, true); err != nil {
		b.logger.Error("Failed to acknowledge command", "id", id, "error", err)
	}
	b.metrics.ObserveCommand(collector.ResultSuccess)
}

type nopMetrics struct{}

func (nopMetrics) ObserveLogin(error) {}
func (nopMetrics) ObserveFetch(error) {}
func (nopMetrics) ObserveCommand(string) {}
func (nopMetrics) ObserveCycle(time.Duration) {}
