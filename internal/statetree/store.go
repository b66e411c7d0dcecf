// Package statetree publishes bridge values into a home-automation state tree
// and delivers user writes on command addresses back to the bridge.
package statetree

import (
	"context"
	"time"
)

// State is one value in the tree.
// Ack is true for values confirmed by the bridge and false for user requests.
type State struct {
	Val any
	Ack bool
	Ts  time.Time
}

// Store is the write side of the state tree.
type Store interface {
	SetState(ctx context.Context, id string, val any, ack bool) error
}

// WriteHandler receives writes observed on subscribed addresses.
type WriteHandler func(id string, st State)
