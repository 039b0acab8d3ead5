// Package vault implements the gate in front of the Locked tag.
package vault

import (
	"context"

	"archives/internal/feed"
	"archives/internal/observability"
	"archives/internal/prefs"
)

// State is what the visitor's client needs to render the gate.
type State struct {
	Unlocked bool `json:"unlocked"`
	// ActiveTag is the tag to switch to; empty means keep the current one.
	ActiveTag string `json:"active_tag,omitempty"`
	// NeedsConfirmation asks the client to show the EXIT/ENTER overlay.
	NeedsConfirmation bool `json:"needs_confirmation"`
}

// Gate persists the per-visitor unlock flag. Once set it is never cleared.
type Gate struct {
	store prefs.Store
}

func NewGate(store prefs.Store) *Gate {
	return &Gate{store: store}
}

// Unlocked reports whether the visitor has entered the vault before.
func (g *Gate) Unlocked(ctx context.Context, visitorID string) (bool, error) {
	return g.store.GetBool(ctx, visitorID, prefs.KeyVaultUnlocked)
}

// Select handles a tag click. Locked while the vault is closed asks for
// confirmation instead of switching; every other tag switches directly.
func (g *Gate) Select(ctx context.Context, visitorID, tag string) (State, error) {
	unlocked, err := g.Unlocked(ctx, visitorID)
	if err != nil {
		return State{}, err
	}
	tag = feed.ParseTag(tag)
	if tag == feed.TagLocked && !unlocked {
		return State{Unlocked: false, NeedsConfirmation: true}, nil
	}
	return State{Unlocked: unlocked, ActiveTag: tag}, nil
}

// Enter unlocks the vault and switches to the Locked tag. Idempotent.
func (g *Gate) Enter(ctx context.Context, visitorID string) (State, error) {
	first, err := g.store.MarkOnce(ctx, visitorID, prefs.KeyVaultUnlocked)
	if err != nil {
		return State{}, err
	}
	if first {
		observability.VaultUnlocks.Inc()
	}
	return State{Unlocked: true, ActiveTag: feed.TagLocked}, nil
}

// Exit dismisses the overlay without changing anything.
func (g *Gate) Exit(ctx context.Context, visitorID string) (State, error) {
	unlocked, err := g.Unlocked(ctx, visitorID)
	if err != nil {
		return State{}, err
	}
	return State{Unlocked: unlocked}, nil
}
