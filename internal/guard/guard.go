// Package guard decides whether a protected view may render or must redirect
// to login. It deliberately distinguishes "no session" from "session state
// not yet known" so that a slow or failing store read produces a loading
// placeholder instead of a spurious redirect on first paint.
package guard

import (
	"context"

	"github.com/pulseboard/pulseboard/internal/session"
)

// State is the resolved authentication state.
type State int

const (
	// StateUnknown means the marker could not be read yet; render a loading
	// placeholder, never a redirect.
	StateUnknown State = iota
	// StateAnonymous means no valid marker is present.
	StateAnonymous
	// StateAuthenticated means a marker exists.
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Decision is the guard's verdict for a protected view.
type Decision int

const (
	DecisionLoading Decision = iota
	DecisionRedirectToLogin
	DecisionRender
)

// Decide maps a resolved state to a rendering decision. Pure; no retries.
func Decide(s State) Decision {
	switch s {
	case StateAuthenticated:
		return DecisionRender
	case StateAnonymous:
		return DecisionRedirectToLogin
	default:
		return DecisionLoading
	}
}

// Resolver reads session markers from an injected store.
type Resolver struct {
	store session.Store
}

func NewResolver(store session.Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve reads the marker under key. An absent record is Anonymous, never an
// error; only a failed store read yields Unknown.
func (r *Resolver) Resolve(ctx context.Context, key string) (State, *session.Record) {
	if key == "" {
		return StateAnonymous, nil
	}
	rec, ok, err := r.store.Get(ctx, key)
	if err != nil {
		return StateUnknown, nil
	}
	if !ok {
		return StateAnonymous, nil
	}
	return StateAuthenticated, &rec
}

// IsAuthenticated reports whether a marker is present under key. Idempotent
// across repeated reads with no intervening write.
func (r *Resolver) IsAuthenticated(ctx context.Context, key string) bool {
	s, _ := r.Resolve(ctx, key)
	return s == StateAuthenticated
}
