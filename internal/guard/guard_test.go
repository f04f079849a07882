package guard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulseboard/pulseboard/internal/session"
)

func TestDecide(t *testing.T) {
	assert.Equal(t, DecisionRender, Decide(StateAuthenticated))
	assert.Equal(t, DecisionRedirectToLogin, Decide(StateAnonymous))
	assert.Equal(t, DecisionLoading, Decide(StateUnknown))
}

func TestResolveEmptyKeyIsAnonymous(t *testing.T) {
	r := NewResolver(session.NewMemoryStore())
	state, rec := r.Resolve(context.Background(), "")
	assert.Equal(t, StateAnonymous, state)
	assert.Nil(t, rec)
}

func TestResolveMissingMarkerIsAnonymous(t *testing.T) {
	r := NewResolver(session.NewMemoryStore())
	state, rec := r.Resolve(context.Background(), "nope")
	assert.Equal(t, StateAnonymous, state)
	assert.Nil(t, rec)
}

func TestResolvePresentMarkerIsAuthenticated(t *testing.T) {
	store := session.NewMemoryStore()
	rec := session.Record{UserID: "u1", Email: "ada@example.com", Name: "Ada"}
	require.NoError(t, store.Set(context.Background(), "k1", rec, time.Hour))

	r := NewResolver(store)
	state, got := r.Resolve(context.Background(), "k1")

	assert.Equal(t, StateAuthenticated, state)
	require.NotNil(t, got)
	assert.Equal(t, rec.UserID, got.UserID)
	assert.Equal(t, rec.Email, got.Email)
}

func TestResolveStoreFailureIsUnknownNotRedirect(t *testing.T) {
	store := session.NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), "k1", session.Record{UserID: "u1"}, time.Hour))
	store.FailReads = errors.New("backend unreachable")

	r := NewResolver(store)
	state, rec := r.Resolve(context.Background(), "k1")

	assert.Equal(t, StateUnknown, state)
	assert.Nil(t, rec)
	assert.Equal(t, DecisionLoading, Decide(state), "an unreadable marker must never redirect")

	// Once the store recovers the same key resolves as authenticated.
	store.FailReads = nil
	state, _ = r.Resolve(context.Background(), "k1")
	assert.Equal(t, StateAuthenticated, state)
}

func TestResolveExpiredMarkerIsAnonymous(t *testing.T) {
	store := session.NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), "k1", session.Record{UserID: "u1"}, time.Nanosecond))
	time.Sleep(2 * time.Millisecond)

	r := NewResolver(store)
	state, _ := r.Resolve(context.Background(), "k1")
	assert.Equal(t, StateAnonymous, state)
}

func TestIsAuthenticatedIdempotent(t *testing.T) {
	store := session.NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), "k1", session.Record{UserID: "u1"}, time.Hour))
	r := NewResolver(store)

	for i := 0; i < 3; i++ {
		assert.True(t, r.IsAuthenticated(context.Background(), "k1"))
	}
	assert.False(t, r.IsAuthenticated(context.Background(), "other"))
}
