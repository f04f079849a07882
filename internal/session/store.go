package session

import (
	"context"
	"time"
)

// Record is the session marker: the fact that a login succeeded plus the
// opaque user snapshot taken at login time. Presence of a record is the sole
// authentication signal; no local expiry or signature check is applied beyond
// the store's own TTL.
type Record struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Provider  string    `json:"provider,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is the key-value slot holding session markers. Implementations must
// read and write records as whole values; there is no partial update.
//
// Get distinguishes "absent" (ok=false, err=nil) from "unreadable"
// (err != nil): callers treat the former as not authenticated and the latter
// as unknown state.
type Store interface {
	Get(ctx context.Context, key string) (Record, bool, error)
	Set(ctx context.Context, key string, rec Record, ttl time.Duration) error
	Remove(ctx context.Context, key string) error
}
