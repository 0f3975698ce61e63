package auth

import (
	"context"
	"sync"
	"time"
)

// Denylist records revoked token ids until their natural expiry.
type Denylist interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// NopDenylist keeps nothing: logout only discards the client's copy.
type NopDenylist struct{}

func (NopDenylist) Revoke(context.Context, string, time.Time) error  { return nil }
func (NopDenylist) IsRevoked(context.Context, string) (bool, error) { return false, nil }

// MemoryDenylist is a process-local denylist.
type MemoryDenylist struct {
	mu      sync.Mutex
	entries map[string]time.Time
}

func NewMemoryDenylist() *MemoryDenylist {
	return &MemoryDenylist{entries: make(map[string]time.Time)}
}

func (d *MemoryDenylist) Revoke(_ context.Context, jti string, expiresAt time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries[jti] = expiresAt
	return nil
}

func (d *MemoryDenylist) IsRevoked(_ context.Context, jti string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	exp, ok := d.entries[jti]
	if !ok {
		return false, nil
	}
	if time.Now().After(exp) {
		delete(d.entries, jti)
		return false, nil
	}
	return true, nil
}
