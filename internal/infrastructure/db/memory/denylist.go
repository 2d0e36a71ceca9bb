package memory

import (
	"context"
	"sync"
	"time"
)

// TokenDenylist implements ports.TokenDenylist for single-instance
// deployments without Redis.
type TokenDenylist struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewTokenDenylist() *TokenDenylist {
	return &TokenDenylist{revoked: make(map[string]time.Time), now: time.Now}
}

func (d *TokenDenylist) Revoke(_ context.Context, tokenID string, until time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.sweep()
	d.revoked[tokenID] = until
	return nil
}

func (d *TokenDenylist) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	until, ok := d.revoked[tokenID]
	if !ok {
		return false, nil
	}
	if !until.IsZero() && d.now().After(until) {
		delete(d.revoked, tokenID)
		return false, nil
	}
	return true, nil
}

// sweep drops entries whose tokens have expired. Callers hold d.mu.
func (d *TokenDenylist) sweep() {
	now := d.now()
	for id, until := range d.revoked {
		if !until.IsZero() && now.After(until) {
			delete(d.revoked, id)
		}
	}
}
