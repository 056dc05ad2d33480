package memory

import (
	"context"
	"sync"

	"growshare/internal/app/policies"
)

// IdentityDirectory is a static token directory standing in for the external
// identity service during development and tests.
type IdentityDirectory struct {
	mu     sync.RWMutex
	tokens map[string]policies.Principal
}

func NewIdentityDirectory() *IdentityDirectory {
	return &IdentityDirectory{tokens: make(map[string]policies.Principal)}
}

func (d *IdentityDirectory) Register(token string, p policies.Principal) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tokens[token] = p
}

func (d *IdentityDirectory) ResolveToken(ctx context.Context, token string) (policies.Principal, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	p, ok := d.tokens[token]
	if !ok {
		return policies.Principal{}, policies.ErrUnknownToken
	}
	return p, nil
}

var _ policies.IdentityResolver = (*IdentityDirectory)(nil)
