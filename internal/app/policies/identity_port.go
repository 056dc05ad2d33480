package policies

import (
	"context"
	"errors"
)

var ErrUnknownToken = errors.New("policies: unknown token")

// Principal is the authenticated caller as resolved by the external identity
// service. Only the fields booking decisions depend on are carried.
type Principal struct {
	ID            string
	Email         string
	EmailVerified bool
	Roles         []string
}

// IdentityResolver is the contract towards the identity/auth subsystem, which
// lives outside this service.
type IdentityResolver interface {
	ResolveToken(ctx context.Context, token string) (Principal, error)
}
