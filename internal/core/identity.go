package core

import "context"

// Identity is an authenticated user reference, immutable for the lifetime of
// the connection it is bound to.
type Identity struct {
	ID   int64
	Name string
}

// IdentityVerifier validates a presented credential and yields the stable
// identity behind it.
type IdentityVerifier interface {
	Verify(ctx context.Context, credential string) (Identity, error)
}
