package identity

import "context"

// Provider is the external identity provider: it owns credentials, token
// issuance and expiry, and the user records themselves.
//
// Implementations return pkg/sentinel errors for infrastructure facts:
// ErrNotFound for unknown users, ErrConflict for duplicate emails. Token
// validation failures are returned as plain errors; the Verifier collapses
// them all into one unauthorized outcome.
type Provider interface {
	// ValidateToken resolves a session token to its identity.
	ValidateToken(ctx context.Context, token string) (Identity, error)

	// CreateUser registers a new identity with the provider.
	CreateUser(ctx context.Context, user NewUser) (Identity, error)

	// GetUser fetches an identity by its opaque id.
	GetUser(ctx context.Context, id string) (Identity, error)

	// ListUsers returns every known identity. Used by signup for the
	// duplicate-email check; fine at this deployment's scale, revisit if the
	// provider ever grows a native uniqueness guarantee.
	ListUsers(ctx context.Context) ([]Identity, error)
}
