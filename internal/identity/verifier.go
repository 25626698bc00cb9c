package identity

import (
	"context"
	"strings"

	dErrors "buslink/pkg/domain-errors"
)

const bearerPrefix = "Bearer "

// ErrUnauthorized is the single outcome for every rejected credential.
// Callers never learn whether a token was absent, malformed, expired, or
// revoked.
var ErrUnauthorized = dErrors.New(dErrors.CodeUnauthorized, "invalid or missing credentials")

// Verifier confirms bearer credentials against the identity provider. It is
// stateless and must be consulted on every request; results are never cached.
type Verifier struct {
	provider Provider
}

func NewVerifier(provider Provider) *Verifier {
	return &Verifier{provider: provider}
}

// Verify extracts the token from an Authorization header value and resolves
// it to an identity. The header is passed whole so that an absent or
// malformed header takes the same path as an invalid token.
func (v *Verifier) Verify(ctx context.Context, authorization string) (Identity, error) {
	token, ok := strings.CutPrefix(authorization, bearerPrefix)
	if !ok || token == "" {
		return Identity{}, ErrUnauthorized
	}

	ident, err := v.provider.ValidateToken(ctx, token)
	if err != nil {
		return Identity{}, ErrUnauthorized
	}
	return ident, nil
}
