package identity

import (
	"context"

	"buslink/internal/platform/middleware"
)

// AuthAdapter exposes the Verifier through the middleware's TokenVerifier
// interface without the middleware package importing this one.
type AuthAdapter struct {
	verifier *Verifier
}

func NewAuthAdapter(verifier *Verifier) *AuthAdapter {
	return &AuthAdapter{verifier: verifier}
}

func (a *AuthAdapter) Verify(ctx context.Context, authorization string) (middleware.Principal, error) {
	ident, err := a.verifier.Verify(ctx, authorization)
	if err != nil {
		return middleware.Principal{}, err
	}
	return middleware.Principal{ID: ident.ID, Email: ident.Email}, nil
}
