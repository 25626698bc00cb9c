package identity

import (
	"context"
	"errors"
	"strings"

	"buslink/internal/audit"
	dErrors "buslink/pkg/domain-errors"
	"buslink/pkg/sentinel"
)

// Service owns signup. Token verification lives in Verifier; this type only
// creates identities at the provider.
type Service struct {
	provider Provider
	audit    audit.Recorder
}

func NewService(provider Provider, recorder audit.Recorder) *Service {
	return &Service{provider: provider, audit: recorder}
}

// Signup registers a new identity. The duplicate-email check lists every
// identity and compares case-insensitively; the provider has no native
// uniqueness guarantee to lean on. The new user is not logged in.
func (s *Service) Signup(ctx context.Context, user NewUser) (Identity, error) {
	existing, err := s.provider.ListUsers(ctx)
	if err != nil {
		return Identity{}, dErrors.Wrap(dErrors.CodeInternal, "identity provider failure", err)
	}
	for _, u := range existing {
		if strings.EqualFold(u.Email, user.Email) {
			return Identity{}, dErrors.New(dErrors.CodeConflict, "email already registered")
		}
	}

	ident, err := s.provider.CreateUser(ctx, user)
	if errors.Is(err, sentinel.ErrConflict) {
		// Lost a race with a concurrent signup for the same email.
		return Identity{}, dErrors.New(dErrors.CodeConflict, "email already registered")
	}
	if err != nil {
		return Identity{}, dErrors.Wrap(dErrors.CodeInternal, "identity provider failure", err)
	}

	if s.audit != nil {
		s.audit.Record(ctx, audit.Event{Action: audit.ActionUserSignedUp, UserID: ident.ID})
	}
	return ident, nil
}
