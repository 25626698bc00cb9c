package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"buslink/internal/audit"
	dErrors "buslink/pkg/domain-errors"
	"buslink/pkg/sentinel"
)

type signupProvider struct {
	Provider
	users       []Identity
	createErr   error
	createCalls int
}

func (p *signupProvider) ListUsers(context.Context) ([]Identity, error) {
	return p.users, nil
}

func (p *signupProvider) CreateUser(_ context.Context, user NewUser) (Identity, error) {
	p.createCalls++
	if p.createErr != nil {
		return Identity{}, p.createErr
	}
	return Identity{ID: "new-id", Email: user.Email, Name: user.Name, Role: user.Role}, nil
}

type capturingRecorder struct {
	events []audit.Event
}

func (r *capturingRecorder) Record(_ context.Context, event audit.Event) {
	r.events = append(r.events, event)
}

func TestSignup(t *testing.T) {
	ctx := context.Background()

	t.Run("creates the identity and audits it", func(t *testing.T) {
		provider := &signupProvider{}
		recorder := &capturingRecorder{}
		svc := NewService(provider, recorder)

		ident, err := svc.Signup(ctx, NewUser{Email: "rider@campus.edu", Name: "Rider", Role: RoleStudent})
		require.NoError(t, err)
		assert.Equal(t, "new-id", ident.ID)

		require.Len(t, recorder.events, 1)
		assert.Equal(t, audit.ActionUserSignedUp, recorder.events[0].Action)
		assert.Equal(t, "new-id", recorder.events[0].UserID)
	})

	t.Run("duplicate email is rejected case-insensitively before creation", func(t *testing.T) {
		provider := &signupProvider{users: []Identity{{ID: "u1", Email: "Rider@Campus.EDU"}}}
		svc := NewService(provider, nil)

		_, err := svc.Signup(ctx, NewUser{Email: "rider@campus.edu"})
		assert.True(t, dErrors.Is(err, dErrors.CodeConflict))
		assert.Zero(t, provider.createCalls)
	})

	t.Run("provider-level conflict also maps to conflict", func(t *testing.T) {
		provider := &signupProvider{createErr: sentinel.ErrConflict}
		svc := NewService(provider, nil)

		_, err := svc.Signup(ctx, NewUser{Email: "raced@campus.edu"})
		assert.True(t, dErrors.Is(err, dErrors.CodeConflict))
	})
}
