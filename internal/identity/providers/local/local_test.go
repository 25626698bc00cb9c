package local

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"buslink/internal/identity"
	"buslink/pkg/sentinel"
)

func newProvider() *Provider {
	return New("test-signing-key", time.Hour)
}

func studentUser() identity.NewUser {
	return identity.NewUser{
		Email:    "rider@campus.edu",
		Password: "secret123",
		Name:     "Test Rider",
		Role:     identity.RoleStudent,
	}
}

func TestCreateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns an id and stores the identity", func(t *testing.T) {
		p := newProvider()
		ident, err := p.CreateUser(ctx, studentUser())
		require.NoError(t, err)
		assert.NotEmpty(t, ident.ID)

		got, err := p.GetUser(ctx, ident.ID)
		require.NoError(t, err)
		assert.Equal(t, "rider@campus.edu", got.Email)
	})

	t.Run("duplicate email conflicts regardless of case", func(t *testing.T) {
		p := newProvider()
		_, err := p.CreateUser(ctx, studentUser())
		require.NoError(t, err)

		dup := studentUser()
		dup.Email = "RIDER@campus.edu"
		_, err = p.CreateUser(ctx, dup)
		assert.ErrorIs(t, err, sentinel.ErrConflict)
	})

	t.Run("unknown user is not found", func(t *testing.T) {
		p := newProvider()
		_, err := p.GetUser(ctx, "missing")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	p := newProvider()
	_, err := p.CreateUser(ctx, studentUser())
	require.NoError(t, err)

	t.Run("correct password authenticates", func(t *testing.T) {
		ident, err := p.Authenticate(ctx, "rider@campus.edu", "secret123")
		require.NoError(t, err)
		assert.Equal(t, "Test Rider", ident.Name)
	})

	t.Run("wrong password is rejected", func(t *testing.T) {
		_, err := p.Authenticate(ctx, "rider@campus.edu", "wrong")
		assert.Error(t, err)
	})
}

func TestTokens(t *testing.T) {
	ctx := context.Background()

	t.Run("issue then validate round-trips the identity", func(t *testing.T) {
		p := newProvider()
		ident, err := p.CreateUser(ctx, studentUser())
		require.NoError(t, err)

		token, err := p.IssueToken(ctx, ident.ID)
		require.NoError(t, err)

		got, err := p.ValidateToken(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, ident.ID, got.ID)
		assert.Equal(t, ident.Email, got.Email)
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		p := newProvider()
		_, err := p.ValidateToken(ctx, "not-a-token")
		assert.Error(t, err)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		p := New("test-signing-key", time.Hour)
		ident, err := p.CreateUser(ctx, studentUser())
		require.NoError(t, err)

		p.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		token, err := p.IssueToken(ctx, ident.ID)
		require.NoError(t, err)

		_, err = p.ValidateToken(ctx, token)
		assert.Error(t, err)
	})

	t.Run("token from another signing key is rejected", func(t *testing.T) {
		issuer := New("key-a", time.Hour)
		ident, err := issuer.CreateUser(ctx, studentUser())
		require.NoError(t, err)
		token, err := issuer.IssueToken(ctx, ident.ID)
		require.NoError(t, err)

		verifier := New("key-b", time.Hour)
		_, err = verifier.ValidateToken(ctx, token)
		assert.Error(t, err)
	})

	t.Run("token outlives the user map via signed claims", func(t *testing.T) {
		issuer := New("shared-key", time.Hour)
		ident, err := issuer.CreateUser(ctx, studentUser())
		require.NoError(t, err)
		token, err := issuer.IssueToken(ctx, ident.ID)
		require.NoError(t, err)

		fresh := New("shared-key", time.Hour)
		got, err := fresh.ValidateToken(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, ident.ID, got.ID)
		assert.Equal(t, "rider@campus.edu", got.Email)
	})
}
