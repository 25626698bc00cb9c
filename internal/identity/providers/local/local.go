// Package local is an in-process identity provider for development and
// tests. It stores users in memory, hashes passwords with bcrypt, and signs
// its own HS256 session tokens.
package local

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"buslink/internal/identity"
	"buslink/pkg/sentinel"
)

// Claims carry enough of the identity that a token stays verifiable even if
// the in-memory user map was rebuilt since issuance.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type Provider struct {
	mu        sync.RWMutex
	users     map[string]identity.Identity // by id
	passwords map[string][]byte            // id -> bcrypt hash
	emails    map[string]string            // lowercased email -> id

	signingKey []byte
	tokenTTL   time.Duration
	now        func() time.Time
}

func New(signingKey string, tokenTTL time.Duration) *Provider {
	return &Provider{
		users:      make(map[string]identity.Identity),
		passwords:  make(map[string][]byte),
		emails:     make(map[string]string),
		signingKey: []byte(signingKey),
		tokenTTL:   tokenTTL,
		now:        time.Now,
	}
}

func (p *Provider) CreateUser(_ context.Context, user identity.NewUser) (identity.Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	emailKey := strings.ToLower(user.Email)
	if _, exists := p.emails[emailKey]; exists {
		return identity.Identity{}, sentinel.ErrConflict
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return identity.Identity{}, fmt.Errorf("hash password: %w", err)
	}

	ident := identity.Identity{
		ID:             uuid.NewString(),
		Email:          user.Email,
		Name:           user.Name,
		Role:           user.Role,
		RollNumber:     user.RollNumber,
		PhoneNumber:    user.PhoneNumber,
		EmergencyPhone: user.EmergencyPhone,
	}
	p.users[ident.ID] = ident
	p.passwords[ident.ID] = hash
	p.emails[emailKey] = ident.ID
	return ident, nil
}

func (p *Provider) GetUser(_ context.Context, id string) (identity.Identity, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	ident, ok := p.users[id]
	if !ok {
		return identity.Identity{}, sentinel.ErrNotFound
	}
	return ident, nil
}

func (p *Provider) ListUsers(_ context.Context) ([]identity.Identity, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	users := make([]identity.Identity, 0, len(p.users))
	for _, ident := range p.users {
		users = append(users, ident)
	}
	return users, nil
}

// Authenticate checks an email/password pair and returns the identity. The
// API itself never sees passwords after signup; this exists for local login
// flows outside the server.
func (p *Provider) Authenticate(_ context.Context, email, password string) (identity.Identity, error) {
	p.mu.RLock()
	id, ok := p.emails[strings.ToLower(email)]
	if !ok {
		p.mu.RUnlock()
		return identity.Identity{}, sentinel.ErrNotFound
	}
	ident := p.users[id]
	hash := p.passwords[id]
	p.mu.RUnlock()

	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return identity.Identity{}, errors.New("invalid password")
	}
	return ident, nil
}

// IssueToken mints a session token for a user.
func (p *Provider) IssueToken(_ context.Context, userID string) (string, error) {
	p.mu.RLock()
	ident, ok := p.users[userID]
	p.mu.RUnlock()
	if !ok {
		return "", sentinel.ErrNotFound
	}

	now := p.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Email: ident.Email,
		Name:  ident.Name,
		Role:  ident.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   ident.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(p.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	})
	return token.SignedString(p.signingKey)
}

func (p *Provider) ValidateToken(_ context.Context, tokenString string) (identity.Identity, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return p.signingKey, nil
	})
	if err != nil || !parsed.Valid {
		return identity.Identity{}, errors.New("invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return identity.Identity{}, errors.New("invalid token claims")
	}

	p.mu.RLock()
	ident, known := p.users[claims.Subject]
	p.mu.RUnlock()
	if known {
		return ident, nil
	}

	// Token minted against a previous process lifetime; trust the signed
	// claims so dev tokens survive restarts.
	return identity.Identity{
		ID:    claims.Subject,
		Email: claims.Email,
		Name:  claims.Name,
		Role:  claims.Role,
	}, nil
}
