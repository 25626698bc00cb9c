// Command devtoken mints a signed bearer token for local development. The
// server's in-process provider accepts any token signed with the same
// JWT_SIGNING_KEY, so a minted token works across server restarts.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"buslink/internal/identity"
	"buslink/internal/identity/providers/local"
	"buslink/internal/platform/config"
)

func main() {
	email := flag.String("email", "dev@campus.edu", "email claim")
	name := flag.String("name", "Dev User", "name claim")
	role := flag.String("role", identity.RoleStudent, "role claim, student or parent")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	if err := run(*email, *name, *role, *ttl); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(email, name, role string, ttl time.Duration) error {
	if role != identity.RoleStudent && role != identity.RoleParent {
		return fmt.Errorf("role must be %s or %s", identity.RoleStudent, identity.RoleParent)
	}

	cfg := config.FromEnv()
	provider := local.New(cfg.Provider.JWTSigningKey, ttl)

	ctx := context.Background()
	ident, err := provider.CreateUser(ctx, identity.NewUser{
		Email:    email,
		Password: "devtoken-placeholder",
		Name:     name,
		Role:     role,
	})
	if err != nil {
		return fmt.Errorf("create identity: %w", err)
	}

	token, err := provider.IssueToken(ctx, ident.ID)
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}

	fmt.Println(token)
	return nil
}
