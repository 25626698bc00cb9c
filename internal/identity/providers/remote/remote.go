// Package remote is the HTTP client for the external identity provider. The
// provider owns credentials, token lifecycle, and user records; this client
// only maps its REST surface onto the Provider interface.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"buslink/internal/identity"
	"buslink/pkg/sentinel"
)

const defaultTimeout = 10 * time.Second

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// New builds a provider client. baseURL points at the provider's API root,
// e.g. "https://id.example.edu/v1".
func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

type userPayload struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	Name           string `json:"name"`
	Role           string `json:"role"`
	RollNumber     string `json:"roll_number,omitempty"`
	PhoneNumber    string `json:"phone_number,omitempty"`
	EmergencyPhone string `json:"emergency_phone,omitempty"`
}

func (p userPayload) toIdentity() identity.Identity {
	return identity.Identity{
		ID:             p.ID,
		Email:          p.Email,
		Name:           p.Name,
		Role:           p.Role,
		RollNumber:     p.RollNumber,
		PhoneNumber:    p.PhoneNumber,
		EmergencyPhone: p.EmergencyPhone,
	}
}

func (c *Client) ValidateToken(ctx context.Context, token string) (identity.Identity, error) {
	body := map[string]string{"token": token}
	var out struct {
		User userPayload `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/tokens/verify", body, &out); err != nil {
		return identity.Identity{}, err
	}
	return out.User.toIdentity(), nil
}

func (c *Client) CreateUser(ctx context.Context, user identity.NewUser) (identity.Identity, error) {
	body := map[string]string{
		"email":           user.Email,
		"password":        user.Password,
		"name":            user.Name,
		"role":            user.Role,
		"roll_number":     user.RollNumber,
		"phone_number":    user.PhoneNumber,
		"emergency_phone": user.EmergencyPhone,
	}
	var out struct {
		User userPayload `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/users", body, &out); err != nil {
		return identity.Identity{}, err
	}
	return out.User.toIdentity(), nil
}

func (c *Client) GetUser(ctx context.Context, id string) (identity.Identity, error) {
	var out struct {
		User userPayload `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(id), nil, &out); err != nil {
		return identity.Identity{}, err
	}
	return out.User.toIdentity(), nil
}

func (c *Client) ListUsers(ctx context.Context) ([]identity.Identity, error) {
	var out struct {
		Users []userPayload `json:"users"`
	}
	if err := c.do(ctx, http.MethodGet, "/users", nil, &out); err != nil {
		return nil, err
	}
	identities := make([]identity.Identity, 0, len(out.Users))
	for _, u := range out.Users {
		identities = append(identities, u.toIdentity())
	}
	return identities, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("identity provider unreachable: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode provider response: %w", err)
		}
		return nil
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("provider rejected credential: %w", sentinel.ErrNotFound)
	case resp.StatusCode == http.StatusNotFound:
		return sentinel.ErrNotFound
	case resp.StatusCode == http.StatusConflict:
		return sentinel.ErrConflict
	default:
		return fmt.Errorf("identity provider returned status %d: %w", resp.StatusCode, sentinel.ErrUnavailable)
	}
}
