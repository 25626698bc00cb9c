package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"buslink/internal/identity"
	"buslink/pkg/sentinel"
)

func TestValidateToken(t *testing.T) {
	t.Run("valid token resolves the identity", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/tokens/verify", r.URL.Path)
			require.Equal(t, "key-1", r.Header.Get("X-API-Key"))

			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(t, "tok-123", body["token"])

			_ = json.NewEncoder(w).Encode(map[string]any{
				"user": map[string]string{"id": "u1", "email": "rider@campus.edu"},
			})
		}))
		defer srv.Close()

		client := New(srv.URL, "key-1")
		ident, err := client.ValidateToken(context.Background(), "tok-123")
		require.NoError(t, err)
		assert.Equal(t, "u1", ident.ID)
		assert.Equal(t, "rider@campus.edu", ident.Email)
	})

	t.Run("provider 401 is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		_, err := New(srv.URL, "").ValidateToken(context.Background(), "expired")
		assert.Error(t, err)
	})
}

func TestCreateUser(t *testing.T) {
	t.Run("duplicate maps to conflict", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
		}))
		defer srv.Close()

		_, err := New(srv.URL, "").CreateUser(context.Background(), identity.NewUser{Email: "dup@campus.edu"})
		assert.ErrorIs(t, err, sentinel.ErrConflict)
	})

	t.Run("created identity is returned", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			_ = json.NewEncoder(w).Encode(map[string]any{
				"user": map[string]string{
					"id":    "u9",
					"email": body["email"],
					"name":  body["name"],
					"role":  body["role"],
				},
			})
		}))
		defer srv.Close()

		ident, err := New(srv.URL, "").CreateUser(context.Background(), identity.NewUser{
			Email: "new@campus.edu",
			Name:  "New Rider",
			Role:  identity.RoleStudent,
		})
		require.NoError(t, err)
		assert.Equal(t, "u9", ident.ID)
		assert.Equal(t, identity.RoleStudent, ident.Role)
	})
}

func TestGetAndListUsers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/u1":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"user": map[string]string{"id": "u1", "email": "a@campus.edu"},
			})
		case "/users/missing":
			w.WriteHeader(http.StatusNotFound)
		case "/users":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"users": []map[string]string{
					{"id": "u1", "email": "a@campus.edu"},
					{"id": "u2", "email": "b@campus.edu"},
				},
			})
		default:
			w.WriteHeader(http.StatusTeapot)
		}
	}))
	defer srv.Close()

	client := New(srv.URL, "")

	t.Run("get user", func(t *testing.T) {
		ident, err := client.GetUser(context.Background(), "u1")
		require.NoError(t, err)
		assert.Equal(t, "a@campus.edu", ident.Email)
	})

	t.Run("unknown user is not found", func(t *testing.T) {
		_, err := client.GetUser(context.Background(), "missing")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("list users", func(t *testing.T) {
		users, err := client.ListUsers(context.Background())
		require.NoError(t, err)
		assert.Len(t, users, 2)
	})
}
