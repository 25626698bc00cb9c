package records

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"buslink/pkg/sentinel"
)

// PostgresStore persists records in a single key/jsonb table. This store is
// pure I/O; key construction and value semantics live with callers.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore constructs a PostgreSQL-backed record store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the records table when it does not exist yet. There is
// no migration machinery; the schema is a single table and stays that way.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS records (
			key        TEXT PRIMARY KEY,
			value      JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return fmt.Errorf("ensure records schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Set(ctx context.Context, key string, value json.RawMessage) error {
	query := `
		INSERT INTO records (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query, key, []byte(value)); err != nil {
		return fmt.Errorf("set record %q: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, key string) (json.RawMessage, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM records WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get record %q: %w", key, err)
	}
	return json.RawMessage(value), nil
}

func (s *PostgresStore) Scan(ctx context.Context, prefix string) ([]json.RawMessage, error) {
	query := `SELECT value FROM records WHERE key LIKE $1 ESCAPE '\'`
	rows, err := s.db.QueryContext(ctx, query, likeEscape(prefix)+"%")
	if err != nil {
		return nil, fmt.Errorf("scan records %q: %w", prefix, err)
	}
	defer rows.Close()

	results := make([]json.RawMessage, 0)
	for rows.Next() {
		var value []byte
		if err := rows.Scan(&value); err != nil {
			return nil, fmt.Errorf("scan records %q: %w", prefix, err)
		}
		results = append(results, json.RawMessage(value))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan records %q: %w", prefix, err)
	}
	return results, nil
}

// likeEscape neutralizes LIKE metacharacters so a prefix containing them
// matches literally.
func likeEscape(s string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		`%`, `\%`,
		`_`, `\_`,
	)
	return replacer.Replace(s)
}
