// Package credentials looks up provider API tokens stored in the database,
// used as a fallback when the environment carries no usable key.
package credentials

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jeckxploit/video-generate-ai/internal/infra"
)

const KeyReplicate = "REPLICATE_API_TOKEN"

// Querier is the minimal query surface the store needs. *pgxpool.Pool
// satisfies it.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store struct {
	db Querier
}

func NewStore(db Querier) *Store {
	return &Store{db: db}
}

// ReplicateToken returns the stored Replicate token, or "" when absent,
// inactive or a template placeholder.
func (s *Store) ReplicateToken(ctx context.Context) (string, error) {
	if s == nil || s.db == nil {
		return "", nil
	}

	row := s.db.QueryRow(ctx,
		`SELECT key_value FROM api_keys WHERE key_name = $1 AND is_active ORDER BY created_at DESC LIMIT 1`,
		KeyReplicate,
	)
	var token string
	if err := row.Scan(&token); err != nil {
		if infra.IsNoRows(err) {
			return "", nil
		}
		return "", err
	}

	token = strings.TrimSpace(token)
	if !infra.IsUsableToken(token) {
		return "", nil
	}
	return token, nil
}
