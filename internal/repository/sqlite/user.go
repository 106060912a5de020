package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/msomdec/predictions/internal/domain"
)

// UserRepository implements domain.UserRepository using SQLite.
type UserRepository struct {
	db querier
}

func (r *UserRepository) GetOrCreate(ctx context.Context, externalID string) (*domain.User, error) {
	now := time.Now().UTC()
	// ON CONFLICT turns a racing first contact into a no-op; the select
	// below then sees whichever row won.
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO users (external_id, created_at) VALUES (?, ?)
		 ON CONFLICT (external_id) DO NOTHING`,
		externalID, now,
	); err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	user := &domain.User{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, external_id, created_at FROM users WHERE external_id = ?`, externalID,
	).Scan(&user.ID, &user.ExternalID, &user.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("query user by external id: %w", err)
	}
	return user, nil
}
