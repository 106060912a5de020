package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/msomdec/predictions/internal/domain"
)

// PredictionRepository implements domain.PredictionRepository using SQLite.
type PredictionRepository struct {
	db querier
}

func (r *PredictionRepository) Create(ctx context.Context, p *domain.Prediction) error {
	createdAt := p.CreatedAt.UTC()
	if p.CreatedAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO predictions (contract_id, user_id, value, created_at)
		 VALUES (?, ?, ?, ?)`,
		p.ContractID, p.UserID, p.Value, createdAt,
	)
	if err != nil {
		return fmt.Errorf("insert prediction: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}

	p.ID = id
	p.CreatedAt = createdAt
	return nil
}

func (r *PredictionRepository) ListByContract(ctx context.Context, contractID int64) ([]domain.PredictionEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT p.id, p.contract_id, p.user_id, p.value, p.created_at, u.external_id
		 FROM predictions p JOIN users u ON u.id = p.user_id
		 WHERE p.contract_id = ?
		 ORDER BY p.created_at, p.id`, contractID)
	if err != nil {
		return nil, fmt.Errorf("list predictions: %w", err)
	}
	defer rows.Close()

	var entries []domain.PredictionEntry
	for rows.Next() {
		var e domain.PredictionEntry
		if err := rows.Scan(&e.ID, &e.ContractID, &e.UserID, &e.Value, &e.CreatedAt, &e.UserExternalID); err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
