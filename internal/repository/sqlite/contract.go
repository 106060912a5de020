package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/msomdec/predictions/internal/domain"
)

// ContractRepository implements domain.ContractRepository using SQLite.
type ContractRepository struct {
	db querier
}

const contractColumns = `c.id, c.name, c.terms, c.creator_id, c.created_at, c.closes_at,
	c.resolution, c.resolved_at, c.cancelled_at`

func (r *ContractRepository) Create(ctx context.Context, contract *domain.Contract) error {
	createdAt := contract.CreatedAt.UTC()
	if contract.CreatedAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	closesAt := contract.ClosesAt.UTC()

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO contracts (name, terms, creator_id, created_at, closes_at)
		 VALUES (?, ?, ?, ?, ?)`,
		contract.Name, contract.Terms, contract.CreatorID, createdAt, closesAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: %s", domain.ErrContractExists, contract.Name)
		}
		return fmt.Errorf("insert contract: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}

	contract.ID = id
	contract.CreatedAt = createdAt
	contract.ClosesAt = closesAt
	return nil
}

func (r *ContractRepository) GetByName(ctx context.Context, name string) (*domain.Contract, error) {
	c := &domain.Contract{}
	err := r.db.QueryRowContext(ctx,
		`SELECT `+contractColumns+` FROM contracts c WHERE c.name = ?`, name,
	).Scan(&c.ID, &c.Name, &c.Terms, &c.CreatorID, &c.CreatedAt, &c.ClosesAt,
		&c.Resolution, &c.ResolvedAt, &c.CancelledAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query contract by name: %w", err)
	}
	return c, nil
}

func (r *ContractRepository) GetDetailByName(ctx context.Context, name string) (*domain.ContractDetail, error) {
	d := &domain.ContractDetail{}
	err := r.db.QueryRowContext(ctx,
		`SELECT `+contractColumns+`, u.external_id
		 FROM contracts c JOIN users u ON u.id = c.creator_id
		 WHERE c.name = ?`, name,
	).Scan(&d.ID, &d.Name, &d.Terms, &d.CreatorID, &d.CreatedAt, &d.ClosesAt,
		&d.Resolution, &d.ResolvedAt, &d.CancelledAt, &d.CreatorExternalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query contract detail: %w", err)
	}
	return d, nil
}

func (r *ContractRepository) ListNames(ctx context.Context, filter domain.ContractFilter) ([]string, error) {
	var where string
	switch filter {
	case domain.ContractFilterActive:
		where = "resolution IS NULL AND cancelled_at IS NULL"
	case domain.ContractFilterResolved:
		where = "resolution IS NOT NULL AND cancelled_at IS NULL"
	case domain.ContractFilterCancelled:
		where = "cancelled_at IS NOT NULL"
	default:
		return nil, fmt.Errorf("unknown contract filter %q", filter)
	}

	rows, err := r.db.QueryContext(ctx, `SELECT name FROM contracts WHERE `+where+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list contracts: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan contract name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// SetResolution records the outcome. The WHERE clause keeps a resolution
// from ever being overwritten.
func (r *ContractRepository) SetResolution(ctx context.Context, id int64, outcome bool, at time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE contracts SET resolution = ?, resolved_at = ?
		 WHERE id = ? AND resolution IS NULL`,
		outcome, at.UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("resolve contract: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrAlreadyResolved
	}
	return nil
}

func (r *ContractRepository) SetCancelled(ctx context.Context, id int64, at time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE contracts SET cancelled_at = ? WHERE id = ? AND cancelled_at IS NULL`,
		at.UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("cancel contract: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrAlreadyCancelled
	}
	return nil
}
