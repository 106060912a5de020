package service

import (
	"context"
	"log/slog"

	"github.com/msomdec/predictions/internal/domain"
)

// WithinUnitOfWork begins a unit of work, runs fn, and commits if fn
// succeeds. Any error or panic rolls the unit of work back.
func WithinUnitOfWork(ctx context.Context, db domain.Database, fn func(uow domain.UnitOfWork) error) error {
	uow, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := uow.Rollback(); err != nil {
			slog.Warn("rollback unit of work", "error", err)
		}
	}()

	if err := fn(uow); err != nil {
		return err
	}
	return uow.Commit()
}
