package domain

import "context"

// Database defines lifecycle operations for the underlying database.
// Each implementation (SQLite, Postgres, etc.) owns its own migration
// files and strategy, ensuring the entire backend is swappable.
type Database interface {
	Migrate(ctx context.Context) error
	Begin(ctx context.Context) (UnitOfWork, error)
	Ping(ctx context.Context) error
	Close() error
}

// UnitOfWork is one all-or-nothing transaction. Every ledger operation
// receives the unit of work explicitly; the caller that began it decides
// whether to Commit or Rollback. Rollback after Commit is a no-op.
type UnitOfWork interface {
	Users() UserRepository
	Contracts() ContractRepository
	Predictions() PredictionRepository
	Commit() error
	Rollback() error
}
