package domain

import (
	"context"
	"time"
)

// Contract is a true/false proposition that users predict on until it closes.
type Contract struct {
	ID          int64
	Name        string
	Terms       string
	CreatorID   int64
	CreatedAt   time.Time
	ClosesAt    time.Time
	Resolution  *bool // nil while unresolved
	ResolvedAt  *time.Time
	CancelledAt *time.Time
}

// IsResolved reports whether the creator has declared an outcome.
func (c *Contract) IsResolved() bool { return c.Resolution != nil }

// IsCancelled reports whether the contract was cancelled.
func (c *Contract) IsCancelled() bool { return c.CancelledAt != nil }

// IsClosed reports whether the close time has passed at now.
func (c *Contract) IsClosed(now time.Time) bool { return !now.Before(c.ClosesAt) }

// Status returns a short label such as "Unresolved", "Resolved True" or "Cancelled".
func (c *Contract) Status() string {
	switch {
	case c.IsCancelled():
		return "Cancelled"
	case c.Resolution == nil:
		return "Unresolved"
	case *c.Resolution:
		return "Resolved True"
	default:
		return "Resolved False"
	}
}

// ContractFilter selects which contracts a listing returns.
type ContractFilter string

const (
	ContractFilterActive    ContractFilter = "active"
	ContractFilterResolved  ContractFilter = "resolved"
	ContractFilterCancelled ContractFilter = "cancelled"
)

// ContractDetail is a contract joined with its creator's external id.
type ContractDetail struct {
	Contract
	CreatorExternalID string
}

// ContractRepository defines persistence operations for contracts.
type ContractRepository interface {
	Create(ctx context.Context, contract *Contract) error
	GetByName(ctx context.Context, name string) (*Contract, error)
	GetDetailByName(ctx context.Context, name string) (*ContractDetail, error)
	// ListNames returns contract names matching filter in creation order.
	ListNames(ctx context.Context, filter ContractFilter) ([]string, error)
	SetResolution(ctx context.Context, id int64, outcome bool, at time.Time) error
	SetCancelled(ctx context.Context, id int64, at time.Time) error
}
