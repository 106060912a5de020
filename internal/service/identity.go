package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/msomdec/predictions/internal/domain"
)

// IdentityRegistry maps chat platform user ids to users.
type IdentityRegistry struct{}

// NewIdentityRegistry creates a new IdentityRegistry.
func NewIdentityRegistry() *IdentityRegistry {
	return &IdentityRegistry{}
}

// ResolveOrCreate returns the user for externalID, creating it on first contact.
func (r *IdentityRegistry) ResolveOrCreate(ctx context.Context, uow domain.UnitOfWork, externalID string) (*domain.User, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, fmt.Errorf("%w: missing user id", domain.ErrUsage)
	}

	user, err := uow.Users().GetOrCreate(ctx, externalID)
	if err != nil {
		return nil, fmt.Errorf("resolve user: %w", err)
	}
	return user, nil
}
