package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/msomdec/predictions/internal/domain"
)

// ContractLedger owns the contract lifecycle: Open, then either
// Resolved(true|false) or Cancelled.
type ContractLedger struct {
	predictions *PredictionLedger
	now         func() time.Time
}

// NewContractLedger creates a ContractLedger that records house odds through predictions.
func NewContractLedger(predictions *PredictionLedger, now func() time.Time) *ContractLedger {
	return &ContractLedger{predictions: predictions, now: now}
}

// ContractView is everything needed to display a contract.
type ContractView struct {
	Contract    domain.ContractDetail
	Predictions []domain.PredictionEntry
	// Scores is empty unless the contract is resolved and not cancelled.
	Scores []UserScore
}

// Create opens a new contract and records the creator's house odds in the
// same unit of work. If the house odds are rejected the caller must roll
// back, leaving no contract behind.
func (l *ContractLedger) Create(ctx context.Context, uow domain.UnitOfWork, creator *domain.User, name, terms string, closesAt time.Time, houseOdds string) (*domain.Contract, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: contract name is required", domain.ErrUsage)
	}

	_, err := uow.Contracts().GetByName(ctx, name)
	if err == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrContractExists, name)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("check contract name: %w", err)
	}

	contract := &domain.Contract{
		Name:      name,
		Terms:     terms,
		CreatorID: creator.ID,
		CreatedAt: l.now().UTC(),
		ClosesAt:  closesAt.UTC(),
	}
	if err := uow.Contracts().Create(ctx, contract); err != nil {
		if errors.Is(err, domain.ErrContractExists) {
			return nil, err
		}
		return nil, fmt.Errorf("create contract: %w", err)
	}

	if _, err := l.predictions.Add(ctx, uow, creator, name, houseOdds); err != nil {
		return nil, err
	}
	return contract, nil
}

// List returns contract names matching filter in creation order.
func (l *ContractLedger) List(ctx context.Context, uow domain.UnitOfWork, filter domain.ContractFilter) ([]string, error) {
	names, err := uow.Contracts().ListNames(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list contracts: %w", err)
	}
	return names, nil
}

// Resolve records the outcome of a contract. Only the creator may resolve,
// and only once. A cancelled contract cannot be resolved.
func (l *ContractLedger) Resolve(ctx context.Context, uow domain.UnitOfWork, requester *domain.User, name, outcome string) (*domain.Contract, error) {
	contract, err := l.getDetail(ctx, uow, name)
	if err != nil {
		return nil, err
	}

	switch {
	case contract.IsCancelled():
		return nil, fmt.Errorf("%w: %s", domain.ErrCancelled, name)
	case contract.IsResolved():
		return nil, fmt.Errorf("%w: %s", domain.ErrAlreadyResolved, name)
	case contract.CreatorID != requester.ID:
		return nil, fmt.Errorf("%w: only %s can resolve %s", domain.ErrUnauthorized, contract.CreatorExternalID, name)
	}

	var value bool
	switch strings.ToLower(strings.TrimSpace(outcome)) {
	case "true":
		value = true
	case "false":
		value = false
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidOutcome, outcome)
	}

	now := l.now().UTC()
	if err := uow.Contracts().SetResolution(ctx, contract.ID, value, now); err != nil {
		if errors.Is(err, domain.ErrAlreadyResolved) {
			return nil, fmt.Errorf("%w: %s", domain.ErrAlreadyResolved, name)
		}
		return nil, fmt.Errorf("resolve contract: %w", err)
	}

	contract.Resolution = &value
	contract.ResolvedAt = &now
	return &contract.Contract, nil
}

// Cancel cancels a contract. Only the creator may cancel. A resolved
// contract can still be cancelled.
func (l *ContractLedger) Cancel(ctx context.Context, uow domain.UnitOfWork, requester *domain.User, name string) (*domain.Contract, error) {
	contract, err := l.getDetail(ctx, uow, name)
	if err != nil {
		return nil, err
	}

	switch {
	case contract.IsCancelled():
		return nil, fmt.Errorf("%w: %s", domain.ErrAlreadyCancelled, name)
	case contract.CreatorID != requester.ID:
		return nil, fmt.Errorf("%w: only %s can cancel %s", domain.ErrUnauthorized, contract.CreatorExternalID, name)
	}

	now := l.now().UTC()
	if err := uow.Contracts().SetCancelled(ctx, contract.ID, now); err != nil {
		if errors.Is(err, domain.ErrAlreadyCancelled) {
			return nil, fmt.Errorf("%w: %s", domain.ErrAlreadyCancelled, name)
		}
		return nil, fmt.Errorf("cancel contract: %w", err)
	}

	contract.CancelledAt = &now
	return &contract.Contract, nil
}

// Show loads a contract with its prediction history and, once resolved, its scoreboard.
func (l *ContractLedger) Show(ctx context.Context, uow domain.UnitOfWork, name string) (*ContractView, error) {
	contract, err := l.getDetail(ctx, uow, name)
	if err != nil {
		return nil, err
	}

	entries, err := uow.Predictions().ListByContract(ctx, contract.ID)
	if err != nil {
		return nil, fmt.Errorf("list predictions: %w", err)
	}

	view := &ContractView{Contract: *contract, Predictions: entries}
	if contract.IsResolved() && !contract.IsCancelled() {
		predictions := make([]domain.Prediction, len(entries))
		externalIDs := make(map[int64]string)
		for i, e := range entries {
			predictions[i] = e.Prediction
			externalIDs[e.UserID] = e.UserExternalID
		}
		scores := Score(predictions, contract.CreatorID, *contract.Resolution)
		view.Scores = RankScores(scores, externalIDs)
	}
	return view, nil
}

func (l *ContractLedger) getDetail(ctx context.Context, uow domain.UnitOfWork, name string) (*domain.ContractDetail, error) {
	contract, err := uow.Contracts().GetDetailByName(ctx, name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnknownContract, name)
		}
		return nil, fmt.Errorf("get contract: %w", err)
	}
	return contract, nil
}
