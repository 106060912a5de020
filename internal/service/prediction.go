package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/msomdec/predictions/internal/domain"
)

var (
	decimalZero    = decimal.Zero
	decimalOne     = decimal.NewFromInt(1)
	decimalHundred = decimal.NewFromInt(100)
)

// PredictionLedger records probability estimates against contracts.
type PredictionLedger struct {
	now func() time.Time
}

// NewPredictionLedger creates a PredictionLedger. now supplies the current time.
func NewPredictionLedger(now func() time.Time) *PredictionLedger {
	return &PredictionLedger{now: now}
}

// ParseProbability parses a bare fraction ("0.6") or a percentage ("60%")
// and checks that it lies strictly between 0 and 1.
func ParseProbability(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	percent := strings.HasSuffix(s, "%")
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", domain.ErrNotANumber, raw)
	}
	if percent {
		d = d.Div(decimalHundred)
	}

	if d.GreaterThanOrEqual(decimalOne) {
		return 0, fmt.Errorf("%w: percentage >= 100%%: %s", domain.ErrOutOfRange, raw)
	}
	if d.LessThanOrEqual(decimalZero) {
		return 0, fmt.Errorf("%w: percentage <= 0%%: %s", domain.ErrOutOfRange, raw)
	}

	// Values a hair inside the bounds can still round onto them.
	v, _ := d.Float64()
	if v >= 1 {
		return 0, fmt.Errorf("%w: percentage >= 100%%: %s", domain.ErrOutOfRange, raw)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%w: percentage <= 0%%: %s", domain.ErrOutOfRange, raw)
	}
	return v, nil
}

// Add records user's prediction on the named contract at the current time.
// Contract creation uses the same path to record the house odds.
func (l *PredictionLedger) Add(ctx context.Context, uow domain.UnitOfWork, user *domain.User, contractName, raw string) (*domain.Prediction, error) {
	contract, err := uow.Contracts().GetByName(ctx, contractName)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnknownContract, contractName)
		}
		return nil, fmt.Errorf("get contract: %w", err)
	}

	now := l.now().UTC()
	switch {
	case contract.IsResolved():
		return nil, fmt.Errorf("%w: %s", domain.ErrAlreadyResolved, contractName)
	case contract.IsCancelled():
		return nil, fmt.Errorf("%w: %s", domain.ErrCancelled, contractName)
	case contract.IsClosed(now):
		return nil, fmt.Errorf("%w: %s closed at %s", domain.ErrClosed, contractName,
			contract.ClosesAt.Format("2006-01-02 15:04 MST"))
	}

	value, err := ParseProbability(raw)
	if err != nil {
		return nil, err
	}

	p := &domain.Prediction{
		ContractID: contract.ID,
		UserID:     user.ID,
		Value:      value,
		CreatedAt:  now,
	}
	if err := uow.Predictions().Create(ctx, p); err != nil {
		return nil, fmt.Errorf("record prediction: %w", err)
	}
	return p, nil
}
