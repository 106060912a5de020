package domain

import (
	"context"
	"time"
)

// Prediction is one user's probability estimate that a contract resolves true.
// Value lies strictly between 0 and 1.
type Prediction struct {
	ID         int64
	ContractID int64
	UserID     int64
	Value      float64
	CreatedAt  time.Time
}

// PredictionEntry is a prediction joined with the predictor's external id.
type PredictionEntry struct {
	Prediction
	UserExternalID string
}

// PredictionRepository defines persistence operations for predictions.
// Predictions are append-only.
type PredictionRepository interface {
	Create(ctx context.Context, prediction *Prediction) error
	// ListByContract returns predictions ordered by creation time, ties broken by id.
	ListByContract(ctx context.Context, contractID int64) ([]PredictionEntry, error)
}
