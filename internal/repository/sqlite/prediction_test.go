package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/msomdec/predictions/internal/domain"
)

func TestPredictionRepository_ListByContract_Ordered(t *testing.T) {
	db := newTestDB(t)
	uow := begin(t, db)
	ctx := context.Background()
	users := uow.Users()
	u1, _ := users.GetOrCreate(ctx, "U1")
	u2, _ := users.GetOrCreate(ctx, "U2")
	c := createTestContract(t, uow.Contracts(), u1.ID, "rain")
	repo := uow.Predictions()

	t0 := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	// Inserted out of time order; the third shares a timestamp with the first.
	inserts := []domain.Prediction{
		{ContractID: c.ID, UserID: u1.ID, Value: 0.5, CreatedAt: t0.Add(time.Second)},
		{ContractID: c.ID, UserID: u2.ID, Value: 0.6, CreatedAt: t0},
		{ContractID: c.ID, UserID: u2.ID, Value: 0.7, CreatedAt: t0.Add(time.Second)},
	}
	for i := range inserts {
		if err := repo.Create(ctx, &inserts[i]); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	entries, err := repo.ListByContract(ctx, c.ID)
	if err != nil {
		t.Fatalf("ListByContract: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 predictions, got %d", len(entries))
	}

	wantValues := []float64{0.6, 0.5, 0.7}
	wantUsers := []string{"U2", "U1", "U2"}
	for i, e := range entries {
		if e.Value != wantValues[i] {
			t.Fatalf("entry %d: expected value %v, got %v", i, wantValues[i], e.Value)
		}
		if e.UserExternalID != wantUsers[i] {
			t.Fatalf("entry %d: expected user %s, got %s", i, wantUsers[i], e.UserExternalID)
		}
	}
}

func TestPredictionRepository_Create_RejectsUnknownContract(t *testing.T) {
	db := newTestDB(t)
	uow := begin(t, db)
	ctx := context.Background()
	u1, _ := uow.Users().GetOrCreate(ctx, "U1")
	repo := uow.Predictions()

	err := repo.Create(ctx, &domain.Prediction{ContractID: 404, UserID: u1.ID, Value: 0.5})
	if err == nil {
		t.Fatal("expected foreign key violation for unknown contract")
	}
}
