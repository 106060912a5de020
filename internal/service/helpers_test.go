package service_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/msomdec/predictions/internal/domain"
	"github.com/msomdec/predictions/internal/repository/sqlite"
	"github.com/msomdec/predictions/internal/service"
)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type testEnv struct {
	db          *sqlite.DB
	clock       *testClock
	identity    *service.IdentityRegistry
	predictions *service.PredictionLedger
	contracts   *service.ContractLedger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	clock := &testClock{now: time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)}
	predictions := service.NewPredictionLedger(clock.Now)
	return &testEnv{
		db:          db,
		clock:       clock,
		identity:    service.NewIdentityRegistry(),
		predictions: predictions,
		contracts:   service.NewContractLedger(predictions, clock.Now),
	}
}

// run executes fn in its own unit of work, as the command engine does, and
// advances the clock a second so consecutive calls get distinct timestamps.
func (e *testEnv) run(t *testing.T, externalID string, fn func(ctx context.Context, uow domain.UnitOfWork, user *domain.User) error) error {
	t.Helper()
	defer e.clock.Advance(time.Second)
	ctx := context.Background()
	return service.WithinUnitOfWork(ctx, e.db, func(uow domain.UnitOfWork) error {
		user, err := e.identity.ResolveOrCreate(ctx, uow, externalID)
		if err != nil {
			return err
		}
		return fn(ctx, uow, user)
	})
}

func (e *testEnv) create(t *testing.T, externalID, name string, closesIn time.Duration, houseOdds string) error {
	t.Helper()
	return e.run(t, externalID, func(ctx context.Context, uow domain.UnitOfWork, user *domain.User) error {
		_, err := e.contracts.Create(ctx, uow, user, name, "terms", e.clock.Now().Add(closesIn), houseOdds)
		return err
	})
}

func (e *testEnv) predict(t *testing.T, externalID, name, raw string) error {
	t.Helper()
	return e.run(t, externalID, func(ctx context.Context, uow domain.UnitOfWork, user *domain.User) error {
		_, err := e.predictions.Add(ctx, uow, user, name, raw)
		return err
	})
}

func (e *testEnv) resolve(t *testing.T, externalID, name, outcome string) error {
	t.Helper()
	return e.run(t, externalID, func(ctx context.Context, uow domain.UnitOfWork, user *domain.User) error {
		_, err := e.contracts.Resolve(ctx, uow, user, name, outcome)
		return err
	})
}

func (e *testEnv) cancel(t *testing.T, externalID, name string) error {
	t.Helper()
	return e.run(t, externalID, func(ctx context.Context, uow domain.UnitOfWork, user *domain.User) error {
		_, err := e.contracts.Cancel(ctx, uow, user, name)
		return err
	})
}

func (e *testEnv) show(t *testing.T, name string) *service.ContractView {
	t.Helper()
	var view *service.ContractView
	err := e.run(t, "viewer", func(ctx context.Context, uow domain.UnitOfWork, _ *domain.User) error {
		var err error
		view, err = e.contracts.Show(ctx, uow, name)
		return err
	})
	if err != nil {
		t.Fatalf("Show %s: %v", name, err)
	}
	return view
}

func (e *testEnv) list(t *testing.T, filter domain.ContractFilter) []string {
	t.Helper()
	var names []string
	err := e.run(t, "viewer", func(ctx context.Context, uow domain.UnitOfWork, _ *domain.User) error {
		var err error
		names, err = e.contracts.List(ctx, uow, filter)
		return err
	})
	if err != nil {
		t.Fatalf("List %s: %v", filter, err)
	}
	return names
}

func mustOK(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
