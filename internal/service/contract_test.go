package service_test

import (
	"context"
	"errors"
	"math"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/msomdec/predictions/internal/domain"
)

func TestContractLedger_Create(t *testing.T) {
	env := newTestEnv(t)
	mustOK(t, env.create(t, "alice", "rain", time.Hour, ".5"))

	view := env.show(t, "rain")
	c := view.Contract
	if c.CreatorExternalID != "alice" {
		t.Fatalf("expected creator alice, got %q", c.CreatorExternalID)
	}
	if _, offset := c.ClosesAt.Zone(); offset != 0 {
		t.Fatalf("expected close time stored in UTC, got offset %d", offset)
	}
	if c.IsResolved() || c.IsCancelled() {
		t.Fatalf("expected a new contract to be open, got %s", c.Status())
	}
	if len(view.Predictions) != 1 || view.Predictions[0].Value != 0.5 || view.Predictions[0].UserExternalID != "alice" {
		t.Fatalf("expected house odds 0.5 from alice, got %+v", view.Predictions)
	}
}

func TestContractLedger_Create_NormalisesCloseTimeToUTC(t *testing.T) {
	env := newTestEnv(t)
	loc := time.FixedZone("PDT", -7*3600)
	closes := time.Date(2026, 10, 19, 18, 0, 0, 0, loc)

	err := env.run(t, "alice", func(ctx context.Context, uow domain.UnitOfWork, user *domain.User) error {
		c, err := env.contracts.Create(ctx, uow, user, "rain", "terms", closes, ".5")
		if err != nil {
			return err
		}
		if c.ClosesAt.Location() != time.UTC || !c.ClosesAt.Equal(closes) {
			t.Fatalf("expected %v in UTC, got %v", closes.UTC(), c.ClosesAt)
		}
		return nil
	})
	mustOK(t, err)
}

func TestContractLedger_Create_Duplicate(t *testing.T) {
	env := newTestEnv(t)
	mustOK(t, env.create(t, "alice", "rain", time.Hour, ".5"))

	err := env.create(t, "bob", "rain", time.Hour, ".5")
	if !errors.Is(err, domain.ErrContractExists) {
		t.Fatalf("expected ErrContractExists, got %v", err)
	}
	if !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestContractLedger_Create_InvalidHouseOddsLeavesNothing(t *testing.T) {
	env := newTestEnv(t)

	err := env.create(t, "alice", "rain", time.Hour, "50")
	if !errors.Is(err, domain.ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
	if !strings.Contains(err.Error(), "percentage >= 100%: 50") {
		t.Fatalf("unexpected message %q", err.Error())
	}

	err = env.create(t, "alice", "rain", time.Hour, "-1")
	if !strings.Contains(err.Error(), "percentage <= 0%: -1") {
		t.Fatalf("unexpected message %q", err.Error())
	}

	if names := env.list(t, domain.ContractFilterActive); len(names) != 0 {
		t.Fatalf("expected no contracts after failed creates, got %v", names)
	}
	// The name is still free.
	mustOK(t, env.create(t, "alice", "rain", time.Hour, ".5"))
}

func TestContractLedger_Create_PastCloseTime(t *testing.T) {
	env := newTestEnv(t)

	err := env.create(t, "alice", "rain", -time.Second, ".5")
	if !errors.Is(err, domain.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if !strings.Contains(err.Error(), "closed at") {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if names := env.list(t, domain.ContractFilterActive); len(names) != 0 {
		t.Fatalf("expected no contract to be created, got %v", names)
	}
}

func TestContractLedger_List(t *testing.T) {
	env := newTestEnv(t)
	mustOK(t, env.create(t, "alice", "c1", time.Hour, ".5"))
	mustOK(t, env.create(t, "alice", "c2", time.Hour, ".5"))
	mustOK(t, env.create(t, "alice", "c3", time.Hour, ".5"))

	got := env.list(t, domain.ContractFilterActive)
	if !slices.Equal(got, []string{"c1", "c2", "c3"}) {
		t.Fatalf("expected [c1 c2 c3], got %v", got)
	}

	mustOK(t, env.resolve(t, "alice", "c1", "true"))
	mustOK(t, env.cancel(t, "alice", "c2"))

	if got := env.list(t, domain.ContractFilterActive); !slices.Equal(got, []string{"c3"}) {
		t.Fatalf("active: expected [c3], got %v", got)
	}
	if got := env.list(t, domain.ContractFilterResolved); !slices.Equal(got, []string{"c1"}) {
		t.Fatalf("resolved: expected [c1], got %v", got)
	}
	if got := env.list(t, domain.ContractFilterCancelled); !slices.Equal(got, []string{"c2"}) {
		t.Fatalf("cancelled: expected [c2], got %v", got)
	}
}

func TestContractLedger_Resolve(t *testing.T) {
	env := newTestEnv(t)

	err := env.resolve(t, "alice", "rain", "true")
	if !errors.Is(err, domain.ErrUnknownContract) {
		t.Fatalf("expected ErrUnknownContract, got %v", err)
	}

	mustOK(t, env.create(t, "alice", "rain", time.Hour, ".5"))
	mustOK(t, env.resolve(t, "alice", "rain", "TRUE"))
	first := env.show(t, "rain").Contract.ResolvedAt

	for i := 0; i < 2; i++ {
		err := env.resolve(t, "alice", "rain", "false")
		if !errors.Is(err, domain.ErrAlreadyResolved) {
			t.Fatalf("attempt %d: expected ErrAlreadyResolved, got %v", i+1, err)
		}
	}

	c := env.show(t, "rain").Contract
	if c.Resolution == nil || !*c.Resolution {
		t.Fatalf("expected resolution true to stick, got %v", c.Resolution)
	}
	if !c.ResolvedAt.Equal(*first) {
		t.Fatalf("resolved_at changed from %v to %v", first, c.ResolvedAt)
	}
}

func TestContractLedger_Resolve_InvalidOutcome(t *testing.T) {
	env := newTestEnv(t)
	mustOK(t, env.create(t, "alice", "rain", time.Hour, ".5"))

	err := env.resolve(t, "alice", "rain", "cabbage")
	if !errors.Is(err, domain.ErrInvalidOutcome) {
		t.Fatalf("expected ErrInvalidOutcome, got %v", err)
	}
	if !strings.Contains(err.Error(), `must be resolved to "true" or "false"`) {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestContractLedger_OnlyCreatorMayResolveOrCancel(t *testing.T) {
	env := newTestEnv(t)
	mustOK(t, env.create(t, "alice", "rain", time.Hour, ".5"))

	err := env.resolve(t, "bob", "rain", "true")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if !strings.Contains(err.Error(), "only alice can resolve rain") {
		t.Fatalf("unexpected message %q", err.Error())
	}

	err = env.cancel(t, "bob", "rain")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	c := env.show(t, "rain").Contract
	if c.IsResolved() || c.IsCancelled() {
		t.Fatalf("expected contract unchanged, got %s", c.Status())
	}
}

func TestContractLedger_Cancel(t *testing.T) {
	env := newTestEnv(t)

	if err := env.cancel(t, "alice", "rain"); !errors.Is(err, domain.ErrUnknownContract) {
		t.Fatalf("expected ErrUnknownContract, got %v", err)
	}

	mustOK(t, env.create(t, "alice", "rain", time.Hour, ".5"))
	mustOK(t, env.cancel(t, "alice", "rain"))

	if err := env.cancel(t, "alice", "rain"); !errors.Is(err, domain.ErrAlreadyCancelled) {
		t.Fatalf("expected ErrAlreadyCancelled, got %v", err)
	}
	if err := env.resolve(t, "alice", "rain", "true"); !errors.Is(err, domain.ErrCancelled) {
		t.Fatalf("expected resolve of cancelled contract to fail with ErrCancelled, got %v", err)
	}
}

func TestContractLedger_CancelAfterResolve(t *testing.T) {
	env := newTestEnv(t)
	mustOK(t, env.create(t, "alice", "rain", time.Hour, ".5"))
	mustOK(t, env.resolve(t, "alice", "rain", "true"))

	// Cancelling a resolved contract is allowed.
	mustOK(t, env.cancel(t, "alice", "rain"))

	view := env.show(t, "rain")
	if view.Contract.Status() != "Cancelled" {
		t.Fatalf("expected status Cancelled, got %s", view.Contract.Status())
	}
	if len(view.Scores) != 0 {
		t.Fatalf("expected no scores for a cancelled contract, got %v", view.Scores)
	}
}

func TestContractLedger_Show_Scores(t *testing.T) {
	env := newTestEnv(t)
	mustOK(t, env.create(t, "test", "c1", time.Hour, ".5"))
	mustOK(t, env.predict(t, "user1", "c1", ".6"))
	mustOK(t, env.predict(t, "user2", "c1", ".8"))
	mustOK(t, env.predict(t, "user1", "c1", ".4"))
	mustOK(t, env.predict(t, "user1", "c1", ".2"))
	mustOK(t, env.predict(t, "user2", "c1", ".1"))
	mustOK(t, env.predict(t, "user1", "c1", ".0001"))

	if view := env.show(t, "c1"); len(view.Scores) != 0 {
		t.Fatalf("expected no scores before resolution, got %v", view.Scores)
	}

	mustOK(t, env.resolve(t, "test", "c1", "false"))

	view := env.show(t, "c1")
	if len(view.Scores) != 2 {
		t.Fatalf("expected 2 scores, got %v", view.Scores)
	}
	if view.Scores[0].ExternalID != "user1" || math.Abs(view.Scores[0].Points-126.84) > 0.005 {
		t.Fatalf("expected user1 ≈ 126.84 first, got %+v", view.Scores[0])
	}
	if view.Scores[1].ExternalID != "user2" || math.Abs(view.Scores[1].Points+57.54) > 0.005 {
		t.Fatalf("expected user2 ≈ -57.54 second, got %+v", view.Scores[1])
	}
}

func TestContractLedger_Show_HouseOnlyStretch(t *testing.T) {
	env := newTestEnv(t)
	mustOK(t, env.create(t, "test", "c2", time.Hour, ".01"))
	mustOK(t, env.predict(t, "test", "c2", ".99"))
	mustOK(t, env.predict(t, "user1", "c2", ".9"))
	mustOK(t, env.predict(t, "test", "c2", ".99"))
	mustOK(t, env.resolve(t, "test", "c2", "true"))

	scores := env.show(t, "c2").Scores
	if len(scores) != 2 {
		t.Fatalf("expected 2 scores, got %v", scores)
	}
	if scores[0].ExternalID != "test" || math.Abs(scores[0].Points-9.53) > 0.005 {
		t.Fatalf("expected test ≈ 9.53, got %+v", scores[0])
	}
	if scores[1].ExternalID != "user1" || math.Abs(scores[1].Points+9.53) > 0.005 {
		t.Fatalf("expected user1 ≈ -9.53, got %+v", scores[1])
	}
}

func TestContractLedger_Show_Unknown(t *testing.T) {
	env := newTestEnv(t)

	err := env.run(t, "alice", func(ctx context.Context, uow domain.UnitOfWork, _ *domain.User) error {
		_, err := env.contracts.Show(ctx, uow, "missing")
		return err
	})
	if !errors.Is(err, domain.ErrUnknownContract) {
		t.Fatalf("expected ErrUnknownContract, got %v", err)
	}
}
