package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/msomdec/predictions/internal/command"
	"github.com/msomdec/predictions/internal/handler"
	"github.com/msomdec/predictions/internal/metrics"
	"github.com/msomdec/predictions/internal/repository/sqlite"
	"github.com/msomdec/predictions/internal/service"
	"github.com/msomdec/predictions/internal/timeparse"
)

const (
	testJWTSecret    = "test-secret-key-for-handler-tests-0123456789"
	testSlackSecret  = "8f742231b10e8888abcd99yyyzzz85a5"
	testClientID     = "bot"
	testClientSecret = "bot-secret-0123456789"
)

type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time { return c.now }

type testEnv struct {
	srv     *httptest.Server
	db      *sqlite.DB
	engine  *command.Engine
	auth    *service.AuthService
	metrics *metrics.Metrics
	clock   *testClock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	// Use cost 4 for fast tests.
	hash, err := service.HashSecret(testClientSecret, 4)
	if err != nil {
		t.Fatalf("HashSecret: %v", err)
	}
	auth := service.NewAuthService(map[string]string{testClientID: hash}, testJWTSecret)

	clock := &testClock{now: time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)}
	predictions := service.NewPredictionLedger(clock.Now)
	m := metrics.New()
	engine := command.New(command.Deps{
		DB:          db,
		Identity:    service.NewIdentityRegistry(),
		Contracts:   service.NewContractLedger(predictions, clock.Now),
		Predictions: predictions,
		Dates:       timeparse.New(time.UTC),
		Metrics:     m,
		Now:         clock.Now,
	})

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, engine, auth, testSlackSecret, m)
	srv := httptest.NewServer(handler.RequestLogger(handler.SecurityHeaders(mux)))
	t.Cleanup(srv.Close)

	return &testEnv{srv: srv, db: db, engine: engine, auth: auth, metrics: m, clock: clock}
}

// run executes a command directly against the engine and fails on error.
func (e *testEnv) run(t *testing.T, user, text string) command.Response {
	t.Helper()
	defer func() { e.clock.now = e.clock.now.Add(time.Second) }()
	resp, err := e.engine.Execute(context.Background(), user, text)
	if err != nil {
		t.Fatalf("Execute(%q): %v", text, err)
	}
	return resp
}

func postJSON(t *testing.T, url, token string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("decode body: %v", err)
	}
}
