package handler

import (
	"net/http"

	"github.com/msomdec/predictions/internal/command"
	"github.com/msomdec/predictions/internal/metrics"
	"github.com/msomdec/predictions/internal/service"
)

// RegisterRoutes sets up all HTTP routes on the given mux. The Slack endpoint
// is only mounted when slackSecret is set; m may be nil.
func RegisterRoutes(mux *http.ServeMux, engine *command.Engine, auth *service.AuthService, slackSecret string, m *metrics.Metrics) {
	handle := func(pattern string, h http.Handler) {
		mux.Handle(pattern, instrument(m, pattern, h))
	}

	handle("GET /healthz", HandleHealthz(engine.DB))
	if m != nil {
		mux.Handle("GET /metrics", m.Handler())
	}

	authHandler := NewAuthHandler(auth)
	commandHandler := NewCommandHandler(engine)
	handle("POST /api/token", http.HandlerFunc(authHandler.HandleToken))
	handle("POST /api/commands", RequireAPIToken(auth, http.HandlerFunc(commandHandler.HandleCommand)))

	if slackSecret != "" {
		slackHandler := NewSlackHandler(engine, slackSecret)
		handle("POST /slack/command", http.HandlerFunc(slackHandler.HandleCommand))
	}

	board := NewBoardHandler(engine.DB, engine.Contracts, engine.Dates.Location(), engine.Now)
	handle("GET /{$}", http.HandlerFunc(board.HandleBoard))
	handle("GET /contracts/{name}", http.HandlerFunc(board.HandleContract))
	handle("GET /contracts/{name}/scores", http.HandlerFunc(board.HandleScores))
}
