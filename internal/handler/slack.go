package handler

import (
	"io"
	"net/http"

	"github.com/slack-go/slack"

	"github.com/msomdec/predictions/internal/command"
)

// SlackHandler serves the Slack slash command endpoint.
type SlackHandler struct {
	engine        *command.Engine
	signingSecret string
}

// NewSlackHandler creates a new SlackHandler that verifies requests with signingSecret.
func NewSlackHandler(engine *command.Engine, signingSecret string) *SlackHandler {
	return &SlackHandler{engine: engine, signingSecret: signingSecret}
}

// HandleCommand verifies the request signature, runs the command text and
// replies in channel or to the caller only.
// POST /slack/command
func (h *SlackHandler) HandleCommand(w http.ResponseWriter, r *http.Request) {
	logger := LoggerFromContext(r.Context())

	verifier, err := slack.NewSecretsVerifier(r.Header, h.signingSecret)
	if err != nil {
		logger.Warn("slack request rejected", "error", err)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	r.Body = io.NopCloser(io.TeeReader(http.MaxBytesReader(w, r.Body, maxBodyBytes), &verifier))

	cmd, err := slack.SlashCommandParse(r)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if err := verifier.Ensure(); err != nil {
		logger.Warn("slack signature mismatch", "error", err, "team", cmd.TeamID)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	msg := slack.Msg{ResponseType: slack.ResponseTypeEphemeral}
	resp, err := h.engine.Execute(r.Context(), cmd.UserID, cmd.Text)
	if err != nil {
		logger.Error("execute slack command", "error", err, "user", cmd.UserID)
		msg.Text = "something went wrong"
		writeJSON(w, http.StatusOK, msg)
		return
	}

	msg.Text = resp.Text
	if resp.Visibility == command.Broadcast {
		msg.ResponseType = slack.ResponseTypeInChannel
	}
	writeJSON(w, http.StatusOK, msg)
}
