package handler

import (
	"net/http"
	"strings"

	"github.com/msomdec/predictions/internal/command"
)

// CommandHandler runs chat commands submitted over the JSON API.
type CommandHandler struct {
	engine *command.Engine
}

// NewCommandHandler creates a new CommandHandler.
func NewCommandHandler(engine *command.Engine) *CommandHandler {
	return &CommandHandler{engine: engine}
}

// HandleCommand runs one command on behalf of a chat user.
// POST /api/commands
// Request:  {"user_id":"U123","text":"create rain \"rain tomorrow\" \"1 day\" 20%"}
// Response: {"text":"...","visibility":"broadcast"}
func (h *CommandHandler) HandleCommand(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
		Text   string `json:"text"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	resp, err := h.engine.Execute(r.Context(), req.UserID, req.Text)
	if err != nil {
		LoggerFromContext(r.Context()).Error("execute command",
			"error", err, "client", ClientFromContext(r.Context()), "user", req.UserID)
		writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
