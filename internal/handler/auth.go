package handler

import (
	"errors"
	"net/http"

	"github.com/msomdec/predictions/internal/domain"
	"github.com/msomdec/predictions/internal/service"
)

// AuthHandler issues API tokens to configured clients.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// HandleToken exchanges client credentials for a bearer token.
// POST /api/token
// Request:  {"client_id":"...","client_secret":"..."}
// Response: {"token":"...","token_type":"Bearer","expires_in":86400}
func (h *AuthHandler) HandleToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ClientID     string `json:"client_id"`
		ClientSecret string `json:"client_secret"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := h.auth.IssueToken(req.ClientID, req.ClientSecret)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			writeError(w, http.StatusUnauthorized, "invalid client credentials")
			return
		}
		LoggerFromContext(r.Context()).Error("issue token", "error", err)
		writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token":      token,
		"token_type": "Bearer",
		"expires_in": int(service.TokenTTL.Seconds()),
	})
}
