package handler_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/msomdec/predictions/internal/command"
)

func issueToken(t *testing.T, env *testEnv) string {
	t.Helper()
	resp := postJSON(t, env.srv.URL+"/api/token", "", map[string]string{
		"client_id":     testClientID,
		"client_secret": testClientSecret,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("POST /api/token: expected 200, got %d", resp.StatusCode)
	}
	var body struct {
		Token     string `json:"token"`
		TokenType string `json:"token_type"`
		ExpiresIn int    `json:"expires_in"`
	}
	decode(t, resp, &body)
	if body.Token == "" || body.TokenType != "Bearer" || body.ExpiresIn != 86400 {
		t.Fatalf("unexpected token response %+v", body)
	}
	return body.Token
}

func TestAPI_Token_BadCredentials(t *testing.T) {
	env := newTestEnv(t)

	resp := postJSON(t, env.srv.URL+"/api/token", "", map[string]string{
		"client_id":     testClientID,
		"client_secret": "wrong-secret-0123456789",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}

	resp = postJSON(t, env.srv.URL+"/api/token", "", map[string]string{"unexpected": "field"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown fields, got %d", resp.StatusCode)
	}
}

func TestAPI_Commands(t *testing.T) {
	env := newTestEnv(t)
	token := issueToken(t, env)

	run := func(user, text string) command.Response {
		t.Helper()
		resp := postJSON(t, env.srv.URL+"/api/commands", token, map[string]string{"user_id": user, "text": text})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%q: expected 200, got %d", text, resp.StatusCode)
		}
		var out command.Response
		decode(t, resp, &out)
		return out
	}

	out := run("alice", `create rain "rain tomorrow" "1 day" 20%`)
	if out.Visibility != command.Broadcast || !strings.HasPrefix(out.Text, "Created contract rain") {
		t.Fatalf("unexpected create response %+v", out)
	}

	out = run("bob", "rain 60%")
	if out.Text != "bob predicts 60.00% for rain" {
		t.Fatalf("unexpected predict response %+v", out)
	}

	out = run("bob", "resolve rain true")
	if out.Visibility != command.Ephemeral || !strings.Contains(out.Text, "only alice can resolve rain") {
		t.Fatalf("expected ephemeral authorization error, got %+v", out)
	}

	out = run("bob", "help")
	if out.Visibility != command.Ephemeral {
		t.Fatalf("expected help to be ephemeral, got %+v", out)
	}
}

func TestAPI_Commands_Validation(t *testing.T) {
	env := newTestEnv(t)

	resp := postJSON(t, env.srv.URL+"/api/commands", "", map[string]string{"user_id": "alice", "text": "list"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}

	token := issueToken(t, env)
	resp = postJSON(t, env.srv.URL+"/api/commands", token, map[string]string{"text": "list"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 without user_id, got %d", resp.StatusCode)
	}
}

func TestAPI_Commands_InfrastructureError(t *testing.T) {
	env := newTestEnv(t)
	token := issueToken(t, env)
	env.db.Close()

	resp := postJSON(t, env.srv.URL+"/api/commands", token, map[string]string{"user_id": "alice", "text": "list"})
	var body map[string]string
	decode(t, resp, &body)

	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
	if body["error"] != "something went wrong" {
		t.Fatalf("expected generic error, got %q", body["error"])
	}
}
