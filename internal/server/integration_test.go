package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/HerbHall/campaigndesk/internal/auth"
	"github.com/HerbHall/campaigndesk/internal/campaign"
	"github.com/HerbHall/campaigndesk/internal/kv"
	"github.com/HerbHall/campaigndesk/internal/server"
	"github.com/HerbHall/campaigndesk/internal/settings"
	"github.com/HerbHall/campaigndesk/internal/testutil"
	"github.com/HerbHall/campaigndesk/internal/tools"
	"github.com/HerbHall/campaigndesk/pkg/generation"
	"github.com/HerbHall/campaigndesk/pkg/generation/generationtest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecret = "test-secret-key-32bytes-long!!"

// =============================================================================
// Test Infrastructure
// =============================================================================

type appEnv struct {
	handler http.Handler
	logs    *observer.ObservedLogs
	gen     *generationtest.Fake
}

// newAppEnv wires the full HTTP stack the way the serve command does, with a
// fake generator and an observed logger.
func newAppEnv(t *testing.T) *appEnv {
	t.Helper()

	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	kvStore := kv.New(nil)
	users := auth.NewUserStore(nil)
	campaigns := campaign.NewStore(nil)
	db := testutil.NewStore(t, kvStore, users, campaigns)

	kvStore = kv.New(db.DB())
	users = auth.NewUserStore(db.DB())
	campaigns = campaign.NewStore(db.DB())

	authCfg := auth.DefaultConfig()
	authCfg.BcryptCost = bcrypt.MinCost
	sessions := auth.NewSessions(kvStore, users, authCfg, logger)
	tokens := auth.NewTokenService([]byte(testJWTSecret), 15*time.Minute)
	authHandler := auth.NewHandler(sessions, users, tokens, logger)

	gen := generationtest.NewFake()
	srv := server.New(server.DefaultConfig(), logger, nil, authHandler,
		tools.NewHandler(tools.NewService(gen, logger), logger),
		campaign.NewHandler(campaigns, logger),
		settings.NewHandler(kvStore, logger),
	)
	return &appEnv{handler: srv.Handler(), logs: logs, gen: gen}
}

func (e *appEnv) do(method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func (e *appEnv) signIn(t *testing.T, path, body string) string {
	t.Helper()
	w := e.do(http.MethodPost, path, "", body)
	if w.Code != http.StatusOK && w.Code != http.StatusCreated {
		t.Fatalf("%s: status = %d, body = %s", path, w.Code, w.Body.String())
	}
	var resp auth.SessionResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	return resp.AccessToken
}

func (e *appEnv) adminToken(t *testing.T) string {
	return e.signIn(t, "/api/v1/auth/login", `{"email":"admin@app.com","password":"admin123"}`)
}

// containsSecret checks if any log entry contains the secret string.
func containsSecret(logs *observer.ObservedLogs, secret string) bool {
	entries := logs.All()
	for i := range entries {
		if strings.Contains(entries[i].Message, secret) {
			return true
		}
		for j := range entries[i].Context {
			f := entries[i].Context[j]
			if strings.Contains(f.String, secret) {
				return true
			}
			if err, ok := f.Interface.(error); ok && strings.Contains(err.Error(), secret) {
				return true
			}
		}
	}
	return false
}

// =============================================================================
// Malformed Input Tests
// =============================================================================

func TestMalformedJSON(t *testing.T) {
	env := newAppEnv(t)
	token := env.adminToken(t)

	endpoints := []struct {
		method string
		path   string
	}{
		{"POST", "/api/v1/auth/login"},
		{"POST", "/api/v1/auth/register"},
		{"PATCH", "/api/v1/auth/me"},
		{"POST", "/api/v1/tools/content"},
		{"POST", "/api/v1/tools/crisis"},
		{"POST", "/api/v1/tools/sentiment"},
		{"POST", "/api/v1/campaigns"},
		{"POST", "/api/v1/contacts"},
		{"POST", "/api/v1/events"},
		{"POST", "/api/v1/responses"},
		{"PUT", "/api/v1/settings"},
	}
	bodies := map[string]string{
		"truncated":      `{"name": "x", "email":`,
		"invalid syntax": `{name: x}`,
		"array":          `["x", "y"]`,
	}

	for _, ep := range endpoints {
		for name, body := range bodies {
			t.Run(ep.method+" "+ep.path+" "+name, func(t *testing.T) {
				w := env.do(ep.method, ep.path, token, body)
				if w.Code != http.StatusBadRequest {
					t.Errorf("status = %d, want 400; body: %s", w.Code, w.Body.String())
				}
				if ct := w.Header().Get("Content-Type"); ct != "application/problem+json" {
					t.Errorf("Content-Type = %q, want application/problem+json", ct)
				}
			})
		}
	}
	if n := len(env.gen.Calls()); n != 0 {
		t.Errorf("generator called %d times for malformed input", n)
	}
}

// =============================================================================
// Access Control Tests
// =============================================================================

func TestAPIRequiresToken(t *testing.T) {
	env := newAppEnv(t)

	for _, path := range []string{"/api/v1/campaigns", "/api/v1/settings", "/api/v1/auth/me"} {
		w := env.do(http.MethodGet, path, "", "")
		if w.Code != http.StatusUnauthorized {
			t.Errorf("GET %s without token: status = %d, want 401", path, w.Code)
		}
	}
	w := env.do(http.MethodPost, "/api/v1/tools/sentiment", "", `{"text":"bom"}`)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("tool without token: status = %d, want 401", w.Code)
	}

	w = env.do(http.MethodGet, "/api/v1/health", "", "")
	if w.Code != http.StatusOK {
		t.Errorf("health without token: status = %d, want 200", w.Code)
	}
}

func TestGuestCanReadButNotWrite(t *testing.T) {
	env := newAppEnv(t)
	guest := env.signIn(t, "/api/v1/auth/guest", "")

	w := env.do(http.MethodGet, "/api/v1/campaigns", guest, "")
	if w.Code != http.StatusOK {
		t.Fatalf("guest list: status = %d, want 200", w.Code)
	}
	var campaigns []campaign.Campaign
	if err := json.NewDecoder(w.Body).Decode(&campaigns); err != nil {
		t.Fatalf("decode campaigns: %v", err)
	}
	if len(campaigns) != 3 {
		t.Errorf("seeded campaigns = %d, want 3", len(campaigns))
	}

	w = env.do(http.MethodPost, "/api/v1/events", guest, `{"title":"Comício","date":"2025-03-01"}`)
	if w.Code != http.StatusForbidden {
		t.Errorf("guest create: status = %d, want 403", w.Code)
	}

	w = env.do(http.MethodGet, "/api/v1/users", guest, "")
	if w.Code != http.StatusForbidden {
		t.Errorf("guest list users: status = %d, want 403", w.Code)
	}
}

func TestToolRoundTrip(t *testing.T) {
	env := newAppEnv(t)
	token := env.adminToken(t)
	env.gen.Reply = func([]generation.Message) (string, error) { return "Caros cidadãos...", nil }

	w := env.do(http.MethodPost, "/api/v1/tools/content", token, `{"kind":"speech","request":"educação"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", w.Code, w.Body.String())
	}
	var resp tools.TextResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Text != "Caros cidadãos..." {
		t.Errorf("text = %q", resp.Text)
	}
	if !strings.Contains(env.gen.LastPrompt(), "educação") {
		t.Errorf("prompt %q does not carry the request", env.gen.LastPrompt())
	}
}

// =============================================================================
// Secret Hygiene Tests
// =============================================================================

func TestPasswordsNotInLogs(t *testing.T) {
	env := newAppEnv(t)

	passwords := []string{
		"super-secret-password-123",
		"MyP@ssw0rd!",
		"correct-horse-battery-staple",
	}
	for _, password := range passwords {
		body, _ := json.Marshal(auth.LoginRequest{Email: "nobody@example.com", Password: password})
		env.do(http.MethodPost, "/api/v1/auth/login", "", string(body))

		reg, _ := json.Marshal(auth.RegisterRequest{Name: "Rita", Email: password[:5] + "@example.com", Password: password})
		env.do(http.MethodPost, "/api/v1/auth/register", "", string(reg))

		if containsSecret(env.logs, password) {
			t.Errorf("password %q found in log output", password)
		}
	}
}

func TestPasswordHashNotInResponses(t *testing.T) {
	env := newAppEnv(t)

	body, _ := json.Marshal(auth.RegisterRequest{Name: "Rita", Email: "rita@example.com", Password: "securepassword123"})
	w := env.do(http.MethodPost, "/api/v1/auth/register", "", string(body))
	if w.Code != http.StatusCreated {
		t.Fatalf("register: status = %d, body = %s", w.Code, w.Body.String())
	}

	admin := env.adminToken(t)
	users := env.do(http.MethodGet, "/api/v1/users", admin, "")
	if users.Code != http.StatusOK {
		t.Fatalf("list users: status = %d", users.Code)
	}

	for name, resp := range map[string]string{"register": w.Body.String(), "users": users.Body.String()} {
		if strings.Contains(resp, "$2a$") || strings.Contains(resp, "$2b$") {
			t.Errorf("%s response contains bcrypt hash prefix", name)
		}
		if strings.Contains(resp, "password") {
			t.Errorf("%s response mentions a password field", name)
		}
	}
}

func TestJWTSecretNotExposed(t *testing.T) {
	env := newAppEnv(t)

	ops := []struct {
		method, path, token, body string
	}{
		{"POST", "/api/v1/auth/login", "", `{"email":"admin@app.com","password":"admin123"}`},
		{"POST", "/api/v1/auth/login", "", `{"email":"admin@app.com","password":"wrong"}`},
		{"GET", "/api/v1/auth/me", "not-a-token", ""},
		{"GET", "/api/v1/campaigns", testJWTSecret, ""},
	}
	for _, op := range ops {
		w := env.do(op.method, op.path, op.token, op.body)
		if strings.Contains(w.Body.String(), testJWTSecret) {
			t.Errorf("JWT secret found in response from %s %s", op.method, op.path)
		}
	}
	if containsSecret(env.logs, testJWTSecret) {
		t.Error("JWT secret found in logs")
	}
}

func TestInvalidTokenResponseIsGeneric(t *testing.T) {
	env := newAppEnv(t)
	token := "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiJ4In0.forged"

	w := env.do(http.MethodGet, "/api/v1/campaigns", token, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if strings.Contains(w.Body.String(), token) {
		t.Error("response echoes the rejected token")
	}
	if strings.Contains(strings.ToLower(w.Body.String()), "signature") {
		t.Error("response exposes token validation internals")
	}

	var buf bytes.Buffer
	_ = json.Indent(&buf, w.Body.Bytes(), "", "")
	if !strings.Contains(buf.String(), "invalid or expired access token") {
		t.Errorf("body = %s, want generic detail", w.Body.String())
	}
}
