package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

// setupHandlerEnv returns the auth routes behind the auth middleware.
func setupHandlerEnv(t *testing.T) (*sessionEnv, http.Handler) {
	t.Helper()
	env := newSessionEnv(t)
	h := NewHandler(env.sessions, env.users, newTestTokenService(), zap.NewNop())

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return env, h.Middleware()(mux)
}

func doRequest(h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeSession(t *testing.T, w *httptest.ResponseRecorder) SessionResponse {
	t.Helper()
	var resp SessionResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	return resp
}

func TestHandleLogin_Admin(t *testing.T) {
	_, h := setupHandlerEnv(t)

	w := doRequest(h, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{Email: "admin@app.com", Password: "admin123"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", w.Code, w.Body.String())
	}
	resp := decodeSession(t, w)
	if resp.User.Role != RoleAdmin || resp.User.ID != AdminID {
		t.Errorf("user = %+v", resp.User)
	}
	if resp.AccessToken == "" {
		t.Error("access token missing")
	}
	if resp.ExpiresIn != 900 {
		t.Errorf("expires_in = %d, want 900", resp.ExpiresIn)
	}
}

func TestHandleLogin_Errors(t *testing.T) {
	_, h := setupHandlerEnv(t)

	tests := []struct {
		name string
		body any
		want int
	}{
		{"missing fields", LoginRequest{Email: "admin@app.com"}, http.StatusBadRequest},
		{"wrong password", LoginRequest{Email: "admin@app.com", Password: "nope"}, http.StatusUnauthorized},
		{"invalid json", "not an object", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(h, http.MethodPost, "/api/v1/auth/login", "", tt.body)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestHandleRegister(t *testing.T) {
	_, h := setupHandlerEnv(t)
	body := RegisterRequest{Name: "Pedro Costa", Email: "pedro@example.com", Password: "segredo"}

	w := doRequest(h, http.MethodPost, "/api/v1/auth/register", "", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body: %s", w.Code, w.Body.String())
	}
	if resp := decodeSession(t, w); resp.User.Role != RoleUser {
		t.Errorf("role = %q, want user", resp.User.Role)
	}

	w = doRequest(h, http.MethodPost, "/api/v1/auth/register", "", body)
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate status = %d, want 409", w.Code)
	}

	w = doRequest(h, http.MethodPost, "/api/v1/auth/register", "", RegisterRequest{Email: "x@example.com"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("incomplete status = %d, want 400", w.Code)
	}
}

func TestHandleMe_Lifecycle(t *testing.T) {
	_, h := setupHandlerEnv(t)

	w := doRequest(h, http.MethodGet, "/api/v1/auth/me", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("me without token status = %d, want 401", w.Code)
	}

	w = doRequest(h, http.MethodPost, "/api/v1/auth/guest", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("guest status = %d", w.Code)
	}
	token := decodeSession(t, w).AccessToken

	w = doRequest(h, http.MethodGet, "/api/v1/auth/me", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("me status = %d; body: %s", w.Code, w.Body.String())
	}
	var me User
	if err := json.NewDecoder(w.Body).Decode(&me); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if me.Name != GuestName {
		t.Errorf("name = %q, want %q", me.Name, GuestName)
	}

	w = doRequest(h, http.MethodPatch, "/api/v1/auth/me", token, UpdateUserRequest{Name: "Visitante"})
	if w.Code != http.StatusOK {
		t.Fatalf("patch status = %d", w.Code)
	}
	if err := json.NewDecoder(w.Body).Decode(&me); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if me.Name != "Visitante" || me.Role != RoleGuest {
		t.Errorf("patched user = %+v", me)
	}

	w = doRequest(h, http.MethodPost, "/api/v1/auth/logout", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("logout without token status = %d, want 401", w.Code)
	}
	w = doRequest(h, http.MethodPost, "/api/v1/auth/logout", token, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("logout status = %d", w.Code)
	}

	// The token is still valid, but there is no session behind it.
	w = doRequest(h, http.MethodGet, "/api/v1/auth/me", token, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("me after logout status = %d, want 401", w.Code)
	}
	w = doRequest(h, http.MethodPatch, "/api/v1/auth/me", token, UpdateUserRequest{Name: "x"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("patch after logout status = %d, want 401", w.Code)
	}
}

func TestHandleMe_PerToken(t *testing.T) {
	_, h := setupHandlerEnv(t)

	w := doRequest(h, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{Email: "admin@app.com", Password: "admin123"})
	adminToken := decodeSession(t, w).AccessToken
	w = doRequest(h, http.MethodPost, "/api/v1/auth/guest", "", nil)
	guestToken := decodeSession(t, w).AccessToken

	me := func(token string) (int, User) {
		t.Helper()
		w := doRequest(h, http.MethodGet, "/api/v1/auth/me", token, nil)
		var u User
		if w.Code == http.StatusOK {
			if err := json.NewDecoder(w.Body).Decode(&u); err != nil {
				t.Fatalf("decode: %v", err)
			}
		}
		return w.Code, u
	}

	tests := []struct {
		name     string
		token    string
		wantID   string
		wantRole Role
	}{
		{"admin token", adminToken, AdminID, RoleAdmin},
		{"guest token", guestToken, "guest-1700000000000", RoleGuest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, u := me(tt.token)
			if code != http.StatusOK {
				t.Fatalf("status = %d, want 200", code)
			}
			if u.ID != tt.wantID || u.Role != tt.wantRole {
				t.Errorf("me = %+v, want id %q role %q", u, tt.wantID, tt.wantRole)
			}
		})
	}

	w = doRequest(h, http.MethodPatch, "/api/v1/auth/me", adminToken, UpdateUserRequest{Name: "Chefe"})
	if w.Code != http.StatusOK {
		t.Fatalf("patch status = %d", w.Code)
	}
	if _, u := me(guestToken); u.Name != GuestName {
		t.Errorf("guest name after admin patch = %q, want %q", u.Name, GuestName)
	}
	if _, u := me(adminToken); u.Name != "Chefe" {
		t.Errorf("admin name = %q, want Chefe", u.Name)
	}

	w = doRequest(h, http.MethodPost, "/api/v1/auth/logout", guestToken, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("logout status = %d", w.Code)
	}
	if code, _ := me(guestToken); code != http.StatusUnauthorized {
		t.Errorf("guest me after logout = %d, want 401", code)
	}
	if code, _ := me(adminToken); code != http.StatusOK {
		t.Errorf("admin me after guest logout = %d, want 200", code)
	}
}

func TestHandleListUsers(t *testing.T) {
	_, h := setupHandlerEnv(t)

	w := doRequest(h, http.MethodPost, "/api/v1/auth/register", "", RegisterRequest{Name: "Ana", Email: "ana@example.com", Password: "x"})
	userToken := decodeSession(t, w).AccessToken

	w = doRequest(h, http.MethodGet, "/api/v1/users", userToken, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("non-admin status = %d, want 403", w.Code)
	}

	w = doRequest(h, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{Email: "admin@app.com", Password: "admin123"})
	adminToken := decodeSession(t, w).AccessToken

	w = doRequest(h, http.MethodGet, "/api/v1/users", adminToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("admin status = %d", w.Code)
	}
	var users []map[string]any
	if err := json.NewDecoder(w.Body).Decode(&users); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(users) != 1 || users[0]["email"] != "ana@example.com" {
		t.Errorf("users = %v", users)
	}
	if _, leaked := users[0]["password_hash"]; leaked {
		t.Error("password hash must not be serialized")
	}
}

func TestWriteAuthError_Format(t *testing.T) {
	w := httptest.NewRecorder()
	writeAuthError(w, http.StatusConflict, "Este email já está registado")

	if ct := w.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("Content-Type = %q", ct)
	}
	var p AuthProblem
	if err := json.NewDecoder(w.Body).Decode(&p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Status != http.StatusConflict || p.Title != "Conflict" || p.Detail != "Este email já está registado" {
		t.Errorf("problem = %+v", p)
	}
}
