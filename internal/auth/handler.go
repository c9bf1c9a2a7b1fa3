package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// Handler provides HTTP handlers for authentication endpoints.
type Handler struct {
	sessions *Sessions
	users    *UserStore
	tokens   *TokenService
	logger   *zap.Logger
}

// NewHandler creates an auth Handler.
func NewHandler(sessions *Sessions, users *UserStore, tokens *TokenService, logger *zap.Logger) *Handler {
	return &Handler{sessions: sessions, users: users, tokens: tokens, logger: logger}
}

// RegisterRoutes registers auth routes on the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/auth/login", h.handleLogin)
	mux.HandleFunc("POST /api/v1/auth/guest", h.handleGuest)
	mux.HandleFunc("POST /api/v1/auth/register", h.handleRegister)
	mux.HandleFunc("POST /api/v1/auth/logout", h.handleLogout)
	mux.HandleFunc("GET /api/v1/auth/me", h.handleGetMe)
	mux.HandleFunc("PATCH /api/v1/auth/me", h.handleUpdateMe)

	mux.Handle("GET /api/v1/users", RequireRole(RoleAdmin)(http.HandlerFunc(h.handleListUsers)))
}

// Middleware returns the JWT authentication middleware.
func (h *Handler) Middleware() func(http.Handler) http.Handler {
	return AuthMiddleware(h.tokens)
}

// handleLogin signs in with email and password.
//
//	@Summary		Login
//	@Description	Sign in with the admin pair or a registered account.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		LoginRequest	true	"Login credentials"
//	@Success		200		{object}	SessionResponse
//	@Failure		400		{object}	AuthProblem
//	@Failure		401		{object}	AuthProblem
//	@Router			/auth/login [post]
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAuthError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeAuthError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := h.sessions.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			writeAuthError(w, http.StatusUnauthorized, "Email ou senha incorretos")
			return
		}
		h.logger.Error("login error", zap.Error(err))
		writeAuthError(w, http.StatusInternalServerError, "Erro ao fazer login")
		return
	}
	h.writeSession(w, http.StatusOK, user)
}

// handleGuest starts a guest session.
//
//	@Summary		Continue as guest
//	@Tags			auth
//	@Produce		json
//	@Success		200	{object}	SessionResponse
//	@Router			/auth/guest [post]
func (h *Handler) handleGuest(w http.ResponseWriter, r *http.Request) {
	user, err := h.sessions.LoginAsGuest(r.Context())
	if err != nil {
		h.logger.Error("guest login error", zap.Error(err))
		writeAuthError(w, http.StatusInternalServerError, "failed to start guest session")
		return
	}
	h.writeSession(w, http.StatusOK, user)
}

// handleRegister creates an account and signs it in.
//
//	@Summary		Register
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		RegisterRequest	true	"Account details"
//	@Success		201		{object}	SessionResponse
//	@Failure		400		{object}	AuthProblem
//	@Failure		409		{object}	AuthProblem
//	@Router			/auth/register [post]
func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAuthError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := ValidateRegistration(req.Name, req.Email, req.Password); err != nil {
		writeAuthError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.sessions.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrUserExists) {
			writeAuthError(w, http.StatusConflict, "Este email já está registado")
			return
		}
		h.logger.Error("register error", zap.Error(err))
		writeAuthError(w, http.StatusInternalServerError, "Erro ao criar conta")
		return
	}
	h.writeSession(w, http.StatusCreated, user)
}

// handleLogout ends the caller's session.
//
//	@Summary		Logout
//	@Tags			auth
//	@Security		BearerAuth
//	@Success		204	"No Content"
//	@Failure		401	{object}	AuthProblem
//	@Router			/auth/logout [post]
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	claims := UserFromContext(r.Context())
	if claims == nil {
		writeAuthError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if err := h.sessions.EndSession(r.Context(), claims.UserID); err != nil {
		h.logger.Error("logout error", zap.Error(err))
		writeAuthError(w, http.StatusInternalServerError, "logout failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleGetMe returns the session of the token's user.
//
//	@Summary		Current user
//	@Tags			auth
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	User
//	@Failure		401	{object}	AuthProblem
//	@Router			/auth/me [get]
func (h *Handler) handleGetMe(w http.ResponseWriter, r *http.Request) {
	claims := UserFromContext(r.Context())
	if claims == nil {
		writeAuthError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	user, err := h.sessions.Session(r.Context(), claims.UserID)
	if err != nil {
		h.logger.Error("load session error", zap.Error(err))
		writeAuthError(w, http.StatusInternalServerError, "failed to load session")
		return
	}
	if user == nil {
		writeAuthError(w, http.StatusUnauthorized, ErrNoSession.Error())
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// handleUpdateMe updates the name or email of the token's user.
//
//	@Summary		Update current user
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		UpdateUserRequest	true	"Fields to change"
//	@Success		200		{object}	User
//	@Failure		400		{object}	AuthProblem
//	@Failure		401		{object}	AuthProblem
//	@Router			/auth/me [patch]
func (h *Handler) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	claims := UserFromContext(r.Context())
	if claims == nil {
		writeAuthError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAuthError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.sessions.UpdateSession(r.Context(), claims.UserID, UserPatch{Name: req.Name, Email: req.Email})
	if err != nil {
		h.logger.Error("update user error", zap.Error(err))
		writeAuthError(w, http.StatusInternalServerError, "Erro ao atualizar utilizador")
		return
	}
	if user == nil {
		writeAuthError(w, http.StatusUnauthorized, ErrNoSession.Error())
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// handleListUsers returns the registered accounts.
//
//	@Summary		List registered users
//	@Description	Requires admin role.
//	@Tags			users
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{array}		RegisteredUser
//	@Failure		401	{object}	AuthProblem
//	@Failure		403	{object}	AuthProblem
//	@Router			/users [get]
func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("list users error", zap.Error(err))
		writeAuthError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	if users == nil {
		users = []RegisteredUser{}
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *Handler) writeSession(w http.ResponseWriter, status int, user *User) {
	token, err := h.tokens.IssueAccessToken(user)
	if err != nil {
		h.logger.Error("issue token error", zap.Error(err))
		writeAuthError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}
	writeJSON(w, status, SessionResponse{
		User:        *user,
		AccessToken: token,
		ExpiresIn:   int(h.tokens.TTL().Seconds()),
	})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeAuthError writes an RFC 7807 problem response.
func writeAuthError(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(AuthProblem{
		Type:   "https://campaigndesk.dev/problems/auth-error",
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	})
}
