// Package settings provides the user preference endpoints.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/HerbHall/campaigndesk/internal/kv"
	"go.uber.org/zap"
)

// preferencesKey is the kv key the preferences are stored under.
const preferencesKey = "settings.preferences"

// Preferences are the toggles shown on the settings screen.
// @Description User notification preferences.
type Preferences struct {
	Notifications bool `json:"notifications" example:"true"`
	EmailAlerts   bool `json:"email_alerts" example:"false"`
}

// DefaultPreferences returns the preferences of a fresh install.
func DefaultPreferences() Preferences {
	return Preferences{Notifications: true, EmailAlerts: false}
}

// PreferencesPatch is a partial update; nil fields are left unchanged.
// @Description Partial update of user preferences.
type PreferencesPatch struct {
	Notifications *bool `json:"notifications,omitempty"`
	EmailAlerts   *bool `json:"email_alerts,omitempty"`
}

// SettingsProblemDetail represents an RFC 7807 error response for settings endpoints.
// @Description RFC 7807 Problem Details error response.
type SettingsProblemDetail struct {
	Type   string `json:"type" example:"https://campaigndesk.dev/problems/settings-error"`
	Title  string `json:"title" example:"Bad Request"`
	Status int    `json:"status" example:"400"`
	Detail string `json:"detail" example:"invalid request body"`
}

// Repository is the slice of the kv store the settings need.
type Repository interface {
	GetJSON(ctx context.Context, key string, v any) error
	SetJSON(ctx context.Context, key string, v any) error
}

// Handler provides HTTP handlers for settings endpoints.
type Handler struct {
	repo   Repository
	logger *zap.Logger
}

// NewHandler creates a settings Handler.
func NewHandler(repo Repository, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

// RegisterRoutes registers settings routes on the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/settings", h.handleGet)
	mux.HandleFunc("PUT /api/v1/settings", h.handleUpdate)
}

// Load returns the stored preferences, or the defaults when none are saved.
func (h *Handler) Load(ctx context.Context) (Preferences, error) {
	p := DefaultPreferences()
	if err := h.repo.GetJSON(ctx, preferencesKey, &p); err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return DefaultPreferences(), nil
		}
		return Preferences{}, fmt.Errorf("load preferences: %w", err)
	}
	return p, nil
}

// Update applies patch to the stored preferences and saves the result.
func (h *Handler) Update(ctx context.Context, patch PreferencesPatch) (Preferences, error) {
	p, err := h.Load(ctx)
	if err != nil {
		return Preferences{}, err
	}
	if patch.Notifications != nil {
		p.Notifications = *patch.Notifications
	}
	if patch.EmailAlerts != nil {
		p.EmailAlerts = *patch.EmailAlerts
	}
	if err := h.repo.SetJSON(ctx, preferencesKey, p); err != nil {
		return Preferences{}, fmt.Errorf("save preferences: %w", err)
	}
	return p, nil
}

// handleGet returns the current preferences.
//
//	@Summary		Get settings
//	@Description	Returns the notification preferences, with defaults when never saved.
//	@Tags			settings
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	Preferences
//	@Failure		500	{object}	SettingsProblemDetail
//	@Router			/settings [get]
func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	p, err := h.Load(r.Context())
	if err != nil {
		h.logger.Error("failed to load settings", zap.Error(err))
		writeSettingsError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// handleUpdate changes some or all preferences.
//
//	@Summary		Update settings
//	@Description	Updates the provided preference fields and returns the result.
//	@Tags			settings
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		PreferencesPatch	true	"Fields to change"
//	@Success		200		{object}	Preferences
//	@Failure		400		{object}	SettingsProblemDetail
//	@Failure		500		{object}	SettingsProblemDetail
//	@Router			/settings [put]
func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var patch PreferencesPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeSettingsError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	p, err := h.Update(r.Context(), patch)
	if err != nil {
		h.logger.Error("failed to save settings", zap.Error(err))
		writeSettingsError(w, http.StatusInternalServerError, "failed to save settings")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSettingsError(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(SettingsProblemDetail{
		Type:   "https://campaigndesk.dev/problems/settings-error",
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	})
}
