package campaign

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/HerbHall/campaigndesk/internal/auth"
	"go.uber.org/zap"
)

// Handler exposes the campaign records over HTTP.
type Handler struct {
	store  *Store
	logger *zap.Logger
}

// NewHandler creates a campaign Handler.
func NewHandler(store *Store, logger *zap.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// RegisterRoutes registers campaign routes on the mux. Reads are open to any
// session, guests included; writes need a user or admin role.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	write := auth.RequireRole(auth.RoleUser, auth.RoleAdmin)

	mux.HandleFunc("GET /api/v1/campaigns", h.handleListCampaigns)
	mux.HandleFunc("GET /api/v1/campaigns/{id}", h.handleGetCampaign)
	mux.Handle("POST /api/v1/campaigns", write(http.HandlerFunc(h.handleCreateCampaign)))
	mux.Handle("DELETE /api/v1/campaigns/{id}", write(http.HandlerFunc(h.handleDeleteCampaign)))

	mux.HandleFunc("GET /api/v1/contacts", h.handleListContacts)
	mux.HandleFunc("GET /api/v1/contacts/{id}", h.handleGetContact)
	mux.Handle("POST /api/v1/contacts", write(http.HandlerFunc(h.handleCreateContact)))
	mux.Handle("DELETE /api/v1/contacts/{id}", write(http.HandlerFunc(h.handleDeleteContact)))

	mux.HandleFunc("GET /api/v1/events", h.handleListEvents)
	mux.HandleFunc("GET /api/v1/events/{id}", h.handleGetEvent)
	mux.Handle("POST /api/v1/events", write(http.HandlerFunc(h.handleCreateEvent)))
	mux.Handle("DELETE /api/v1/events/{id}", write(http.HandlerFunc(h.handleDeleteEvent)))

	mux.HandleFunc("GET /api/v1/responses", h.handleListResponses)
	mux.Handle("POST /api/v1/responses", write(http.HandlerFunc(h.handleSaveResponse)))
	mux.Handle("DELETE /api/v1/responses/{id}", write(http.HandlerFunc(h.handleDeleteResponse)))
}

func filterFromRequest(r *http.Request, kindParam string) Filter {
	return Filter{
		Query: r.URL.Query().Get("q"),
		Kind:  r.URL.Query().Get(kindParam),
	}
}

// handleListCampaigns lists campaigns.
//
//	@Summary		List campaigns
//	@Tags			campaigns
//	@Produce		json
//	@Security		BearerAuth
//	@Param			q		query	string	false	"Search name and description"
//	@Param			status	query	string	false	"Filter by status"
//	@Success		200		{array}	Campaign
//	@Router			/campaigns [get]
func (h *Handler) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	out, err := h.store.ListCampaigns(r.Context(), filterFromRequest(r, "status"))
	if err != nil {
		h.writeStoreError(w, "list campaigns", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// handleGetCampaign returns a campaign.
//
//	@Summary		Get campaign
//	@Tags			campaigns
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Campaign ID"
//	@Success		200	{object}	Campaign
//	@Failure		404	{object}	map[string]any
//	@Router			/campaigns/{id} [get]
func (h *Handler) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	c, err := h.store.GetCampaign(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeStoreError(w, "get campaign", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// handleCreateCampaign creates a campaign.
//
//	@Summary		Create campaign
//	@Tags			campaigns
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			body	body		Campaign	true	"Campaign"
//	@Success		201		{object}	Campaign
//	@Failure		400		{object}	map[string]any
//	@Router			/campaigns [post]
func (h *Handler) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	var c Campaign
	if !decodeBody(w, r, &c) {
		return
	}
	if err := h.store.CreateCampaign(r.Context(), &c); err != nil {
		h.writeStoreError(w, "create campaign", err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// handleDeleteCampaign deletes a campaign.
//
//	@Summary		Delete campaign
//	@Tags			campaigns
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Campaign ID"
//	@Success		204
//	@Failure		404	{object}	map[string]any
//	@Router			/campaigns/{id} [delete]
func (h *Handler) handleDeleteCampaign(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteCampaign(r.Context(), r.PathValue("id")); err != nil {
		h.writeStoreError(w, "delete campaign", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListContacts lists contacts.
//
//	@Summary		List contacts
//	@Tags			contacts
//	@Produce		json
//	@Security		BearerAuth
//	@Param			q		query	string	false	"Search name, email and location"
//	@Param			level	query	string	false	"Filter by level"
//	@Success		200		{array}	Contact
//	@Router			/contacts [get]
func (h *Handler) handleListContacts(w http.ResponseWriter, r *http.Request) {
	out, err := h.store.ListContacts(r.Context(), filterFromRequest(r, "level"))
	if err != nil {
		h.writeStoreError(w, "list contacts", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// handleGetContact returns a contact.
//
//	@Summary	Get contact
//	@Tags		contacts
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Contact ID"
//	@Success	200	{object}	Contact
//	@Router		/contacts/{id} [get]
func (h *Handler) handleGetContact(w http.ResponseWriter, r *http.Request) {
	c, err := h.store.GetContact(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeStoreError(w, "get contact", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// handleCreateContact creates a contact.
//
//	@Summary	Create contact
//	@Tags		contacts
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		body	body		Contact	true	"Contact"
//	@Success	201		{object}	Contact
//	@Router		/contacts [post]
func (h *Handler) handleCreateContact(w http.ResponseWriter, r *http.Request) {
	var c Contact
	if !decodeBody(w, r, &c) {
		return
	}
	if err := h.store.CreateContact(r.Context(), &c); err != nil {
		h.writeStoreError(w, "create contact", err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// handleDeleteContact deletes a contact.
//
//	@Summary	Delete contact
//	@Tags		contacts
//	@Security	BearerAuth
//	@Param		id	path	string	true	"Contact ID"
//	@Success	204
//	@Router		/contacts/{id} [delete]
func (h *Handler) handleDeleteContact(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteContact(r.Context(), r.PathValue("id")); err != nil {
		h.writeStoreError(w, "delete contact", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListEvents lists agenda events.
//
//	@Summary	List events
//	@Tags		events
//	@Produce	json
//	@Security	BearerAuth
//	@Param		q		query	string	false	"Search title and location"
//	@Param		type	query	string	false	"Filter by event type"
//	@Success	200		{array}	Event
//	@Router		/events [get]
func (h *Handler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	out, err := h.store.ListEvents(r.Context(), filterFromRequest(r, "type"))
	if err != nil {
		h.writeStoreError(w, "list events", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	e, err := h.store.GetEvent(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeStoreError(w, "get event", err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// handleCreateEvent creates an agenda event.
//
//	@Summary	Create event
//	@Tags		events
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		body	body		Event	true	"Event"
//	@Success	201		{object}	Event
//	@Router		/events [post]
func (h *Handler) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var e Event
	if !decodeBody(w, r, &e) {
		return
	}
	if err := h.store.CreateEvent(r.Context(), &e); err != nil {
		h.writeStoreError(w, "create event", err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (h *Handler) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteEvent(r.Context(), r.PathValue("id")); err != nil {
		h.writeStoreError(w, "delete event", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListResponses lists saved briefings, newest first.
//
//	@Summary	List saved responses
//	@Tags		responses
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{array}	SavedResponse
//	@Router		/responses [get]
func (h *Handler) handleListResponses(w http.ResponseWriter, r *http.Request) {
	out, err := h.store.ListResponses(r.Context())
	if err != nil {
		h.writeStoreError(w, "list responses", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// handleSaveResponse stores a generated briefing.
//
//	@Summary	Save response
//	@Tags		responses
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		body	body		SavedResponse	true	"Briefing"
//	@Success	201		{object}	SavedResponse
//	@Router		/responses [post]
func (h *Handler) handleSaveResponse(w http.ResponseWriter, r *http.Request) {
	var sr SavedResponse
	if !decodeBody(w, r, &sr) {
		return
	}
	if err := h.store.SaveResponse(r.Context(), &sr); err != nil {
		h.writeStoreError(w, "save response", err)
		return
	}
	writeJSON(w, http.StatusCreated, sr)
}

func (h *Handler) handleDeleteResponse(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteResponse(r.Context(), r.PathValue("id")); err != nil {
		h.writeStoreError(w, "delete response", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// -- helpers --

func (h *Handler) writeStoreError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalid):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Warn("campaign store failure", zap.String("op", op), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to "+op)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"type":   "https://campaigndesk.dev/problems/" + http.StatusText(status),
		"title":  http.StatusText(status),
		"status": status,
		"detail": detail,
	})
}
