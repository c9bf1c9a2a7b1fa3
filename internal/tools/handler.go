package tools

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/HerbHall/campaigndesk/pkg/generation"
	"go.uber.org/zap"
)

// ContentRequest is the body of POST /tools/content.
type ContentRequest struct {
	Kind    ContentKind `json:"kind" example:"speech"`
	Request string      `json:"request" example:"Discurso para comício sobre educação"`
}

// CrisisRequest is the body of POST /tools/crisis.
type CrisisRequest struct {
	Mode      ResponseMode `json:"mode" example:"crisis"`
	Situation string       `json:"situation"`
}

// TopicRequest is the body of POST /tools/debate.
type TopicRequest struct {
	Topic string `json:"topic" example:"Reforma do sistema de saúde"`
}

// MonitorRequest is the body of POST /tools/social.
type MonitorRequest struct {
	Topic    string `json:"topic"`
	Keywords string `json:"keywords,omitempty"`
}

// TextRequest is the body of POST /tools/sentiment.
type TextRequest struct {
	Text string `json:"text"`
}

// TextResponse wraps a generated text reply.
type TextResponse struct {
	Text string `json:"text"`
}

// Handler exposes the tools over HTTP.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates a tools Handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// RegisterRoutes registers tool routes on the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/tools/content", h.handleContent)
	mux.HandleFunc("POST /api/v1/tools/crisis", h.handleCrisis)
	mux.HandleFunc("POST /api/v1/tools/debate", h.handleDebate)
	mux.HandleFunc("POST /api/v1/tools/strategy", h.handleStrategy)
	mux.HandleFunc("POST /api/v1/tools/social", h.handleSocial)
	mux.HandleFunc("POST /api/v1/tools/sentiment", h.handleSentiment)
}

// handleContent generates campaign content.
//
//	@Summary		Generate content
//	@Tags			tools
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		ContentRequest	true	"Content request"
//	@Success		200		{object}	TextResponse
//	@Failure		400		{object}	map[string]any
//	@Failure		502		{object}	map[string]any
//	@Router			/tools/content [post]
func (h *Handler) handleContent(w http.ResponseWriter, r *http.Request) {
	var req ContentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	text, err := h.svc.Content(r.Context(), req.Kind, req.Request)
	if err != nil {
		h.writeToolError(w, "content", err)
		return
	}
	writeJSON(w, http.StatusOK, TextResponse{Text: text})
}

// handleCrisis drafts a crisis, interview, news or talking-points briefing.
//
//	@Summary		Strategic response
//	@Tags			tools
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		CrisisRequest	true	"Situation"
//	@Success		200		{object}	TextResponse
//	@Failure		400		{object}	map[string]any
//	@Failure		502		{object}	map[string]any
//	@Router			/tools/crisis [post]
func (h *Handler) handleCrisis(w http.ResponseWriter, r *http.Request) {
	var req CrisisRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Mode == "" {
		req.Mode = ModeCrisis
	}
	if !ValidModes[req.Mode] {
		writeError(w, http.StatusBadRequest, "mode must be crisis, interview, news, or talking-points")
		return
	}
	text, err := h.svc.CrisisResponse(r.Context(), req.Mode, req.Situation)
	if err != nil {
		h.writeToolError(w, "crisis", err)
		return
	}
	writeJSON(w, http.StatusOK, TextResponse{Text: text})
}

// handleDebate prepares debate points.
//
//	@Summary		Debate preparation
//	@Tags			tools
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		TopicRequest	true	"Debate topic"
//	@Success		200		{array}		DebatePoint
//	@Failure		400		{object}	map[string]any
//	@Failure		502		{object}	map[string]any
//	@Router			/tools/debate [post]
func (h *Handler) handleDebate(w http.ResponseWriter, r *http.Request) {
	var req TopicRequest
	if !decodeBody(w, r, &req) {
		return
	}
	points, err := h.svc.DebatePrep(r.Context(), req.Topic)
	if err != nil {
		h.writeToolError(w, "debate", err)
		return
	}
	writeJSON(w, http.StatusOK, points)
}

// handleStrategy builds a campaign strategy.
//
//	@Summary		Campaign strategy
//	@Tags			tools
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		StrategyInput	true	"Campaign"
//	@Success		200		{object}	Strategy
//	@Failure		400		{object}	map[string]any
//	@Failure		502		{object}	map[string]any
//	@Router			/tools/strategy [post]
func (h *Handler) handleStrategy(w http.ResponseWriter, r *http.Request) {
	var req StrategyInput
	if !decodeBody(w, r, &req) {
		return
	}
	out, err := h.svc.Strategy(r.Context(), req)
	if err != nil {
		h.writeToolError(w, "strategy", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// handleSocial produces a social monitoring report.
//
//	@Summary		Social monitoring
//	@Tags			tools
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		MonitorRequest	true	"Topic and keywords"
//	@Success		200		{object}	MonitorReport
//	@Failure		400		{object}	map[string]any
//	@Failure		502		{object}	map[string]any
//	@Router			/tools/social [post]
func (h *Handler) handleSocial(w http.ResponseWriter, r *http.Request) {
	var req MonitorRequest
	if !decodeBody(w, r, &req) {
		return
	}
	out, err := h.svc.SocialMonitor(r.Context(), req.Topic, req.Keywords)
	if err != nil {
		h.writeToolError(w, "social", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// handleSentiment scores text locally.
//
//	@Summary		Sentiment analysis
//	@Tags			tools
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		TextRequest	true	"Text to analyse"
//	@Success		200		{object}	SentimentResult
//	@Failure		400		{object}	map[string]any
//	@Router			/tools/sentiment [post]
func (h *Handler) handleSentiment(w http.ResponseWriter, r *http.Request) {
	var req TextRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, ErrEmptyInput.Error())
		return
	}
	writeJSON(w, http.StatusOK, Sentiment(req.Text))
}

// writeToolError maps tool and generation failures to HTTP statuses.
func (h *Handler) writeToolError(w http.ResponseWriter, tool string, err error) {
	switch {
	case errors.Is(err, ErrEmptyInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrInvalidFormat):
		writeError(w, http.StatusBadGateway, "the generation service returned an unexpected format")
	case generation.IsCanceled(err):
		writeError(w, http.StatusGatewayTimeout, "generation canceled or timed out")
	case isGenerationError(err):
		h.logger.Warn("generation failed", zap.String("tool", tool), zap.Error(err))
		writeError(w, http.StatusBadGateway, "generation service unavailable")
	default:
		h.logger.Error("tool failed", zap.String("tool", tool), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "tool failed")
	}
}

func isGenerationError(err error) bool {
	var ge *generation.Error
	return errors.As(err, &ge)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
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
		"type":   "https://campaigndesk.dev/problems/tool-error",
		"title":  http.StatusText(status),
		"status": status,
		"detail": detail,
	})
}
