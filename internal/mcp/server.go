// Package mcp exposes the campaign tools and campaign data to external AI
// clients over the Model Context Protocol, on streamable HTTP or stdio.
package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/HerbHall/campaigndesk/internal/auth"
	"github.com/HerbHall/campaigndesk/internal/campaign"
	"github.com/HerbHall/campaigndesk/internal/tools"
	"github.com/HerbHall/campaigndesk/internal/version"
	"go.uber.org/zap"
)

// Transport labels recorded in the audit log.
const (
	TransportHTTP  = "http"
	TransportStdio = "stdio"
)

// Config holds the MCP settings.
type Config struct {
	// AuditRetention is how long tool call records are kept. Zero keeps
	// them forever.
	AuditRetention time.Duration `mapstructure:"audit_retention"`
}

// DefaultConfig keeps thirty days of audit records.
func DefaultConfig() Config {
	return Config{AuditRetention: 30 * 24 * time.Hour}
}

// AuditPruneInterval is how often expired audit records are removed.
const AuditPruneInterval = time.Hour

// CampaignQuerier abstracts read access to campaign data.
// Implemented by campaign.Store.
type CampaignQuerier interface {
	ListCampaigns(ctx context.Context, f campaign.Filter) ([]campaign.Campaign, error)
	ListContacts(ctx context.Context, f campaign.Filter) ([]campaign.Contact, error)
	ListEvents(ctx context.Context, f campaign.Filter) ([]campaign.Event, error)
}

// Server is the MCP server. It holds one sdk server per transport so
// audit records carry the transport they arrived on.
type Server struct {
	tools     *tools.Service
	campaigns CampaignQuerier
	audit     *AuditStore
	logger    *zap.Logger

	http  *sdkmcp.Server
	stdio *sdkmcp.Server
}

// New creates the MCP server. campaigns and audit may be nil; the data
// tools then report that campaign data is unavailable and calls are not
// audited.
func New(svc *tools.Service, campaigns CampaignQuerier, audit *AuditStore, logger *zap.Logger) *Server {
	s := &Server{
		tools:     svc,
		campaigns: campaigns,
		audit:     audit,
		logger:    logger,
	}
	s.http = s.newSDKServer(TransportHTTP)
	s.stdio = s.newSDKServer(TransportStdio)
	return s
}

func (s *Server) newSDKServer(transport string) *sdkmcp.Server {
	srv := sdkmcp.NewServer(
		&sdkmcp.Implementation{
			Name:    "campaigndesk",
			Version: version.Short(),
		},
		nil,
	)
	s.registerTools(srv, transport)
	return srv
}

// RegisterRoutes mounts the streamable HTTP endpoint and the audit log.
// The MCP endpoint sits behind the bearer-token middleware like the rest
// of /api/; guests may not call tools through it.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	handler := sdkmcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *sdkmcp.Server { return s.http },
		nil,
	)
	writers := auth.RequireRole(auth.RoleUser, auth.RoleAdmin)
	mux.Handle("POST /api/v1/mcp", writers(handler))
	mux.Handle("GET /api/v1/mcp", writers(handler))
	mux.Handle("DELETE /api/v1/mcp", writers(handler))
	mux.Handle("GET /api/v1/mcp/audit", auth.RequireRole(auth.RoleAdmin)(http.HandlerFunc(s.handleAuditList)))
}

// RunStdio serves MCP over stdin/stdout until ctx is canceled or the
// client disconnects.
func (s *Server) RunStdio(ctx context.Context) error {
	return s.stdio.Run(ctx, &sdkmcp.StdioTransport{})
}

// AuditListResponse is the body of GET /mcp/audit.
type AuditListResponse struct {
	Entries []AuditEntry `json:"entries"`
	Total   int          `json:"total"`
	Limit   int          `json:"limit"`
	Offset  int          `json:"offset"`
}

// handleAuditList returns paginated MCP tool call audit entries.
//
//	@Summary		List MCP audit log entries
//	@Description	Returns paginated MCP tool call audit entries, newest first.
//	@Tags			mcp
//	@Produce		json
//	@Security		BearerAuth
//	@Param			tool_name	query		string	false	"Filter by tool name"
//	@Param			limit		query		int		false	"Page size"	default(50)
//	@Param			offset		query		int		false	"Offset"	default(0)
//	@Success		200			{object}	AuditListResponse
//	@Router			/mcp/audit [get]
func (s *Server) handleAuditList(w http.ResponseWriter, r *http.Request) {
	if s.audit == nil {
		http.Error(w, `{"error":"audit store not available"}`, http.StatusServiceUnavailable)
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	offset := 0
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	entries, total, err := s.audit.List(r.Context(), r.URL.Query().Get("tool_name"), limit, offset)
	if err != nil {
		s.logger.Error("failed to query audit log", zap.Error(err))
		http.Error(w, `{"error":"failed to query audit log"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(AuditListResponse{
		Entries: entries,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
	}); err != nil {
		s.logger.Error("failed to encode audit response", zap.Error(err))
	}
}

// auditToolCall persists a tool invocation record. Failures are logged and
// never affect the tool result.
func (s *Server) auditToolCall(ctx context.Context, transport, toolName string, input any, start time.Time, callErr error) {
	toolCallsTotal.WithLabelValues(toolName, outcome(callErr)).Inc()
	if s.audit == nil {
		return
	}
	entry := AuditEntry{
		Timestamp:  start,
		ToolName:   toolName,
		InputJSON:  writeToolJSON(input),
		Transport:  transport,
		DurationMs: time.Since(start).Milliseconds(),
		Success:    callErr == nil,
	}
	if callErr != nil {
		entry.ErrorMessage = callErr.Error()
	}
	// The request context may already be done once the tool returns.
	if err := s.audit.Insert(context.WithoutCancel(ctx), entry); err != nil {
		s.logger.Warn("failed to write audit log", zap.Error(err))
	}
}

// writeToolJSON marshals v to JSON for tool responses.
func writeToolJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return `{"error":"failed to marshal response"}`
	}
	return string(data)
}
