package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/HerbHall/campaigndesk/internal/campaign"
	"github.com/HerbHall/campaigndesk/internal/tools"
)

// errNoCampaignData is returned by the data tools when no querier is wired.
var errNoCampaignData = errors.New("campaign data not available")

// Tool input types.

type contentInput struct {
	Kind    string `json:"kind,omitempty" jsonschema:"Content kind: speech, social, response or analysis (default analysis)"`
	Request string `json:"request" jsonschema:"What the content should be about"`
}

type crisisInput struct {
	Mode      string `json:"mode,omitempty" jsonschema:"Briefing mode: crisis, interview, news or talking-points (default crisis)"`
	Situation string `json:"situation" jsonschema:"Description of the situation to respond to"`
}

type debateInput struct {
	Topic string `json:"topic" jsonschema:"Debate topic"`
}

type strategyInput struct {
	Name   string `json:"name" jsonschema:"Campaign name"`
	Goals  string `json:"goals" jsonschema:"Campaign goals"`
	Target string `json:"target,omitempty" jsonschema:"Target audience"`
	Budget string `json:"budget,omitempty" jsonschema:"Available budget"`
}

type socialInput struct {
	Topic    string `json:"topic" jsonschema:"Topic to monitor"`
	Keywords string `json:"keywords,omitempty" jsonschema:"Comma-separated keywords"`
}

type sentimentInput struct {
	Text string `json:"text" jsonschema:"Text to analyze"`
}

type listInput struct {
	Query string `json:"query,omitempty" jsonschema:"Case-insensitive search text"`
	Kind  string `json:"kind,omitempty" jsonschema:"Campaign status, contact level or event type to filter by"`
}

// toolFunc produces the text of a tool result.
type toolFunc[In any] func(ctx context.Context, in In) (string, error)

// addTool registers fn on srv, recording each call in the audit log.
// Failures become error results so the client model can read them.
func addTool[In any](s *Server, srv *sdkmcp.Server, transport string, tool *sdkmcp.Tool, fn toolFunc[In]) {
	sdkmcp.AddTool(srv, tool, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in In) (*sdkmcp.CallToolResult, any, error) {
		start := time.Now()
		text, err := fn(ctx, in)
		s.auditToolCall(ctx, transport, tool.Name, in, start, err)
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}
		return textResult(text), nil, nil
	})
}

// registerTools adds all MCP tools to srv.
func (s *Server) registerTools(srv *sdkmcp.Server, transport string) {
	addTool(s, srv, transport, &sdkmcp.Tool{
		Name:        "generate_content",
		Description: "Write campaign content (speech, social media post, public response or analysis) in Portuguese for the given request.",
	}, s.generateContent)

	addTool(s, srv, transport, &sdkmcp.Tool{
		Name:        "crisis_response",
		Description: "Prepare a communication briefing for a situation: crisis management, interview preparation, news response or talking points.",
	}, s.crisisResponse)

	addTool(s, srv, transport, &sdkmcp.Tool{
		Name:        "debate_prep",
		Description: "Prepare three debate arguments for a topic, each with the likely counter-argument and key points.",
	}, s.debatePrep)

	addTool(s, srv, transport, &sdkmcp.Tool{
		Name:        "campaign_strategy",
		Description: "Build a campaign plan (objective, audience, channels, timeline, budget, key actions and metrics) from a name and goals.",
	}, s.campaignStrategy)

	addTool(s, srv, transport, &sdkmcp.Tool{
		Name:        "social_monitor",
		Description: "Produce a social media monitoring report for a topic: overall sentiment, hashtags, mentions, threats and opportunities.",
	}, s.socialMonitor)

	addTool(s, srv, transport, &sdkmcp.Tool{
		Name:        "analyze_sentiment",
		Description: "Score the sentiment of Portuguese text locally with a keyword heuristic. Does not call the generation service.",
	}, s.analyzeSentiment)

	addTool(s, srv, transport, &sdkmcp.Tool{
		Name:        "list_campaigns",
		Description: "List campaigns, optionally filtered by search text and status (active, planned, completed).",
	}, s.listCampaigns)

	addTool(s, srv, transport, &sdkmcp.Tool{
		Name:        "list_contacts",
		Description: "List contacts, optionally filtered by search text and level (supporter, volunteer, donor, leader).",
	}, s.listContacts)

	addTool(s, srv, transport, &sdkmcp.Tool{
		Name:        "list_events",
		Description: "List events in date order, optionally filtered by search text and type (rally, meeting, canvassing, other).",
	}, s.listEvents)
}

func (s *Server) generateContent(ctx context.Context, in contentInput) (string, error) {
	return s.tools.Content(ctx, tools.ContentKind(in.Kind), in.Request)
}

func (s *Server) crisisResponse(ctx context.Context, in crisisInput) (string, error) {
	mode := tools.ResponseMode(in.Mode)
	if mode == "" {
		mode = tools.ModeCrisis
	}
	if !tools.ValidModes[mode] {
		return "", fmt.Errorf("invalid mode %q", in.Mode)
	}
	return s.tools.CrisisResponse(ctx, mode, in.Situation)
}

func (s *Server) debatePrep(ctx context.Context, in debateInput) (string, error) {
	points, err := s.tools.DebatePrep(ctx, in.Topic)
	if err != nil {
		return "", err
	}
	return writeToolJSON(points), nil
}

func (s *Server) campaignStrategy(ctx context.Context, in strategyInput) (string, error) {
	plan, err := s.tools.Strategy(ctx, tools.StrategyInput{
		Name:   in.Name,
		Goals:  in.Goals,
		Target: in.Target,
		Budget: in.Budget,
	})
	if err != nil {
		return "", err
	}
	return writeToolJSON(plan), nil
}

func (s *Server) socialMonitor(ctx context.Context, in socialInput) (string, error) {
	report, err := s.tools.SocialMonitor(ctx, in.Topic, in.Keywords)
	if err != nil {
		return "", err
	}
	return writeToolJSON(report), nil
}

func (s *Server) analyzeSentiment(_ context.Context, in sentimentInput) (string, error) {
	if in.Text == "" {
		return "", tools.ErrEmptyInput
	}
	return writeToolJSON(tools.Sentiment(in.Text)), nil
}

func (s *Server) listCampaigns(ctx context.Context, in listInput) (string, error) {
	if s.campaigns == nil {
		return "", errNoCampaignData
	}
	list, err := s.campaigns.ListCampaigns(ctx, campaign.Filter{Query: in.Query, Kind: in.Kind})
	if err != nil {
		return "", fmt.Errorf("list campaigns: %w", err)
	}
	return writeToolJSON(list), nil
}

func (s *Server) listContacts(ctx context.Context, in listInput) (string, error) {
	if s.campaigns == nil {
		return "", errNoCampaignData
	}
	list, err := s.campaigns.ListContacts(ctx, campaign.Filter{Query: in.Query, Kind: in.Kind})
	if err != nil {
		return "", fmt.Errorf("list contacts: %w", err)
	}
	return writeToolJSON(list), nil
}

func (s *Server) listEvents(ctx context.Context, in listInput) (string, error) {
	if s.campaigns == nil {
		return "", errNoCampaignData
	}
	list, err := s.campaigns.ListEvents(ctx, campaign.Filter{Query: in.Query, Kind: in.Kind})
	if err != nil {
		return "", fmt.Errorf("list events: %w", err)
	}
	return writeToolJSON(list), nil
}

// textResult creates a successful CallToolResult with text content.
func textResult(text string) *sdkmcp.CallToolResult {
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{
			&sdkmcp.TextContent{Text: text},
		},
	}
}

// errorResult creates an error CallToolResult with text content.
func errorResult(msg string) *sdkmcp.CallToolResult {
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{
			&sdkmcp.TextContent{Text: msg},
		},
		IsError: true,
	}
}
