// Package tools turns campaign tasks into prompts for the generation
// service and parses the structured replies. Sentiment scoring is local.
package tools

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/HerbHall/campaigndesk/pkg/generation"
	"go.uber.org/zap"
)

// maxKeyPoints caps the key points kept per debate argument.
const maxKeyPoints = 3

// DebatePoint is one prepared argument.
type DebatePoint struct {
	Argument        string   `json:"argument"`
	CounterArgument string   `json:"counterArgument"`
	KeyPoints       []string `json:"keyPoints"`
}

// StrategyInput describes the campaign a strategy is built for.
type StrategyInput struct {
	Name   string `json:"name"`
	Goals  string `json:"goals"`
	Target string `json:"target,omitempty"`
	Budget string `json:"budget,omitempty"`
}

// Strategy is the generated campaign plan.
type Strategy struct {
	Objective      string   `json:"objective"`
	TargetAudience string   `json:"targetAudience"`
	Channels       []string `json:"channels"`
	Timeline       string   `json:"timeline"`
	Budget         string   `json:"budget"`
	KeyActions     []string `json:"keyActions"`
	Metrics        []string `json:"metrics"`
}

// SocialTrend is one hashtag in a monitoring report.
type SocialTrend struct {
	Hashtag    string `json:"hashtag"`
	Sentiment  string `json:"sentiment"`
	Volume     int    `json:"volume"`
	Engagement string `json:"engagement"`
}

// MonitorReport is the generated social media monitoring report.
type MonitorReport struct {
	OverallSentiment string        `json:"overallSentiment"`
	TopHashtags      []SocialTrend `json:"topHashtags"`
	KeyMentions      []string      `json:"keyMentions"`
	Recommendations  []string      `json:"recommendations"`
	Threats          []string      `json:"threats"`
	Opportunities    []string      `json:"opportunities"`
}

// Service runs the generation-backed tools.
type Service struct {
	gen    generation.Generator
	logger *zap.Logger
}

// NewService creates a tools Service on top of gen.
func NewService(gen generation.Generator, logger *zap.Logger) *Service {
	return &Service{gen: gen, logger: logger}
}

// Content writes a speech, social post or reply for request.
func (s *Service) Content(ctx context.Context, kind ContentKind, request string, opts ...generation.CallOption) (string, error) {
	if strings.TrimSpace(request) == "" {
		return "", ErrEmptyInput
	}
	return s.run(ctx, "content", contentPrompt(kind, request), opts...)
}

// CrisisResponse drafts a briefing for situation in the given mode.
func (s *Service) CrisisResponse(ctx context.Context, mode ResponseMode, situation string, opts ...generation.CallOption) (string, error) {
	if strings.TrimSpace(situation) == "" {
		return "", ErrEmptyInput
	}
	s.logger.Debug("generating crisis response", zap.String("mode", string(mode)))
	return s.run(ctx, "crisis", crisisPrompt(mode, situation), opts...)
}

// DebatePrep prepares arguments for topic. The reply must be a non-empty
// JSON array; key points beyond the third are dropped.
func (s *Service) DebatePrep(ctx context.Context, topic string) ([]DebatePoint, error) {
	if strings.TrimSpace(topic) == "" {
		return nil, ErrEmptyInput
	}
	reply, err := s.run(ctx, "debate", debatePrompt(topic))
	if err != nil {
		return nil, err
	}

	var points []DebatePoint
	if err := decodeReply(reply, &points); err != nil {
		s.logger.Warn("failed to parse debate reply", zap.Error(err))
		toolErrorsTotal.WithLabelValues("debate").Inc()
		return nil, err
	}
	if len(points) == 0 {
		toolErrorsTotal.WithLabelValues("debate").Inc()
		return nil, fmt.Errorf("%w: expected a non-empty array", ErrInvalidFormat)
	}
	for i := range points {
		if len(points[i].KeyPoints) > maxKeyPoints {
			points[i].KeyPoints = points[i].KeyPoints[:maxKeyPoints]
		}
	}
	return points, nil
}

// Strategy builds a campaign plan. Name and goals are required.
func (s *Service) Strategy(ctx context.Context, in StrategyInput) (*Strategy, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Goals) == "" {
		return nil, fmt.Errorf("%w: campaign name and goals", ErrEmptyInput)
	}
	reply, err := s.run(ctx, "strategy", strategyPrompt(in))
	if err != nil {
		return nil, err
	}

	var out Strategy
	if err := decodeReply(reply, &out); err != nil {
		s.logger.Warn("failed to parse strategy reply", zap.Error(err))
		toolErrorsTotal.WithLabelValues("strategy").Inc()
		return nil, err
	}
	return &out, nil
}

// SocialMonitor produces a monitoring report for topic.
func (s *Service) SocialMonitor(ctx context.Context, topic, keywords string) (*MonitorReport, error) {
	if strings.TrimSpace(topic) == "" {
		return nil, fmt.Errorf("%w: campaign topic", ErrEmptyInput)
	}
	reply, err := s.run(ctx, "social", monitorPrompt(topic, keywords))
	if err != nil {
		return nil, err
	}

	var out MonitorReport
	if err := decodeReply(reply, &out); err != nil {
		s.logger.Warn("failed to parse monitor reply", zap.Error(err))
		toolErrorsTotal.WithLabelValues("social").Inc()
		return nil, err
	}
	return &out, nil
}

func (s *Service) run(ctx context.Context, tool, prompt string, opts ...generation.CallOption) (string, error) {
	toolRequestsTotal.WithLabelValues(tool).Inc()
	reply, err := s.gen.Generate(ctx, prompt, opts...)
	if err != nil {
		toolErrorsTotal.WithLabelValues(tool).Inc()
		return "", fmt.Errorf("%s: %w", tool, err)
	}
	s.logger.Debug("reply received", zap.String("tool", tool), zap.String("preview", preview(reply, 200)))
	return reply, nil
}

// preview cuts s to at most n bytes on a rune boundary.
func preview(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
