package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/HerbHall/campaigndesk/pkg/generation"
	"github.com/HerbHall/campaigndesk/pkg/generation/generationtest"
	"go.uber.org/zap"
)

func setupHandler(t *testing.T, fake *generationtest.Fake) *http.ServeMux {
	t.Helper()
	h := NewHandler(NewService(fake, zap.NewNop()), zap.NewNop())
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return mux
}

func doPost(t *testing.T, mux *http.ServeMux, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func TestHandleContent(t *testing.T) {
	mux := setupHandler(t, generationtest.NewFake("Texto gerado"))

	rr := doPost(t, mux, "/api/v1/tools/content", ContentRequest{Kind: ContentSocial, Request: "post"})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	var resp TextResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Text != "Texto gerado" {
		t.Errorf("text = %q", resp.Text)
	}
}

func TestHandleCrisis_Validation(t *testing.T) {
	tests := []struct {
		name string
		body CrisisRequest
		want int
	}{
		{"default mode", CrisisRequest{Situation: "Escândalo"}, http.StatusOK},
		{"talking points", CrisisRequest{Mode: ModeTalkingPoints, Situation: "Debate"}, http.StatusOK},
		{"unknown mode", CrisisRequest{Mode: "rumour", Situation: "x"}, http.StatusBadRequest},
		{"empty situation", CrisisRequest{Mode: ModeNews}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := setupHandler(t, generationtest.NewFake("ok"))
			rr := doPost(t, mux, "/api/v1/tools/crisis", tt.body)
			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d; body: %s", rr.Code, tt.want, rr.Body.String())
			}
		})
	}
}

func TestHandleDebate(t *testing.T) {
	mux := setupHandler(t, generationtest.NewFake(`[{"argument":"a","counterArgument":"c","keyPoints":["1"]}]`))

	rr := doPost(t, mux, "/api/v1/tools/debate", TopicRequest{Topic: "Habitação"})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	var points []DebatePoint
	if err := json.NewDecoder(rr.Body).Decode(&points); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(points) != 1 || points[0].Argument != "a" {
		t.Errorf("points = %+v", points)
	}
}

func TestHandleStrategy_InvalidReply(t *testing.T) {
	mux := setupHandler(t, generationtest.NewFake("não é JSON"))

	rr := doPost(t, mux, "/api/v1/tools/strategy", StrategyInput{Name: "n", Goals: "g"})
	if rr.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusBadGateway)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("Content-Type = %q, want application/problem+json", ct)
	}
}

func TestHandleSocial_GenerationErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"protocol", generation.NewStatusError(500, "500 Internal Server Error", "x"), http.StatusBadGateway},
		{"transport", generation.NewError(generation.ErrCodeTransport, "dial", context.DeadlineExceeded), http.StatusBadGateway},
		{"canceled", generation.NewError(generation.ErrCodeCanceled, "canceled", context.Canceled), http.StatusGatewayTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := generationtest.NewFake()
			fake.Err = tt.err
			mux := setupHandler(t, fake)

			rr := doPost(t, mux, "/api/v1/tools/social", MonitorRequest{Topic: "t"})
			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d", rr.Code, tt.want)
			}
		})
	}
}

func TestHandleSentiment(t *testing.T) {
	fake := generationtest.NewFake()
	mux := setupHandler(t, fake)

	rr := doPost(t, mux, "/api/v1/tools/sentiment", TextRequest{Text: "Excelente, parabéns"})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	var res SentimentResult
	if err := json.NewDecoder(rr.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Overall != SentimentPositive || res.Score != 70 {
		t.Errorf("result = %+v", res)
	}
	if len(fake.Calls()) != 0 {
		t.Error("sentiment must not call the generation service")
	}

	rr = doPost(t, mux, "/api/v1/tools/sentiment", TextRequest{})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("empty text status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestHandler_InvalidJSON(t *testing.T) {
	mux := setupHandler(t, generationtest.NewFake())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/tools/content", bytes.NewBufferString("{"))
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}
