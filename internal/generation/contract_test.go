package generation

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/HerbHall/campaigndesk/pkg/generation"
	"github.com/HerbHall/campaigndesk/pkg/generation/generationtest"
)

// echoHandler streams back the words of the last message, one delta per word.
func echoHandler(w http.ResponseWriter, r *http.Request) {
	var req generation.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Messages) == 0 {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	last := req.Messages[len(req.Messages)-1].Content.Text()
	for _, word := range strings.Fields(last) {
		io.WriteString(w, delta(word+" ")+"\n") //nolint:errcheck
	}
}

func TestContract(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /agent/chat", echoHandler)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	generationtest.TestGeneratorContract(t, func() generation.Generator {
		return newTestClient(t, srv.URL, ModeStream, nil)
	})
}
