package server

import (
	"encoding/json"
	"net/http"
)

// problemBase prefixes every problem type URI.
const problemBase = "https://campaigndesk.dev/problems/"

// Problem type URIs written by the server's own middleware.
const (
	ProblemTypeInternal    = problemBase + "internal-error"
	ProblemTypeRateLimited = problemBase + "rate-limited"
	ProblemTypeReadOnly    = problemBase + "read-only"
)

// Problem is an RFC 7807 Problem Details body.
type Problem struct {
	Type     string `json:"type" example:"https://campaigndesk.dev/problems/tool-error"`
	Title    string `json:"title" example:"Bad Request"`
	Status   int    `json:"status" example:"400"`
	Detail   string `json:"detail,omitempty" example:"situation is required"`
	Instance string `json:"instance,omitempty" example:"/api/v1/tools/crisis"`
}

// WriteProblem writes p as application/problem+json. An empty Title is
// filled from the status text.
func WriteProblem(w http.ResponseWriter, p Problem) {
	if p.Title == "" {
		p.Title = http.StatusText(p.Status)
	}
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// InternalError writes a 500 problem response.
func InternalError(w http.ResponseWriter, detail, instance string) {
	WriteProblem(w, Problem{Type: ProblemTypeInternal, Status: http.StatusInternalServerError, Detail: detail, Instance: instance})
}

// MethodNotAllowed writes the 405 returned for writes in read-only mode.
func MethodNotAllowed(w http.ResponseWriter, detail, instance string) {
	WriteProblem(w, Problem{Type: ProblemTypeReadOnly, Status: http.StatusMethodNotAllowed, Detail: detail, Instance: instance})
}

// RateLimited writes a 429 problem response.
func RateLimited(w http.ResponseWriter, detail, instance string) {
	WriteProblem(w, Problem{Type: ProblemTypeRateLimited, Status: http.StatusTooManyRequests, Detail: detail, Instance: instance})
}
