package auth

// LoginRequest is the request body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" example:"admin@app.com"`
	Password string `json:"password" example:"admin123"`
}

// RegisterRequest is the request body for POST /auth/register.
type RegisterRequest struct {
	Name     string `json:"name" example:"Maria Santos"`
	Email    string `json:"email" example:"maria@example.com"`
	Password string `json:"password" example:"segredo123"`
}

// UpdateUserRequest is the request body for PATCH /auth/me.
type UpdateUserRequest struct {
	Name  string `json:"name,omitempty" example:"Maria S."`
	Email string `json:"email,omitempty" example:"maria@example.com"`
}

// SessionResponse is returned by every sign-in endpoint.
type SessionResponse struct {
	User        User   `json:"user"`
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"` // seconds
}

// AuthProblem is an RFC 7807 error body.
type AuthProblem struct {
	Type   string `json:"type" example:"https://campaigndesk.dev/problems/auth-error"`
	Title  string `json:"title" example:"Unauthorized"`
	Status int    `json:"status" example:"401"`
	Detail string `json:"detail" example:"invalid or expired access token"`
}
