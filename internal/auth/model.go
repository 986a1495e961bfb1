package auth

import "progress-service/internal/user"

// LoginRequest is the request body for login. Names are only used when the
// account is created on first login.
type LoginRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	FirstName string `json:"firstName" validate:"max=100"`
	LastName  string `json:"lastName" validate:"max=100"`

	// SessionID continues an existing session of the same user.
	SessionID string `json:"-"`
}

// LoginResponse is the response for successful authentication
type LoginResponse struct {
	AccessToken string     `json:"accessToken"`
	User        *user.User `json:"user"`
	Record      int        `json:"record"`
	Created     bool       `json:"created"`
}
