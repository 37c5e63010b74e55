// Package api defines the JSON bodies exchanged between the gigbook client
// and the remote API. Request types carry validator tags shared by the
// client-side input checks and the server handlers.
package api

import "time"

// Endpoint paths.
const (
	PathSignUp  = "/auth/signup"
	PathLogin   = "/auth/login"
	PathRefresh = "/auth/refresh"
	PathLogout  = "/auth/logout"
	PathMe      = "/auth/me"
	PathHealth  = "/health"
	PathLogs    = "/logs"
)

// Password limits. The upper bound keeps bcrypt on the server within its
// 72 byte input limit.
const (
	MinPasswordLen = 8
	MaxPasswordLen = 72
)

type SignUpRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Username string `json:"username" validate:"required,min=3,max=30,alphanumunicode"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=72"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refreshToken,omitempty"`
}

type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username,omitempty"`
}

// AuthResponse is returned by signup and login.
type AuthResponse struct {
	User         User   `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// TokenPair is returned by refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

// LogRequest mirrors a locally saved show log.
type LogRequest struct {
	ArtistName string    `json:"artistName" validate:"required,max=200"`
	VenueName  string    `json:"venueName" validate:"required,max=200"`
	City       string    `json:"city,omitempty" validate:"max=100"`
	Date       time.Time `json:"date" validate:"required"`
	TourName   string    `json:"tourName,omitempty" validate:"max=200"`
	Rating     *float64  `json:"rating,omitempty" validate:"omitempty,min=0,max=5"`
	Note       string    `json:"note,omitempty" validate:"max=2000"`
}

type Log struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
	LogRequest
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error string `json:"error"`
}
