package client

import (
	"context"

	"github.com/dmitrijs2005/gigbook/internal/api"
)

// Client is the remote API contract consumed by the session layer.
type Client interface {
	SignUp(ctx context.Context, req api.SignUpRequest) (*api.AuthResponse, error)
	Login(ctx context.Context, req api.LoginRequest) (*api.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*api.TokenPair, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*api.User, error)
	Ping(ctx context.Context) error
	CreateLog(ctx context.Context, req api.LogRequest) (*api.Log, error)
	ListLogs(ctx context.Context) ([]api.Log, error)
}

// ExpiryNotifier is implemented by clients that report a remote session lost
// to a failed token refresh.
type ExpiryNotifier interface {
	OnSessionExpired(fn func(ctx context.Context))
}
