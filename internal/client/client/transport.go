package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"

	"github.com/dmitrijs2005/gigbook/internal/api"
	"github.com/dmitrijs2005/gigbook/internal/client/credentials"
	"github.com/dmitrijs2005/gigbook/internal/logging"
	"golang.org/x/sync/singleflight"
)

const refreshKey = "refresh"

var errNoRefreshToken = errors.New("no refresh token")

type skipRefreshKey struct{}

// withoutRefresh marks requests whose 401 must not trigger a refresh, such
// as login with a wrong password.
func withoutRefresh(ctx context.Context) context.Context {
	return context.WithValue(ctx, skipRefreshKey{}, true)
}

func refreshSkipped(ctx context.Context) bool {
	v, _ := ctx.Value(skipRefreshKey{}).(bool)
	return v
}

// refreshFunc exchanges a refresh token for a new pair.
type refreshFunc func(ctx context.Context, refreshToken string) (*api.TokenPair, error)

// authTransport attaches the bearer token and performs the one-shot
// refresh-and-replay on 401.
type authTransport struct {
	base    http.RoundTripper
	creds   credentials.Store
	refresh refreshFunc
	logger  logging.Logger

	group singleflight.Group

	mu        sync.Mutex
	onExpired func(ctx context.Context)
}

func (t *authTransport) setOnExpired(fn func(ctx context.Context)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onExpired = fn
}

// expired reports a purge after a failed refresh to the registered hook.
func (t *authTransport) expired(ctx context.Context) {
	t.mu.Lock()
	fn := t.onExpired
	t.mu.Unlock()

	if fn != nil {
		fn(ctx)
	}
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	if req.Body != nil && req.GetBody != nil {
		// send always works on fresh copies from GetBody.
		defer req.Body.Close()
	}

	token, err := credentials.AccessToken(ctx, t.creds)
	if err != nil {
		t.logger.Warn(ctx, "reading access token failed, sending unauthenticated", "error", err)
		token = ""
	}

	resp, err := t.send(req, token)
	if err != nil || resp.StatusCode != http.StatusUnauthorized || refreshSkipped(ctx) {
		return resp, err
	}
	if req.Body != nil && req.GetBody == nil {
		// Body cannot be replayed.
		return resp, nil
	}

	fresh, rerr := t.freshToken(ctx, token)
	if rerr != nil {
		t.logger.Info(ctx, "token refresh failed", "path", req.URL.Path, "error", rerr)
		return resp, nil
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()

	// Replay exactly once; whatever comes back is final.
	return t.send(req, fresh)
}

// freshToken returns a token newer than stale. If the stored token already
// differs from stale another request refreshed it; otherwise one refresh
// is shared by every caller currently waiting.
func (t *authTransport) freshToken(ctx context.Context, stale string) (string, error) {
	if current, err := credentials.AccessToken(ctx, t.creds); err == nil && current != "" && current != stale {
		return current, nil
	}

	v, err, _ := t.group.Do(refreshKey, func() (any, error) {
		ctx := context.WithoutCancel(ctx)

		if current, err := credentials.AccessToken(ctx, t.creds); err == nil && current != "" && current != stale {
			return current, nil
		}

		rt, err := t.creds.Get(ctx, credentials.KeyRefreshToken)
		if err != nil {
			return "", err
		}
		if rt == "" {
			return "", errNoRefreshToken
		}

		pair, err := t.refresh(ctx, rt)
		if err != nil {
			if perr := credentials.DeleteAll(ctx, t.creds, credentials.TokenKeys...); perr != nil {
				t.logger.Error(ctx, "purging tokens failed", "error", perr)
			}
			t.expired(ctx)
			return "", err
		}

		if err := credentials.SaveTokens(ctx, t.creds, pair.AccessToken, pair.RefreshToken); err != nil {
			return "", err
		}
		t.logger.Debug(ctx, "tokens refreshed")
		return pair.AccessToken, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (t *authTransport) send(req *http.Request, token string) (*http.Response, error) {
	r := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		r.Body = body
	}

	r.Header.Del("Authorization")
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	return t.base.RoundTrip(r)
}
