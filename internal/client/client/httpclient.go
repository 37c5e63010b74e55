package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gigbook/internal/api"
	"github.com/dmitrijs2005/gigbook/internal/client/credentials"
	"github.com/dmitrijs2005/gigbook/internal/common"
	"github.com/dmitrijs2005/gigbook/internal/logging"
)

const (
	DefaultTimeout = 15 * time.Second
	maxErrorBody   = 4 << 10
)

// Options configure an HTTPClient.
type Options struct {
	BaseURL string
	Timeout time.Duration
	// Transport defaults to http.DefaultTransport.
	Transport http.RoundTripper
}

// HTTPClient implements Client over JSON/HTTP.
type HTTPClient struct {
	baseURL string
	creds   credentials.Store
	logger  logging.Logger

	http *http.Client
	// plain sends refresh calls without the auth transport.
	plain *http.Client
	auth  *authTransport
}

func NewHTTPClient(opts Options, creds credentials.Store, logger logging.Logger) *HTTPClient {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Transport == nil {
		opts.Transport = http.DefaultTransport
	}
	logger = logger.With("component", "api")

	c := &HTTPClient{
		baseURL: opts.BaseURL,
		creds:   creds,
		logger:  logger,
		plain:   &http.Client{Timeout: opts.Timeout, Transport: opts.Transport},
	}
	c.auth = &authTransport{
		base:    opts.Transport,
		creds:   creds,
		refresh: c.Refresh,
		logger:  logger,
	}
	c.http = &http.Client{Timeout: opts.Timeout, Transport: c.auth}
	return c
}

// OnSessionExpired registers fn to run once the tokens were purged because
// a refresh failed. fn runs on the goroutine of the request that tried the
// refresh. A later call replaces fn.
func (c *HTTPClient) OnSessionExpired(fn func(ctx context.Context)) {
	c.auth.setOnExpired(fn)
}

// BaseURL returns the API root requests are sent to.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

func (c *HTTPClient) SignUp(ctx context.Context, req api.SignUpRequest) (*api.AuthResponse, error) {
	var out api.AuthResponse
	if err := c.do(withoutRefresh(ctx), c.http, http.MethodPost, api.PathSignUp, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Login(ctx context.Context, req api.LoginRequest) (*api.AuthResponse, error) {
	var out api.AuthResponse
	if err := c.do(withoutRefresh(ctx), c.http, http.MethodPost, api.PathLogin, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Refresh exchanges refreshToken for a new pair. It does not touch the
// credential store.
func (c *HTTPClient) Refresh(ctx context.Context, refreshToken string) (*api.TokenPair, error) {
	var out api.TokenPair
	if err := c.do(ctx, c.plain, http.MethodPost, api.PathRefresh, api.RefreshRequest{RefreshToken: refreshToken}, &out); err != nil {
		return nil, err
	}
	if out.AccessToken == "" || out.RefreshToken == "" {
		return nil, fmt.Errorf("refresh: incomplete token pair: %w", common.ErrServer)
	}
	return &out, nil
}

// Logout revokes the stored refresh token on the server.
func (c *HTTPClient) Logout(ctx context.Context) error {
	rt, err := c.creds.Get(ctx, credentials.KeyRefreshToken)
	if err != nil {
		return err
	}
	return c.do(withoutRefresh(ctx), c.http, http.MethodPost, api.PathLogout, api.LogoutRequest{RefreshToken: rt}, nil)
}

func (c *HTTPClient) Me(ctx context.Context) (*api.User, error) {
	var out api.User
	if err := c.do(ctx, c.http, http.MethodGet, api.PathMe, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Ping reports whether the API is reachable and healthy.
func (c *HTTPClient) Ping(ctx context.Context) error {
	var out api.HealthResponse
	if err := c.do(ctx, c.plain, http.MethodGet, api.PathHealth, nil, &out); err != nil {
		return err
	}
	if out.Status != "ok" {
		return fmt.Errorf("health status %q: %w", out.Status, common.ErrUnavailable)
	}
	return nil
}

func (c *HTTPClient) CreateLog(ctx context.Context, req api.LogRequest) (*api.Log, error) {
	var out api.Log
	if err := c.do(ctx, c.http, http.MethodPost, api.PathLogs, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) ListLogs(ctx context.Context) ([]api.Log, error) {
	var out []api.Log
	if err := c.do(ctx, c.http, http.MethodGet, api.PathLogs, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) do(ctx context.Context, hc *http.Client, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := hc.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %s %s: %w", common.ErrUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var body api.ErrorResponse
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
		apiErr.Message = body.Error
	} else {
		apiErr.Message = string(bytes.TrimSpace(raw))
	}
	return apiErr
}

// IsRemoteRejection reports whether err is an answer from the server, as
// opposed to a transport failure.
func IsRemoteRejection(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}
