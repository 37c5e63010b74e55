// Package httpserver exposes the user and log services over JSON/HTTP.
package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gigbook/internal/api"
	"github.com/dmitrijs2005/gigbook/internal/logging"
	"github.com/dmitrijs2005/gigbook/internal/server/services"
	"github.com/dmitrijs2005/gigbook/internal/validation"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type HTTPServer struct {
	address         string
	shutdownTimeout time.Duration
	users           *services.UserService
	logs            *services.LogService
	validate        *validation.Validator
	logger          logging.Logger
}

func NewHTTPServer(address string, shutdownTimeout time.Duration, l logging.Logger, us *services.UserService, ls *services.LogService) *HTTPServer {
	return &HTTPServer{
		address:         address,
		shutdownTimeout: shutdownTimeout,
		users:           us,
		logs:            ls,
		validate:        validation.New(),
		logger:          l.With("module", "http_server"),
	}
}

// Handler returns the routed API.
func (s *HTTPServer) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get(api.PathHealth, s.health)

	r.Post(api.PathSignUp, s.signUp)
	r.Post(api.PathLogin, s.login)
	r.Post(api.PathRefresh, s.refresh)
	r.Post(api.PathLogout, s.logout)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAccessToken)
		r.Get(api.PathMe, s.me)
		r.Post(api.PathLogs, s.createLog)
		r.Get(api.PathLogs, s.listLogs)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}

// Run serves until ctx is cancelled, then drains in-flight requests for up
// to the shutdown timeout.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

func (s *HTTPServer) Serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	done := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
		defer cancel()
		done <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-done
}
