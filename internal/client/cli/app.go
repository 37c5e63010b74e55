package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dmitrijs2005/gigbook/internal/client/client"
	"github.com/dmitrijs2005/gigbook/internal/client/services"
	"github.com/dmitrijs2005/gigbook/internal/common"
	"github.com/dmitrijs2005/gigbook/internal/validation"
)

type Mode string

const (
	ModeOffline  Mode = "offline"
	ModeOnline   Mode = "online"
	ModeDisabled Mode = "disabled"
)

const pingTimeout = 3 * time.Second

type App struct {
	session *services.Session
	shows   *services.ShowLog
	// api is nil when the remote API is disabled.
	api    client.Client
	reader *bufio.Reader
	out    io.Writer
	loc    *time.Location

	mu   sync.Mutex
	mode Mode
}

func NewApp(session *services.Session, shows *services.ShowLog, api client.Client, in io.Reader, out io.Writer) *App {
	a := &App{
		session: session,
		shows:   shows,
		api:     api,
		reader:  bufio.NewReader(in),
		out:     out,
		loc:     time.Local,
		mode:    ModeOffline,
	}
	if api == nil {
		a.mode = ModeDisabled
	}
	return a
}

// Run bootstraps the session and serves commands until the user quits or
// input ends.
func (a *App) Run(ctx context.Context, checkInterval time.Duration) error {
	fmt.Fprintln(a.out, "Welcome to gigbook (type 'help' for commands)")

	if err := a.session.Bootstrap(ctx); err != nil {
		fmt.Fprintln(a.out, "Error:", a.session.Snapshot().Error)
		return err
	}

	if a.api != nil {
		a.checkOnline(ctx)

		watchCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go a.StartOnlineStatusWatcher(watchCtx, checkInterval)
	}

	runREPL(ctx, a, a.getStatus, a.reader, a.out)
	return nil
}

func (a *App) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.mode = mode
}

// StartOnlineStatusWatcher pings the API every interval and updates the
// mode shown in the prompt. It returns when ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := a.api.Ping(ctx); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

func (a *App) isLoggedIn() bool {
	return a.session.Snapshot().State.Authenticated()
}

func (a *App) getStatus() string {
	snap := a.session.Snapshot()

	s := string(a.Mode())
	if snap.User != nil {
		kind := "local"
		if snap.User.IsRemote() {
			kind = "synced"
		}
		s = fmt.Sprintf("%s %s %s", snap.User.Email, kind, s)
	}
	return fmt.Sprintf("(%s)", s)
}

// sessionFailed prints the message the session published for err.
func (a *App) sessionFailed(err error) error {
	msg := a.session.Snapshot().Error
	if msg == "" {
		msg = describe(err)
	}
	fmt.Fprintln(a.out, "Error:", msg)
	return err
}

func (a *App) failed(err error) error {
	fmt.Fprintln(a.out, "Error:", describe(err))
	return err
}

func describe(err error) string {
	switch {
	case errors.Is(err, common.ErrValidation):
		return validation.Message(err)
	case errors.Is(err, common.ErrNotFound):
		return "not found"
	case errors.Is(err, common.ErrUnauthorized):
		return "please sign in first"
	default:
		return err.Error()
	}
}
