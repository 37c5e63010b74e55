package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// execIface is the command surface the REPL dispatches to. App satisfies
// it; tests provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	SignUp(ctx context.Context) error
	SignIn(ctx context.Context) error
	SignOut(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	EditProfile(ctx context.Context) error
	Onboard(ctx context.Context) error
	LogShow(ctx context.Context) error
	ListLogs(ctx context.Context) error
	DeleteLog(ctx context.Context, id string) error
	AddTicket(ctx context.Context) error
	Tickets(ctx context.Context, day string) error
	MarkInterested(ctx context.Context) error
	ListInterested(ctx context.Context) error
	Unmark(ctx context.Context, eventID string) error
	Search(ctx context.Context, kind, prefix string) error
	DeleteAccount(ctx context.Context) error
	Reset(ctx context.Context) error
}

const (
	helpAnonymous = "Available commands: signup, signin, search artists|venues <prefix>, reset, exit"
	helpSignedIn  = "Available commands: whoami, profile, onboard, log, logs, unlog <id>, ticket, tickets [YYYY-MM-DD], " +
		"notify, notifications, unnotify <event id>, search artists|venues <prefix>, signout, deleteaccount, reset, exit"
)

// runREPL reads commands line by line from reader and dispatches them to a.
// It returns on EOF or when the user types "exit" or "quit". Handlers print
// their own errors; the loop keeps going after a failed command.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, out io.Writer) {
	for {
		fmt.Fprintf(out, "gigbook %s> ", statusFn())
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || strings.TrimSpace(line) == "") {
			fmt.Fprintln(out)
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]
		arg := func(i int) string {
			if i < len(args) {
				return args[i]
			}
			return ""
		}

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(out, helpSignedIn)
			} else {
				fmt.Fprintln(out, helpAnonymous)
			}

		case "signup", "register":
			_ = a.SignUp(ctx)
		case "signin", "login":
			_ = a.SignIn(ctx)
		case "signout", "logout":
			_ = a.SignOut(ctx)
		case "whoami":
			_ = a.WhoAmI(ctx)
		case "profile":
			_ = a.EditProfile(ctx)
		case "onboard":
			_ = a.Onboard(ctx)

		case "log":
			_ = a.LogShow(ctx)
		case "logs":
			_ = a.ListLogs(ctx)
		case "unlog":
			if len(args) == 0 {
				fmt.Fprintln(out, "Usage: unlog <log id>")
				continue
			}
			_ = a.DeleteLog(ctx, arg(0))

		case "ticket":
			_ = a.AddTicket(ctx)
		case "tickets":
			_ = a.Tickets(ctx, arg(0))

		case "notify":
			_ = a.MarkInterested(ctx)
		case "notifications":
			_ = a.ListInterested(ctx)
		case "unnotify":
			if len(args) == 0 {
				fmt.Fprintln(out, "Usage: unnotify <event id>")
				continue
			}
			_ = a.Unmark(ctx, arg(0))

		case "search":
			if len(args) == 0 {
				fmt.Fprintln(out, "Usage: search artists|venues <prefix>")
				continue
			}
			_ = a.Search(ctx, arg(0), strings.Join(args[1:], " "))

		case "deleteaccount":
			_ = a.DeleteAccount(ctx)
		case "reset":
			_ = a.Reset(ctx)

		case "exit", "quit":
			fmt.Fprintln(out, "Bye!")
			return

		default:
			fmt.Fprintln(out, "Unknown command:", cmd)
		}

		if err != nil {
			return
		}
	}
}
