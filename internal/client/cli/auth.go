package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gigbook/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// SignUp prompts for email, username and password and creates the account,
// remotely when the API is reachable and on-device otherwise.
func (a *App) SignUp(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	username, err := getSimpleText(a.reader, "Choose a username", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.session.SignUp(ctx, email, string(password), username); err != nil {
		return a.sessionFailed(err)
	}

	a.printWelcome()
	return nil
}

// SignIn prompts for credentials. When the API cannot be reached the
// on-device password is checked instead.
func (a *App) SignIn(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.session.SignIn(ctx, email, string(password)); err != nil {
		return a.sessionFailed(err)
	}

	a.printWelcome()
	return nil
}

func (a *App) SignOut(ctx context.Context) error {
	if err := a.session.SignOut(ctx); err != nil {
		return a.sessionFailed(err)
	}
	fmt.Fprintln(a.out, "Signed out. Your logged shows stay on this device.")
	return nil
}

func (a *App) WhoAmI(_ context.Context) error {
	snap := a.session.Snapshot()
	if snap.User == nil {
		fmt.Fprintln(a.out, "Not signed in.")
		return nil
	}

	fmt.Fprintf(a.out, "%s (%s)\n", snap.User.Email, snap.State)
	if p := snap.Profile; p != nil {
		var parts []string
		if p.Username != "" {
			parts = append(parts, "@"+p.Username)
		}
		if p.DisplayName != "" {
			parts = append(parts, p.DisplayName)
		}
		if p.City != "" {
			parts = append(parts, p.City)
		}
		if len(parts) > 0 {
			fmt.Fprintln(a.out, strings.Join(parts, " · "))
		}
		if !p.OnboardingCompleted {
			fmt.Fprintln(a.out, "Onboarding not finished; type 'onboard'.")
		}
	}
	if !snap.HasLoggedFirstShow {
		fmt.Fprintln(a.out, "No shows logged yet; type 'log' to add your first.")
	}
	return nil
}

func (a *App) printWelcome() {
	snap := a.session.Snapshot()
	where := "on this device"
	if snap.User != nil && snap.User.IsRemote() {
		where = "and synced with your account"
	}
	fmt.Fprintf(a.out, "Signed in as %s %s.\n", snap.User.Email, where)
}
