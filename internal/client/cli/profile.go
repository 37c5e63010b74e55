package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gigbook/internal/client/models"
)

// EditProfile prompts for each field; an empty answer keeps the value.
func (a *App) EditProfile(ctx context.Context) error {
	if _, err := a.requireUser(); err != nil {
		return err
	}

	var upd models.ProfileUpdate
	fields := []struct {
		prompt string
		dst    **string
	}{
		{"Display name", &upd.DisplayName},
		{"Username", &upd.Username},
		{"City", &upd.City},
		{"Bio", &upd.Bio},
		{"Avatar URL", &upd.AvatarURL},
	}
	for _, f := range fields {
		v, err := getSimpleText(a.reader, f.prompt+" (Enter to keep)", a.out)
		if err != nil {
			return err
		}
		if v != "" {
			*f.dst = &v
		}
	}

	if err := a.session.UpdateProfile(ctx, upd); err != nil {
		return a.sessionFailed(err)
	}
	fmt.Fprintln(a.out, "Profile saved.")
	return nil
}

func (a *App) Onboard(ctx context.Context) error {
	if _, err := a.requireUser(); err != nil {
		return err
	}
	if err := a.session.CompleteOnboarding(ctx); err != nil {
		return a.sessionFailed(err)
	}
	fmt.Fprintln(a.out, "Onboarding complete.")
	return nil
}

func (a *App) DeleteAccount(ctx context.Context) error {
	if _, err := a.requireUser(); err != nil {
		return err
	}
	if !a.confirm("Delete this account and all its shows from this device?") {
		return nil
	}
	if err := a.session.DeleteAccount(ctx); err != nil {
		return a.sessionFailed(err)
	}
	fmt.Fprintln(a.out, "Account deleted.")
	return nil
}

// Reset wipes every local account, show and credential, then starts fresh.
func (a *App) Reset(ctx context.Context) error {
	if !a.confirm("Erase all local data on this device?") {
		return nil
	}
	if err := a.session.ResetLocalData(ctx); err != nil {
		return a.sessionFailed(err)
	}
	if err := a.session.Bootstrap(ctx); err != nil {
		return a.sessionFailed(err)
	}
	fmt.Fprintln(a.out, "Local data erased.")
	return nil
}

func (a *App) confirm(question string) bool {
	answer, err := getSimpleText(a.reader, question+" [y/N]", a.out)
	if err != nil {
		return false
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes"
}
