package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gigbook/internal/client/credentials"
	"github.com/dmitrijs2005/gigbook/internal/client/services"
	"github.com/dmitrijs2005/gigbook/internal/client/testutil"
	"github.com/dmitrijs2005/gigbook/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestMain(m *testing.M) {
	keyring.MockInit()
	os.Exit(m.Run())
}

// runApp plays lines into a fresh App without a remote API and returns
// everything it printed.
func runApp(t *testing.T, lines ...string) string {
	t.Helper()

	oldPw := getPassword
	getPassword = func(io.Writer) ([]byte, error) { return []byte("password1"), nil }
	t.Cleanup(func() { getPassword = oldPw })

	engine := testutil.NewEngine(t)
	creds := credentials.NewKeyringStore("gigbook-test-" + t.Name())
	logger := logging.Discard()

	session := services.NewSession(engine, creds, nil, logger)
	shows := services.NewShowLog(engine, nil, logger)

	var out bytes.Buffer
	app := NewApp(session, shows, nil, strings.NewReader(strings.Join(lines, "\n")+"\n"), &out)
	app.loc = time.UTC

	require.NoError(t, app.Run(context.Background(), time.Minute))
	return out.String()
}

func TestApp_SignUpLogAndList(t *testing.T) {
	out := runApp(t,
		"signup",
		"ann@example.com",
		"ann",
		"log",
		"Drake",
		"The O2",
		"London",
		"2024-03-01 20:00",
		"",
		"4.5",
		"A/12/5",
		"great show",
		"",
		"logs",
		"whoami",
		"exit",
	)

	assert.Contains(t, out, "Signed in as ann@example.com on this device.")
	assert.Contains(t, out, "Logged Drake at The O2 (log 1).")
	assert.Contains(t, out, "2024-03-01 20:00")
	assert.Contains(t, out, "The O2, London")
	assert.Contains(t, out, "4.5")
	assert.Contains(t, out, "ann@example.com (authenticated_local)")
	assert.NotContains(t, out, "No shows logged yet; type 'log'")
	assert.Contains(t, out, "(ann@example.com local disabled)")
}

func TestApp_TicketsForDay(t *testing.T) {
	out := runApp(t,
		"signup",
		"ann@example.com",
		"ann",
		"ticket",
		"Coldplay",
		"Wembley Stadium",
		"London",
		"2024-08-20 19:30",
		"",
		"",
		"GA",
		"95",
		"tickets 2024-08-20",
		"tickets 2024-08-21",
		"exit",
	)

	assert.Contains(t, out, "Ticket 1 saved for Coldplay on 2024-08-20 19:30.")
	assert.Contains(t, out, "19:30")
	assert.Contains(t, out, "No tickets for 2024-08-21.")
}

func TestApp_ValidationErrorsArePrinted(t *testing.T) {
	out := runApp(t,
		"signup",
		"not-an-email",
		"ann",
		"log",
		"exit",
	)

	assert.Contains(t, out, "Error: email must be a valid email address")
	assert.Contains(t, out, "Error: please sign in first")
}

func TestApp_SignOutAndBackIn(t *testing.T) {
	out := runApp(t,
		"signup",
		"ann@example.com",
		"ann",
		"signout",
		"whoami",
		"signin",
		"ann@example.com",
		"exit",
	)

	assert.Contains(t, out, "Signed out.")
	assert.Contains(t, out, "Not signed in.")
	assert.Equal(t, 2, strings.Count(out, "Signed in as ann@example.com"))
}

func TestApp_ProfileAndOnboarding(t *testing.T) {
	out := runApp(t,
		"signup",
		"ann@example.com",
		"ann",
		"profile",
		"Ann B.",
		"",
		"Riga",
		"",
		"",
		"onboard",
		"whoami",
		"exit",
	)

	assert.Contains(t, out, "Profile saved.")
	assert.Contains(t, out, "Onboarding complete.")
	assert.Contains(t, out, "@ann · Ann B. · Riga")
	assert.NotContains(t, out, "Onboarding not finished")
}

func TestApp_ResetNeedsConfirmation(t *testing.T) {
	out := runApp(t,
		"signup",
		"ann@example.com",
		"ann",
		"reset",
		"n",
		"whoami",
		"reset",
		"yes",
		"whoami",
		"exit",
	)

	assert.Contains(t, out, "ann@example.com (authenticated_local)")
	assert.Contains(t, out, "Local data erased.")
	assert.Contains(t, out, "Not signed in.")
}

func TestApp_SearchCatalog(t *testing.T) {
	out := runApp(t, "search venues wem", "search artists zzz", "exit")

	assert.Contains(t, out, "Wembley Stadium, London")
	assert.Contains(t, out, "Nothing found.")
}
