package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/gigbook/internal/client/models"
	"github.com/dmitrijs2005/gigbook/internal/client/services"
	"github.com/dmitrijs2005/gigbook/internal/common"
)

func (a *App) requireUser() (*models.CurrentUser, error) {
	u := a.session.Snapshot().User
	if u == nil {
		return nil, a.failed(common.ErrUnauthorized)
	}
	return u, nil
}

// readEvent prompts for the fields identifying a show.
func (a *App) readEvent() (services.EventInput, error) {
	var in services.EventInput
	var err error

	if in.ArtistName, err = getSimpleText(a.reader, "Artist", a.out); err != nil {
		return in, err
	}
	if in.VenueName, err = getSimpleText(a.reader, "Venue", a.out); err != nil {
		return in, err
	}
	if in.City, err = getSimpleText(a.reader, "City (optional)", a.out); err != nil {
		return in, err
	}
	date, err := getSimpleText(a.reader, "Date (YYYY-MM-DD or YYYY-MM-DD HH:MM)", a.out)
	if err != nil {
		return in, err
	}
	if in.Date, err = parseDate(date, a.loc); err != nil {
		return in, err
	}
	if in.TourName, err = getSimpleText(a.reader, "Tour (optional)", a.out); err != nil {
		return in, err
	}
	return in, nil
}

// LogShow records a show the user attended. Logging the same show again
// updates the existing entry.
func (a *App) LogShow(ctx context.Context) error {
	user, err := a.requireUser()
	if err != nil {
		return err
	}

	ev, err := a.readEvent()
	if err != nil {
		return a.failed(err)
	}
	in := services.ShowInput{EventInput: ev}

	rating, err := getSimpleText(a.reader, "Rating 0-5 (optional)", a.out)
	if err != nil {
		return err
	}
	if in.Rating, err = parseRating(rating); err != nil {
		return a.failed(err)
	}
	seat, err := getSimpleText(a.reader, "Seat as section/row/number (optional)", a.out)
	if err != nil {
		return err
	}
	in.Seat = parseSeat(seat)
	if in.Note, err = GetMultiline(a.reader, "Notes (optional)", a.out); err != nil {
		return err
	}

	l, err := a.shows.LogShow(ctx, user, in)
	if err != nil {
		return a.failed(err)
	}
	if err := a.session.Refresh(ctx); err != nil {
		return a.sessionFailed(err)
	}

	fmt.Fprintf(a.out, "Logged %s at %s (log %d).\n", l.Event.Artist.Name, l.Event.Venue.Name, l.ID)
	return nil
}

func (a *App) ListLogs(ctx context.Context) error {
	user, err := a.requireUser()
	if err != nil {
		return err
	}

	logs, err := a.shows.Logs(ctx, user.ID)
	if err != nil {
		return a.failed(err)
	}
	if len(logs) == 0 {
		fmt.Fprintln(a.out, "No shows logged yet.")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tARTIST\tVENUE\tRATING\tNOTE")
	for _, l := range logs {
		rating := "-"
		if l.Rating != nil {
			rating = fmt.Sprintf("%.1f", *l.Rating)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			l.ID, a.formatDate(l.Event.Date), l.Event.Artist.Name, venueLabel(l.Event.Venue), rating, firstLine(l.Note))
	}
	return w.Flush()
}

func (a *App) DeleteLog(ctx context.Context, id string) error {
	user, err := a.requireUser()
	if err != nil {
		return err
	}
	logID, err := parseID(id)
	if err != nil {
		return a.failed(err)
	}

	if err := a.shows.DeleteLog(ctx, user.ID, logID); err != nil {
		return a.failed(err)
	}
	if err := a.session.Refresh(ctx); err != nil {
		return a.sessionFailed(err)
	}
	fmt.Fprintln(a.out, "Deleted.")
	return nil
}

func (a *App) AddTicket(ctx context.Context) error {
	user, err := a.requireUser()
	if err != nil {
		return err
	}

	ev, err := a.readEvent()
	if err != nil {
		return a.failed(err)
	}
	in := services.TicketInput{EventInput: ev}

	seat, err := getSimpleText(a.reader, "Seat as section/row/number (optional)", a.out)
	if err != nil {
		return err
	}
	in.Seat = parseSeat(seat)
	if in.TicketType, err = getSimpleText(a.reader, "Ticket type (optional)", a.out); err != nil {
		return err
	}
	price, err := getSimpleText(a.reader, "Price (optional)", a.out)
	if err != nil {
		return err
	}
	if in.PriceCents, err = parsePrice(price); err != nil {
		return a.failed(err)
	}

	t, err := a.shows.AddTicket(ctx, user.ID, in)
	if err != nil {
		return a.failed(err)
	}
	fmt.Fprintf(a.out, "Ticket %d saved for %s on %s.\n", t.ID, t.Event.Artist.Name, a.formatDate(t.Event.Date))
	return nil
}

// Tickets lists tickets for day (YYYY-MM-DD), today when empty.
func (a *App) Tickets(ctx context.Context, day string) error {
	user, err := a.requireUser()
	if err != nil {
		return err
	}

	when := time.Now().In(a.loc)
	if day != "" {
		if when, err = parseDate(day, a.loc); err != nil {
			return a.failed(err)
		}
	}

	tickets, err := a.shows.TicketsForDay(ctx, user.ID, when, a.loc)
	if err != nil {
		return a.failed(err)
	}
	if len(tickets) == 0 {
		fmt.Fprintf(a.out, "No tickets for %s.\n", when.Format("2006-01-02"))
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tARTIST\tVENUE\tSEAT\tTYPE")
	for _, t := range tickets {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, t.Event.Date.In(a.loc).Format("15:04"), t.Event.Artist.Name, venueLabel(t.Event.Venue), seatLabel(t.Seat), t.TicketType)
	}
	return w.Flush()
}

func (a *App) MarkInterested(ctx context.Context) error {
	user, err := a.requireUser()
	if err != nil {
		return err
	}

	in, err := a.readEvent()
	if err != nil {
		return a.failed(err)
	}
	ev, err := a.shows.MarkInterested(ctx, user.ID, in)
	if err != nil {
		return a.failed(err)
	}
	fmt.Fprintf(a.out, "You will be notified about %s at %s (event %d).\n", ev.Artist.Name, ev.Venue.Name, ev.ID)
	return nil
}

func (a *App) ListInterested(ctx context.Context) error {
	user, err := a.requireUser()
	if err != nil {
		return err
	}

	list, err := a.shows.Interested(ctx, user.ID)
	if err != nil {
		return a.failed(err)
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No notifications set.")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "EVENT\tDATE\tARTIST\tVENUE")
	for _, i := range list {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i.EventID, a.formatDate(i.Event.Date), i.Event.Artist.Name, venueLabel(i.Event.Venue))
	}
	return w.Flush()
}

func (a *App) Unmark(ctx context.Context, eventID string) error {
	user, err := a.requireUser()
	if err != nil {
		return err
	}
	id, err := parseID(eventID)
	if err != nil {
		return a.failed(err)
	}

	if err := a.shows.UnmarkInterested(ctx, user.ID, id); err != nil {
		return a.failed(err)
	}
	fmt.Fprintln(a.out, "Notification removed.")
	return nil
}

// Search looks up catalog artists or venues by name prefix.
func (a *App) Search(ctx context.Context, kind, prefix string) error {
	var names []string

	switch kind {
	case "artist", "artists":
		found, err := a.shows.SearchArtists(ctx, prefix)
		if err != nil {
			return a.failed(err)
		}
		for _, ar := range found {
			names = append(names, ar.Name)
		}
	case "venue", "venues":
		found, err := a.shows.SearchVenues(ctx, prefix)
		if err != nil {
			return a.failed(err)
		}
		for _, v := range found {
			names = append(names, venueLabel(v))
		}
	default:
		fmt.Fprintln(a.out, "Usage: search artists|venues <prefix>")
		return nil
	}

	if len(names) == 0 {
		fmt.Fprintln(a.out, "Nothing found.")
		return nil
	}
	for _, n := range names {
		fmt.Fprintln(a.out, n)
	}
	return nil
}

func (a *App) formatDate(t time.Time) string {
	t = t.In(a.loc)
	if t.Hour() == 0 && t.Minute() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02 15:04")
}

func venueLabel(v models.Venue) string {
	if v.City == "" {
		return v.Name
	}
	return v.Name + ", " + v.City
}

func seatLabel(s models.Seat) string {
	var parts []string
	for _, p := range []string{s.Section, s.Row, s.Number} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, "/")
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
