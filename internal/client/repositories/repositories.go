// Package repositories bundles the typed data-access objects over one
// database handle. Build a fresh set per unit of work: over the *sql.DB for
// plain calls or over a *sql.Tx to make several calls atomic.
package repositories

import (
	"github.com/dmitrijs2005/gigbook/internal/client/repositories/artists"
	"github.com/dmitrijs2005/gigbook/internal/client/repositories/events"
	"github.com/dmitrijs2005/gigbook/internal/client/repositories/interested"
	"github.com/dmitrijs2005/gigbook/internal/client/repositories/logs"
	"github.com/dmitrijs2005/gigbook/internal/client/repositories/profiles"
	"github.com/dmitrijs2005/gigbook/internal/client/repositories/tickets"
	"github.com/dmitrijs2005/gigbook/internal/client/repositories/users"
	"github.com/dmitrijs2005/gigbook/internal/client/repositories/venues"
	"github.com/dmitrijs2005/gigbook/internal/dbx"
)

type Repositories struct {
	Users      users.Repository
	Profiles   profiles.Repository
	Artists    artists.Repository
	Venues     venues.Repository
	Events     events.Repository
	Logs       logs.Repository
	Tickets    tickets.Repository
	Interested interested.Repository
}

func New(db dbx.DBTX) *Repositories {
	return &Repositories{
		Users:      users.NewSQLiteRepository(db),
		Profiles:   profiles.NewSQLiteRepository(db),
		Artists:    artists.NewSQLiteRepository(db),
		Venues:     venues.NewSQLiteRepository(db),
		Events:     events.NewSQLiteRepository(db),
		Logs:       logs.NewSQLiteRepository(db),
		Tickets:    tickets.NewSQLiteRepository(db),
		Interested: interested.NewSQLiteRepository(db),
	}
}
