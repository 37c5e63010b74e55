// Package services contains the application services of the gigbook client:
// the session state machine, reconciliation of remote identities onto local
// rows, catalog seeding and show logging.
//
// Services receive their collaborators (database, credential store, API
// client, logger) explicitly; there is no package-level state.
package services

import (
	"context"
	"database/sql"
)

// Database is the local store lifecycle the services depend on.
// store.Engine implements it.
type Database interface {
	Open(ctx context.Context) (*sql.DB, error)
	Reset(ctx context.Context) error
}
