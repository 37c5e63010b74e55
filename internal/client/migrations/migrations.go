// Package migrations embeds the goose SQL migrations of the local database.
// Every statement is written with IF NOT EXISTS so applying them is idempotent
// even over a database created by an older build without a version table.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
