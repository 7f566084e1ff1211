// Package migrations embeds the goose SQL migrations for each supported
// database dialect.
package migrations

import "embed"

//go:embed postgres/*.sql
var Postgres embed.FS

//go:embed sqlite/*.sql
var SQLite embed.FS

// Directories inside the embedded filesystems.
const (
	PostgresDir = "postgres"
	SQLiteDir   = "sqlite"
)
