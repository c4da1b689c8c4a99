package db

import "embed"

// MigrationFS embeds the SQL migrations applied by cmd/migrate and, when
// MIGRATE_ON_START is set, by the API at boot.
//
//go:embed migrations/*.sql
var MigrationFS embed.FS
