package migrations

import "github.com/uptrace/bun/migrate"

// Migrations holds every schema change; each file registers one version,
// taken from its file name.
var Migrations = migrate.NewMigrations()
