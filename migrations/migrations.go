// Package migrations embeds the SQL migrations of the submission store.
package migrations

import "embed"

// FS holds the migration files, named <version>_<title>.<up|down>.sql.
//
//go:embed *.sql
var FS embed.FS
