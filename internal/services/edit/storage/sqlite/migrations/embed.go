package migrations

import "embed"

// FS contains embedded SQLite migrations for the Local Store.
//
//go:embed *.sql
var FS embed.FS
