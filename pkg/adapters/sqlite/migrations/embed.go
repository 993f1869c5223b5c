// Package migrations embeds the schema of the SQLite store.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
