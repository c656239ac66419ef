// Package migrations holds the schema scripts, applied in version order
// by the SQLite store.
package migrations

import "embed"

// FS holds the NNN_name.up.sql scripts.
//
//go:embed *.up.sql
var FS embed.FS
