// Package migrations holds the versioned schema of the state database.
// Files are named NNN_description.up.sql and applied in version order.
package migrations

import "embed"

// FS holds the migration scripts.
//
//go:embed *.sql
var FS embed.FS
