// Package migrations holds the goose SQL migrations for the progress database.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
