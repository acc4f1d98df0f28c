// Package migrations embeds the goose SQL migrations for the practice schema.
package migrations

import "embed"

// FS holds every migration file; goose reads it with SetBaseFS.
//
//go:embed *.sql
var FS embed.FS
