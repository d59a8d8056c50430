// Package migrations embeds the PostgreSQL schema applied at boot.
package migrations

import "embed"

//go:embed *.sql
var Files embed.FS
