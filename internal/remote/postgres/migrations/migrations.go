// Package migrations embeds the remote-store schema migrations.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
