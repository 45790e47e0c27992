// Package migrations embeds the postgres schema migrations run by goose.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
