// Package migrations embeds the SQL schema migrations for the cart service.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
