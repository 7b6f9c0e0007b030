// Package migrations embeds the SQL schema migrations so a deployed
// binary can migrate its own database without shipping loose files.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
