package migrations

import "embed"

//go:embed *.sql
var All embed.FS
