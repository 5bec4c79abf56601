// Package migrations embeds the blog schema. Only SQL Server and SQLite are
// supported.
package migrations

import (
	"embed"
	"io/fs"
)

//go:embed sqlserver/*.sql sqlite/*.sql
var files embed.FS

func FS() map[string]fs.FS {
	out := map[string]fs.FS{}
	for _, dialect := range []string{"sqlserver", "sqlite"} {
		sub, err := fs.Sub(files, dialect)
		if err != nil {
			panic(err)
		}
		out[dialect] = sub
	}
	return out
}
