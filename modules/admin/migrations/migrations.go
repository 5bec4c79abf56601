// Package migrations embeds the admin schema for every supported dialect.
package migrations

import (
	"embed"
	"io/fs"
)

//go:embed sqlserver/*.sql sqlite/*.sql mysql/*.sql postgres/*.sql
var files embed.FS

// FS maps each dialect to its migration files.
func FS() map[string]fs.FS {
	out := map[string]fs.FS{}
	for _, dialect := range []string{"sqlserver", "sqlite", "mysql", "postgres"} {
		sub, err := fs.Sub(files, dialect)
		if err != nil {
			panic(err)
		}
		out[dialect] = sub
	}
	return out
}
