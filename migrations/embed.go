// Package migrations embeds the SQL schema shared by the postgres and sqlite
// visit stores.
package migrations

import (
	"embed"
	"io/fs"
	"slices"
	"strings"
)

//go:embed *.sql
var FS embed.FS

// Up returns the contents of every *.up.sql file in lexical order.
func Up() ([]string, error) {
	names, err := fs.Glob(FS, "*.up.sql")
	if err != nil {
		return nil, err
	}
	slices.Sort(names)

	out := make([]string, 0, len(names))
	for _, name := range names {
		b, err := fs.ReadFile(FS, name)
		if err != nil {
			return nil, err
		}
		out = append(out, strings.TrimSpace(string(b)))
	}
	return out, nil
}
