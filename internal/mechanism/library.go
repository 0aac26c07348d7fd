package mechanism

import (
	"embed"
	"io/fs"
	"sort"
)

//go:embed data/*.yaml
var library embed.FS

// Library returns the names of the bundled mechanisms.
func Library() []string {
	entries, err := fs.ReadDir(library, "data")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func readLibrary(name string) ([]byte, error) {
	return library.ReadFile("data/" + name)
}
