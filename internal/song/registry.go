package song

import (
	"path/filepath"
	"strings"
)

// Loader is the per-format capability contract. Implementations live in
// internal/parser and register themselves from init, the same way
// database/sql drivers do; failure is reported by boolean, never error,
// because community charts fail constantly and the callers always have a
// fallback or an acceptable empty state.
type Loader interface {
	// LoadFromDir populates the song and its steps collection from a
	// song directory.
	LoadFromDir(dir string, out *Song) bool
	// LoadNoteData fills only the note data of an existing record from
	// the given file.
	LoadNoteData(path string, out *Steps) bool
}

var loaders = map[string]Loader{}

// RegisterLoader binds a loader to a lower-case extension (no dot).
// Multiple extensions may share one loader.
func RegisterLoader(ext string, l Loader) {
	loaders[strings.ToLower(ext)] = l
}

// LoaderForExtension returns the loader registered for an extension, or
// nil. Lookup is case-insensitive.
func LoaderForExtension(ext string) Loader {
	return loaders[strings.ToLower(strings.TrimPrefix(ext, "."))]
}

// LoaderForPath dispatches on the file extension.
func LoaderForPath(path string) Loader {
	return LoaderForExtension(filepath.Ext(path))
}
