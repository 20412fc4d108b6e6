package shader

import (
	"embed"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

//go:embed res
var builtinFS embed.FS

// Builtin returns the table of sources compiled into the binary, keyed by
// file name ("ps_quad.glsl", "shared.glsl", "ps_clear.vs", ...).
func Builtin() fs.FS {
	sub, err := fs.Sub(builtinFS, "res")
	if err != nil {
		panic(err)
	}
	return sub
}

// Registry resolves source files by name. The zero value resolves nothing.
type Registry struct {
	// Builtin is the fallback table. Usually the result of Builtin().
	Builtin fs.FS
	// OverrideDir, when set, is searched before Builtin.
	OverrideDir string
}

// NewRegistry returns a registry over the builtin table with an optional
// override directory.
func NewRegistry(overrideDir string) *Registry {
	return &Registry{Builtin: Builtin(), OverrideDir: overrideDir}
}

// Resolve returns the text of <name>.glsl.
func (r *Registry) Resolve(name string) (string, bool, error) {
	return r.ResolveFile(name, name+".glsl")
}

// ResolveFile returns the text of file, attributed to the logical name for
// error reporting. A file missing from both places is reported as
// ("", false, nil); an override that exists but cannot be read is an
// *OverrideError.
func (r *Registry) ResolveFile(name, file string) (string, bool, error) {
	if r.OverrideDir != "" {
		path := filepath.Join(r.OverrideDir, file)
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			Logger().Debug("shader: using override", "file", file, "path", path)
			return string(data), true, nil
		case !errors.Is(err, fs.ErrNotExist):
			return "", false, &OverrideError{Name: name, Path: path, Err: err}
		}
	}
	if r.Builtin == nil {
		return "", false, nil
	}
	data, err := fs.ReadFile(r.Builtin, file)
	if err != nil {
		return "", false, nil
	}
	return string(data), true, nil
}
