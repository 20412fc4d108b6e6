package shader

import (
	"fmt"
	"strings"

	"github.com/gogpu/gputypes"
)

// BuildOptions selects what Build assembles.
type BuildOptions struct {
	// Name is the logical program name, e.g. "ps_quad".
	Name string
	// Flavor selects the version prologue.
	Flavor gputypes.GLBackend
	// Features is inserted verbatim after the stage define. See Defines.
	Features string
	// MaxDepth bounds include nesting. Zero means unlimited.
	MaxDepth int
}

// Version returns the "#version" prologue for a driver flavor.
func Version(flavor gputypes.GLBackend) string {
	if flavor == gputypes.GLBackendGLES {
		return VersionGLES
	}
	return VersionGL
}

// Defines renders feature names as WR_FEATURE_* defines, one per line.
func Defines(features ...string) string {
	var b strings.Builder
	for _, f := range features {
		b.WriteString("#define WR_FEATURE_")
		b.WriteString(strings.ToUpper(f))
		b.WriteByte('\n')
	}
	return b.String()
}

// Build assembles the vertex and fragment sources of a program. The shared
// <name>.glsl is expanded once and used by both stages; <name>.vs and
// <name>.fs are appended to their stage when present. ErrNotFound is
// returned if none of the three files exists.
func Build(reg *Registry, opts BuildOptions) (vs, fs string, err error) {
	exp := &Expander{Registry: reg, MaxDepth: opts.MaxDepth}
	shared, found, err := exp.Expand(opts.Name)
	if err != nil {
		return "", "", err
	}
	legacyVS, foundVS, err := reg.ResolveFile(opts.Name, opts.Name+".vs")
	if err != nil {
		return "", "", err
	}
	legacyFS, foundFS, err := reg.ResolveFile(opts.Name, opts.Name+".fs")
	if err != nil {
		return "", "", err
	}
	if !found && !foundVS && !foundFS {
		return "", "", fmt.Errorf("%w: %q", ErrNotFound, opts.Name)
	}

	stage := func(kind, legacy string) string {
		var b strings.Builder
		b.WriteString(Version(opts.Flavor))
		b.WriteString("// ")
		b.WriteString(opts.Name)
		b.WriteByte('\n')
		b.WriteString(kind)
		b.WriteString(opts.Features)
		b.WriteString(shared)
		b.WriteString(legacy)
		return b.String()
	}
	vs = stage(KindVertex, legacyVS)
	fs = stage(KindFragment, legacyFS)
	Logger().Debug("shader: assembled program",
		"name", opts.Name, "flavor", opts.Flavor.String(), "vs_bytes", len(vs), "fs_bytes", len(fs))
	return vs, fs, nil
}
