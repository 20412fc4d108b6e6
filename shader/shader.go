// Package shader resolves, expands and assembles GLSL sources for the device
// layer.
//
// Sources are looked up by logical name. An on-disk override directory is
// consulted first, then the builtin table compiled into the binary. Shared
// sources may pull in other sources through "#include a, b" lines; the
// expansion emits "#line" markers so driver diagnostics keep pointing at
// the line of the file that contained the error.
//
// Build assembles the vertex and fragment strings of one program:
//
//	#version 150              (or "#version 300 es" on GL ES)
//	// ps_quad
//	#define WR_VERTEX_SHADER  (or WR_FRAGMENT_SHADER)
//	<feature defines>
//	#line 1
//	<expanded ps_quad.glsl>
//	<ps_quad.vs / ps_quad.fs, when present>
//
// Assembly is deterministic: identical inputs give byte-identical output,
// which the program binary cache relies on for its keys.
package shader

import (
	"errors"
	"fmt"
)

// Prologue and directive strings.
const (
	VersionGL     = "#version 150\n"
	VersionGLES   = "#version 300 es\n"
	KindVertex    = "#define WR_VERTEX_SHADER\n"
	KindFragment  = "#define WR_FRAGMENT_SHADER\n"
	IncludePrefix = "#include "
	LineReset     = "#line 1\n"
)

// DefaultMaxIncludeDepth bounds include nesting unless configured otherwise.
const DefaultMaxIncludeDepth = 32

var (
	// ErrNotFound is returned when a program's shared source does not exist
	// in either the override directory or the builtin table.
	ErrNotFound = errors.New("shader: source not found")

	// ErrIncludeDepth is returned when include nesting exceeds the
	// configured maximum, which in practice means an include cycle.
	ErrIncludeDepth = errors.New("shader: include depth exceeded")
)

// OverrideError reports a failure reading an override file that exists but
// cannot be read. It is not recovered by falling back to the builtin table.
type OverrideError struct {
	Name string
	Path string
	Err  error
}

func (e *OverrideError) Error() string {
	return fmt.Sprintf("shader: reading override %q from %s: %v", e.Name, e.Path, e.Err)
}

func (e *OverrideError) Unwrap() error { return e.Err }

// IncludeError identifies the include chain that failed to expand.
type IncludeError struct {
	Chain []string
	Err   error
}

func (e *IncludeError) Error() string {
	return fmt.Sprintf("shader: expanding %v: %v", e.Chain, e.Err)
}

func (e *IncludeError) Unwrap() error { return e.Err }
