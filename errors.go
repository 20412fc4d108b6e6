package gldevice

import (
	"errors"
	"fmt"
)

// Device errors.
var (
	// ErrNilDriver is returned by NewDevice without a driver.
	ErrNilDriver = errors.New("gldevice: driver is nil")

	// ErrInvalidConfig is returned for a configuration value out of range.
	ErrInvalidConfig = errors.New("gldevice: invalid config")

	// ErrTextureTooLarge is returned by InitTexture for dimensions above the
	// driver's maximum texture size.
	ErrTextureTooLarge = errors.New("gldevice: texture exceeds max texture size")

	// ErrUnsupportedFormat is returned for a texture format with no GL
	// equivalent in this layer.
	ErrUnsupportedFormat = errors.New("gldevice: unsupported texture format")
)

// ShaderErrorKind distinguishes compile from link failures.
type ShaderErrorKind int

const (
	// ShaderCompilation is a failure compiling one stage.
	ShaderCompilation ShaderErrorKind = iota
	// ShaderLink is a failure linking the program.
	ShaderLink
)

func (k ShaderErrorKind) String() string {
	if k == ShaderLink {
		return "link"
	}
	return "compilation"
}

// ShaderError carries the driver's diagnostic for a failed program.
type ShaderError struct {
	Kind ShaderErrorKind
	// Name is the program name.
	Name string
	// Stage is "vs" or "fs" for compilation errors, empty for link errors.
	Stage string
	Log   string
}

func (e *ShaderError) Error() string {
	if e.Stage != "" {
		return fmt.Sprintf("gldevice: shader %s failed for %s (%s):\n%s", e.Kind, e.Name, e.Stage, e.Log)
	}
	return fmt.Sprintf("gldevice: shader %s failed for %s:\n%s", e.Kind, e.Name, e.Log)
}
