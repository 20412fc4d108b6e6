package gldevice

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/gogpu/gldevice/shader"
)

// UploadMethod selects how texture updates reach the driver.
type UploadMethod string

const (
	// UploadImmediate passes pixel data directly to TexSubImage.
	UploadImmediate UploadMethod = "immediate"
	// UploadPBO stages pixel data through a pixel unpack buffer.
	UploadPBO UploadMethod = "pbo"
)

// Flavor and single-channel expansion settings.
const (
	FlavorAuto = "auto"
	FlavorGL   = "gl"
	FlavorGLES = "gles"

	ExpandAuto   = "auto"
	ExpandAlways = "always"
	ExpandNever  = "never"
)

// Config holds the tunables of a Device. The zero value is not valid; start
// from DefaultConfig or LoadConfig.
type Config struct {
	// ShaderOverrideDir is searched for <name>.glsl before the builtin
	// sources. Empty disables overrides.
	ShaderOverrideDir string `toml:"shader_override_dir"`
	// ProgramCacheDir is where program binaries are persisted. Empty keeps
	// the cache in memory only.
	ProgramCacheDir string `toml:"program_cache_dir"`
	// UploadMethod is "immediate" or "pbo".
	UploadMethod UploadMethod `toml:"upload_method"`
	// MaxIncludeDepth bounds shader include nesting. 0 means unlimited.
	MaxIncludeDepth int `toml:"max_include_depth"`
	// DevicePixelRatio is fed to every program's uDevicePixelRatio.
	DevicePixelRatio float32 `toml:"device_pixel_ratio"`
	// Flavor overrides what the driver reports: "auto", "gl" or "gles".
	Flavor string `toml:"flavor"`
	// ExpandSingleChannel controls widening R8 uploads to RGBA8:
	// "auto" (on GL ES), "always" or "never".
	ExpandSingleChannel string `toml:"expand_single_channel"`
	// DebugMessages checks glGetError after every frame and logs failures.
	DebugMessages bool `toml:"debug_messages"`
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return Config{
		UploadMethod:        UploadImmediate,
		MaxIncludeDepth:     shader.DefaultMaxIncludeDepth,
		DevicePixelRatio:    1,
		Flavor:              FlavorAuto,
		ExpandSingleChannel: ExpandAuto,
	}
}

// LoadConfig reads a TOML file on top of DefaultConfig. Keys absent from
// the file keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("gldevice: read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		Logger().Warn("gldevice: unknown config keys", "path", path, "keys", fmt.Sprint(undecoded))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Write stores the configuration as TOML, creating parent directories.
func (c *Config) Write(path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("gldevice: encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("gldevice: write config %s: %w", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("gldevice: write config %s: %w", path, err)
	}
	return nil
}

// Validate reports the first field out of range.
func (c *Config) Validate() error {
	switch c.UploadMethod {
	case UploadImmediate, UploadPBO:
	default:
		return fmt.Errorf("%w: upload_method %q", ErrInvalidConfig, c.UploadMethod)
	}
	switch c.Flavor {
	case FlavorAuto, FlavorGL, FlavorGLES:
	default:
		return fmt.Errorf("%w: flavor %q", ErrInvalidConfig, c.Flavor)
	}
	switch c.ExpandSingleChannel {
	case ExpandAuto, ExpandAlways, ExpandNever:
	default:
		return fmt.Errorf("%w: expand_single_channel %q", ErrInvalidConfig, c.ExpandSingleChannel)
	}
	if c.MaxIncludeDepth < 0 {
		return fmt.Errorf("%w: max_include_depth %d", ErrInvalidConfig, c.MaxIncludeDepth)
	}
	if c.DevicePixelRatio <= 0 {
		return fmt.Errorf("%w: device_pixel_ratio %v", ErrInvalidConfig, c.DevicePixelRatio)
	}
	return nil
}
