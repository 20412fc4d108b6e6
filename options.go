package gldevice

import (
	"log/slog"

	"github.com/gogpu/gldevice/programcache"
	"github.com/gogpu/gldevice/shader"
)

// DeviceOption configures a Device during creation.
//
// Example:
//
//	cache := programcache.New()
//	dev, err := gldevice.NewDevice(drv,
//	    gldevice.WithConfig(cfg),
//	    gldevice.WithProgramCache(cache),
//	)
type DeviceOption func(*deviceOptions)

type deviceOptions struct {
	config   Config
	cache    *programcache.Cache
	registry *shader.Registry
	logger   *slog.Logger
}

func defaultOptions() deviceOptions {
	return deviceOptions{config: DefaultConfig()}
}

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) DeviceOption {
	return func(o *deviceOptions) {
		o.config = cfg
	}
}

// WithProgramCache shares a program binary cache with the device. The same
// cache may be given to several devices.
func WithProgramCache(c *programcache.Cache) DeviceOption {
	return func(o *deviceOptions) {
		o.cache = c
	}
}

// WithShaderRegistry replaces the registry built from the builtin sources
// and Config.ShaderOverrideDir.
func WithShaderRegistry(r *shader.Registry) DeviceOption {
	return func(o *deviceOptions) {
		o.registry = r
	}
}

// WithLogger installs l as the package logger. Equivalent to calling
// SetLogger before NewDevice.
func WithLogger(l *slog.Logger) DeviceOption {
	return func(o *deviceOptions) {
		o.logger = l
	}
}
