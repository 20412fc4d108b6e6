package driver

import (
	"fmt"
	"sort"

	"github.com/gogpu/gpucontext"
)

// Registered driver names.
const (
	NameGLCore = "glcore"
	NameNoop   = "noop"
)

// Factory opens a driver for the GL context current on the calling thread.
type Factory func() (Driver, error)

// drivers holds registered factories. Priority order for OpenDefault:
// real GL first, the in-memory driver as the fallback.
var drivers = gpucontext.NewRegistry[Factory](
	gpucontext.WithPriority(NameGLCore, NameNoop),
)

// Register registers a driver factory with the given name.
// This is typically called from init() functions in driver packages.
// If a driver with the same name is already registered, it is replaced.
func Register(name string, factory Factory) {
	drivers.Register(name, func() Factory { return factory })
}

// Unregister removes a driver from the registry.
// This is useful for testing.
func Unregister(name string) {
	drivers.Unregister(name)
}

// Available returns the registered driver names in sorted order.
func Available() []string {
	names := drivers.Available()
	sort.Strings(names)
	return names
}

// IsRegistered checks if a driver with the given name is registered.
func IsRegistered(name string) bool {
	return drivers.Has(name)
}

// Open creates a driver by name.
func Open(name string) (Driver, error) {
	factory := drivers.Get(name)
	if factory == nil {
		return nil, fmt.Errorf("%w: %q", ErrDriverNotRegistered, name)
	}
	d, err := factory()
	if err != nil {
		return nil, fmt.Errorf("driver: open %q: %w", name, err)
	}
	return d, nil
}

// OpenDefault opens the highest-priority registered driver and returns its
// name alongside it.
func OpenDefault() (Driver, string, error) {
	name := drivers.BestName()
	if name == "" {
		return nil, "", ErrNoDrivers
	}
	d, err := Open(name)
	if err != nil {
		return nil, name, err
	}
	return d, name, nil
}
