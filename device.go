package gldevice

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/gldevice/driver"
	"github.com/gogpu/gldevice/programcache"
	"github.com/gogpu/gldevice/shader"
)

// FrameID identifies a CPU-side frame. It increases by one per EndFrame.
type FrameID uint64

// Capabilities describe the driver, resolved once when the Device is
// created.
type Capabilities struct {
	// Flavor is desktop GL or GL ES, after any Config.Flavor override.
	Flavor gputypes.GLBackend
	// Adapter is the driver identity reported by the context.
	Adapter gputypes.AdapterInfo
	// GLSLVersion is the "#version" prologue used for every program.
	GLSLVersion string
	// MaxTextureSize is the largest supported texture dimension.
	MaxTextureSize int32
	// ExpandSingleChannel widens single-channel uploads to RGBA8.
	ExpandSingleChannel bool
	// ProgramBinaries reports driver support for program binaries.
	ProgramBinaries bool
}

func probeCapabilities(drv driver.Driver, cfg Config) Capabilities {
	flavor := drv.Flavor()
	switch cfg.Flavor {
	case FlavorGL:
		flavor = gputypes.GLBackendGL
	case FlavorGLES:
		flavor = gputypes.GLBackendGLES
	}
	var expand bool
	switch cfg.ExpandSingleChannel {
	case ExpandAlways:
		expand = true
	case ExpandAuto:
		expand = flavor == gputypes.GLBackendGLES
	}
	return Capabilities{
		Flavor: flavor,
		Adapter: gputypes.AdapterInfo{
			Name:       drv.GetString(driver.RENDERER),
			Vendor:     drv.GetString(driver.VENDOR),
			Driver:     drv.GetString(driver.VERSION),
			DriverInfo: drv.GetString(driver.SHADING_LANGUAGE_VERSION),
			Backend:    gputypes.BackendGL,
		},
		GLSLVersion:         shader.Version(flavor),
		MaxTextureSize:      drv.GetInteger(driver.MAX_TEXTURE_SIZE),
		ExpandSingleChannel: expand,
		ProgramBinaries:     drv.GetInteger(driver.NUM_PROGRAM_BINARY_FORMATS) > 0,
	}
}

// liveCounts tracks objects created and not yet deleted through the Device.
type liveCounts struct {
	textures, programs, vaos, pbos int
}

// Device owns GPU objects and issues work through a driver. It must only
// be used from the thread that owns the driver's GL context.
type Device struct {
	drv      driver.Driver
	cfg      Config
	caps     Capabilities
	registry *shader.Registry
	cache    *programcache.Cache

	bound          bindings
	defaultReadFBO driver.Framebuffer
	defaultDrawFBO driver.Framebuffer
	programModeID  driver.Uniform

	devicePixelRatio float32
	frameID          FrameID
	insideFrame      bool
	depthWrite       bool

	uploadPBO *PBO
	live      liveCounts
}

// NewDevice creates a device on drv. The driver's context must be current.
func NewDevice(drv driver.Driver, opts ...DeviceOption) (*Device, error) {
	if drv == nil {
		return nil, ErrNilDriver
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger != nil {
		SetLogger(o.logger)
	}
	if err := o.config.Validate(); err != nil {
		return nil, err
	}
	reg := o.registry
	if reg == nil {
		reg = shader.NewRegistry(o.config.ShaderOverrideDir)
	}

	d := &Device{
		drv:              drv,
		cfg:              o.config,
		caps:             probeCapabilities(drv, o.config),
		registry:         reg,
		cache:            o.cache,
		programModeID:    driver.InvalidUniform,
		devicePixelRatio: o.config.DevicePixelRatio,
		depthWrite:       true,
	}
	Logger().Info("gldevice: device created",
		"renderer", d.caps.Adapter.Name,
		"version", d.caps.Adapter.Driver,
		"flavor", d.caps.Flavor.String(),
		"max_texture_size", d.caps.MaxTextureSize,
		"program_binaries", d.caps.ProgramBinaries,
		"program_cache", d.cache != nil,
	)
	return d, nil
}

// Deinit tears the device down. It releases only the device's own staging
// buffer; objects the caller created must already have been deleted, and
// any still alive are reported.
func (d *Device) Deinit() {
	assertf(!d.insideFrame, "Deinit called inside a frame")
	if d.uploadPBO != nil {
		d.DeletePBO(d.uploadPBO)
		d.uploadPBO = nil
	}
	if d.live != (liveCounts{}) {
		Logger().Warn("gldevice: objects alive at deinit",
			"textures", d.live.textures,
			"programs", d.live.programs,
			"vaos", d.live.vaos,
			"pbos", d.live.pbos,
		)
	}
}

// Driver returns the driver the device issues work through.
func (d *Device) Driver() driver.Driver { return d.drv }

// Capabilities returns what was probed at creation.
func (d *Device) Capabilities() Capabilities { return d.caps }

// MaxTextureSize returns the largest supported texture dimension.
func (d *Device) MaxTextureSize() int32 { return d.caps.MaxTextureSize }

// RendererName returns the driver's GL_RENDERER string. It is part of the
// program cache key.
func (d *Device) RendererName() string { return d.caps.Adapter.Name }

// ProgramCache returns the shared binary cache, or nil.
func (d *Device) ProgramCache() *programcache.Cache { return d.cache }

// FrameID returns the current frame counter.
func (d *Device) FrameID() FrameID { return d.frameID }

// InsideFrame reports whether BeginFrame has been called without a
// matching EndFrame.
func (d *Device) InsideFrame() bool { return d.insideFrame }

// SetDevicePixelRatio changes the ratio passed to programs by SetUniforms.
func (d *Device) SetDevicePixelRatio(ratio float32) { d.devicePixelRatio = ratio }

// DevicePixelRatio returns the current device pixel ratio.
func (d *Device) DevicePixelRatio() float32 { return d.devicePixelRatio }
