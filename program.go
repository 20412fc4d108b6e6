package gldevice

import (
	"fmt"
	"runtime"

	"github.com/gogpu/gldevice/driver"
	"github.com/gogpu/gldevice/programcache"
	"github.com/gogpu/gldevice/shader"
)

// Standard uniforms every program may declare.
const (
	uniformTransform        = "uTransform"
	uniformDevicePixelRatio = "uDevicePixelRatio"
	uniformMode             = "uMode"
)

// Program is a linked shader program and its standard uniform locations.
type Program struct {
	id                driver.Program
	name              string
	uTransform        driver.Uniform
	uDevicePixelRatio driver.Uniform
	uMode             driver.Uniform
}

// ID returns the GL name, zero once deleted.
func (p *Program) ID() driver.Program { return p.id }

// Name returns the base shader name the program was built from.
func (p *Program) Name() string { return p.name }

// CreateProgram assembles, compiles and links the shader name with the
// given feature defines ("#define ..." lines, see shader.Defines). When a
// program cache is configured a cached binary is tried first, and a
// freshly linked program's binary is stored. The program is left bound.
//
// Compile and link failures are returned as *ShaderError.
func (d *Device) CreateProgram(name, features string, desc VertexDescriptor) (*Program, error) {
	d.assertInsideFrame("CreateProgram")
	vs, fs, err := shader.Build(d.registry, shader.BuildOptions{
		Name:     name,
		Flavor:   d.caps.Flavor,
		Features: features,
		MaxDepth: d.cfg.MaxIncludeDepth,
	})
	if err != nil {
		return nil, fmt.Errorf("gldevice: build program %s: %w", name, err)
	}

	src := programcache.Sources{Renderer: d.caps.Adapter.Name, VS: vs, FS: fs}
	useCache := d.cache != nil && d.caps.ProgramBinaries
	pid := d.drv.CreateProgram()

	loaded := false
	if useCache {
		if bin, ok := d.cache.Get(src); ok {
			d.drv.ProgramBinary(pid, driver.Enum(bin.Format), bin.Data)
			if d.drv.GetProgrami(pid, driver.LINK_STATUS) != 0 {
				loaded = true
				Logger().Debug("gldevice: program loaded from binary", "name", name)
			} else {
				Logger().Warn("gldevice: cached program binary rejected", "name", name,
					"log", d.drv.GetProgramInfoLog(pid))
				d.cache.Remove(src)
			}
		}
	}

	if !loaded {
		if err := d.compileAndLink(pid, name, vs, fs, desc, useCache); err != nil {
			d.drv.DeleteProgram(pid)
			return nil, err
		}
		if useCache {
			d.storeBinary(pid, name, src)
		}
	}

	p := &Program{
		id:                pid,
		name:              name,
		uTransform:        d.drv.GetUniformLocation(pid, uniformTransform),
		uDevicePixelRatio: d.drv.GetUniformLocation(pid, uniformDevicePixelRatio),
		uMode:             d.drv.GetUniformLocation(pid, uniformMode),
	}
	d.live.programs++
	runtime.SetFinalizer(p, func(p *Program) {
		if p.id != 0 {
			Logger().Warn("gldevice: program leaked", "id", uint32(p.id), "name", p.name)
		}
	})
	d.BindProgram(p)
	return p, nil
}

func (d *Device) compileShader(name, stage string, typ driver.Enum, source string) (driver.Shader, error) {
	s := d.drv.CreateShader(typ)
	d.drv.ShaderSource(s, source)
	d.drv.CompileShader(s)
	if d.drv.GetShaderi(s, driver.COMPILE_STATUS) == 0 {
		log := d.drv.GetShaderInfoLog(s)
		d.drv.DeleteShader(s)
		Logger().Warn("gldevice: shader compilation failed", "name", name, "stage", stage, "log", log)
		return 0, &ShaderError{Kind: ShaderCompilation, Name: name, Stage: stage, Log: log}
	}
	return s, nil
}

func (d *Device) compileAndLink(pid driver.Program, name, vs, fs string, desc VertexDescriptor, retrievable bool) error {
	vsID, err := d.compileShader(name, "vs", driver.VERTEX_SHADER, vs)
	if err != nil {
		return err
	}
	fsID, err := d.compileShader(name, "fs", driver.FRAGMENT_SHADER, fs)
	if err != nil {
		d.drv.DeleteShader(vsID)
		return err
	}

	d.drv.AttachShader(pid, vsID)
	d.drv.AttachShader(pid, fsID)
	var index uint32
	for _, list := range [][]VertexAttribute{desc.VertexAttributes, desc.InstanceAttributes} {
		for _, a := range list {
			d.drv.BindAttribLocation(pid, index, a.Name)
			index++
		}
	}
	if retrievable {
		d.drv.ProgramParameteri(pid, driver.PROGRAM_BINARY_RETRIEVABLE_HINT, driver.TRUE)
	}
	d.drv.LinkProgram(pid)

	d.drv.DetachShader(pid, vsID)
	d.drv.DetachShader(pid, fsID)
	d.drv.DeleteShader(vsID)
	d.drv.DeleteShader(fsID)

	if d.drv.GetProgrami(pid, driver.LINK_STATUS) == 0 {
		log := d.drv.GetProgramInfoLog(pid)
		Logger().Warn("gldevice: program link failed", "name", name, "log", log)
		return &ShaderError{Kind: ShaderLink, Name: name, Log: log}
	}
	return nil
}

func (d *Device) storeBinary(pid driver.Program, name string, src programcache.Sources) {
	if d.cache.Contains(src) {
		return
	}
	data, format := d.drv.GetProgramBinary(pid)
	if len(data) == 0 {
		Logger().Debug("gldevice: driver returned no program binary", "name", name)
		return
	}
	if _, err := d.cache.Insert(src, programcache.Binary{Format: uint32(format), Data: data}); err != nil {
		Logger().Warn("gldevice: program binary not cached", "name", name, "err", err)
	}
}

// BindShaderSamplers binds p and points each slot's sampler uniform at that
// slot. Samplers the program does not use are skipped.
func (d *Device) BindShaderSamplers(p *Program, slots ...TextureSlot) {
	d.BindProgram(p)
	for _, s := range slots {
		u := d.drv.GetUniformLocation(p.id, s.SamplerName())
		if u.Valid() {
			d.drv.Uniform1i(u, int32(s))
		}
	}
}

// SetUniforms sets the transform and device pixel ratio of p, which must be
// bound.
func (d *Device) SetUniforms(p *Program, transform *[16]float32) {
	d.assertInsideFrame("SetUniforms")
	assertf(d.bound.program == p.id, "SetUniforms on program %d while %d is bound", p.id, d.bound.program)
	if p.uTransform.Valid() {
		d.drv.UniformMatrix4fv(p.uTransform, false, transform)
	}
	if p.uDevicePixelRatio.Valid() {
		d.drv.Uniform1f(p.uDevicePixelRatio, d.devicePixelRatio)
	}
}

// SwitchMode sets the uMode uniform of the bound program.
func (d *Device) SwitchMode(mode int32) {
	d.assertInsideFrame("SwitchMode")
	if d.programModeID.Valid() {
		d.drv.Uniform1i(d.programModeID, mode)
	}
}

// DeleteProgram deletes p. Deleting the bound program also unbinds it.
func (d *Device) DeleteProgram(p *Program) {
	assertf(p.id != 0, "program deleted twice")
	if d.bound.program == p.id {
		d.bound.program = 0
		d.programModeID = driver.InvalidUniform
		d.drv.UseProgram(0)
	}
	d.drv.DeleteProgram(p.id)
	p.id = 0
	d.live.programs--
}
