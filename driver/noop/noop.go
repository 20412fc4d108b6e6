// Package noop provides an in-memory driver.Driver that simulates GL object
// lifetimes and binding points without a GPU.
//
// The driver records how often each entry point is called, keeps the state
// a real context would keep (object storage, attachments, bindings, blend
// state) and flags misuse such as deleting a name twice. It is the test
// double for the device layer and can also back headless runs.
//
// Shader compilation fails for any source containing "#error"; linking fails
// when a source contains LinkErrorMarker. Program binaries embed the linked
// sources so they can be reloaded by ProgramBinary.
package noop

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/gldevice/driver"
)

// LinkErrorMarker makes LinkProgram fail when present in any attached source.
const LinkErrorMarker = "NOOP_LINK_ERROR"

// BinaryFormat is the format tag of program binaries produced by this driver.
const BinaryFormat driver.Enum = 0x4E4F4F50

const binaryMagic = "noopbin\x00"

func init() {
	driver.Register(driver.NameNoop, func() (driver.Driver, error) {
		return New(Config{}), nil
	})
}

// Config controls the simulated context.
type Config struct {
	// Flavor is reported by Flavor(). Defaults to desktop GL.
	Flavor gputypes.GLBackend
	// Renderer is returned for GL_RENDERER. Defaults to "noop".
	Renderer string
	// MaxTextureSize is returned for GL_MAX_TEXTURE_SIZE. Defaults to 16384.
	MaxTextureSize int32
	// DefaultFramebuffer is the host framebuffer bound when the driver is
	// created, as when embedded in another application's context.
	DefaultFramebuffer driver.Framebuffer
	// NoProgramBinaries makes GetProgramBinary return empty data.
	NoProgramBinaries bool
	// RejectBinaries makes ProgramBinary leave the program unlinked,
	// as a driver update would.
	RejectBinaries bool
}

// Texture is the simulated storage of a texture object.
type Texture struct {
	Target         driver.Enum
	Width          int32
	Height         int32
	Depth          int32
	InternalFormat int32
	Format         driver.Enum
	Type           driver.Enum
	Params         map[driver.Enum]int32
	// Specs counts storage (re)specifications through TexImage2D/3D.
	Specs int
	// Uploads counts TexSubImage2D/3D calls.
	Uploads int
	// Data holds the bytes of the last TexImage or TexSubImage call.
	Data []byte
}

// Framebuffer records the attachments of a framebuffer object.
type Framebuffer struct {
	Color      driver.Texture
	ColorLayer int32
	Depth      driver.Renderbuffer
	// Attachments counts attachment calls.
	Attachments int
}

// Renderbuffer records the storage of a renderbuffer object.
type Renderbuffer struct {
	Format driver.Enum
	Width  int32
	Height int32
	Specs  int
}

// Buffer records the contents of a buffer object.
type Buffer struct {
	Data  []byte
	Usage driver.Enum
}

// Attrib is the state of one vertex attribute slot.
type Attrib struct {
	Enabled    bool
	Buffer     driver.Buffer
	Size       int32
	Type       driver.Enum
	Normalized bool
	Integer    bool
	Stride     int32
	Offset     int
	Divisor    uint32
}

// VertexArray records vertex array object state.
type VertexArray struct {
	Attribs       map[uint32]Attrib
	ElementBuffer driver.Buffer
}

// BlendState is the simulated blend configuration.
type BlendState struct {
	SrcRGB, DstRGB, SrcAlpha, DstAlpha driver.Enum
	EquationRGB, EquationAlpha         driver.Enum
	Color                              [4]float32
}

// Draw records one draw call and the state it was issued with.
type Draw struct {
	Mode      driver.Enum
	Type      driver.Enum
	First     int32
	Count     int32
	Offset    int
	Instances int32
	Program   driver.Program
	VAO       driver.VertexArray
	Target    driver.Framebuffer
}

// Counts is the number of live objects per kind.
type Counts struct {
	Textures, Framebuffers, Renderbuffers int
	Buffers, VertexArrays                 int
	Shaders, Programs                     int
}

type shaderObj struct {
	typ      driver.Enum
	source   string
	compiled bool
	log      string
}

type programObj struct {
	shaders   []driver.Shader
	attribs   map[string]uint32
	params    map[driver.Enum]int32
	linked    bool
	vs, fs    string
	log       string
	locations map[string]driver.Uniform
	values    map[driver.Uniform][]float32
}

// Driver is the in-memory driver. It is not safe for concurrent use, the
// same as a real GL context.
type Driver struct {
	cfg Config

	calls  map[string]int
	misuse []string
	errors []driver.Enum
	names  map[string]uint32

	textures      map[driver.Texture]*Texture
	framebuffers  map[driver.Framebuffer]*Framebuffer
	renderbuffers map[driver.Renderbuffer]*Renderbuffer
	buffers       map[driver.Buffer]*Buffer
	vertexArrays  map[driver.VertexArray]*VertexArray
	shaders       map[driver.Shader]*shaderObj
	programs      map[driver.Program]*programObj

	activeUnit   int
	units        [32]driver.Texture
	drawFBO      driver.Framebuffer
	readFBO      driver.Framebuffer
	renderbuffer driver.Renderbuffer
	bufferBinds  map[driver.Enum]driver.Buffer
	defaultVAO   VertexArray
	vao          driver.VertexArray
	program      driver.Program

	enabled    map[driver.Enum]bool
	blend      BlendState
	depthFunc  driver.Enum
	depthMask  bool
	scissor    [4]int32
	viewport   [4]int32
	pixelStore map[driver.Enum]int32
	clearColor [4]float32
	clearDepth float64
	draws      []Draw
}

// New creates a simulated context.
func New(cfg Config) *Driver {
	if cfg.Renderer == "" {
		cfg.Renderer = "noop"
	}
	if cfg.MaxTextureSize == 0 {
		cfg.MaxTextureSize = 16384
	}
	d := &Driver{
		cfg:           cfg,
		calls:         make(map[string]int),
		names:         make(map[string]uint32),
		textures:      make(map[driver.Texture]*Texture),
		framebuffers:  make(map[driver.Framebuffer]*Framebuffer),
		renderbuffers: make(map[driver.Renderbuffer]*Renderbuffer),
		buffers:       make(map[driver.Buffer]*Buffer),
		vertexArrays:  make(map[driver.VertexArray]*VertexArray),
		shaders:       make(map[driver.Shader]*shaderObj),
		programs:      make(map[driver.Program]*programObj),
		bufferBinds:   make(map[driver.Enum]driver.Buffer),
		defaultVAO:    VertexArray{Attribs: make(map[uint32]Attrib)},
		enabled:       make(map[driver.Enum]bool),
		depthMask:     true,
		depthFunc:     driver.LESS,
		pixelStore:    map[driver.Enum]int32{driver.UNPACK_ALIGNMENT: 4, driver.PACK_ALIGNMENT: 4},
		blend: BlendState{
			SrcRGB: driver.ONE, DstRGB: driver.ZERO, SrcAlpha: driver.ONE, DstAlpha: driver.ZERO,
			EquationRGB: driver.FUNC_ADD, EquationAlpha: driver.FUNC_ADD,
		},
	}
	if fbo := cfg.DefaultFramebuffer; fbo != 0 {
		d.framebuffers[fbo] = &Framebuffer{}
		d.names["framebuffer"] = uint32(fbo)
		d.drawFBO, d.readFBO = fbo, fbo
	}
	return d
}

var _ driver.Driver = (*Driver)(nil)

// Calls returns how many times the named entry point was called, e.g.
// Calls("BindTexture").
func (d *Driver) Calls(name string) int { return d.calls[name] }

// ResetCalls clears all call counters.
func (d *Driver) ResetCalls() { d.calls = make(map[string]int) }

// Misuse returns descriptions of protocol violations seen so far: deleting
// unknown names, binding deleted objects, operating with nothing bound.
func (d *Driver) Misuse() []string { return append([]string(nil), d.misuse...) }

// Live returns the number of live objects per kind.
func (d *Driver) Live() Counts {
	return Counts{
		Textures:      len(d.textures),
		Framebuffers:  len(d.framebuffers),
		Renderbuffers: len(d.renderbuffers),
		Buffers:       len(d.buffers),
		VertexArrays:  len(d.vertexArrays),
		Shaders:       len(d.shaders),
		Programs:      len(d.programs),
	}
}

// PushError queues an error to be returned by GetError.
func (d *Driver) PushError(e driver.Enum) { d.errors = append(d.errors, e) }

// TextureState returns the simulated storage of t.
func (d *Driver) TextureState(t driver.Texture) (Texture, bool) {
	tex, ok := d.textures[t]
	if !ok {
		return Texture{}, false
	}
	return *tex, true
}

// FramebufferState returns the attachments of fbo.
func (d *Driver) FramebufferState(fbo driver.Framebuffer) (Framebuffer, bool) {
	f, ok := d.framebuffers[fbo]
	if !ok {
		return Framebuffer{}, false
	}
	return *f, true
}

// RenderbufferState returns the storage of rb.
func (d *Driver) RenderbufferState(rb driver.Renderbuffer) (Renderbuffer, bool) {
	r, ok := d.renderbuffers[rb]
	if !ok {
		return Renderbuffer{}, false
	}
	return *r, true
}

// BufferState returns the contents of b.
func (d *Driver) BufferState(b driver.Buffer) (Buffer, bool) {
	buf, ok := d.buffers[b]
	if !ok {
		return Buffer{}, false
	}
	return *buf, true
}

// VertexArrayState returns the recorded state of vao.
func (d *Driver) VertexArrayState(vao driver.VertexArray) (VertexArray, bool) {
	v, ok := d.vertexArrays[vao]
	if !ok {
		return VertexArray{}, false
	}
	return *v, true
}

// IsBuffer reports whether b names a live buffer.
func (d *Driver) IsBuffer(b driver.Buffer) bool { _, ok := d.buffers[b]; return ok }

// IsProgram reports whether p names a live program.
func (d *Driver) IsProgram(p driver.Program) bool { _, ok := d.programs[p]; return ok }

// AttribLocations returns the attribute bindings requested for p.
func (d *Driver) AttribLocations(p driver.Program) map[string]uint32 {
	prog, ok := d.programs[p]
	if !ok {
		return nil
	}
	out := make(map[string]uint32, len(prog.attribs))
	for k, v := range prog.attribs {
		out[k] = v
	}
	return out
}

// ProgramParam returns a value set through ProgramParameteri.
func (d *Driver) ProgramParam(p driver.Program, pname driver.Enum) int32 {
	if prog, ok := d.programs[p]; ok {
		return prog.params[pname]
	}
	return 0
}

// UniformValue returns the last value written to the named uniform of p.
func (d *Driver) UniformValue(p driver.Program, name string) ([]float32, bool) {
	prog, ok := d.programs[p]
	if !ok {
		return nil, false
	}
	loc, ok := prog.locations[name]
	if !ok {
		return nil, false
	}
	v, ok := prog.values[loc]
	return v, ok
}

// BoundTexture returns the texture bound to the given unit.
func (d *Driver) BoundTexture(unit int) driver.Texture { return d.units[unit] }

// ActiveUnit returns the active texture unit index.
func (d *Driver) ActiveUnit() int { return d.activeUnit }

// BoundFramebuffer returns the framebuffer bound to target.
func (d *Driver) BoundFramebuffer(target driver.Enum) driver.Framebuffer {
	if target == driver.READ_FRAMEBUFFER {
		return d.readFBO
	}
	return d.drawFBO
}

// BoundBuffer returns the buffer bound to target.
func (d *Driver) BoundBuffer(target driver.Enum) driver.Buffer {
	if target == driver.ELEMENT_ARRAY_BUFFER {
		return d.currentVAO().ElementBuffer
	}
	return d.bufferBinds[target]
}

// BoundVertexArray returns the bound vertex array object.
func (d *Driver) BoundVertexArray() driver.VertexArray { return d.vao }

// BoundProgram returns the program in use.
func (d *Driver) BoundProgram() driver.Program { return d.program }

// Enabled reports whether a capability is enabled.
func (d *Driver) Enabled(capability driver.Enum) bool { return d.enabled[capability] }

// Blend returns the current blend configuration.
func (d *Driver) Blend() BlendState { return d.blend }

// DepthState returns the depth function and write mask.
func (d *Driver) DepthState() (driver.Enum, bool) { return d.depthFunc, d.depthMask }

// ScissorRect returns the scissor box.
func (d *Driver) ScissorRect() [4]int32 { return d.scissor }

// ViewportRect returns the viewport.
func (d *Driver) ViewportRect() [4]int32 { return d.viewport }

// PixelStore returns a pixel store parameter.
func (d *Driver) PixelStore(pname driver.Enum) int32 { return d.pixelStore[pname] }

// Draws returns the draw calls issued so far.
func (d *Driver) Draws() []Draw { return append([]Draw(nil), d.draws...) }

func (d *Driver) call(name string) { d.calls[name]++ }

func (d *Driver) misused(format string, args ...any) {
	d.misuse = append(d.misuse, fmt.Sprintf(format, args...))
	d.errors = append(d.errors, driver.INVALID_OPERATION)
}

func (d *Driver) gen(kind string) uint32 {
	d.names[kind]++
	return d.names[kind]
}

func (d *Driver) currentVAO() *VertexArray {
	if d.vao == 0 {
		return &d.defaultVAO
	}
	if v, ok := d.vertexArrays[d.vao]; ok {
		return v
	}
	return &d.defaultVAO
}

func (d *Driver) boundTexture(target driver.Enum) *Texture {
	t := d.units[d.activeUnit]
	tex, ok := d.textures[t]
	if !ok {
		d.misused("no texture bound to unit %d", d.activeUnit)
		return nil
	}
	if tex.Target != target {
		d.misused("texture %d bound as %#x, used as %#x", t, tex.Target, target)
	}
	return tex
}

func (d *Driver) targetFramebuffer(target driver.Enum) *Framebuffer {
	fbo := d.drawFBO
	if target == driver.READ_FRAMEBUFFER {
		fbo = d.readFBO
	}
	f, ok := d.framebuffers[fbo]
	if !ok || fbo == 0 {
		d.misused("no framebuffer bound to %#x", target)
		return nil
	}
	return f
}

func (d *Driver) boundBuffer(target driver.Enum) *Buffer {
	b := d.BoundBuffer(target)
	buf, ok := d.buffers[b]
	if !ok {
		d.misused("no buffer bound to %#x", target)
		return nil
	}
	return buf
}

// Flavor implements driver.Driver.
func (d *Driver) Flavor() gputypes.GLBackend { return d.cfg.Flavor }

// GetString implements driver.Driver.
func (d *Driver) GetString(name driver.Enum) string {
	d.call("GetString")
	switch name {
	case driver.RENDERER:
		return d.cfg.Renderer
	case driver.VENDOR:
		return "gogpu"
	case driver.VERSION:
		if d.cfg.Flavor == gputypes.GLBackendGLES {
			return "OpenGL ES 3.0 noop"
		}
		return "3.3.0 noop"
	case driver.SHADING_LANGUAGE_VERSION:
		if d.cfg.Flavor == gputypes.GLBackendGLES {
			return "OpenGL ES GLSL ES 3.00"
		}
		return "3.30"
	}
	return ""
}

// GetInteger implements driver.Driver.
func (d *Driver) GetInteger(pname driver.Enum) int32 {
	d.call("GetInteger")
	switch pname {
	case driver.MAX_TEXTURE_SIZE:
		return d.cfg.MaxTextureSize
	case driver.DRAW_FRAMEBUFFER_BINDING:
		return int32(d.drawFBO)
	case driver.READ_FRAMEBUFFER_BINDING:
		return int32(d.readFBO)
	case driver.NUM_PROGRAM_BINARY_FORMATS:
		if d.cfg.NoProgramBinaries {
			return 0
		}
		return 1
	}
	return d.pixelStore[pname]
}

// GetError implements driver.Driver.
func (d *Driver) GetError() driver.Enum {
	if len(d.errors) == 0 {
		return driver.NO_ERROR
	}
	e := d.errors[0]
	d.errors = d.errors[1:]
	return e
}

// GenTextures implements driver.Driver.
func (d *Driver) GenTextures(n int) []driver.Texture {
	d.call("GenTextures")
	out := make([]driver.Texture, n)
	for i := range out {
		out[i] = driver.Texture(d.gen("texture"))
		d.textures[out[i]] = &Texture{Params: make(map[driver.Enum]int32)}
	}
	return out
}

// DeleteTextures implements driver.Driver.
func (d *Driver) DeleteTextures(textures ...driver.Texture) {
	d.call("DeleteTextures")
	for _, t := range textures {
		if t == 0 {
			continue
		}
		if _, ok := d.textures[t]; !ok {
			d.misused("delete of unknown texture %d", t)
			continue
		}
		delete(d.textures, t)
		for i, b := range d.units {
			if b == t {
				d.units[i] = 0
			}
		}
	}
}

// ActiveTexture implements driver.Driver.
func (d *Driver) ActiveTexture(unit driver.Enum) {
	d.call("ActiveTexture")
	idx := int(unit - driver.TEXTURE0)
	if idx < 0 || idx >= len(d.units) {
		d.misused("active texture unit %#x out of range", unit)
		return
	}
	d.activeUnit = idx
}

// BindTexture implements driver.Driver.
func (d *Driver) BindTexture(target driver.Enum, t driver.Texture) {
	d.call("BindTexture")
	if t != 0 {
		tex, ok := d.textures[t]
		if !ok {
			d.misused("bind of unknown texture %d", t)
			return
		}
		if tex.Target == 0 {
			tex.Target = target
		}
	}
	d.units[d.activeUnit] = t
}

// TexParameteri implements driver.Driver.
func (d *Driver) TexParameteri(target, pname driver.Enum, param int32) {
	d.call("TexParameteri")
	if tex := d.boundTexture(target); tex != nil {
		tex.Params[pname] = param
	}
}

// TexImage2D implements driver.Driver.
func (d *Driver) TexImage2D(target driver.Enum, level, internalFormat, width, height int32, format, typ driver.Enum, pixels []byte) {
	d.call("TexImage2D")
	d.texImage(target, internalFormat, width, height, 1, format, typ, pixels)
}

// TexImage3D implements driver.Driver.
func (d *Driver) TexImage3D(target driver.Enum, level, internalFormat, width, height, depth int32, format, typ driver.Enum, pixels []byte) {
	d.call("TexImage3D")
	d.texImage(target, internalFormat, width, height, depth, format, typ, pixels)
}

func (d *Driver) texImage(target driver.Enum, internalFormat, width, height, depth int32, format, typ driver.Enum, pixels []byte) {
	tex := d.boundTexture(target)
	if tex == nil {
		return
	}
	tex.Width, tex.Height, tex.Depth = width, height, depth
	tex.InternalFormat, tex.Format, tex.Type = internalFormat, format, typ
	tex.Data = append([]byte(nil), pixels...)
	tex.Specs++
}

// TexSubImage2D implements driver.Driver.
func (d *Driver) TexSubImage2D(target driver.Enum, level, x, y, width, height int32, format, typ driver.Enum, pixels []byte, offset int) {
	d.call("TexSubImage2D")
	d.texSubImage(target, pixels, offset)
}

// TexSubImage3D implements driver.Driver.
func (d *Driver) TexSubImage3D(target driver.Enum, level, x, y, z, width, height, depth int32, format, typ driver.Enum, pixels []byte, offset int) {
	d.call("TexSubImage3D")
	d.texSubImage(target, pixels, offset)
}

func (d *Driver) texSubImage(target driver.Enum, pixels []byte, offset int) {
	tex := d.boundTexture(target)
	if tex == nil {
		return
	}
	if pixels == nil {
		pbo := d.boundBuffer(driver.PIXEL_UNPACK_BUFFER)
		if pbo == nil {
			return
		}
		if offset <= len(pbo.Data) {
			pixels = pbo.Data[offset:]
		}
	}
	tex.Data = append([]byte(nil), pixels...)
	tex.Uploads++
}

// GenFramebuffers implements driver.Driver.
func (d *Driver) GenFramebuffers(n int) []driver.Framebuffer {
	d.call("GenFramebuffers")
	out := make([]driver.Framebuffer, n)
	for i := range out {
		out[i] = driver.Framebuffer(d.gen("framebuffer"))
		d.framebuffers[out[i]] = &Framebuffer{}
	}
	return out
}

// DeleteFramebuffers implements driver.Driver.
func (d *Driver) DeleteFramebuffers(fbos ...driver.Framebuffer) {
	d.call("DeleteFramebuffers")
	for _, f := range fbos {
		if f == 0 {
			continue
		}
		if _, ok := d.framebuffers[f]; !ok {
			d.misused("delete of unknown framebuffer %d", f)
			continue
		}
		delete(d.framebuffers, f)
		if d.drawFBO == f {
			d.drawFBO = 0
		}
		if d.readFBO == f {
			d.readFBO = 0
		}
	}
}

// BindFramebuffer implements driver.Driver.
func (d *Driver) BindFramebuffer(target driver.Enum, fbo driver.Framebuffer) {
	d.call("BindFramebuffer")
	if _, ok := d.framebuffers[fbo]; fbo != 0 && !ok {
		d.misused("bind of unknown framebuffer %d", fbo)
		return
	}
	switch target {
	case driver.FRAMEBUFFER:
		d.drawFBO, d.readFBO = fbo, fbo
	case driver.DRAW_FRAMEBUFFER:
		d.drawFBO = fbo
	case driver.READ_FRAMEBUFFER:
		d.readFBO = fbo
	default:
		d.misused("unknown framebuffer target %#x", target)
	}
}

// FramebufferTexture2D implements driver.Driver.
func (d *Driver) FramebufferTexture2D(target, attachment, texTarget driver.Enum, t driver.Texture, level int32) {
	d.call("FramebufferTexture2D")
	if f := d.targetFramebuffer(target); f != nil {
		f.Color, f.ColorLayer = t, 0
		f.Attachments++
	}
}

// FramebufferTextureLayer implements driver.Driver.
func (d *Driver) FramebufferTextureLayer(target, attachment driver.Enum, t driver.Texture, level, layer int32) {
	d.call("FramebufferTextureLayer")
	f := d.targetFramebuffer(target)
	if f == nil {
		return
	}
	if tex, ok := d.textures[t]; ok && layer >= tex.Depth {
		d.misused("attach layer %d of texture %d with %d layers", layer, t, tex.Depth)
	}
	f.Color, f.ColorLayer = t, layer
	f.Attachments++
}

// FramebufferRenderbuffer implements driver.Driver.
func (d *Driver) FramebufferRenderbuffer(target, attachment, rbTarget driver.Enum, rb driver.Renderbuffer) {
	d.call("FramebufferRenderbuffer")
	f := d.targetFramebuffer(target)
	if f == nil {
		return
	}
	if _, ok := d.renderbuffers[rb]; rb != 0 && !ok {
		d.misused("attach of unknown renderbuffer %d", rb)
	}
	f.Depth = rb
	f.Attachments++
}

// BlitFramebuffer implements driver.Driver.
func (d *Driver) BlitFramebuffer(srcX0, srcY0, srcX1, srcY1, dstX0, dstY0, dstX1, dstY1 int32, mask, filter driver.Enum) {
	d.call("BlitFramebuffer")
}

// ReadPixels implements driver.Driver. The destination is zero-filled.
func (d *Driver) ReadPixels(x, y, width, height int32, format, typ driver.Enum, dst []byte) {
	d.call("ReadPixels")
	clear(dst)
}

// GenRenderbuffers implements driver.Driver.
func (d *Driver) GenRenderbuffers(n int) []driver.Renderbuffer {
	d.call("GenRenderbuffers")
	out := make([]driver.Renderbuffer, n)
	for i := range out {
		out[i] = driver.Renderbuffer(d.gen("renderbuffer"))
		d.renderbuffers[out[i]] = &Renderbuffer{}
	}
	return out
}

// DeleteRenderbuffers implements driver.Driver.
func (d *Driver) DeleteRenderbuffers(rbs ...driver.Renderbuffer) {
	d.call("DeleteRenderbuffers")
	for _, rb := range rbs {
		if rb == 0 {
			continue
		}
		if _, ok := d.renderbuffers[rb]; !ok {
			d.misused("delete of unknown renderbuffer %d", rb)
			continue
		}
		delete(d.renderbuffers, rb)
		if d.renderbuffer == rb {
			d.renderbuffer = 0
		}
	}
}

// BindRenderbuffer implements driver.Driver.
func (d *Driver) BindRenderbuffer(target driver.Enum, rb driver.Renderbuffer) {
	d.call("BindRenderbuffer")
	if _, ok := d.renderbuffers[rb]; rb != 0 && !ok {
		d.misused("bind of unknown renderbuffer %d", rb)
		return
	}
	d.renderbuffer = rb
}

// RenderbufferStorage implements driver.Driver.
func (d *Driver) RenderbufferStorage(target, internalFormat driver.Enum, width, height int32) {
	d.call("RenderbufferStorage")
	rb, ok := d.renderbuffers[d.renderbuffer]
	if !ok {
		d.misused("renderbuffer storage with no renderbuffer bound")
		return
	}
	rb.Format, rb.Width, rb.Height = internalFormat, width, height
	rb.Specs++
}

// GenBuffers implements driver.Driver.
func (d *Driver) GenBuffers(n int) []driver.Buffer {
	d.call("GenBuffers")
	out := make([]driver.Buffer, n)
	for i := range out {
		out[i] = driver.Buffer(d.gen("buffer"))
		d.buffers[out[i]] = &Buffer{}
	}
	return out
}

// DeleteBuffers implements driver.Driver.
func (d *Driver) DeleteBuffers(buffers ...driver.Buffer) {
	d.call("DeleteBuffers")
	for _, b := range buffers {
		if b == 0 {
			continue
		}
		if _, ok := d.buffers[b]; !ok {
			d.misused("delete of unknown buffer %d", b)
			continue
		}
		delete(d.buffers, b)
		for target, bound := range d.bufferBinds {
			if bound == b {
				d.bufferBinds[target] = 0
			}
		}
		if vao := d.currentVAO(); vao.ElementBuffer == b {
			vao.ElementBuffer = 0
		}
	}
}

// BindBuffer implements driver.Driver.
func (d *Driver) BindBuffer(target driver.Enum, b driver.Buffer) {
	d.call("BindBuffer")
	if _, ok := d.buffers[b]; b != 0 && !ok {
		d.misused("bind of unknown buffer %d", b)
		return
	}
	if target == driver.ELEMENT_ARRAY_BUFFER {
		d.currentVAO().ElementBuffer = b
		return
	}
	d.bufferBinds[target] = b
}

// BufferData implements driver.Driver.
func (d *Driver) BufferData(target driver.Enum, size int, data []byte, usage driver.Enum) {
	d.call("BufferData")
	buf := d.boundBuffer(target)
	if buf == nil {
		return
	}
	buf.Data = make([]byte, size)
	copy(buf.Data, data)
	buf.Usage = usage
}

// BufferSubData implements driver.Driver.
func (d *Driver) BufferSubData(target driver.Enum, offset int, data []byte) {
	d.call("BufferSubData")
	buf := d.boundBuffer(target)
	if buf == nil {
		return
	}
	if offset+len(data) > len(buf.Data) {
		d.misused("buffer sub data past end: %d+%d > %d", offset, len(data), len(buf.Data))
		return
	}
	copy(buf.Data[offset:], data)
}

// GenVertexArrays implements driver.Driver.
func (d *Driver) GenVertexArrays(n int) []driver.VertexArray {
	d.call("GenVertexArrays")
	out := make([]driver.VertexArray, n)
	for i := range out {
		out[i] = driver.VertexArray(d.gen("vertexarray"))
		d.vertexArrays[out[i]] = &VertexArray{Attribs: make(map[uint32]Attrib)}
	}
	return out
}

// DeleteVertexArrays implements driver.Driver.
func (d *Driver) DeleteVertexArrays(vaos ...driver.VertexArray) {
	d.call("DeleteVertexArrays")
	for _, v := range vaos {
		if v == 0 {
			continue
		}
		if _, ok := d.vertexArrays[v]; !ok {
			d.misused("delete of unknown vertex array %d", v)
			continue
		}
		delete(d.vertexArrays, v)
		if d.vao == v {
			d.vao = 0
		}
	}
}

// BindVertexArray implements driver.Driver.
func (d *Driver) BindVertexArray(vao driver.VertexArray) {
	d.call("BindVertexArray")
	if _, ok := d.vertexArrays[vao]; vao != 0 && !ok {
		d.misused("bind of unknown vertex array %d", vao)
		return
	}
	d.vao = vao
}

// EnableVertexAttribArray implements driver.Driver.
func (d *Driver) EnableVertexAttribArray(index uint32) {
	d.call("EnableVertexAttribArray")
	vao := d.currentVAO()
	a := vao.Attribs[index]
	a.Enabled = true
	vao.Attribs[index] = a
}

// VertexAttribPointer implements driver.Driver.
func (d *Driver) VertexAttribPointer(index uint32, size int32, typ driver.Enum, normalized bool, stride int32, offset int) {
	d.call("VertexAttribPointer")
	d.attribPointer(index, size, typ, normalized, false, stride, offset)
}

// VertexAttribIPointer implements driver.Driver.
func (d *Driver) VertexAttribIPointer(index uint32, size int32, typ driver.Enum, stride int32, offset int) {
	d.call("VertexAttribIPointer")
	d.attribPointer(index, size, typ, false, true, stride, offset)
}

func (d *Driver) attribPointer(index uint32, size int32, typ driver.Enum, normalized, integer bool, stride int32, offset int) {
	buf := d.bufferBinds[driver.ARRAY_BUFFER]
	if buf == 0 {
		d.misused("vertex attribute %d with no array buffer bound", index)
	}
	vao := d.currentVAO()
	a := vao.Attribs[index]
	a.Buffer, a.Size, a.Type = buf, size, typ
	a.Normalized, a.Integer = normalized, integer
	a.Stride, a.Offset = stride, offset
	vao.Attribs[index] = a
}

// VertexAttribDivisor implements driver.Driver.
func (d *Driver) VertexAttribDivisor(index, divisor uint32) {
	d.call("VertexAttribDivisor")
	vao := d.currentVAO()
	a := vao.Attribs[index]
	a.Divisor = divisor
	vao.Attribs[index] = a
}

// CreateShader implements driver.Driver.
func (d *Driver) CreateShader(typ driver.Enum) driver.Shader {
	d.call("CreateShader")
	s := driver.Shader(d.gen("shader"))
	d.shaders[s] = &shaderObj{typ: typ}
	return s
}

// ShaderSource implements driver.Driver.
func (d *Driver) ShaderSource(s driver.Shader, src string) {
	d.call("ShaderSource")
	if sh, ok := d.shaders[s]; ok {
		sh.source = src
	}
}

// CompileShader implements driver.Driver.
func (d *Driver) CompileShader(s driver.Shader) {
	d.call("CompileShader")
	sh, ok := d.shaders[s]
	if !ok {
		d.misused("compile of unknown shader %d", s)
		return
	}
	sh.compiled, sh.log = true, ""
	for i, line := range strings.Split(sh.source, "\n") {
		if rest, found := strings.CutPrefix(strings.TrimSpace(line), "#error"); found {
			sh.compiled = false
			sh.log = fmt.Sprintf("ERROR: 0:%d: '#error' :%s\n", i+1, rest)
			break
		}
	}
}

// GetShaderi implements driver.Driver.
func (d *Driver) GetShaderi(s driver.Shader, pname driver.Enum) int32 {
	d.call("GetShaderi")
	sh, ok := d.shaders[s]
	if !ok {
		return 0
	}
	switch pname {
	case driver.COMPILE_STATUS:
		if sh.compiled {
			return driver.TRUE
		}
		return driver.FALSE
	case driver.INFO_LOG_LENGTH:
		return int32(len(sh.log))
	}
	return 0
}

// GetShaderInfoLog implements driver.Driver.
func (d *Driver) GetShaderInfoLog(s driver.Shader) string {
	d.call("GetShaderInfoLog")
	if sh, ok := d.shaders[s]; ok {
		return sh.log
	}
	return ""
}

// DeleteShader implements driver.Driver.
func (d *Driver) DeleteShader(s driver.Shader) {
	d.call("DeleteShader")
	if s == 0 {
		return
	}
	if _, ok := d.shaders[s]; !ok {
		d.misused("delete of unknown shader %d", s)
		return
	}
	delete(d.shaders, s)
}

// CreateProgram implements driver.Driver.
func (d *Driver) CreateProgram() driver.Program {
	d.call("CreateProgram")
	p := driver.Program(d.gen("program"))
	d.programs[p] = &programObj{
		attribs:   make(map[string]uint32),
		params:    make(map[driver.Enum]int32),
		locations: make(map[string]driver.Uniform),
		values:    make(map[driver.Uniform][]float32),
	}
	return p
}

// AttachShader implements driver.Driver.
func (d *Driver) AttachShader(p driver.Program, s driver.Shader) {
	d.call("AttachShader")
	if prog, ok := d.programs[p]; ok {
		prog.shaders = append(prog.shaders, s)
	}
}

// DetachShader implements driver.Driver.
func (d *Driver) DetachShader(p driver.Program, s driver.Shader) {
	d.call("DetachShader")
	prog, ok := d.programs[p]
	if !ok {
		return
	}
	for i, attached := range prog.shaders {
		if attached == s {
			prog.shaders = append(prog.shaders[:i], prog.shaders[i+1:]...)
			return
		}
	}
	d.misused("detach of shader %d not attached to program %d", s, p)
}

// BindAttribLocation implements driver.Driver.
func (d *Driver) BindAttribLocation(p driver.Program, index uint32, name string) {
	d.call("BindAttribLocation")
	if prog, ok := d.programs[p]; ok {
		prog.attribs[name] = index
	}
}

// LinkProgram implements driver.Driver.
func (d *Driver) LinkProgram(p driver.Program) {
	d.call("LinkProgram")
	prog, ok := d.programs[p]
	if !ok {
		d.misused("link of unknown program %d", p)
		return
	}
	prog.linked, prog.log, prog.vs, prog.fs = false, "", "", ""
	for _, s := range prog.shaders {
		sh, ok := d.shaders[s]
		if !ok || !sh.compiled {
			prog.log = fmt.Sprintf("error: shader %d not compiled\n", s)
			return
		}
		if sh.typ == driver.VERTEX_SHADER {
			prog.vs = sh.source
		} else {
			prog.fs = sh.source
		}
	}
	if prog.vs == "" || prog.fs == "" {
		prog.log = "error: missing vertex or fragment stage\n"
		return
	}
	if strings.Contains(prog.vs, LinkErrorMarker) || strings.Contains(prog.fs, LinkErrorMarker) {
		prog.log = "error: " + LinkErrorMarker + "\n"
		return
	}
	prog.linked = true
	prog.locations = make(map[string]driver.Uniform)
	prog.values = make(map[driver.Uniform][]float32)
}

// GetProgrami implements driver.Driver.
func (d *Driver) GetProgrami(p driver.Program, pname driver.Enum) int32 {
	d.call("GetProgrami")
	prog, ok := d.programs[p]
	if !ok {
		return 0
	}
	switch pname {
	case driver.LINK_STATUS:
		if prog.linked {
			return driver.TRUE
		}
		return driver.FALSE
	case driver.INFO_LOG_LENGTH:
		return int32(len(prog.log))
	case driver.PROGRAM_BINARY_LENGTH:
		if !prog.linked || d.cfg.NoProgramBinaries {
			return 0
		}
		return int32(len(binaryMagic) + len(prog.vs) + 1 + len(prog.fs))
	}
	return prog.params[pname]
}

// GetProgramInfoLog implements driver.Driver.
func (d *Driver) GetProgramInfoLog(p driver.Program) string {
	d.call("GetProgramInfoLog")
	if prog, ok := d.programs[p]; ok {
		return prog.log
	}
	return ""
}

// ProgramParameteri implements driver.Driver.
func (d *Driver) ProgramParameteri(p driver.Program, pname driver.Enum, value int32) {
	d.call("ProgramParameteri")
	if prog, ok := d.programs[p]; ok {
		prog.params[pname] = value
	}
}

// GetProgramBinary implements driver.Driver.
func (d *Driver) GetProgramBinary(p driver.Program) ([]byte, driver.Enum) {
	d.call("GetProgramBinary")
	prog, ok := d.programs[p]
	if !ok || !prog.linked || d.cfg.NoProgramBinaries {
		return nil, 0
	}
	return []byte(binaryMagic + prog.vs + "\x00" + prog.fs), BinaryFormat
}

// ProgramBinary implements driver.Driver.
func (d *Driver) ProgramBinary(p driver.Program, format driver.Enum, data []byte) {
	d.call("ProgramBinary")
	prog, ok := d.programs[p]
	if !ok {
		d.misused("program binary for unknown program %d", p)
		return
	}
	prog.linked = false
	prog.log = "error: program binary rejected\n"
	if d.cfg.RejectBinaries || format != BinaryFormat {
		return
	}
	body, found := strings.CutPrefix(string(data), binaryMagic)
	if !found {
		return
	}
	vs, fs, found := strings.Cut(body, "\x00")
	if !found {
		return
	}
	prog.vs, prog.fs, prog.linked, prog.log = vs, fs, true, ""
	prog.locations = make(map[string]driver.Uniform)
	prog.values = make(map[driver.Uniform][]float32)
}

// DeleteProgram implements driver.Driver.
func (d *Driver) DeleteProgram(p driver.Program) {
	d.call("DeleteProgram")
	if p == 0 {
		return
	}
	if _, ok := d.programs[p]; !ok {
		d.misused("delete of unknown program %d", p)
		return
	}
	delete(d.programs, p)
	if d.program == p {
		d.program = 0
	}
}

// UseProgram implements driver.Driver.
func (d *Driver) UseProgram(p driver.Program) {
	d.call("UseProgram")
	if prog, ok := d.programs[p]; p != 0 && (!ok || !prog.linked) {
		d.misused("use of unlinked program %d", p)
		return
	}
	d.program = p
}

// GetUniformLocation implements driver.Driver. Names that do not occur in
// the linked sources are reported as inactive.
func (d *Driver) GetUniformLocation(p driver.Program, name string) driver.Uniform {
	d.call("GetUniformLocation")
	prog, ok := d.programs[p]
	if !ok || !prog.linked {
		return driver.InvalidUniform
	}
	if loc, ok := prog.locations[name]; ok {
		return loc
	}
	if !strings.Contains(prog.vs, name) && !strings.Contains(prog.fs, name) {
		return driver.InvalidUniform
	}
	loc := driver.Uniform(len(prog.locations))
	prog.locations[name] = loc
	return loc
}

func (d *Driver) setUniform(u driver.Uniform, v []float32) {
	if !u.Valid() {
		return
	}
	prog, ok := d.programs[d.program]
	if !ok {
		d.misused("uniform %d set with no program in use", u)
		return
	}
	prog.values[u] = v
}

// Uniform1i implements driver.Driver.
func (d *Driver) Uniform1i(u driver.Uniform, v int32) {
	d.call("Uniform1i")
	d.setUniform(u, []float32{float32(v)})
}

// Uniform1f implements driver.Driver.
func (d *Driver) Uniform1f(u driver.Uniform, v float32) {
	d.call("Uniform1f")
	d.setUniform(u, []float32{v})
}

// UniformMatrix4fv implements driver.Driver.
func (d *Driver) UniformMatrix4fv(u driver.Uniform, transpose bool, m *[16]float32) {
	d.call("UniformMatrix4fv")
	d.setUniform(u, append([]float32(nil), m[:]...))
}

// Enable implements driver.Driver.
func (d *Driver) Enable(capability driver.Enum) {
	d.call("Enable")
	d.enabled[capability] = true
}

// Disable implements driver.Driver.
func (d *Driver) Disable(capability driver.Enum) {
	d.call("Disable")
	d.enabled[capability] = false
}

// BlendFunc implements driver.Driver.
func (d *Driver) BlendFunc(src, dst driver.Enum) {
	d.call("BlendFunc")
	d.blend.SrcRGB, d.blend.DstRGB, d.blend.SrcAlpha, d.blend.DstAlpha = src, dst, src, dst
}

// BlendFuncSeparate implements driver.Driver.
func (d *Driver) BlendFuncSeparate(srcRGB, dstRGB, srcAlpha, dstAlpha driver.Enum) {
	d.call("BlendFuncSeparate")
	d.blend.SrcRGB, d.blend.DstRGB, d.blend.SrcAlpha, d.blend.DstAlpha = srcRGB, dstRGB, srcAlpha, dstAlpha
}

// BlendEquation implements driver.Driver.
func (d *Driver) BlendEquation(mode driver.Enum) {
	d.call("BlendEquation")
	d.blend.EquationRGB, d.blend.EquationAlpha = mode, mode
}

// BlendEquationSeparate implements driver.Driver.
func (d *Driver) BlendEquationSeparate(modeRGB, modeAlpha driver.Enum) {
	d.call("BlendEquationSeparate")
	d.blend.EquationRGB, d.blend.EquationAlpha = modeRGB, modeAlpha
}

// BlendColor implements driver.Driver.
func (d *Driver) BlendColor(r, g, b, a float32) {
	d.call("BlendColor")
	d.blend.Color = [4]float32{r, g, b, a}
}

// DepthFunc implements driver.Driver.
func (d *Driver) DepthFunc(fn driver.Enum) {
	d.call("DepthFunc")
	d.depthFunc = fn
}

// DepthMask implements driver.Driver.
func (d *Driver) DepthMask(write bool) {
	d.call("DepthMask")
	d.depthMask = write
}

// Scissor implements driver.Driver.
func (d *Driver) Scissor(x, y, width, height int32) {
	d.call("Scissor")
	d.scissor = [4]int32{x, y, width, height}
}

// Viewport implements driver.Driver.
func (d *Driver) Viewport(x, y, width, height int32) {
	d.call("Viewport")
	d.viewport = [4]int32{x, y, width, height}
}

// ClearColor implements driver.Driver.
func (d *Driver) ClearColor(r, g, b, a float32) {
	d.call("ClearColor")
	d.clearColor = [4]float32{r, g, b, a}
}

// ClearDepth implements driver.Driver.
func (d *Driver) ClearDepth(depth float64) {
	d.call("ClearDepth")
	d.clearDepth = depth
}

// Clear implements driver.Driver.
func (d *Driver) Clear(mask driver.Enum) {
	d.call("Clear")
}

// PixelStorei implements driver.Driver.
func (d *Driver) PixelStorei(pname driver.Enum, param int32) {
	d.call("PixelStorei")
	d.pixelStore[pname] = param
}

func (d *Driver) draw(dr Draw) {
	if _, ok := d.programs[d.program]; !ok {
		d.misused("draw with no program in use")
	}
	dr.Program, dr.VAO, dr.Target = d.program, d.vao, d.drawFBO
	d.draws = append(d.draws, dr)
}

// DrawElements implements driver.Driver.
func (d *Driver) DrawElements(mode driver.Enum, count int32, typ driver.Enum, offset int) {
	d.call("DrawElements")
	d.draw(Draw{Mode: mode, Count: count, Type: typ, Offset: offset, Instances: 1})
}

// DrawElementsInstanced implements driver.Driver.
func (d *Driver) DrawElementsInstanced(mode driver.Enum, count int32, typ driver.Enum, offset int, instances int32) {
	d.call("DrawElementsInstanced")
	d.draw(Draw{Mode: mode, Count: count, Type: typ, Offset: offset, Instances: instances})
}

// DrawArrays implements driver.Driver.
func (d *Driver) DrawArrays(mode driver.Enum, first, count int32) {
	d.call("DrawArrays")
	d.draw(Draw{Mode: mode, First: first, Count: count, Instances: 1})
}

// CallNames returns the names of all entry points called so far, sorted.
func (d *Driver) CallNames() []string {
	names := make([]string, 0, len(d.calls))
	for name := range d.calls {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
