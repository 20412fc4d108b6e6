// Package glcore implements driver.Driver on desktop OpenGL 3.3 core
// through github.com/go-gl/gl.
//
// The package registers itself as driver.NameGLCore. Opening it loads the
// GL entry points for the context current on the calling thread, so the
// window or host must make its context current first and every later call
// must come from that same locked OS thread.
//
// Program binaries (ARB_get_program_binary, core in 4.1) are optional; the
// device only calls them when GL_NUM_PROGRAM_BINARY_FORMATS is non-zero.
package glcore

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/gldevice/driver"
)

func init() {
	driver.Register(driver.NameGLCore, func() (driver.Driver, error) {
		return Open()
	})
}

// Driver issues GL calls on the current context.
type Driver struct{}

var _ driver.Driver = (*Driver)(nil)

// Open loads the GL function pointers of the current context.
func Open() (*Driver, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("glcore: init: %w", err)
	}
	return &Driver{}, nil
}

// bytePtr returns the address of the first byte of b, or nil when b is
// empty. gl.Ptr panics on empty slices.
func bytePtr(b []byte) unsafe.Pointer {
	if len(b) == 0 {
		return nil
	}
	return unsafe.Pointer(&b[0])
}

// pixelPtr selects between client memory and an offset into the bound
// pixel unpack buffer.
func pixelPtr(pixels []byte, offset int) unsafe.Pointer {
	if pixels == nil {
		return gl.PtrOffset(offset)
	}
	return bytePtr(pixels)
}

func cstr(s string) (*uint8, func()) {
	cs, free := gl.Strs(s + "\x00")
	return *cs, free
}

func infoLog(length int32, read func(int32, *uint8)) string {
	if length <= 0 {
		return ""
	}
	buf := make([]byte, length+1)
	read(length, &buf[0])
	return strings.TrimRight(string(buf), "\x00")
}

// Flavor implements driver.Driver.
func (d *Driver) Flavor() gputypes.GLBackend { return gputypes.GLBackendGL }

// GetString implements driver.Driver.
func (d *Driver) GetString(name driver.Enum) string {
	s := gl.GetString(uint32(name))
	if s == nil {
		return ""
	}
	return gl.GoStr(s)
}

// GetInteger implements driver.Driver.
func (d *Driver) GetInteger(pname driver.Enum) int32 {
	var v int32
	gl.GetIntegerv(uint32(pname), &v)
	return v
}

// GetError implements driver.Driver.
func (d *Driver) GetError() driver.Enum { return driver.Enum(gl.GetError()) }

func gen[T ~uint32](n int, f func(int32, *uint32)) []T {
	names := make([]uint32, n)
	if n > 0 {
		f(int32(n), &names[0])
	}
	out := make([]T, n)
	for i, name := range names {
		out[i] = T(name)
	}
	return out
}

func del[T ~uint32](objs []T, f func(int32, *uint32)) {
	if len(objs) == 0 {
		return
	}
	names := make([]uint32, len(objs))
	for i, o := range objs {
		names[i] = uint32(o)
	}
	f(int32(len(names)), &names[0])
}

// GenTextures implements driver.Driver.
func (d *Driver) GenTextures(n int) []driver.Texture {
	return gen[driver.Texture](n, gl.GenTextures)
}

// DeleteTextures implements driver.Driver.
func (d *Driver) DeleteTextures(textures ...driver.Texture) { del(textures, gl.DeleteTextures) }

// ActiveTexture implements driver.Driver.
func (d *Driver) ActiveTexture(unit driver.Enum) { gl.ActiveTexture(uint32(unit)) }

// BindTexture implements driver.Driver.
func (d *Driver) BindTexture(target driver.Enum, t driver.Texture) {
	gl.BindTexture(uint32(target), uint32(t))
}

// TexParameteri implements driver.Driver.
func (d *Driver) TexParameteri(target, pname driver.Enum, param int32) {
	gl.TexParameteri(uint32(target), uint32(pname), param)
}

// TexImage2D implements driver.Driver.
func (d *Driver) TexImage2D(target driver.Enum, level, internalFormat, width, height int32, format, typ driver.Enum, pixels []byte) {
	gl.TexImage2D(uint32(target), level, internalFormat, width, height, 0, uint32(format), uint32(typ), bytePtr(pixels))
}

// TexImage3D implements driver.Driver.
func (d *Driver) TexImage3D(target driver.Enum, level, internalFormat, width, height, depth int32, format, typ driver.Enum, pixels []byte) {
	gl.TexImage3D(uint32(target), level, internalFormat, width, height, depth, 0, uint32(format), uint32(typ), bytePtr(pixels))
}

// TexSubImage2D implements driver.Driver.
func (d *Driver) TexSubImage2D(target driver.Enum, level, x, y, width, height int32, format, typ driver.Enum, pixels []byte, offset int) {
	gl.TexSubImage2D(uint32(target), level, x, y, width, height, uint32(format), uint32(typ), pixelPtr(pixels, offset))
}

// TexSubImage3D implements driver.Driver.
func (d *Driver) TexSubImage3D(target driver.Enum, level, x, y, z, width, height, depth int32, format, typ driver.Enum, pixels []byte, offset int) {
	gl.TexSubImage3D(uint32(target), level, x, y, z, width, height, depth, uint32(format), uint32(typ), pixelPtr(pixels, offset))
}

// GenFramebuffers implements driver.Driver.
func (d *Driver) GenFramebuffers(n int) []driver.Framebuffer {
	return gen[driver.Framebuffer](n, gl.GenFramebuffers)
}

// DeleteFramebuffers implements driver.Driver.
func (d *Driver) DeleteFramebuffers(fbos ...driver.Framebuffer) { del(fbos, gl.DeleteFramebuffers) }

// BindFramebuffer implements driver.Driver.
func (d *Driver) BindFramebuffer(target driver.Enum, fbo driver.Framebuffer) {
	gl.BindFramebuffer(uint32(target), uint32(fbo))
}

// FramebufferTexture2D implements driver.Driver.
func (d *Driver) FramebufferTexture2D(target, attachment, texTarget driver.Enum, t driver.Texture, level int32) {
	gl.FramebufferTexture2D(uint32(target), uint32(attachment), uint32(texTarget), uint32(t), level)
}

// FramebufferTextureLayer implements driver.Driver.
func (d *Driver) FramebufferTextureLayer(target, attachment driver.Enum, t driver.Texture, level, layer int32) {
	gl.FramebufferTextureLayer(uint32(target), uint32(attachment), uint32(t), level, layer)
}

// FramebufferRenderbuffer implements driver.Driver.
func (d *Driver) FramebufferRenderbuffer(target, attachment, rbTarget driver.Enum, rb driver.Renderbuffer) {
	gl.FramebufferRenderbuffer(uint32(target), uint32(attachment), uint32(rbTarget), uint32(rb))
}

// BlitFramebuffer implements driver.Driver.
func (d *Driver) BlitFramebuffer(srcX0, srcY0, srcX1, srcY1, dstX0, dstY0, dstX1, dstY1 int32, mask, filter driver.Enum) {
	gl.BlitFramebuffer(srcX0, srcY0, srcX1, srcY1, dstX0, dstY0, dstX1, dstY1, uint32(mask), uint32(filter))
}

// ReadPixels implements driver.Driver.
func (d *Driver) ReadPixels(x, y, width, height int32, format, typ driver.Enum, dst []byte) {
	gl.ReadPixels(x, y, width, height, uint32(format), uint32(typ), bytePtr(dst))
}

// GenRenderbuffers implements driver.Driver.
func (d *Driver) GenRenderbuffers(n int) []driver.Renderbuffer {
	return gen[driver.Renderbuffer](n, gl.GenRenderbuffers)
}

// DeleteRenderbuffers implements driver.Driver.
func (d *Driver) DeleteRenderbuffers(rbs ...driver.Renderbuffer) { del(rbs, gl.DeleteRenderbuffers) }

// BindRenderbuffer implements driver.Driver.
func (d *Driver) BindRenderbuffer(target driver.Enum, rb driver.Renderbuffer) {
	gl.BindRenderbuffer(uint32(target), uint32(rb))
}

// RenderbufferStorage implements driver.Driver.
func (d *Driver) RenderbufferStorage(target, internalFormat driver.Enum, width, height int32) {
	gl.RenderbufferStorage(uint32(target), uint32(internalFormat), width, height)
}

// GenBuffers implements driver.Driver.
func (d *Driver) GenBuffers(n int) []driver.Buffer { return gen[driver.Buffer](n, gl.GenBuffers) }

// DeleteBuffers implements driver.Driver.
func (d *Driver) DeleteBuffers(buffers ...driver.Buffer) { del(buffers, gl.DeleteBuffers) }

// BindBuffer implements driver.Driver.
func (d *Driver) BindBuffer(target driver.Enum, b driver.Buffer) {
	gl.BindBuffer(uint32(target), uint32(b))
}

// BufferData implements driver.Driver.
func (d *Driver) BufferData(target driver.Enum, size int, data []byte, usage driver.Enum) {
	gl.BufferData(uint32(target), size, bytePtr(data), uint32(usage))
}

// BufferSubData implements driver.Driver.
func (d *Driver) BufferSubData(target driver.Enum, offset int, data []byte) {
	if len(data) == 0 {
		return
	}
	gl.BufferSubData(uint32(target), offset, len(data), bytePtr(data))
}

// GenVertexArrays implements driver.Driver.
func (d *Driver) GenVertexArrays(n int) []driver.VertexArray {
	return gen[driver.VertexArray](n, gl.GenVertexArrays)
}

// DeleteVertexArrays implements driver.Driver.
func (d *Driver) DeleteVertexArrays(vaos ...driver.VertexArray) { del(vaos, gl.DeleteVertexArrays) }

// BindVertexArray implements driver.Driver.
func (d *Driver) BindVertexArray(vao driver.VertexArray) { gl.BindVertexArray(uint32(vao)) }

// EnableVertexAttribArray implements driver.Driver.
func (d *Driver) EnableVertexAttribArray(index uint32) { gl.EnableVertexAttribArray(index) }

// VertexAttribPointer implements driver.Driver.
func (d *Driver) VertexAttribPointer(index uint32, size int32, typ driver.Enum, normalized bool, stride int32, offset int) {
	gl.VertexAttribPointer(index, size, uint32(typ), normalized, stride, gl.PtrOffset(offset))
}

// VertexAttribIPointer implements driver.Driver.
func (d *Driver) VertexAttribIPointer(index uint32, size int32, typ driver.Enum, stride int32, offset int) {
	gl.VertexAttribIPointer(index, size, uint32(typ), stride, gl.PtrOffset(offset))
}

// VertexAttribDivisor implements driver.Driver.
func (d *Driver) VertexAttribDivisor(index, divisor uint32) { gl.VertexAttribDivisor(index, divisor) }

// CreateShader implements driver.Driver.
func (d *Driver) CreateShader(typ driver.Enum) driver.Shader {
	return driver.Shader(gl.CreateShader(uint32(typ)))
}

// ShaderSource implements driver.Driver.
func (d *Driver) ShaderSource(s driver.Shader, src string) {
	csources, free := gl.Strs(src + "\x00")
	defer free()
	gl.ShaderSource(uint32(s), 1, csources, nil)
}

// CompileShader implements driver.Driver.
func (d *Driver) CompileShader(s driver.Shader) { gl.CompileShader(uint32(s)) }

// GetShaderi implements driver.Driver.
func (d *Driver) GetShaderi(s driver.Shader, pname driver.Enum) int32 {
	var v int32
	gl.GetShaderiv(uint32(s), uint32(pname), &v)
	return v
}

// GetShaderInfoLog implements driver.Driver.
func (d *Driver) GetShaderInfoLog(s driver.Shader) string {
	return infoLog(d.GetShaderi(s, driver.INFO_LOG_LENGTH), func(n int32, buf *uint8) {
		gl.GetShaderInfoLog(uint32(s), n, nil, buf)
	})
}

// DeleteShader implements driver.Driver.
func (d *Driver) DeleteShader(s driver.Shader) { gl.DeleteShader(uint32(s)) }

// CreateProgram implements driver.Driver.
func (d *Driver) CreateProgram() driver.Program { return driver.Program(gl.CreateProgram()) }

// AttachShader implements driver.Driver.
func (d *Driver) AttachShader(p driver.Program, s driver.Shader) {
	gl.AttachShader(uint32(p), uint32(s))
}

// DetachShader implements driver.Driver.
func (d *Driver) DetachShader(p driver.Program, s driver.Shader) {
	gl.DetachShader(uint32(p), uint32(s))
}

// BindAttribLocation implements driver.Driver.
func (d *Driver) BindAttribLocation(p driver.Program, index uint32, name string) {
	s, free := cstr(name)
	defer free()
	gl.BindAttribLocation(uint32(p), index, s)
}

// LinkProgram implements driver.Driver.
func (d *Driver) LinkProgram(p driver.Program) { gl.LinkProgram(uint32(p)) }

// GetProgrami implements driver.Driver.
func (d *Driver) GetProgrami(p driver.Program, pname driver.Enum) int32 {
	var v int32
	gl.GetProgramiv(uint32(p), uint32(pname), &v)
	return v
}

// GetProgramInfoLog implements driver.Driver.
func (d *Driver) GetProgramInfoLog(p driver.Program) string {
	return infoLog(d.GetProgrami(p, driver.INFO_LOG_LENGTH), func(n int32, buf *uint8) {
		gl.GetProgramInfoLog(uint32(p), n, nil, buf)
	})
}

// ProgramParameteri implements driver.Driver.
func (d *Driver) ProgramParameteri(p driver.Program, pname driver.Enum, value int32) {
	gl.ProgramParameteri(uint32(p), uint32(pname), value)
}

// GetProgramBinary implements driver.Driver.
func (d *Driver) GetProgramBinary(p driver.Program) ([]byte, driver.Enum) {
	size := d.GetProgrami(p, driver.PROGRAM_BINARY_LENGTH)
	if size <= 0 {
		return nil, 0
	}
	buf := make([]byte, size)
	var (
		n      int32
		format uint32
	)
	gl.GetProgramBinary(uint32(p), size, &n, &format, bytePtr(buf))
	if n <= 0 {
		return nil, 0
	}
	return buf[:n], driver.Enum(format)
}

// ProgramBinary implements driver.Driver.
func (d *Driver) ProgramBinary(p driver.Program, format driver.Enum, data []byte) {
	gl.ProgramBinary(uint32(p), uint32(format), bytePtr(data), int32(len(data)))
}

// DeleteProgram implements driver.Driver.
func (d *Driver) DeleteProgram(p driver.Program) { gl.DeleteProgram(uint32(p)) }

// UseProgram implements driver.Driver.
func (d *Driver) UseProgram(p driver.Program) { gl.UseProgram(uint32(p)) }

// GetUniformLocation implements driver.Driver.
func (d *Driver) GetUniformLocation(p driver.Program, name string) driver.Uniform {
	s, free := cstr(name)
	defer free()
	return driver.Uniform(gl.GetUniformLocation(uint32(p), s))
}

// Uniform1i implements driver.Driver.
func (d *Driver) Uniform1i(u driver.Uniform, v int32) { gl.Uniform1i(int32(u), v) }

// Uniform1f implements driver.Driver.
func (d *Driver) Uniform1f(u driver.Uniform, v float32) { gl.Uniform1f(int32(u), v) }

// UniformMatrix4fv implements driver.Driver.
func (d *Driver) UniformMatrix4fv(u driver.Uniform, transpose bool, m *[16]float32) {
	gl.UniformMatrix4fv(int32(u), 1, transpose, &m[0])
}

// Enable implements driver.Driver.
func (d *Driver) Enable(capability driver.Enum) { gl.Enable(uint32(capability)) }

// Disable implements driver.Driver.
func (d *Driver) Disable(capability driver.Enum) { gl.Disable(uint32(capability)) }

// BlendFunc implements driver.Driver.
func (d *Driver) BlendFunc(src, dst driver.Enum) { gl.BlendFunc(uint32(src), uint32(dst)) }

// BlendFuncSeparate implements driver.Driver.
func (d *Driver) BlendFuncSeparate(srcRGB, dstRGB, srcAlpha, dstAlpha driver.Enum) {
	gl.BlendFuncSeparate(uint32(srcRGB), uint32(dstRGB), uint32(srcAlpha), uint32(dstAlpha))
}

// BlendEquation implements driver.Driver.
func (d *Driver) BlendEquation(mode driver.Enum) { gl.BlendEquation(uint32(mode)) }

// BlendEquationSeparate implements driver.Driver.
func (d *Driver) BlendEquationSeparate(modeRGB, modeAlpha driver.Enum) {
	gl.BlendEquationSeparate(uint32(modeRGB), uint32(modeAlpha))
}

// BlendColor implements driver.Driver.
func (d *Driver) BlendColor(r, g, b, a float32) { gl.BlendColor(r, g, b, a) }

// DepthFunc implements driver.Driver.
func (d *Driver) DepthFunc(fn driver.Enum) { gl.DepthFunc(uint32(fn)) }

// DepthMask implements driver.Driver.
func (d *Driver) DepthMask(write bool) { gl.DepthMask(write) }

// Scissor implements driver.Driver.
func (d *Driver) Scissor(x, y, width, height int32) { gl.Scissor(x, y, width, height) }

// Viewport implements driver.Driver.
func (d *Driver) Viewport(x, y, width, height int32) { gl.Viewport(x, y, width, height) }

// ClearColor implements driver.Driver.
func (d *Driver) ClearColor(r, g, b, a float32) { gl.ClearColor(r, g, b, a) }

// ClearDepth implements driver.Driver.
func (d *Driver) ClearDepth(depth float64) { gl.ClearDepth(depth) }

// Clear implements driver.Driver.
func (d *Driver) Clear(mask driver.Enum) { gl.Clear(uint32(mask)) }

// PixelStorei implements driver.Driver.
func (d *Driver) PixelStorei(pname driver.Enum, param int32) { gl.PixelStorei(uint32(pname), param) }

// DrawElements implements driver.Driver.
func (d *Driver) DrawElements(mode driver.Enum, count int32, typ driver.Enum, offset int) {
	gl.DrawElements(uint32(mode), count, uint32(typ), gl.PtrOffset(offset))
}

// DrawElementsInstanced implements driver.Driver.
func (d *Driver) DrawElementsInstanced(mode driver.Enum, count int32, typ driver.Enum, offset int, instances int32) {
	gl.DrawElementsInstanced(uint32(mode), count, uint32(typ), gl.PtrOffset(offset), instances)
}

// DrawArrays implements driver.Driver.
func (d *Driver) DrawArrays(mode driver.Enum, first, count int32) {
	gl.DrawArrays(uint32(mode), first, count)
}
