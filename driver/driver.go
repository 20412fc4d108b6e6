// Package driver defines the capability handle the device layer issues its
// GPU work through: the set of primitive OpenGL / OpenGL ES entry points,
// typed object handles and the GL enum table.
//
// Implementations:
//   - driver/glcore: desktop OpenGL 3.3 core via github.com/go-gl/gl
//   - driver/noop: in-memory simulation used by tests and headless runs
//
// A Driver is bound to one GL context and must only be used from the thread
// that owns that context.
package driver

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
)

// Enum is a GL enumerant.
type Enum uint32

// Object handles. Zero is the "no object" name for every kind.
type (
	Texture      uint32
	Framebuffer  uint32
	Renderbuffer uint32
	Buffer       uint32
	VertexArray  uint32
	Program      uint32
	Shader       uint32
)

// Uniform is a uniform location; InvalidUniform marks a name the program
// does not use.
type Uniform int32

// InvalidUniform is returned by GetUniformLocation for unknown names.
const InvalidUniform Uniform = -1

// Valid reports whether u refers to an active uniform.
func (u Uniform) Valid() bool { return u != InvalidUniform }

// Driver errors.
var (
	// ErrDriverNotRegistered is returned by Open for an unknown name.
	ErrDriverNotRegistered = errors.New("driver: not registered")

	// ErrNoDrivers is returned by OpenDefault when the registry is empty.
	ErrNoDrivers = errors.New("driver: no drivers registered")
)

// Driver is the primitive GPU capability handle. Methods map one-to-one to
// GL entry points; none of them caches state, that is the caller's job.
type Driver interface {
	// Flavor reports whether the context is desktop GL or GL ES.
	Flavor() gputypes.GLBackend

	GetString(name Enum) string
	GetInteger(pname Enum) int32
	GetError() Enum

	// Textures.
	GenTextures(n int) []Texture
	DeleteTextures(textures ...Texture)
	ActiveTexture(unit Enum)
	BindTexture(target Enum, t Texture)
	TexParameteri(target, pname Enum, param int32)
	TexImage2D(target Enum, level, internalFormat, width, height int32, format, typ Enum, pixels []byte)
	TexImage3D(target Enum, level, internalFormat, width, height, depth int32, format, typ Enum, pixels []byte)
	// TexSubImage2D uploads pixels, or reads from the bound pixel unpack
	// buffer at offset when pixels is nil.
	TexSubImage2D(target Enum, level, x, y, width, height int32, format, typ Enum, pixels []byte, offset int)
	TexSubImage3D(target Enum, level, x, y, z, width, height, depth int32, format, typ Enum, pixels []byte, offset int)

	// Framebuffers and renderbuffers.
	GenFramebuffers(n int) []Framebuffer
	DeleteFramebuffers(fbos ...Framebuffer)
	BindFramebuffer(target Enum, fbo Framebuffer)
	FramebufferTexture2D(target, attachment, texTarget Enum, t Texture, level int32)
	FramebufferTextureLayer(target, attachment Enum, t Texture, level, layer int32)
	FramebufferRenderbuffer(target, attachment, rbTarget Enum, rb Renderbuffer)
	BlitFramebuffer(srcX0, srcY0, srcX1, srcY1, dstX0, dstY0, dstX1, dstY1 int32, mask, filter Enum)
	ReadPixels(x, y, width, height int32, format, typ Enum, dst []byte)
	GenRenderbuffers(n int) []Renderbuffer
	DeleteRenderbuffers(rbs ...Renderbuffer)
	BindRenderbuffer(target Enum, rb Renderbuffer)
	RenderbufferStorage(target, internalFormat Enum, width, height int32)

	// Buffers and vertex arrays.
	GenBuffers(n int) []Buffer
	DeleteBuffers(buffers ...Buffer)
	BindBuffer(target Enum, b Buffer)
	BufferData(target Enum, size int, data []byte, usage Enum)
	BufferSubData(target Enum, offset int, data []byte)
	GenVertexArrays(n int) []VertexArray
	DeleteVertexArrays(vaos ...VertexArray)
	BindVertexArray(vao VertexArray)
	EnableVertexAttribArray(index uint32)
	VertexAttribPointer(index uint32, size int32, typ Enum, normalized bool, stride int32, offset int)
	VertexAttribIPointer(index uint32, size int32, typ Enum, stride int32, offset int)
	VertexAttribDivisor(index, divisor uint32)

	// Shaders and programs.
	CreateShader(typ Enum) Shader
	ShaderSource(s Shader, src string)
	CompileShader(s Shader)
	GetShaderi(s Shader, pname Enum) int32
	GetShaderInfoLog(s Shader) string
	DeleteShader(s Shader)
	CreateProgram() Program
	AttachShader(p Program, s Shader)
	DetachShader(p Program, s Shader)
	BindAttribLocation(p Program, index uint32, name string)
	LinkProgram(p Program)
	GetProgrami(p Program, pname Enum) int32
	GetProgramInfoLog(p Program) string
	ProgramParameteri(p Program, pname Enum, value int32)
	// GetProgramBinary returns the driver-compiled binary of a linked
	// program and its format tag. Empty data means no binary is available.
	GetProgramBinary(p Program) (data []byte, format Enum)
	ProgramBinary(p Program, format Enum, data []byte)
	DeleteProgram(p Program)
	UseProgram(p Program)
	GetUniformLocation(p Program, name string) Uniform
	Uniform1i(u Uniform, v int32)
	Uniform1f(u Uniform, v float32)
	UniformMatrix4fv(u Uniform, transpose bool, m *[16]float32)

	// Fixed-function state.
	Enable(capability Enum)
	Disable(capability Enum)
	BlendFunc(src, dst Enum)
	BlendFuncSeparate(srcRGB, dstRGB, srcAlpha, dstAlpha Enum)
	BlendEquation(mode Enum)
	BlendEquationSeparate(modeRGB, modeAlpha Enum)
	BlendColor(r, g, b, a float32)
	DepthFunc(fn Enum)
	DepthMask(write bool)
	Scissor(x, y, width, height int32)
	Viewport(x, y, width, height int32)
	ClearColor(r, g, b, a float32)
	ClearDepth(d float64)
	Clear(mask Enum)
	PixelStorei(pname Enum, param int32)

	// Draws. Offsets are byte offsets into the bound index buffer.
	DrawElements(mode Enum, count int32, typ Enum, offset int)
	DrawElementsInstanced(mode Enum, count int32, typ Enum, offset int, instances int32)
	DrawArrays(mode Enum, first, count int32)
}

// BlendFactor translates a gputypes blend factor to its GL enum.
func BlendFactor(f gputypes.BlendFactor) Enum {
	switch f {
	case gputypes.BlendFactorZero:
		return ZERO
	case gputypes.BlendFactorOne:
		return ONE
	case gputypes.BlendFactorSrc:
		return SRC_COLOR
	case gputypes.BlendFactorOneMinusSrc:
		return ONE_MINUS_SRC_COLOR
	case gputypes.BlendFactorSrcAlpha:
		return SRC_ALPHA
	case gputypes.BlendFactorOneMinusSrcAlpha:
		return ONE_MINUS_SRC_ALPHA
	case gputypes.BlendFactorDst:
		return DST_COLOR
	case gputypes.BlendFactorOneMinusDst:
		return ONE_MINUS_DST_COLOR
	case gputypes.BlendFactorDstAlpha:
		return DST_ALPHA
	case gputypes.BlendFactorOneMinusDstAlpha:
		return ONE_MINUS_DST_ALPHA
	case gputypes.BlendFactorSrcAlphaSaturated:
		return SRC_ALPHA_SATURATE
	case gputypes.BlendFactorConstant:
		return CONSTANT_COLOR
	case gputypes.BlendFactorOneMinusConstant:
		return ONE_MINUS_CONSTANT_COLOR
	default:
		panic(fmt.Sprintf("driver: unsupported blend factor %v", f))
	}
}

// BlendEquation translates a gputypes blend operation to its GL enum.
func BlendEquation(op gputypes.BlendOperation) Enum {
	switch op {
	case gputypes.BlendOperationAdd:
		return FUNC_ADD
	case gputypes.BlendOperationSubtract:
		return FUNC_SUBTRACT
	case gputypes.BlendOperationReverseSubtract:
		return FUNC_REVERSE_SUBTRACT
	case gputypes.BlendOperationMin:
		return MIN
	case gputypes.BlendOperationMax:
		return MAX
	default:
		panic(fmt.Sprintf("driver: unsupported blend operation %v", op))
	}
}

// Filter translates a gputypes filter mode to its GL enum.
func Filter(m gputypes.FilterMode) Enum {
	if m == gputypes.FilterModeLinear {
		return LINEAR
	}
	return NEAREST
}
