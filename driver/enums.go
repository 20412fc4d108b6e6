package driver

// GL enum values used by the device layer. The values are the ones defined
// by the OpenGL and OpenGL ES headers; every driver implementation accepts
// and returns them unchanged.
const (
	NO_ERROR                      Enum = 0
	INVALID_ENUM                  Enum = 0x0500
	INVALID_VALUE                 Enum = 0x0501
	INVALID_OPERATION             Enum = 0x0502
	OUT_OF_MEMORY                 Enum = 0x0505
	INVALID_FRAMEBUFFER_OPERATION Enum = 0x0506

	FALSE = 0
	TRUE  = 1

	// Texture targets.
	TEXTURE_2D           Enum = 0x0DE1
	TEXTURE_2D_ARRAY     Enum = 0x8C1A
	TEXTURE_RECTANGLE    Enum = 0x84F5
	TEXTURE_EXTERNAL_OES Enum = 0x8D65
	TEXTURE0             Enum = 0x84C0

	// Texture parameters.
	TEXTURE_MAG_FILTER Enum = 0x2800
	TEXTURE_MIN_FILTER Enum = 0x2801
	TEXTURE_WRAP_S     Enum = 0x2802
	TEXTURE_WRAP_T     Enum = 0x2803
	CLAMP_TO_EDGE      Enum = 0x812F
	NEAREST            Enum = 0x2600
	LINEAR             Enum = 0x2601

	// Pixel formats.
	RED      Enum = 0x1903
	RG       Enum = 0x8227
	RGB      Enum = 0x1907
	RGBA     Enum = 0x1908
	BGRA     Enum = 0x80E1
	BGRA_EXT Enum = 0x80E1
	R8       Enum = 0x8229
	RG8      Enum = 0x822B
	RGBA8    Enum = 0x8058
	RGBA32F  Enum = 0x8814

	// Scalar types.
	BYTE           Enum = 0x1400
	UNSIGNED_BYTE  Enum = 0x1401
	SHORT          Enum = 0x1402
	UNSIGNED_SHORT Enum = 0x1403
	INT            Enum = 0x1404
	UNSIGNED_INT   Enum = 0x1405
	FLOAT          Enum = 0x1406

	// Framebuffers and renderbuffers.
	FRAMEBUFFER              Enum = 0x8D40
	READ_FRAMEBUFFER         Enum = 0x8CA8
	DRAW_FRAMEBUFFER         Enum = 0x8CA9
	READ_FRAMEBUFFER_BINDING Enum = 0x8CAA
	DRAW_FRAMEBUFFER_BINDING Enum = 0x8CA6
	COLOR_ATTACHMENT0        Enum = 0x8CE0
	DEPTH_ATTACHMENT         Enum = 0x8D00
	RENDERBUFFER             Enum = 0x8D41
	DEPTH_COMPONENT24        Enum = 0x81A6

	// Buffers.
	ARRAY_BUFFER         Enum = 0x8892
	ELEMENT_ARRAY_BUFFER Enum = 0x8893
	PIXEL_UNPACK_BUFFER  Enum = 0x88EC
	STREAM_DRAW          Enum = 0x88E0
	STATIC_DRAW          Enum = 0x88E4
	DYNAMIC_DRAW         Enum = 0x88E8

	// Shaders and programs.
	FRAGMENT_SHADER                 Enum = 0x8B30
	VERTEX_SHADER                   Enum = 0x8B31
	COMPILE_STATUS                  Enum = 0x8B81
	LINK_STATUS                     Enum = 0x8B82
	INFO_LOG_LENGTH                 Enum = 0x8B84
	PROGRAM_BINARY_RETRIEVABLE_HINT Enum = 0x8257
	PROGRAM_BINARY_LENGTH           Enum = 0x8741
	NUM_PROGRAM_BINARY_FORMATS      Enum = 0x87FE

	// Capabilities for Enable/Disable.
	BLEND        Enum = 0x0BE2
	DEPTH_TEST   Enum = 0x0B71
	STENCIL_TEST Enum = 0x0B90
	SCISSOR_TEST Enum = 0x0C11

	// Blend factors.
	ZERO                     Enum = 0
	ONE                      Enum = 1
	SRC_COLOR                Enum = 0x0300
	ONE_MINUS_SRC_COLOR      Enum = 0x0301
	SRC_ALPHA                Enum = 0x0302
	ONE_MINUS_SRC_ALPHA      Enum = 0x0303
	DST_ALPHA                Enum = 0x0304
	ONE_MINUS_DST_ALPHA      Enum = 0x0305
	DST_COLOR                Enum = 0x0306
	ONE_MINUS_DST_COLOR      Enum = 0x0307
	SRC_ALPHA_SATURATE       Enum = 0x0308
	CONSTANT_COLOR           Enum = 0x8001
	ONE_MINUS_CONSTANT_COLOR Enum = 0x8002

	// Blend equations.
	FUNC_ADD              Enum = 0x8006
	MIN                   Enum = 0x8007
	MAX                   Enum = 0x8008
	FUNC_SUBTRACT         Enum = 0x800A
	FUNC_REVERSE_SUBTRACT Enum = 0x800B

	// Depth functions.
	LESS   Enum = 0x0201
	LEQUAL Enum = 0x0203

	// Clear bits.
	DEPTH_BUFFER_BIT   Enum = 0x0100
	STENCIL_BUFFER_BIT Enum = 0x0400
	COLOR_BUFFER_BIT   Enum = 0x4000

	// Pixel store.
	UNPACK_ROW_LENGTH Enum = 0x0CF2
	UNPACK_ALIGNMENT  Enum = 0x0CF5
	PACK_ALIGNMENT    Enum = 0x0D05

	// Primitive modes.
	LINES     Enum = 0x0001
	TRIANGLES Enum = 0x0004

	// Queries.
	MAX_TEXTURE_SIZE         Enum = 0x0D33
	VENDOR                   Enum = 0x1F00
	RENDERER                 Enum = 0x1F01
	VERSION                  Enum = 0x1F02
	SHADING_LANGUAGE_VERSION Enum = 0x8B8C
)
