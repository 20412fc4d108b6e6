package gldevice

import "github.com/gogpu/gputypes"

// QuadVertex is the unit-square corner fed to every quad program.
type QuadVertex struct {
	X, Y float32
}

// UnitQuad is the four corners of the unit square and the six 16-bit
// indices of its two triangles.
var (
	UnitQuad        = []QuadVertex{{0, 0}, {1, 0}, {0, 1}, {1, 1}}
	UnitQuadIndices = []uint16{0, 1, 2, 2, 1, 3}
)

// QuadInstance is one record of the ps_quad instance stream.
type QuadInstance struct {
	Rect   [4]float32
	UvRect [4]float32
	Layer  float32
}

// QuadDescriptor is the vertex layout of ps_quad.
func QuadDescriptor() VertexDescriptor {
	return VertexDescriptor{
		VertexAttributes: []VertexAttribute{
			{Name: "aPosition", Format: gputypes.VertexFormatFloat32x2},
		},
		InstanceAttributes: []VertexAttribute{
			{Name: "aRect", Format: gputypes.VertexFormatFloat32x4},
			{Name: "aUvRect", Format: gputypes.VertexFormatFloat32x4},
			{Name: "aLayer", Format: gputypes.VertexFormatFloat32},
		},
	}
}

// ClearInstance is one record of the ps_clear instance stream.
type ClearInstance struct {
	Rect  [4]float32
	Color [4]uint8
}

// ClearDescriptor is the vertex layout of ps_clear.
func ClearDescriptor() VertexDescriptor {
	return VertexDescriptor{
		VertexAttributes: []VertexAttribute{
			{Name: "aPosition", Format: gputypes.VertexFormatFloat32x2},
		},
		InstanceAttributes: []VertexAttribute{
			{Name: "aRect", Format: gputypes.VertexFormatFloat32x4},
			{Name: "aColor", Format: gputypes.VertexFormatUnorm8x4},
		},
	}
}
