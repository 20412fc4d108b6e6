package gldevice

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/gldevice/driver"
)

// VertexAttribute is one named input of a vertex descriptor.
type VertexAttribute struct {
	Name   string
	Format gputypes.VertexFormat
}

// VertexDescriptor lists the per-vertex and per-instance attributes of a
// program. Attribute locations are assigned in order: vertex attributes
// from 0, then instance attributes.
type VertexDescriptor struct {
	VertexAttributes   []VertexAttribute
	InstanceAttributes []VertexAttribute
}

func stride(attrs []VertexAttribute) int32 {
	var n uint64
	for _, a := range attrs {
		n += a.Format.Size()
	}
	return int32(n)
}

// VertexStride returns the byte size of one vertex record.
func (vd VertexDescriptor) VertexStride() int32 { return stride(vd.VertexAttributes) }

// InstanceStride returns the byte size of one instance record.
func (vd VertexDescriptor) InstanceStride() int32 { return stride(vd.InstanceAttributes) }

// attribLayout is how a vertex format is fed to the driver.
type attribLayout struct {
	count      int32
	typ        driver.Enum
	normalized bool
	integer    bool
}

var attribLayouts = map[gputypes.VertexFormat]attribLayout{
	gputypes.VertexFormatFloat32:   {1, driver.FLOAT, false, false},
	gputypes.VertexFormatFloat32x2: {2, driver.FLOAT, false, false},
	gputypes.VertexFormatFloat32x3: {3, driver.FLOAT, false, false},
	gputypes.VertexFormatFloat32x4: {4, driver.FLOAT, false, false},
	gputypes.VertexFormatUnorm8x2:  {2, driver.UNSIGNED_BYTE, true, false},
	gputypes.VertexFormatUnorm8x4:  {4, driver.UNSIGNED_BYTE, true, false},
	gputypes.VertexFormatUint8x2:   {2, driver.UNSIGNED_BYTE, false, true},
	gputypes.VertexFormatUint8x4:   {4, driver.UNSIGNED_BYTE, false, true},
	gputypes.VertexFormatUint16x2:  {2, driver.UNSIGNED_SHORT, false, true},
	gputypes.VertexFormatUint16x4:  {4, driver.UNSIGNED_SHORT, false, true},
	gputypes.VertexFormatSint32:    {1, driver.INT, false, true},
	gputypes.VertexFormatSint32x2:  {2, driver.INT, false, true},
	gputypes.VertexFormatSint32x3:  {3, driver.INT, false, true},
	gputypes.VertexFormatSint32x4:  {4, driver.INT, false, true},
	gputypes.VertexFormatUint32:    {1, driver.UNSIGNED_INT, false, true},
	gputypes.VertexFormatUint32x2:  {2, driver.UNSIGNED_INT, false, true},
	gputypes.VertexFormatUint32x3:  {3, driver.UNSIGNED_INT, false, true},
	gputypes.VertexFormatUint32x4:  {4, driver.UNSIGNED_INT, false, true},
}

// Validate reports an attribute whose format has no driver layout.
func (vd VertexDescriptor) Validate() error {
	for _, list := range [][]VertexAttribute{vd.VertexAttributes, vd.InstanceAttributes} {
		for _, a := range list {
			if _, ok := attribLayouts[a.Format]; !ok {
				return fmt.Errorf("gldevice: attribute %q has unsupported format %v", a.Name, a.Format)
			}
		}
	}
	return nil
}

func (d *Device) bindAttribute(index uint32, a VertexAttribute, divisor uint32, stride int32, offset int) {
	l, ok := attribLayouts[a.Format]
	assertf(ok, "attribute %q has unsupported format %v", a.Name, a.Format)
	d.drv.EnableVertexAttribArray(index)
	d.drv.VertexAttribDivisor(index, divisor)
	if l.integer {
		d.drv.VertexAttribIPointer(index, l.count, l.typ, stride, offset)
	} else {
		d.drv.VertexAttribPointer(index, l.count, l.typ, l.normalized, stride, offset)
	}
}

// bindDescriptor wires the attributes of vd into the bound vertex array.
func (d *Device) bindDescriptor(vd VertexDescriptor, main, instance driver.Buffer) {
	d.drv.BindBuffer(driver.ARRAY_BUFFER, main)
	vs := vd.VertexStride()
	offset := 0
	for i, a := range vd.VertexAttributes {
		d.bindAttribute(uint32(i), a, 0, vs, offset)
		offset += int(a.Format.Size())
	}
	if len(vd.InstanceAttributes) == 0 {
		return
	}

	d.drv.BindBuffer(driver.ARRAY_BUFFER, instance)
	is := vd.InstanceStride()
	offset = 0
	base := len(vd.VertexAttributes)
	for i, a := range vd.InstanceAttributes {
		d.bindAttribute(uint32(base+i), a, 1, is, offset)
		offset += int(a.Format.Size())
	}
}

// VAO is a vertex array with its index, vertex and instance buffers. The
// index and vertex buffers may be shared with other VAOs; only the VAO that
// owns them deletes them.
type VAO struct {
	id             driver.VertexArray
	ibo            driver.Buffer
	mainVBO        driver.Buffer
	instanceVBO    driver.Buffer
	instanceStride int32
	owns           bool
}

// ID returns the GL name, zero once deleted.
func (v *VAO) ID() driver.VertexArray { return v.id }

// IndexBuffer returns the element buffer.
func (v *VAO) IndexBuffer() driver.Buffer { return v.ibo }

// MainBuffer returns the per-vertex buffer.
func (v *VAO) MainBuffer() driver.Buffer { return v.mainVBO }

// InstanceBuffer returns the per-instance buffer.
func (v *VAO) InstanceBuffer() driver.Buffer { return v.instanceVBO }

// InstanceStride returns the byte size of one instance record.
func (v *VAO) InstanceStride() int32 { return v.instanceStride }

// OwnsVerticesAndIndices reports whether deleting v deletes its index and
// vertex buffers.
func (v *VAO) OwnsVerticesAndIndices() bool { return v.owns }

func (d *Device) createVAOWithBuffers(vd VertexDescriptor, main, instance, ibo driver.Buffer, owns bool) *VAO {
	vao := &VAO{
		id:             d.drv.GenVertexArrays(1)[0],
		ibo:            ibo,
		mainVBO:        main,
		instanceVBO:    instance,
		instanceStride: vd.InstanceStride(),
		owns:           owns,
	}
	d.bindVAOID(vao.id)
	d.bindDescriptor(vd, main, instance)
	d.drv.BindBuffer(driver.ELEMENT_ARRAY_BUFFER, ibo)

	d.live.vaos++
	runtime.SetFinalizer(vao, func(v *VAO) {
		if v.id != 0 {
			Logger().Warn("gldevice: vertex array leaked", "id", uint32(v.id))
		}
	})
	return vao
}

// CreateVAO creates a vertex array with fresh index, vertex and instance
// buffers, all owned by it. The new VAO is left bound.
func (d *Device) CreateVAO(vd VertexDescriptor) *VAO {
	d.assertInsideFrame("CreateVAO")
	buffers := d.drv.GenBuffers(3)
	ibo, main, instance := buffers[0], buffers[1], buffers[2]
	return d.createVAOWithBuffers(vd, main, instance, ibo, true)
}

// CreateVAOWithNewInstances creates a vertex array that shares the index
// and vertex buffers of base and has its own instance buffer. Deleting it
// leaves base's buffers alone. The new VAO is left bound.
func (d *Device) CreateVAOWithNewInstances(vd VertexDescriptor, base *VAO) *VAO {
	d.assertInsideFrame("CreateVAOWithNewInstances")
	instance := d.drv.GenBuffers(1)[0]
	return d.createVAOWithBuffers(vd, base.mainVBO, instance, base.ibo, false)
}

// DeleteVAO deletes vao, its instance buffer, and its index and vertex
// buffers if it owns them.
func (d *Device) DeleteVAO(vao *VAO) {
	assertf(vao.id != 0, "vertex array deleted twice")
	if d.bound.vao == vao.id {
		d.bound.vao = 0
	}
	d.drv.DeleteVertexArrays(vao.id)
	vao.id = 0

	if vao.owns {
		d.drv.DeleteBuffers(vao.ibo, vao.mainVBO)
	}
	d.drv.DeleteBuffers(vao.instanceVBO)
	vao.ibo, vao.mainVBO, vao.instanceVBO = 0, 0, 0
	d.live.vaos--
}

// VertexUsageHint tells the driver how often buffer contents change.
type VertexUsageHint uint8

const (
	UsageStatic VertexUsageHint = iota
	UsageDynamic
	UsageStream
)

func (h VertexUsageHint) gl() driver.Enum {
	switch h {
	case UsageDynamic:
		return driver.DYNAMIC_DRAW
	case UsageStream:
		return driver.STREAM_DRAW
	default:
		return driver.STATIC_DRAW
	}
}

// UpdateVAOMainVertices replaces the per-vertex data. vao must be bound.
func (d *Device) UpdateVAOMainVertices(vao *VAO, data []byte, usage VertexUsageHint) {
	d.assertInsideFrame("UpdateVAOMainVertices")
	assertf(d.bound.vao == vao.id, "UpdateVAOMainVertices on vertex array %d while %d is bound", vao.id, d.bound.vao)
	d.drv.BindBuffer(driver.ARRAY_BUFFER, vao.mainVBO)
	d.drv.BufferData(driver.ARRAY_BUFFER, len(data), data, usage.gl())
}

// UpdateVAOInstances replaces the per-instance data. vao must be bound and
// data must hold whole instance records.
func (d *Device) UpdateVAOInstances(vao *VAO, data []byte, usage VertexUsageHint) {
	d.assertInsideFrame("UpdateVAOInstances")
	assertf(d.bound.vao == vao.id, "UpdateVAOInstances on vertex array %d while %d is bound", vao.id, d.bound.vao)
	assertf(vao.instanceStride > 0 && len(data)%int(vao.instanceStride) == 0,
		"instance data of %d bytes is not a multiple of stride %d", len(data), vao.instanceStride)
	d.drv.BindBuffer(driver.ARRAY_BUFFER, vao.instanceVBO)
	d.drv.BufferData(driver.ARRAY_BUFFER, len(data), data, usage.gl())
}

// UpdateVAOIndices replaces the index data. vao must be bound.
func (d *Device) UpdateVAOIndices(vao *VAO, data []byte, usage VertexUsageHint) {
	d.assertInsideFrame("UpdateVAOIndices")
	assertf(d.bound.vao == vao.id, "UpdateVAOIndices on vertex array %d while %d is bound", vao.id, d.bound.vao)
	d.drv.BindBuffer(driver.ELEMENT_ARRAY_BUFFER, vao.ibo)
	d.drv.BufferData(driver.ELEMENT_ARRAY_BUFFER, len(data), data, usage.gl())
}

// UpdateInstances uploads typed instance records. The record size of T
// must equal the VAO's instance stride.
func UpdateInstances[T any](d *Device, vao *VAO, instances []T, usage VertexUsageHint) {
	var zero T
	assertf(int32(unsafe.Sizeof(zero)) == vao.instanceStride,
		"instance record of %d bytes, vertex array stride %d", unsafe.Sizeof(zero), vao.instanceStride)
	d.UpdateVAOInstances(vao, AsBytes(instances), usage)
}

// AsBytes reinterprets a slice of plain values as bytes in host order. T
// must not contain pointers.
func AsBytes[T any](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	var zero T
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*int(unsafe.Sizeof(zero)))
}
