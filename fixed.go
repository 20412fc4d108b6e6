package gldevice

import (
	"image"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/gldevice/driver"
)

// EnableDepth turns on depth testing with a less-than test.
func (d *Device) EnableDepth() {
	d.drv.DepthFunc(driver.LESS)
	d.drv.Enable(driver.DEPTH_TEST)
}

// DisableDepth turns off depth testing.
func (d *Device) DisableDepth() {
	d.drv.Disable(driver.DEPTH_TEST)
}

// EnableDepthWrite turns on depth writes.
func (d *Device) EnableDepthWrite() {
	d.depthWrite = true
	d.drv.DepthMask(true)
}

// DisableDepthWrite turns off depth writes.
func (d *Device) DisableDepthWrite() {
	d.depthWrite = false
	d.drv.DepthMask(false)
}

// DisableStencil turns off the stencil test.
func (d *Device) DisableStencil() {
	d.drv.Disable(driver.STENCIL_TEST)
}

// SetScissorRect sets the scissor box. It does not enable the test.
func (d *Device) SetScissorRect(r image.Rectangle) {
	d.drv.Scissor(int32(r.Min.X), int32(r.Min.Y), int32(r.Dx()), int32(r.Dy()))
}

// EnableScissor turns on the scissor test.
func (d *Device) EnableScissor() {
	d.drv.Enable(driver.SCISSOR_TEST)
}

// DisableScissor turns off the scissor test.
func (d *Device) DisableScissor() {
	d.drv.Disable(driver.SCISSOR_TEST)
}

// ClearTarget clears the bound draw target. A nil color or depth leaves
// that buffer alone; clearing depth requires depth writes to be enabled. A
// non-nil rect limits the clear to that region using the scissor, which is
// disabled again afterwards.
func (d *Device) ClearTarget(color *gputypes.Color, depth *float32, rect *image.Rectangle) {
	var mask driver.Enum
	if color != nil {
		d.drv.ClearColor(float32(color.R), float32(color.G), float32(color.B), float32(color.A))
		mask |= driver.COLOR_BUFFER_BIT
	}
	if depth != nil {
		assertf(d.depthWrite, "ClearTarget of depth with depth writes disabled")
		d.drv.ClearDepth(float64(*depth))
		mask |= driver.DEPTH_BUFFER_BIT
	}
	if mask == 0 {
		return
	}
	if rect != nil {
		d.SetScissorRect(*rect)
		d.EnableScissor()
		d.drv.Clear(mask)
		d.DisableScissor()
		return
	}
	d.drv.Clear(mask)
}
