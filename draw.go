package gldevice

import (
	"image"

	"github.com/gogpu/gldevice/driver"
)

// DrawTrianglesU16 draws count 16-bit indices starting at index first of
// the bound vertex array.
func (d *Device) DrawTrianglesU16(first, count int32) {
	d.assertInsideFrame("DrawTrianglesU16")
	d.drv.DrawElements(driver.TRIANGLES, count, driver.UNSIGNED_SHORT, int(first)*2)
}

// DrawTrianglesU32 draws count 32-bit indices starting at index first.
func (d *Device) DrawTrianglesU32(first, count int32) {
	d.assertInsideFrame("DrawTrianglesU32")
	d.drv.DrawElements(driver.TRIANGLES, count, driver.UNSIGNED_INT, int(first)*4)
}

// DrawIndexedTrianglesInstancedU16 draws count 16-bit indices once per
// instance.
func (d *Device) DrawIndexedTrianglesInstancedU16(count, instances int32) {
	d.assertInsideFrame("DrawIndexedTrianglesInstancedU16")
	d.drv.DrawElementsInstanced(driver.TRIANGLES, count, driver.UNSIGNED_SHORT, 0, instances)
}

// DrawNonIndexedLines draws count vertices as line pairs.
func (d *Device) DrawNonIndexedLines(first, count int32) {
	d.assertInsideFrame("DrawNonIndexedLines")
	d.drv.DrawArrays(driver.LINES, first, count)
}

// BlitRenderTarget copies src of the bound read target into dst of the
// bound draw target, filtering linearly when the sizes differ.
func (d *Device) BlitRenderTarget(src, dst image.Rectangle) {
	d.assertInsideFrame("BlitRenderTarget")
	d.drv.BlitFramebuffer(
		int32(src.Min.X), int32(src.Min.Y), int32(src.Max.X), int32(src.Max.Y),
		int32(dst.Min.X), int32(dst.Min.Y), int32(dst.Max.X), int32(dst.Max.Y),
		driver.COLOR_BUFFER_BIT, driver.LINEAR,
	)
}

// ReadPixels returns the RGBA8 contents of rect in the bound read target,
// bottom row first.
func (d *Device) ReadPixels(rect image.Rectangle) []byte {
	d.assertInsideFrame("ReadPixels")
	buf := make([]byte, rect.Dx()*rect.Dy()*4)
	d.drv.PixelStorei(driver.PACK_ALIGNMENT, 1)
	d.drv.ReadPixels(int32(rect.Min.X), int32(rect.Min.Y), int32(rect.Dx()), int32(rect.Dy()),
		driver.RGBA, driver.UNSIGNED_BYTE, buf)
	return buf
}
