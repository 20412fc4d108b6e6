package gldevice

import "github.com/gogpu/gldevice/driver"

// PBO is a pixel unpack buffer used to stage texture uploads.
type PBO struct {
	id driver.Buffer
}

// ID returns the GL name, zero once deleted.
func (p *PBO) ID() driver.Buffer { return p.id }

// CreatePBO allocates a pixel buffer.
func (d *Device) CreatePBO() *PBO {
	d.live.pbos++
	return &PBO{id: d.drv.GenBuffers(1)[0]}
}

// DeletePBO deletes pbo.
func (d *Device) DeletePBO(pbo *PBO) {
	assertf(pbo.id != 0, "pixel buffer deleted twice")
	if d.bound.pbo == pbo.id {
		d.bound.pbo = 0
	}
	d.drv.DeleteBuffers(pbo.id)
	pbo.id = 0
	d.live.pbos--
}

// UpdatePBOData replaces the contents of the bound pixel buffer.
func (d *Device) UpdatePBOData(data []byte) {
	d.assertInsideFrame("UpdatePBOData")
	assertf(d.bound.pbo != 0, "UpdatePBOData with no pixel buffer bound")
	d.drv.BufferData(driver.PIXEL_UNPACK_BUFFER, len(data), data, driver.STREAM_DRAW)
}

// OrphanPBO gives the bound pixel buffer fresh, undefined storage of size
// bytes so the driver need not wait on pending reads of the old storage.
func (d *Device) OrphanPBO(size int) {
	d.assertInsideFrame("OrphanPBO")
	assertf(d.bound.pbo != 0, "OrphanPBO with no pixel buffer bound")
	d.drv.BufferData(driver.PIXEL_UNPACK_BUFFER, size, nil, driver.STREAM_DRAW)
}
