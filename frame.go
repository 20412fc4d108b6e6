package gldevice

import "github.com/gogpu/gldevice/driver"

// BeginFrame starts a frame and returns its id.
//
// The framebuffers bound at this point become the default read and draw
// targets, so a host application may render the device's output into its
// own framebuffer. Texture units, the program and the vertex array are
// unbound and the binding cache is brought in line with the driver.
func (d *Device) BeginFrame() FrameID {
	assertf(!d.insideFrame, "BeginFrame called inside a frame")
	d.insideFrame = true

	d.defaultReadFBO = driver.Framebuffer(d.drv.GetInteger(driver.READ_FRAMEBUFFER_BINDING))
	d.defaultDrawFBO = driver.Framebuffer(d.drv.GetInteger(driver.DRAW_FRAMEBUFFER_BINDING))

	for i := range d.bound.textures {
		d.bound.textures[i] = 0
		d.drv.ActiveTexture(driver.TEXTURE0 + driver.Enum(i))
		d.drv.BindTexture(driver.TEXTURE_2D, 0)
	}

	d.bound.program = 0
	d.programModeID = driver.InvalidUniform
	d.drv.UseProgram(0)

	d.bound.vao = 0
	d.drv.BindVertexArray(0)

	d.bound.readFBO = d.defaultReadFBO
	d.bound.drawFBO = d.defaultDrawFBO

	d.drv.PixelStorei(driver.UNPACK_ALIGNMENT, 1)
	d.bound.pbo = 0
	d.drv.BindBuffer(driver.PIXEL_UNPACK_BUFFER, 0)

	d.drv.ActiveTexture(driver.TEXTURE0)
	return d.frameID
}

// EndFrame finishes the frame: the default targets are rebound, texture
// units and the program are released, and the frame id advances by one.
func (d *Device) EndFrame() {
	assertf(d.insideFrame, "EndFrame called outside a frame")
	d.BindDrawTarget(nil, 0, nil)
	d.BindReadTarget(nil, 0)
	d.insideFrame = false

	for i := range d.bound.textures {
		d.bound.textures[i] = 0
		d.drv.ActiveTexture(driver.TEXTURE0 + driver.Enum(i))
		d.drv.BindTexture(driver.TEXTURE_2D, 0)
	}
	d.drv.ActiveTexture(driver.TEXTURE0)

	d.bound.program = 0
	d.programModeID = driver.InvalidUniform
	d.drv.UseProgram(0)

	if d.cfg.DebugMessages {
		d.logDriverErrors()
	}
	d.frameID++
}

// logDriverErrors drains the driver error queue into the log.
func (d *Device) logDriverErrors() {
	for i := 0; i < 16; i++ {
		e := d.drv.GetError()
		if e == driver.NO_ERROR {
			return
		}
		Logger().Warn("gldevice: driver error", "frame", uint64(d.frameID), "error", errorName(e))
	}
}

func errorName(e driver.Enum) string {
	switch e {
	case driver.INVALID_ENUM:
		return "GL_INVALID_ENUM"
	case driver.INVALID_VALUE:
		return "GL_INVALID_VALUE"
	case driver.INVALID_OPERATION:
		return "GL_INVALID_OPERATION"
	case driver.OUT_OF_MEMORY:
		return "GL_OUT_OF_MEMORY"
	case driver.INVALID_FRAMEBUFFER_OPERATION:
		return "GL_INVALID_FRAMEBUFFER_OPERATION"
	}
	return "GL error"
}
