package gldevice

import (
	"image"

	"github.com/gogpu/gldevice/driver"
)

// MaxTextureSlots is the number of sampler slots tracked by the binding
// cache.
const MaxTextureSlots = 16

// bindings is the last handle passed to each bind point. A bind whose
// handle matches is skipped.
type bindings struct {
	textures [MaxTextureSlots]driver.Texture
	program  driver.Program
	vao      driver.VertexArray
	pbo      driver.Buffer
	readFBO  driver.Framebuffer
	drawFBO  driver.Framebuffer
}

// ResetState forgets the cached texture, vertex array, pixel buffer and
// framebuffer bindings without touching the driver. Call it after code
// outside the device has changed GL state. The bound program is kept.
func (d *Device) ResetState() {
	d.bound.textures = [MaxTextureSlots]driver.Texture{}
	d.bound.vao = 0
	d.bound.pbo = 0
	d.bound.readFBO = 0
	d.bound.drawFBO = 0
	Logger().Debug("gldevice: binding cache reset")
}

func (d *Device) bindTextureID(slot TextureSlot, target driver.Enum, id driver.Texture) {
	d.assertInsideFrame("BindTexture")
	assertf(int(slot) < MaxTextureSlots, "texture slot %d out of range", slot)
	if d.bound.textures[slot] == id {
		return
	}
	d.bound.textures[slot] = id
	d.drv.ActiveTexture(driver.TEXTURE0 + driver.Enum(slot))
	d.drv.BindTexture(target, id)
	d.drv.ActiveTexture(driver.TEXTURE0)
}

// BindTexture binds tex to a sampler slot and marks it used this frame.
func (d *Device) BindTexture(slot TextureSlot, tex *Texture) {
	d.bindTextureID(slot, tex.target.gl(), tex.id)
	tex.lastFrameUsed = d.frameID
}

// BindExternalTexture binds a texture owned outside the device.
func (d *Device) BindExternalTexture(slot TextureSlot, ext ExternalTexture) {
	d.bindTextureID(slot, ext.Target.gl(), ext.ID)
}

func (d *Device) bindProgramID(id driver.Program) {
	if d.bound.program == id {
		return
	}
	d.bound.program = id
	d.drv.UseProgram(id)
}

// BindProgram makes p current. SwitchMode then targets p's uMode.
func (d *Device) BindProgram(p *Program) {
	d.assertInsideFrame("BindProgram")
	d.bindProgramID(p.id)
	d.programModeID = p.uMode
}

func (d *Device) bindVAOID(id driver.VertexArray) {
	if d.bound.vao == id {
		return
	}
	d.bound.vao = id
	d.drv.BindVertexArray(id)
}

// BindVAO makes vao current.
func (d *Device) BindVAO(vao *VAO) {
	d.assertInsideFrame("BindVAO")
	d.bindVAOID(vao.id)
}

func (d *Device) bindPBOID(id driver.Buffer) {
	if d.bound.pbo == id {
		return
	}
	d.bound.pbo = id
	d.drv.BindBuffer(driver.PIXEL_UNPACK_BUFFER, id)
}

// BindPBO binds pbo as the pixel unpack buffer. A nil pbo unbinds.
func (d *Device) BindPBO(pbo *PBO) {
	d.assertInsideFrame("BindPBO")
	var id driver.Buffer
	if pbo != nil {
		id = pbo.id
	}
	d.bindPBOID(id)
}

func (d *Device) bindReadFBO(fbo driver.Framebuffer) {
	if d.bound.readFBO == fbo {
		return
	}
	d.bound.readFBO = fbo
	d.drv.BindFramebuffer(driver.READ_FRAMEBUFFER, fbo)
}

// BindReadTarget binds a layer of a render target for reading. A nil
// texture selects the default read framebuffer captured by BeginFrame.
func (d *Device) BindReadTarget(tex *Texture, layer int) {
	d.assertInsideFrame("BindReadTarget")
	fbo := d.defaultReadFBO
	if tex != nil {
		fbo = tex.layerFBO(layer)
	}
	d.bindReadFBO(fbo)
}

// BindExternalDrawTarget binds a framebuffer that the device does not own.
func (d *Device) BindExternalDrawTarget(fbo driver.Framebuffer) {
	d.assertInsideFrame("BindExternalDrawTarget")
	if d.bound.drawFBO == fbo {
		return
	}
	d.bound.drawFBO = fbo
	d.drv.BindFramebuffer(driver.DRAW_FRAMEBUFFER, fbo)
}

// BindDrawTarget binds a layer of a render target for drawing. A nil
// texture selects the default draw framebuffer. When size is non-nil the
// viewport is set to cover it.
func (d *Device) BindDrawTarget(tex *Texture, layer int, size *image.Point) {
	d.assertInsideFrame("BindDrawTarget")
	fbo := d.defaultDrawFBO
	if tex != nil {
		fbo = tex.layerFBO(layer)
		tex.lastFrameUsed = d.frameID
	}
	d.BindExternalDrawTarget(fbo)
	if size != nil {
		d.drv.Viewport(0, 0, int32(size.X), int32(size.Y))
	}
}
