package gldevice

import (
	"fmt"
	"runtime"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/gldevice/driver"
)

// TextureTarget is the kind of a texture object.
type TextureTarget uint8

const (
	Texture2D TextureTarget = iota
	Texture2DArray
	TextureRect
	TextureExternal
)

func (t TextureTarget) gl() driver.Enum {
	switch t {
	case Texture2DArray:
		return driver.TEXTURE_2D_ARRAY
	case TextureRect:
		return driver.TEXTURE_RECTANGLE
	case TextureExternal:
		return driver.TEXTURE_EXTERNAL_OES
	default:
		return driver.TEXTURE_2D
	}
}

func (t TextureTarget) String() string {
	switch t {
	case Texture2DArray:
		return "2d-array"
	case TextureRect:
		return "rect"
	case TextureExternal:
		return "external"
	default:
		return "2d"
	}
}

// TextureSlot is a sampler unit, 0 to MaxTextureSlots-1.
type TextureSlot uint8

// Named sampler slots used by the builtin programs.
const (
	SlotColor0 TextureSlot = iota
	SlotColor1
	SlotColor2
	SlotCacheA8
	SlotCacheRGBA8
	SlotResourceCache
	SlotLayers
	SlotRenderTasks
	SlotDither
)

var samplerNames = [...]string{
	SlotColor0:        "sColor0",
	SlotColor1:        "sColor1",
	SlotColor2:        "sColor2",
	SlotCacheA8:       "sCacheA8",
	SlotCacheRGBA8:    "sCacheRGBA8",
	SlotResourceCache: "sResourceCache",
	SlotLayers:        "sLayers",
	SlotRenderTasks:   "sRenderTasks",
	SlotDither:        "sDither",
}

// SamplerName returns the sampler uniform bound to the slot, or "" for an
// unnamed slot.
func (s TextureSlot) SamplerName() string {
	if int(s) < len(samplerNames) {
		return samplerNames[s]
	}
	return ""
}

// RenderTargetInfo marks a texture as a render target.
type RenderTargetInfo struct {
	HasDepth bool
}

// ExternalTexture is a texture owned outside the device. It is never
// deleted here.
type ExternalTexture struct {
	ID     driver.Texture
	Target TextureTarget
}

// Texture is a texture object and, for render targets, one framebuffer per
// layer plus an optional depth renderbuffer shared by all layers.
type Texture struct {
	id            driver.Texture
	target        TextureTarget
	width, height int32
	layers        int32
	format        gputypes.TextureFormat
	filter        gputypes.FilterMode
	renderTarget  *RenderTargetInfo
	fbos          []driver.Framebuffer
	depthRB       driver.Renderbuffer
	lastFrameUsed FrameID
}

// ID returns the GL name, zero once deleted.
func (t *Texture) ID() driver.Texture { return t.id }

// Target returns the texture kind.
func (t *Texture) Target() TextureTarget { return t.target }

// Width returns the width in pixels.
func (t *Texture) Width() int32 { return t.width }

// Height returns the height in pixels.
func (t *Texture) Height() int32 { return t.height }

// Layers returns the layer count.
func (t *Texture) Layers() int32 { return t.layers }

// Format returns the pixel format; TextureFormatUndefined when the texture
// has no storage.
func (t *Texture) Format() gputypes.TextureFormat { return t.format }

// Filter returns the sampling filter.
func (t *Texture) Filter() gputypes.FilterMode { return t.filter }

// IsRenderTarget reports whether the texture was last initialized as a
// render target.
func (t *Texture) IsRenderTarget() bool { return t.renderTarget != nil }

// FBOs returns the per-layer framebuffers.
func (t *Texture) FBOs() []driver.Framebuffer {
	return append([]driver.Framebuffer(nil), t.fbos...)
}

// DepthRenderbuffer returns the shared depth buffer, zero if none.
func (t *Texture) DepthRenderbuffer() driver.Renderbuffer { return t.depthRB }

// LastFrameUsed returns the frame in which the texture was last bound.
func (t *Texture) LastFrameUsed() FrameID { return t.lastFrameUsed }

func (t *Texture) layerFBO(layer int) driver.Framebuffer {
	assertf(layer >= 0 && layer < len(t.fbos), "layer %d out of range for texture %d with %d framebuffers", layer, t.id, len(t.fbos))
	return t.fbos[layer]
}

// formatDesc is the GL triple for a pixel format.
type formatDesc struct {
	internal      driver.Enum
	external      driver.Enum
	typ           driver.Enum
	bytesPerPixel int
}

func (d *Device) describeFormat(f gputypes.TextureFormat) (formatDesc, error) {
	switch f {
	case gputypes.TextureFormatR8Unorm:
		if d.caps.ExpandSingleChannel {
			return formatDesc{driver.RGBA8, driver.RGBA, driver.UNSIGNED_BYTE, 4}, nil
		}
		return formatDesc{driver.R8, driver.RED, driver.UNSIGNED_BYTE, 1}, nil
	case gputypes.TextureFormatRG8Unorm:
		return formatDesc{driver.RG8, driver.RG, driver.UNSIGNED_BYTE, 2}, nil
	case gputypes.TextureFormatRGBA8Unorm:
		return formatDesc{driver.RGBA8, driver.RGBA, driver.UNSIGNED_BYTE, 4}, nil
	case gputypes.TextureFormatBGRA8Unorm:
		if d.caps.Flavor == gputypes.GLBackendGLES {
			return formatDesc{driver.BGRA_EXT, driver.BGRA_EXT, driver.UNSIGNED_BYTE, 4}, nil
		}
		return formatDesc{driver.RGBA8, driver.BGRA, driver.UNSIGNED_BYTE, 4}, nil
	case gputypes.TextureFormatRGBA32Float:
		return formatDesc{driver.RGBA32F, driver.RGBA, driver.FLOAT, 16}, nil
	}
	return formatDesc{}, fmt.Errorf("%w: %v", ErrUnsupportedFormat, f)
}

// expandPixels widens single-channel data to four bytes per pixel when the
// device stores R8 textures as RGBA8.
func (d *Device) expandPixels(f gputypes.TextureFormat, pixels []byte) []byte {
	if pixels == nil || f != gputypes.TextureFormatR8Unorm || !d.caps.ExpandSingleChannel {
		return pixels
	}
	out := make([]byte, 0, len(pixels)*4)
	for _, b := range pixels {
		out = append(out, b, b, b, b)
	}
	return out
}

// CreateTexture allocates a texture name. The texture has no storage until
// InitTexture.
func (d *Device) CreateTexture(target TextureTarget) *Texture {
	t := &Texture{
		id:     d.drv.GenTextures(1)[0],
		target: target,
		filter: gputypes.FilterModeNearest,
	}
	d.live.textures++
	runtime.SetFinalizer(t, func(t *Texture) {
		if t.id != 0 {
			Logger().Warn("gldevice: texture leaked", "id", uint32(t.id), "target", t.target.String())
		}
	})
	return t
}

// TextureDesc describes the storage InitTexture gives a texture.
type TextureDesc struct {
	Width, Height int32
	// Layers is the layer count; 2D-array textures only, otherwise 1.
	Layers int32
	Format gputypes.TextureFormat
	Filter gputypes.FilterMode
	// RenderTarget, when set, gives every layer a framebuffer.
	RenderTarget *RenderTargetInfo
}

// InitTexture (re)specifies the storage of tex. Render targets reuse
// existing storage and framebuffers when nothing relevant changed; other
// textures are re-specified with pixels, which may be nil.
func (d *Device) InitTexture(tex *Texture, desc TextureDesc, pixels []byte) error {
	d.assertInsideFrame("InitTexture")
	if desc.Width > d.caps.MaxTextureSize || desc.Height > d.caps.MaxTextureSize {
		return fmt.Errorf("%w: %dx%d > %d", ErrTextureTooLarge, desc.Width, desc.Height, d.caps.MaxTextureSize)
	}
	fd, err := d.describeFormat(desc.Format)
	if err != nil {
		return err
	}
	if desc.Layers == 0 {
		desc.Layers = 1
	}

	resized := tex.width != desc.Width || tex.height != desc.Height || tex.format != desc.Format
	tex.width, tex.height = desc.Width, desc.Height
	tex.format = desc.Format
	tex.filter = desc.Filter
	tex.layers = desc.Layers
	tex.renderTarget = desc.RenderTarget
	tex.lastFrameUsed = d.frameID

	d.bindTextureID(0, tex.target.gl(), tex.id)
	d.setTextureParameters(tex.target, desc.Filter)

	if desc.RenderTarget != nil {
		d.updateTargetStorage(tex, fd, *desc.RenderTarget, resized, pixels)
		return nil
	}
	if len(tex.fbos) > 0 || tex.depthRB != 0 {
		d.releaseTargets(tex)
	}
	d.specifyStorage(tex, fd, d.expandPixels(desc.Format, pixels))
	return nil
}

func (d *Device) setTextureParameters(target TextureTarget, filter gputypes.FilterMode) {
	gl := target.gl()
	f := int32(driver.Filter(filter))
	d.drv.TexParameteri(gl, driver.TEXTURE_MAG_FILTER, f)
	d.drv.TexParameteri(gl, driver.TEXTURE_MIN_FILTER, f)
	d.drv.TexParameteri(gl, driver.TEXTURE_WRAP_S, int32(driver.CLAMP_TO_EDGE))
	d.drv.TexParameteri(gl, driver.TEXTURE_WRAP_T, int32(driver.CLAMP_TO_EDGE))
}

func (d *Device) specifyStorage(tex *Texture, fd formatDesc, pixels []byte) {
	if tex.target == Texture2DArray {
		d.drv.TexImage3D(driver.TEXTURE_2D_ARRAY, 0, int32(fd.internal),
			tex.width, tex.height, tex.layers, fd.external, fd.typ, pixels)
		return
	}
	assertf(tex.layers == 1, "%s texture %d with %d layers", tex.target, tex.id, tex.layers)
	d.drv.TexImage2D(tex.target.gl(), 0, int32(fd.internal),
		tex.width, tex.height, fd.external, fd.typ, pixels)
}

// updateTargetStorage brings the color storage, the per-layer framebuffers
// and the depth renderbuffer of a render target in line with its fields,
// allocating only what changed. The draw framebuffer binding is restored.
func (d *Device) updateTargetStorage(tex *Texture, fd formatDesc, info RenderTargetInfo, resized bool, pixels []byte) {
	assertf(tex.layers > 0 || tex.width+tex.height == 0, "render target %d with no layers", tex.id)

	needed := int(tex.layers) - len(tex.fbos)
	allocateColor := needed != 0 || resized || pixels != nil
	if allocateColor {
		d.specifyStorage(tex, fd, d.expandPixels(tex.format, pixels))
	}

	switch {
	case needed > 0:
		tex.fbos = append(tex.fbos, d.drv.GenFramebuffers(needed)...)
	case needed < 0:
		d.deleteFBOs(tex.fbos[tex.layers:])
		tex.fbos = tex.fbos[:tex.layers]
	}

	var allocateDepth bool
	switch {
	case tex.depthRB != 0:
		allocateDepth = resized || !info.HasDepth
	case info.HasDepth:
		tex.depthRB = d.drv.GenRenderbuffers(1)[0]
		allocateDepth = true
	}
	if allocateDepth {
		if info.HasDepth {
			d.drv.BindRenderbuffer(driver.RENDERBUFFER, tex.depthRB)
			d.drv.RenderbufferStorage(driver.RENDERBUFFER, driver.DEPTH_COMPONENT24, tex.width, tex.height)
		} else {
			d.drv.DeleteRenderbuffers(tex.depthRB)
			tex.depthRB = 0
		}
	}

	Logger().Debug("gldevice: render target storage",
		"texture", uint32(tex.id), "layers", tex.layers, "fbo_delta", needed,
		"color", allocateColor, "depth", allocateDepth, "has_depth", info.HasDepth)

	if allocateColor || allocateDepth {
		original := d.bound.drawFBO
		for i, fbo := range tex.fbos {
			d.BindExternalDrawTarget(fbo)
			if tex.target == Texture2DArray {
				d.drv.FramebufferTextureLayer(driver.DRAW_FRAMEBUFFER, driver.COLOR_ATTACHMENT0, tex.id, 0, int32(i))
			} else {
				assertf(i == 0, "%s render target %d with layer %d", tex.target, tex.id, i)
				d.drv.FramebufferTexture2D(driver.DRAW_FRAMEBUFFER, driver.COLOR_ATTACHMENT0, tex.target.gl(), tex.id, 0)
			}
			d.drv.FramebufferRenderbuffer(driver.DRAW_FRAMEBUFFER, driver.DEPTH_ATTACHMENT, driver.RENDERBUFFER, tex.depthRB)
		}
		d.BindExternalDrawTarget(original)
	}
}

// releaseTargets deletes the framebuffers and depth buffer of a texture.
func (d *Device) releaseTargets(tex *Texture) {
	if tex.depthRB != 0 {
		d.drv.DeleteRenderbuffers(tex.depthRB)
		tex.depthRB = 0
	}
	if len(tex.fbos) > 0 {
		d.deleteFBOs(tex.fbos)
		tex.fbos = nil
	}
}

// deleteFBOs deletes framebuffers. The driver unbinds a deleted framebuffer,
// so cached bindings to one fall back to zero as well.
func (d *Device) deleteFBOs(fbos []driver.Framebuffer) {
	for _, fbo := range fbos {
		if d.bound.drawFBO == fbo {
			d.bound.drawFBO = 0
		}
		if d.bound.readFBO == fbo {
			d.bound.readFBO = 0
		}
	}
	d.drv.DeleteFramebuffers(fbos...)
}

// FreeTextureStorage releases the storage of tex but keeps its name. The
// texture returns to the empty state; calling it again does nothing.
func (d *Device) FreeTextureStorage(tex *Texture) {
	d.assertInsideFrame("FreeTextureStorage")
	if tex.format == gputypes.TextureFormatUndefined {
		return
	}
	d.bindTextureID(0, tex.target.gl(), tex.id)
	fd, err := d.describeFormat(tex.format)
	if err == nil {
		if tex.target == Texture2DArray {
			d.drv.TexImage3D(driver.TEXTURE_2D_ARRAY, 0, int32(fd.internal), 0, 0, 0, fd.external, fd.typ, nil)
		} else {
			d.drv.TexImage2D(tex.target.gl(), 0, int32(fd.internal), 0, 0, fd.external, fd.typ, nil)
		}
	}
	d.releaseTargets(tex)

	tex.format = gputypes.TextureFormatUndefined
	tex.width, tex.height, tex.layers = 0, 0, 0
	tex.renderTarget = nil
}

// DeleteTexture frees the storage of tex and deletes its name.
func (d *Device) DeleteTexture(tex *Texture) {
	assertf(tex.id != 0, "texture deleted twice")
	d.FreeTextureStorage(tex)
	for i, bound := range d.bound.textures {
		if bound == tex.id {
			d.bound.textures[i] = 0
		}
	}
	d.drv.DeleteTextures(tex.id)
	tex.id = 0
	d.live.textures--
}

// UpdateTexture uploads a rectangle of pixels into one layer of tex. stride
// is the byte length of a source row, or 0 for tightly packed rows. With
// UploadPBO the data is staged through the device's pixel buffer.
func (d *Device) UpdateTexture(tex *Texture, x, y, width, height, layer, stride int32, data []byte) {
	d.assertInsideFrame("UpdateTexture")
	data = d.expandPixels(tex.format, data)
	if stride != 0 && tex.format == gputypes.TextureFormatR8Unorm && d.caps.ExpandSingleChannel {
		stride *= 4
	}
	if d.cfg.UploadMethod == UploadPBO {
		if d.uploadPBO == nil {
			d.uploadPBO = d.CreatePBO()
		}
		prev := d.bound.pbo
		d.BindPBO(d.uploadPBO)
		d.UpdatePBOData(data)
		d.upload(tex, x, y, width, height, layer, stride, nil, 0)
		d.bindPBOID(prev)
		return
	}
	assertf(d.bound.pbo == 0, "UpdateTexture with pixel buffer %d bound", d.bound.pbo)
	d.upload(tex, x, y, width, height, layer, stride, data, 0)
}

// UpdateTextureFromPBO uploads from the bound pixel buffer at offset.
func (d *Device) UpdateTextureFromPBO(tex *Texture, x, y, width, height, layer, stride int32, offset int) {
	d.assertInsideFrame("UpdateTextureFromPBO")
	assertf(d.bound.pbo != 0, "UpdateTextureFromPBO with no pixel buffer bound")
	d.upload(tex, x, y, width, height, layer, stride, nil, offset)
}

func (d *Device) upload(tex *Texture, x, y, width, height, layer, stride int32, data []byte, offset int) {
	fd, err := d.describeFormat(tex.format)
	assertf(err == nil, "upload to texture %d: %v", tex.id, err)
	if stride != 0 {
		d.drv.PixelStorei(driver.UNPACK_ROW_LENGTH, stride/int32(fd.bytesPerPixel))
	}
	d.bindTextureID(0, tex.target.gl(), tex.id)
	if tex.target == Texture2DArray {
		d.drv.TexSubImage3D(driver.TEXTURE_2D_ARRAY, 0, x, y, layer, width, height, 1, fd.external, fd.typ, data, offset)
	} else {
		d.drv.TexSubImage2D(tex.target.gl(), 0, x, y, width, height, fd.external, fd.typ, data, offset)
	}
	if stride != 0 {
		d.drv.PixelStorei(driver.UNPACK_ROW_LENGTH, 0)
	}
	tex.lastFrameUsed = d.frameID
}
