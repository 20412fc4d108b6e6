package gldevice

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/gldevice/driver"
)

func component(src, dst gputypes.BlendFactor, op gputypes.BlendOperation) gputypes.BlendComponent {
	return gputypes.BlendComponent{SrcFactor: src, DstFactor: dst, Operation: op}
}

func additive(src, dst gputypes.BlendFactor) gputypes.BlendComponent {
	return component(src, dst, gputypes.BlendOperationAdd)
}

// Blend presets. Each returns the exact factor and equation pair the
// compositor expects for that pass.

// BlendAlpha is straight-alpha "over" with additive alpha.
func BlendAlpha() gputypes.BlendState {
	return gputypes.BlendState{
		Color: additive(gputypes.BlendFactorSrcAlpha, gputypes.BlendFactorOneMinusSrcAlpha),
		Alpha: additive(gputypes.BlendFactorOne, gputypes.BlendFactorOne),
	}
}

// BlendPremultipliedAlpha is premultiplied "over".
func BlendPremultipliedAlpha() gputypes.BlendState {
	c := additive(gputypes.BlendFactorOne, gputypes.BlendFactorOneMinusSrcAlpha)
	return gputypes.BlendState{Color: c, Alpha: c}
}

// BlendPremultipliedDestOut keeps the destination where the source is
// transparent.
func BlendPremultipliedDestOut() gputypes.BlendState {
	c := additive(gputypes.BlendFactorZero, gputypes.BlendFactorOneMinusSrcAlpha)
	return gputypes.BlendState{Color: c, Alpha: c}
}

// BlendMultiply multiplies destination by source.
func BlendMultiply() gputypes.BlendState {
	return gputypes.BlendState{
		Color: additive(gputypes.BlendFactorZero, gputypes.BlendFactorSrc),
		Alpha: additive(gputypes.BlendFactorZero, gputypes.BlendFactorSrcAlpha),
	}
}

// BlendMax keeps the per-channel maximum of color.
func BlendMax() gputypes.BlendState {
	return gputypes.BlendState{
		Color: component(gputypes.BlendFactorOne, gputypes.BlendFactorOne, gputypes.BlendOperationMax),
		Alpha: additive(gputypes.BlendFactorOne, gputypes.BlendFactorOne),
	}
}

// BlendMin keeps the per-channel minimum of color.
func BlendMin() gputypes.BlendState {
	return gputypes.BlendState{
		Color: component(gputypes.BlendFactorOne, gputypes.BlendFactorOne, gputypes.BlendOperationMin),
		Alpha: additive(gputypes.BlendFactorOne, gputypes.BlendFactorOne),
	}
}

// BlendSubpixelPass0 is the first of three subpixel text passes: it
// attenuates the destination by the per-channel coverage.
func BlendSubpixelPass0() gputypes.BlendState {
	c := additive(gputypes.BlendFactorZero, gputypes.BlendFactorOneMinusSrc)
	return gputypes.BlendState{Color: c, Alpha: c}
}

// BlendSubpixelPass1 adds the text color.
func BlendSubpixelPass1() gputypes.BlendState {
	c := additive(gputypes.BlendFactorOne, gputypes.BlendFactorOne)
	return gputypes.BlendState{Color: c, Alpha: c}
}

// BlendSubpixelPass2 leaves color alone and composites alpha.
func BlendSubpixelPass2() gputypes.BlendState {
	return gputypes.BlendState{
		Color: additive(gputypes.BlendFactorZero, gputypes.BlendFactorOne),
		Alpha: additive(gputypes.BlendFactorOne, gputypes.BlendFactorOneMinusSrcAlpha),
	}
}

// BlendSubpixelWithBgColorPass0 is the first subpixel pass over an opaque
// background color.
func BlendSubpixelWithBgColorPass0() gputypes.BlendState {
	return gputypes.BlendState{
		Color: additive(gputypes.BlendFactorZero, gputypes.BlendFactorOneMinusSrc),
		Alpha: additive(gputypes.BlendFactorZero, gputypes.BlendFactorOne),
	}
}

// BlendSubpixelWithBgColorPass1 fills where the destination is transparent.
func BlendSubpixelWithBgColorPass1() gputypes.BlendState {
	return gputypes.BlendState{
		Color: additive(gputypes.BlendFactorOneMinusDstAlpha, gputypes.BlendFactorOne),
		Alpha: additive(gputypes.BlendFactorZero, gputypes.BlendFactorOne),
	}
}

// BlendSubpixelWithBgColorPass2 adds the text color and composites alpha.
func BlendSubpixelWithBgColorPass2() gputypes.BlendState {
	return gputypes.BlendState{
		Color: additive(gputypes.BlendFactorOne, gputypes.BlendFactorOne),
		Alpha: additive(gputypes.BlendFactorOne, gputypes.BlendFactorOneMinusSrcAlpha),
	}
}

// BlendSubpixelConstantTextColor draws subpixel text in a single color
// given as the blend constant.
func BlendSubpixelConstantTextColor() gputypes.BlendState {
	c := additive(gputypes.BlendFactorConstant, gputypes.BlendFactorOneMinusSrc)
	return gputypes.BlendState{Color: c, Alpha: c}
}

// SetBlend enables or disables blending.
func (d *Device) SetBlend(enable bool) {
	if enable {
		d.drv.Enable(driver.BLEND)
	} else {
		d.drv.Disable(driver.BLEND)
	}
}

// SetBlendState programs the blend function and equation. The separate
// entry points are used only when color and alpha differ.
func (d *Device) SetBlendState(s gputypes.BlendState) {
	if s.Color.SrcFactor == s.Alpha.SrcFactor && s.Color.DstFactor == s.Alpha.DstFactor {
		d.drv.BlendFunc(driver.BlendFactor(s.Color.SrcFactor), driver.BlendFactor(s.Color.DstFactor))
	} else {
		d.drv.BlendFuncSeparate(
			driver.BlendFactor(s.Color.SrcFactor), driver.BlendFactor(s.Color.DstFactor),
			driver.BlendFactor(s.Alpha.SrcFactor), driver.BlendFactor(s.Alpha.DstFactor),
		)
	}
	if s.Color.Operation == s.Alpha.Operation {
		d.drv.BlendEquation(driver.BlendEquation(s.Color.Operation))
	} else {
		d.drv.BlendEquationSeparate(driver.BlendEquation(s.Color.Operation), driver.BlendEquation(s.Alpha.Operation))
	}
}

// SetBlendModeAlpha selects BlendAlpha.
func (d *Device) SetBlendModeAlpha() { d.SetBlendState(BlendAlpha()) }

// SetBlendModePremultipliedAlpha selects BlendPremultipliedAlpha.
func (d *Device) SetBlendModePremultipliedAlpha() { d.SetBlendState(BlendPremultipliedAlpha()) }

// SetBlendModePremultipliedDestOut selects BlendPremultipliedDestOut.
func (d *Device) SetBlendModePremultipliedDestOut() { d.SetBlendState(BlendPremultipliedDestOut()) }

// SetBlendModeMultiply selects BlendMultiply.
func (d *Device) SetBlendModeMultiply() { d.SetBlendState(BlendMultiply()) }

// SetBlendModeMax selects BlendMax.
func (d *Device) SetBlendModeMax() { d.SetBlendState(BlendMax()) }

// SetBlendModeMin selects BlendMin.
func (d *Device) SetBlendModeMin() { d.SetBlendState(BlendMin()) }

// SetBlendModeSubpixelPass0 selects BlendSubpixelPass0.
func (d *Device) SetBlendModeSubpixelPass0() { d.SetBlendState(BlendSubpixelPass0()) }

// SetBlendModeSubpixelPass1 selects BlendSubpixelPass1.
func (d *Device) SetBlendModeSubpixelPass1() { d.SetBlendState(BlendSubpixelPass1()) }

// SetBlendModeSubpixelPass2 selects BlendSubpixelPass2.
func (d *Device) SetBlendModeSubpixelPass2() { d.SetBlendState(BlendSubpixelPass2()) }

// SetBlendModeSubpixelWithBgColorPass0 selects BlendSubpixelWithBgColorPass0.
func (d *Device) SetBlendModeSubpixelWithBgColorPass0() {
	d.SetBlendState(BlendSubpixelWithBgColorPass0())
}

// SetBlendModeSubpixelWithBgColorPass1 selects BlendSubpixelWithBgColorPass1.
func (d *Device) SetBlendModeSubpixelWithBgColorPass1() {
	d.SetBlendState(BlendSubpixelWithBgColorPass1())
}

// SetBlendModeSubpixelWithBgColorPass2 selects BlendSubpixelWithBgColorPass2.
func (d *Device) SetBlendModeSubpixelWithBgColorPass2() {
	d.SetBlendState(BlendSubpixelWithBgColorPass2())
}

// SetBlendModeSubpixelConstantTextColor sets the blend constant to the
// opaque text color c and selects BlendSubpixelConstantTextColor.
func (d *Device) SetBlendModeSubpixelConstantTextColor(c gputypes.Color) {
	d.drv.BlendColor(float32(c.R), float32(c.G), float32(c.B), 1)
	d.SetBlendState(BlendSubpixelConstantTextColor())
}
