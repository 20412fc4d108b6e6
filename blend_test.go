package gldevice

import (
	"image"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/gldevice/driver"
	"github.com/gogpu/gldevice/driver/noop"
)

func TestBlendPresets(t *testing.T) {
	tests := []struct {
		name     string
		set      func(*Device)
		want     noop.BlendState
		separate bool
	}{
		{"alpha", (*Device).SetBlendModeAlpha, noop.BlendState{
			SrcRGB: driver.SRC_ALPHA, DstRGB: driver.ONE_MINUS_SRC_ALPHA, SrcAlpha: driver.ONE, DstAlpha: driver.ONE,
			EquationRGB: driver.FUNC_ADD, EquationAlpha: driver.FUNC_ADD,
		}, true},
		{"premultiplied alpha", (*Device).SetBlendModePremultipliedAlpha, noop.BlendState{
			SrcRGB: driver.ONE, DstRGB: driver.ONE_MINUS_SRC_ALPHA, SrcAlpha: driver.ONE, DstAlpha: driver.ONE_MINUS_SRC_ALPHA,
			EquationRGB: driver.FUNC_ADD, EquationAlpha: driver.FUNC_ADD,
		}, false},
		{"premultiplied dest out", (*Device).SetBlendModePremultipliedDestOut, noop.BlendState{
			SrcRGB: driver.ZERO, DstRGB: driver.ONE_MINUS_SRC_ALPHA, SrcAlpha: driver.ZERO, DstAlpha: driver.ONE_MINUS_SRC_ALPHA,
			EquationRGB: driver.FUNC_ADD, EquationAlpha: driver.FUNC_ADD,
		}, false},
		{"multiply", (*Device).SetBlendModeMultiply, noop.BlendState{
			SrcRGB: driver.ZERO, DstRGB: driver.SRC_COLOR, SrcAlpha: driver.ZERO, DstAlpha: driver.SRC_ALPHA,
			EquationRGB: driver.FUNC_ADD, EquationAlpha: driver.FUNC_ADD,
		}, true},
		{"max", (*Device).SetBlendModeMax, noop.BlendState{
			SrcRGB: driver.ONE, DstRGB: driver.ONE, SrcAlpha: driver.ONE, DstAlpha: driver.ONE,
			EquationRGB: driver.MAX, EquationAlpha: driver.FUNC_ADD,
		}, false},
		{"min", (*Device).SetBlendModeMin, noop.BlendState{
			SrcRGB: driver.ONE, DstRGB: driver.ONE, SrcAlpha: driver.ONE, DstAlpha: driver.ONE,
			EquationRGB: driver.MIN, EquationAlpha: driver.FUNC_ADD,
		}, false},
		{"subpixel pass 0", (*Device).SetBlendModeSubpixelPass0, noop.BlendState{
			SrcRGB: driver.ZERO, DstRGB: driver.ONE_MINUS_SRC_COLOR, SrcAlpha: driver.ZERO, DstAlpha: driver.ONE_MINUS_SRC_COLOR,
			EquationRGB: driver.FUNC_ADD, EquationAlpha: driver.FUNC_ADD,
		}, false},
		{"subpixel pass 1", (*Device).SetBlendModeSubpixelPass1, noop.BlendState{
			SrcRGB: driver.ONE, DstRGB: driver.ONE, SrcAlpha: driver.ONE, DstAlpha: driver.ONE,
			EquationRGB: driver.FUNC_ADD, EquationAlpha: driver.FUNC_ADD,
		}, false},
		{"subpixel pass 2", (*Device).SetBlendModeSubpixelPass2, noop.BlendState{
			SrcRGB: driver.ZERO, DstRGB: driver.ONE, SrcAlpha: driver.ONE, DstAlpha: driver.ONE_MINUS_SRC_ALPHA,
			EquationRGB: driver.FUNC_ADD, EquationAlpha: driver.FUNC_ADD,
		}, true},
		{"bg color pass 0", (*Device).SetBlendModeSubpixelWithBgColorPass0, noop.BlendState{
			SrcRGB: driver.ZERO, DstRGB: driver.ONE_MINUS_SRC_COLOR, SrcAlpha: driver.ZERO, DstAlpha: driver.ONE,
			EquationRGB: driver.FUNC_ADD, EquationAlpha: driver.FUNC_ADD,
		}, true},
		{"bg color pass 1", (*Device).SetBlendModeSubpixelWithBgColorPass1, noop.BlendState{
			SrcRGB: driver.ONE_MINUS_DST_ALPHA, DstRGB: driver.ONE, SrcAlpha: driver.ZERO, DstAlpha: driver.ONE,
			EquationRGB: driver.FUNC_ADD, EquationAlpha: driver.FUNC_ADD,
		}, true},
		{"bg color pass 2", (*Device).SetBlendModeSubpixelWithBgColorPass2, noop.BlendState{
			SrcRGB: driver.ONE, DstRGB: driver.ONE, SrcAlpha: driver.ONE, DstAlpha: driver.ONE_MINUS_SRC_ALPHA,
			EquationRGB: driver.FUNC_ADD, EquationAlpha: driver.FUNC_ADD,
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev, drv := newTestDevice(t, noop.Config{})
			drv.ResetCalls()
			tt.set(dev)
			if got := drv.Blend(); got != tt.want {
				t.Errorf("Blend() = %+v, want %+v", got, tt.want)
			}
			if got := drv.Calls("BlendFuncSeparate") == 1; got != tt.separate {
				t.Errorf("BlendFuncSeparate used = %v, want %v", got, tt.separate)
			}
		})
	}
}

func TestBlendConstantTextColor(t *testing.T) {
	dev, drv := newTestDevice(t, noop.Config{})
	dev.SetBlendModeSubpixelConstantTextColor(gputypes.Color{R: 0.25, G: 0.5, B: 0.75, A: 0.1})

	want := noop.BlendState{
		SrcRGB: driver.CONSTANT_COLOR, DstRGB: driver.ONE_MINUS_SRC_COLOR,
		SrcAlpha: driver.CONSTANT_COLOR, DstAlpha: driver.ONE_MINUS_SRC_COLOR,
		EquationRGB: driver.FUNC_ADD, EquationAlpha: driver.FUNC_ADD,
		Color: [4]float32{0.25, 0.5, 0.75, 1},
	}
	if got := drv.Blend(); got != want {
		t.Errorf("Blend() = %+v, want %+v", got, want)
	}
}

func TestSetBlend(t *testing.T) {
	dev, drv := newTestDevice(t, noop.Config{})
	dev.SetBlend(true)
	if !drv.Enabled(driver.BLEND) {
		t.Error("BLEND disabled after SetBlend(true)")
	}
	dev.SetBlend(false)
	if drv.Enabled(driver.BLEND) {
		t.Error("BLEND enabled after SetBlend(false)")
	}
}

func TestDepthState(t *testing.T) {
	dev, drv := newTestDevice(t, noop.Config{})
	dev.EnableDepth()
	if fn, _ := drv.DepthState(); fn != driver.LESS || !drv.Enabled(driver.DEPTH_TEST) {
		t.Errorf("depth func %#x enabled %v, want LESS enabled", fn, drv.Enabled(driver.DEPTH_TEST))
	}
	dev.DisableDepthWrite()
	if _, write := drv.DepthState(); write {
		t.Error("depth mask still on after DisableDepthWrite")
	}
	dev.EnableDepthWrite()
	if _, write := drv.DepthState(); !write {
		t.Error("depth mask off after EnableDepthWrite")
	}
	dev.DisableDepth()
	dev.DisableStencil()
	if drv.Enabled(driver.DEPTH_TEST) || drv.Enabled(driver.STENCIL_TEST) {
		t.Error("depth or stencil test still enabled")
	}
}

func TestClearTarget(t *testing.T) {
	dev, drv := newTestDevice(t, noop.Config{})
	depth := float32(1)
	rect := image.Rect(2, 3, 12, 8)

	drv.ResetCalls()
	dev.ClearTarget(&gputypes.Color{R: 1, A: 1}, &depth, &rect)
	if got := drv.Calls("Clear"); got != 1 {
		t.Errorf("Clear calls = %d, want 1", got)
	}
	if got := drv.ScissorRect(); got != [4]int32{2, 3, 10, 5} {
		t.Errorf("ScissorRect() = %v, want [2 3 10 5]", got)
	}
	if drv.Enabled(driver.SCISSOR_TEST) {
		t.Error("scissor left enabled after a rect clear")
	}

	drv.ResetCalls()
	dev.ClearTarget(nil, nil, nil)
	if got := drv.Calls("Clear"); got != 0 {
		t.Errorf("Clear calls with nothing to clear = %d, want 0", got)
	}
}

func TestClearDepthWithoutWritesPanics(t *testing.T) {
	dev, _ := newTestDevice(t, noop.Config{})
	dev.DisableDepthWrite()
	depth := float32(1)
	mustPanic(t, "ClearTarget(depth) with writes disabled", func() { dev.ClearTarget(nil, &depth, nil) })
}
