package gldevice

import (
	"testing"

	"github.com/gogpu/gldevice/driver"
	"github.com/gogpu/gldevice/driver/noop"
)

func TestFrameIDAdvancesOnEndFrame(t *testing.T) {
	dev, err := NewDevice(noop.New(noop.Config{}))
	if err != nil {
		t.Fatal(err)
	}
	for want := FrameID(0); want < 3; want++ {
		if got := dev.BeginFrame(); got != want {
			t.Errorf("BeginFrame() = %d, want %d", got, want)
		}
		if !dev.InsideFrame() {
			t.Error("InsideFrame() = false after BeginFrame")
		}
		dev.EndFrame()
		if dev.InsideFrame() {
			t.Error("InsideFrame() = true after EndFrame")
		}
	}
	if dev.FrameID() != 3 {
		t.Errorf("FrameID() = %d, want 3", dev.FrameID())
	}
}

func TestBeginFrameResetsState(t *testing.T) {
	drv := noop.New(noop.Config{DefaultFramebuffer: 5})
	dev, err := NewDevice(drv)
	if err != nil {
		t.Fatal(err)
	}
	dev.BeginFrame()

	if got := drv.PixelStore(driver.UNPACK_ALIGNMENT); got != 1 {
		t.Errorf("UNPACK_ALIGNMENT = %d, want 1", got)
	}
	if drv.ActiveUnit() != 0 || drv.BoundProgram() != 0 || drv.BoundVertexArray() != 0 {
		t.Errorf("unit %d program %d vao %d, want all zero", drv.ActiveUnit(), drv.BoundProgram(), drv.BoundVertexArray())
	}
	if dev.bound.drawFBO != 5 || dev.bound.readFBO != 5 {
		t.Errorf("cached targets = draw %d read %d, want 5", dev.bound.drawFBO, dev.bound.readFBO)
	}

	drv.ResetCalls()
	dev.BindDrawTarget(nil, 0, nil)
	dev.BindReadTarget(nil, 0)
	if got := drv.Calls("BindFramebuffer"); got != 0 {
		t.Errorf("BindFramebuffer calls = %d, want 0 for the captured defaults", got)
	}
	dev.EndFrame()
}

func TestBeginFrameCapturesHostFramebuffer(t *testing.T) {
	drv := noop.New(noop.Config{})
	dev, err := NewDevice(drv)
	if err != nil {
		t.Fatal(err)
	}

	host := drv.GenFramebuffers(1)[0]
	drv.BindFramebuffer(driver.DRAW_FRAMEBUFFER, host)
	dev.BeginFrame()
	rt := newRenderTarget(t, dev, 1)
	dev.BindDrawTarget(rt, 0, nil)
	dev.EndFrame()

	if got := drv.BoundFramebuffer(driver.DRAW_FRAMEBUFFER); got != host {
		t.Errorf("draw framebuffer after EndFrame = %d, want host %d", got, host)
	}

	dev.BeginFrame()
	dev.DeleteTexture(rt)
	dev.EndFrame()
}

func TestEndFrameUnbindsTextures(t *testing.T) {
	dev, drv := newTestDevice(t, noop.Config{})
	tex := dev.CreateTexture(Texture2D)
	dev.BindTexture(4, tex)
	dev.EndFrame()

	if drv.BoundTexture(4) != 0 {
		t.Errorf("unit 4 = %d after EndFrame, want 0", drv.BoundTexture(4))
	}
	if drv.ActiveUnit() != 0 {
		t.Errorf("ActiveUnit() = %d, want 0", drv.ActiveUnit())
	}

	dev.BeginFrame()
	dev.DeleteTexture(tex)
	dev.EndFrame()
}

func TestFrameProtocolPanics(t *testing.T) {
	tests := []struct {
		name string
		f    func(dev *Device)
	}{
		{"BeginFrame twice", func(dev *Device) {
			dev.BeginFrame()
			dev.BeginFrame()
		}},
		{"EndFrame outside", func(dev *Device) { dev.EndFrame() }},
		{"BindTexture outside", func(dev *Device) { dev.BindTexture(0, &Texture{}) }},
		{"BindProgram outside", func(dev *Device) { dev.BindProgram(&Program{}) }},
		{"InitTexture outside", func(dev *Device) { _ = dev.InitTexture(&Texture{}, TextureDesc{}, nil) }},
		{"CreateProgram outside", func(dev *Device) { _, _ = dev.CreateProgram("ps_quad", "", QuadDescriptor()) }},
		{"DrawTrianglesU16 outside", func(dev *Device) { dev.DrawTrianglesU16(0, 6) }},
		{"SwitchMode outside", func(dev *Device) { dev.SwitchMode(0) }},
		{"BindExternalDrawTarget outside", func(dev *Device) { dev.BindExternalDrawTarget(7) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev, err := NewDevice(noop.New(noop.Config{}))
			if err != nil {
				t.Fatal(err)
			}
			mustPanic(t, tt.name, func() { tt.f(dev) })
		})
	}
}
