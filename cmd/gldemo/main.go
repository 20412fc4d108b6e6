// Command gldemo opens a window and renders through gldevice: a two-layer
// render target is filled with colored rectangles, then both layers are
// composited onto the window with premultiplied alpha.
//
// Program binaries are persisted in the configured cache directory, so the
// second run skips shader compilation when the driver supports it.
package main

import (
	"flag"
	"fmt"
	"image"
	"log/slog"
	"os"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/gldevice"
	"github.com/gogpu/gldevice/driver"
	_ "github.com/gogpu/gldevice/driver/glcore"
	"github.com/gogpu/gldevice/programcache"
)

const layerSize = 256

func init() {
	// GL contexts are bound to the OS thread that made them current.
	runtime.LockOSThread()
}

func main() {
	var (
		configPath = flag.String("config", "", "TOML config file")
		frames     = flag.Int("frames", 0, "exit after this many frames (0 runs until closed)")
		width      = flag.Int("width", 800, "window width")
		height     = flag.Int("height", 600, "window height")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(logger, *configPath, *width, *height, *frames); err != nil {
		logger.Error("gldemo failed", "err", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, configPath string, width, height, frames int) error {
	gldevice.SetLogger(logger)

	cfg := gldevice.DefaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = gldevice.LoadConfig(configPath); err != nil {
			return err
		}
	}

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw init: %w", err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	win, err := glfw.CreateWindow(width, height, "gldemo", nil, nil)
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	defer win.Destroy()
	win.MakeContextCurrent()
	glfw.SwapInterval(1)

	drv, err := driver.Open(driver.NameGLCore)
	if err != nil {
		return err
	}

	cache := programcache.New()
	if cfg.ProgramCacheDir != "" {
		if cache, err = programcache.Open(cfg.ProgramCacheDir); err != nil {
			return err
		}
	}

	dev, err := gldevice.NewDevice(drv, gldevice.WithConfig(cfg), gldevice.WithProgramCache(cache))
	if err != nil {
		return err
	}

	dev.BeginFrame()
	sc, err := newScene(dev)
	dev.EndFrame()
	if err != nil {
		return err
	}

	for n := 0; !win.ShouldClose() && (frames == 0 || n < frames); n++ {
		fw, fh := win.GetFramebufferSize()
		dev.BeginFrame()
		sc.render(dev, image.Pt(fw, fh), n)
		dev.EndFrame()
		win.SwapBuffers()
		glfw.PollEvents()
	}

	dev.BeginFrame()
	sc.release(dev)
	dev.EndFrame()
	dev.Deinit()

	if cfg.ProgramCacheDir != "" {
		if err := cache.Save(cfg.ProgramCacheDir); err != nil {
			return err
		}
	}
	st := cache.Stats()
	logger.Info("program cache", "entries", st.Entries, "hits", st.Hits, "misses", st.Misses)
	return nil
}

type scene struct {
	clearProg, quadProg *gldevice.Program
	quadVAO, clearVAO   *gldevice.VAO
	layers              *gldevice.Texture
}

func newScene(dev *gldevice.Device) (*scene, error) {
	clearProg, err := dev.CreateProgram("ps_clear", "", gldevice.ClearDescriptor())
	if err != nil {
		return nil, err
	}
	quadProg, err := dev.CreateProgram("ps_quad", "", gldevice.QuadDescriptor())
	if err != nil {
		dev.DeleteProgram(clearProg)
		return nil, err
	}
	dev.BindShaderSamplers(quadProg, gldevice.SlotColor0)

	quadVAO := dev.CreateVAO(gldevice.QuadDescriptor())
	dev.UpdateVAOMainVertices(quadVAO, gldevice.AsBytes(gldevice.UnitQuad), gldevice.UsageStatic)
	dev.UpdateVAOIndices(quadVAO, gldevice.AsBytes(gldevice.UnitQuadIndices), gldevice.UsageStatic)
	clearVAO := dev.CreateVAOWithNewInstances(gldevice.ClearDescriptor(), quadVAO)

	layers := dev.CreateTexture(gldevice.Texture2DArray)
	err = dev.InitTexture(layers, gldevice.TextureDesc{
		Width: layerSize, Height: layerSize, Layers: 2,
		Format:       gputypes.TextureFormatRGBA8Unorm,
		Filter:       gputypes.FilterModeLinear,
		RenderTarget: &gldevice.RenderTargetInfo{},
	}, nil)
	sc := &scene{clearProg: clearProg, quadProg: quadProg, quadVAO: quadVAO, clearVAO: clearVAO, layers: layers}
	if err != nil {
		sc.release(dev)
		return nil, fmt.Errorf("init layer texture: %w", err)
	}
	return sc, nil
}

// ortho maps pixel coordinates with the origin at the bottom left to clip
// space. Column-major.
func ortho(w, h int) [16]float32 {
	return [16]float32{
		2 / float32(w), 0, 0, 0,
		0, 2 / float32(h), 0, 0,
		0, 0, -1, 0,
		-1, -1, 0, 1,
	}
}

func (sc *scene) render(dev *gldevice.Device, size image.Point, frame int) {
	layerTransform := ortho(layerSize, layerSize)
	transparent := gputypes.Color{}

	// Layer 0 gets a moving bar, layer 1 a fixed frame.
	offset := float32(frame % layerSize)
	contents := [][]gldevice.ClearInstance{
		{
			{Rect: [4]float32{offset, 64, offset + 48, 192}, Color: [4]uint8{230, 80, 60, 255}},
		},
		{
			{Rect: [4]float32{16, 16, 240, 48}, Color: [4]uint8{40, 120, 200, 200}},
			{Rect: [4]float32{16, 208, 240, 240}, Color: [4]uint8{40, 120, 200, 200}},
		},
	}

	dev.SetBlend(false)
	dev.BindProgram(sc.clearProg)
	dev.SetUniforms(sc.clearProg, &layerTransform)
	dev.BindVAO(sc.clearVAO)
	for layer, rects := range contents {
		dev.BindDrawTarget(sc.layers, layer, &image.Point{X: layerSize, Y: layerSize})
		dev.ClearTarget(&transparent, nil, nil)
		gldevice.UpdateInstances(dev, sc.clearVAO, rects, gldevice.UsageStream)
		dev.DrawIndexedTrianglesInstancedU16(int32(len(gldevice.UnitQuadIndices)), int32(len(rects)))
	}

	windowTransform := ortho(size.X, size.Y)
	dev.BindDrawTarget(nil, 0, &size)
	dev.ClearTarget(&gputypes.Color{R: 0.1, G: 0.1, B: 0.12, A: 1}, nil, nil)

	dev.BindProgram(sc.quadProg)
	dev.SetUniforms(sc.quadProg, &windowTransform)
	dev.BindTexture(gldevice.SlotColor0, sc.layers)
	dev.BindVAO(sc.quadVAO)
	dev.SetBlend(true)
	dev.SetBlendModePremultipliedAlpha()

	x0, y0 := float32(size.X-layerSize)/2, float32(size.Y-layerSize)/2
	rect := [4]float32{x0, y0, x0 + layerSize, y0 + layerSize}
	quads := []gldevice.QuadInstance{
		{Rect: rect, UvRect: [4]float32{0, 0, 1, 1}, Layer: 0},
		{Rect: rect, UvRect: [4]float32{0, 0, 1, 1}, Layer: 1},
	}
	gldevice.UpdateInstances(dev, sc.quadVAO, quads, gldevice.UsageStream)
	dev.DrawIndexedTrianglesInstancedU16(int32(len(gldevice.UnitQuadIndices)), int32(len(quads)))
	dev.SetBlend(false)
}

func (sc *scene) release(dev *gldevice.Device) {
	dev.DeleteTexture(sc.layers)
	dev.DeleteVAO(sc.clearVAO)
	dev.DeleteVAO(sc.quadVAO)
	dev.DeleteProgram(sc.quadProg)
	dev.DeleteProgram(sc.clearProg)
}
