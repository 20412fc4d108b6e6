package gldevice

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/gogpu/gldevice/driver"
	"github.com/gogpu/gldevice/driver/noop"
	"github.com/gogpu/gldevice/programcache"
	"github.com/gogpu/gldevice/shader"
)

func TestNopHandler_Enabled(t *testing.T) {
	h := nopHandler{}
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		if h.Enabled(context.Background(), level) {
			t.Errorf("nopHandler.Enabled(%v) = true, want false", level)
		}
	}
}

func TestNopHandler_WithAttrsAndGroup(t *testing.T) {
	h := nopHandler{}
	if _, ok := h.WithAttrs([]slog.Attr{slog.String("key", "val")}).(nopHandler); !ok {
		t.Error("nopHandler.WithAttrs() did not return nopHandler")
	}
	if _, ok := h.WithGroup("group").(nopHandler); !ok {
		t.Error("nopHandler.WithGroup() did not return nopHandler")
	}
	if err := h.Handle(context.Background(), slog.Record{}); err != nil {
		t.Errorf("nopHandler.Handle() = %v, want nil", err)
	}
}

func TestLoggerDefaultSilent(t *testing.T) {
	l := Logger()
	if l == nil {
		t.Fatal("Logger() returned nil")
	}
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn} {
		if l.Enabled(context.Background(), level) {
			t.Errorf("default logger should not be enabled for %v", level)
		}
	}
}

func TestSetLoggerPropagates(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var buf bytes.Buffer
	custom := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	SetLogger(custom)

	if Logger() != custom {
		t.Error("Logger() did not return the custom logger set via SetLogger")
	}
	if shader.Logger() != custom {
		t.Error("shader.Logger() did not receive the custom logger")
	}
	if programcache.Logger() != custom {
		t.Error("programcache.Logger() did not receive the custom logger")
	}
}

func TestSetLoggerNilRestoresSilent(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	SetLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	SetLogger(nil)

	for name, l := range map[string]*slog.Logger{
		"gldevice":     Logger(),
		"shader":       shader.Logger(),
		"programcache": programcache.Logger(),
	} {
		if l.Enabled(context.Background(), slog.LevelWarn) {
			t.Errorf("%s logger enabled after SetLogger(nil)", name)
		}
	}
}

func TestSetLoggerConcurrent(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			SetLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
			_ = Logger()
		}()
	}
	wg.Wait()
}

func TestDeviceCreationLogged(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	if _, err := NewDevice(noop.New(noop.Config{Renderer: "Test GPU"}), WithLogger(l)); err != nil {
		t.Fatalf("NewDevice() error = %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "device created") || !strings.Contains(out, "Test GPU") {
		t.Errorf("log output = %q, want device creation with renderer name", out)
	}
}

func TestEndFrameLogsDriverErrors(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})))

	cfg := DefaultConfig()
	cfg.DebugMessages = true
	drv := noop.New(noop.Config{})
	dev, err := NewDevice(drv, WithConfig(cfg))
	if err != nil {
		t.Fatalf("NewDevice() error = %v", err)
	}
	dev.BeginFrame()
	drv.PushError(driver.INVALID_VALUE)
	dev.EndFrame()

	if !strings.Contains(buf.String(), "GL_INVALID_VALUE") {
		t.Errorf("log output = %q, want GL_INVALID_VALUE", buf.String())
	}
	if got := drv.GetError(); got != driver.NO_ERROR {
		t.Errorf("GetError() after EndFrame = %#x, want queue drained", got)
	}
}
