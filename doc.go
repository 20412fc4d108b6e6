// Package gldevice is a GPU device layer over OpenGL and OpenGL ES.
//
// # Overview
//
// A Device owns every GPU object a renderer uses (textures, framebuffers,
// renderbuffers, buffers, vertex arrays and programs) and issues all work
// through a [driver.Driver]. It keeps a cache of current bindings so that
// redundant binds never reach the driver, assembles and links shader
// programs with an optional cross-session binary cache, and enforces a
// strict per-frame lifecycle.
//
// # Quick Start
//
//	drv, err := driver.Open(driver.NameGLCore) // GL context must be current
//	if err != nil {
//	    return err
//	}
//	dev, err := gldevice.NewDevice(drv, gldevice.WithProgramCache(programcache.New()))
//	if err != nil {
//	    return err
//	}
//	defer dev.Deinit()
//
//	dev.BeginFrame()
//	prog, err := dev.CreateProgram("ps_quad", "", gldevice.QuadDescriptor())
//	...
//	dev.EndFrame()
//
// # Frames
//
// Nearly every operation must happen between BeginFrame and EndFrame.
// BeginFrame records whatever framebuffers are bound at that moment as the
// default read and draw targets, so the device can render into a host
// application's context.
//
// # Resource lifetime
//
// Objects are released only through the explicit Delete* methods. Textures,
// programs and vertex arrays that are garbage collected while still holding
// a GPU name are reported through the logger; nothing is released from a
// finalizer because no GL context is available there.
//
// # Threading
//
// A Device is bound to the thread that owns its GL context and has no
// internal locking. The only shareable piece is the [programcache.Cache].
//
// # Assertions
//
// Protocol violations (binding outside a frame, updating a vertex array
// that is not bound, mismatched instance strides) panic. Build with
// -tags glrelease to compile these checks out.
package gldevice
