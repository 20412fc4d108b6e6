package gldevice

import "fmt"

// assertf panics with a formatted message when cond is false. The check is
// compiled out with the glrelease build tag.
func assertf(cond bool, format string, args ...any) {
	if assertionsEnabled && !cond {
		panic(fmt.Sprintf("gldevice: "+format, args...))
	}
}

func (d *Device) assertInsideFrame(op string) {
	assertf(d.insideFrame, "%s called outside a frame", op)
}
