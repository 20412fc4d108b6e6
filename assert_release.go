//go:build glrelease

package gldevice

const assertionsEnabled = false
