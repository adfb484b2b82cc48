package types

import "fmt"

// WindowHandle is an OS window handle borrowed for the duration of one call
type WindowHandle uintptr

// IsZero reports whether the handle is the null handle
func (h WindowHandle) IsZero() bool {
	return h == 0
}

func (h WindowHandle) String() string {
	return fmt.Sprintf("0x%x", uintptr(h))
}

// ForegroundProcess describes the focused window and the process that owns it.
// It is rebuilt on every lookup; the foreground window and its DPI can change at any time.
type ForegroundProcess struct {
	PID         uint32       `json:"pid"`
	HWND        WindowHandle `json:"hwnd"`
	ScaleFactor float32      `json:"scale_factor"` // monitor DPI / 96
}

// FrozenWindow is the result of the freeze sequence: the process that was
// suspended and a PNG capture of its window taken while it was frozen
type FrozenWindow struct {
	ForegroundProcess
	Screenshot []byte `json:"screenshot"`
}
