package platform

import (
	"freezeframe/internal/infrastructure/logging"
	"freezeframe/internal/types"
)

// ReferenceDPI is the DPI at which the scale factor is 1.0
const ReferenceDPI = 96

// API exposes the OS control primitives the shell needs. Every call reads
// live OS state; nothing is cached between calls.
type API interface {
	// GetForegroundProcess resolves the focused window, its owning process and its scale factor
	GetForegroundProcess() (*types.ForegroundProcess, error)
	// ScaleFactor returns the DPI scale of the monitor the window is on
	ScaleFactor(hwnd types.WindowHandle) (float32, error)
	// SuspendProcess freezes every thread of the process
	SuspendProcess(pid uint32) error
	// ResumeProcess thaws every thread of the process
	ResumeProcess(pid uint32) error
	// BringWindowToForeground asks the OS to focus and raise the window
	BringWindowToForeground(hwnd types.WindowHandle) error
	// CaptureWindow captures the window's client area as PNG
	CaptureWindow(hwnd types.WindowHandle) ([]byte, error)
}

// CaptureBackend selects how CaptureWindow reads pixels
type CaptureBackend string

const (
	// CaptureBackendPrintWindow asks the window to render itself, so covered
	// windows can still be captured
	CaptureBackendPrintWindow CaptureBackend = "printwindow"
	// CaptureBackendScreen copies the client rectangle from the desktop;
	// only what is visible is captured
	CaptureBackendScreen CaptureBackend = "screen"
)

// CleanupObserver is told about resource releases that failed. It never
// influences the outcome of the operation that owned the resource.
type CleanupObserver interface {
	CleanupFailed(operation, resource string, err error)
}

// Options configure a platform API instance
type Options struct {
	Logger          logging.Logger
	CaptureBackend  CaptureBackend
	CleanupObserver CleanupObserver
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = logging.NewDefaultLogger()
	}
	if o.CaptureBackend == "" {
		o.CaptureBackend = CaptureBackendPrintWindow
	}
	return o
}

// dpiToScale converts a vertical monitor DPI into a scale factor
func dpiToScale(dpiY uint32) float32 {
	return float32(dpiY) / ReferenceDPI
}

// cleanupReporter logs failed releases and forwards them to the observer
type cleanupReporter struct {
	logger   logging.Logger
	observer CleanupObserver
}

func (c cleanupReporter) failed(operation, resource string, err error) {
	if err == nil {
		return
	}
	logging.LogCleanupFailure(c.logger, err, operation, resource)
	if c.observer != nil {
		c.observer.CleanupFailed(operation, resource, err)
	}
}
