//go:build windows

package platform

import (
	"fmt"

	apperrors "freezeframe/internal/infrastructure/errors"
	"freezeframe/internal/infrastructure/logging"
	"freezeframe/internal/types"

	"golang.org/x/sys/windows"
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")
	gdi32  = windows.NewLazySystemDLL("gdi32.dll")
	shcore = windows.NewLazySystemDLL("shcore.dll")
	ntdll  = windows.NewLazySystemDLL("ntdll.dll")

	procGetForegroundWindow          = user32.NewProc("GetForegroundWindow")
	procGetWindowThreadProcessId     = user32.NewProc("GetWindowThreadProcessId")
	procIsWindow                     = user32.NewProc("IsWindow")
	procSetThreadDpiAwarenessContext = user32.NewProc("SetThreadDpiAwarenessContext")
	procPrintWindow                  = user32.NewProc("PrintWindow")
	procGetDIBits                    = gdi32.NewProc("GetDIBits")
	procGetDpiForMonitor             = shcore.NewProc("GetDpiForMonitor")
	procNtSuspendProcess             = ntdll.NewProc("NtSuspendProcess")
	procNtResumeProcess              = ntdll.NewProc("NtResumeProcess")
)

// WindowsAPI implements API with Win32 and native NT calls
type WindowsAPI struct {
	logger     logging.Logger
	backend    CaptureBackend
	controller ProcessController
	cleanup    cleanupReporter
}

// NewWindowsAPI creates a Windows API instance using the NT suspend/resume primitives
func NewWindowsAPI(opts Options) *WindowsAPI {
	opts = opts.withDefaults()
	return &WindowsAPI{
		logger:     opts.Logger,
		backend:    opts.CaptureBackend,
		controller: ntProcessController{},
		cleanup:    cleanupReporter{logger: opts.Logger, observer: opts.CleanupObserver},
	}
}

// NewAPI creates the API for the current platform
func NewAPI(opts Options) API {
	return NewWindowsAPI(opts)
}

// WithProcessController swaps the suspend/resume primitives
func (w *WindowsAPI) WithProcessController(c ProcessController) *WindowsAPI {
	w.controller = c
	return w
}

// validateWindow rejects null and destroyed window handles before any OS call uses them
func (w *WindowsAPI) validateWindow(op string, hwnd types.WindowHandle) error {
	if hwnd.IsZero() {
		return w.fail(op, apperrors.ErrCodeValidation, fmt.Errorf("null window handle"), nil)
	}
	if !isWindow(hwnd) {
		return w.fail(op, apperrors.ErrCodeValidation, fmt.Errorf("invalid window handle"),
			map[string]string{"hwnd": hwnd.String()})
	}
	return nil
}

func isWindow(hwnd types.WindowHandle) bool {
	r, _, _ := procIsWindow.Call(uintptr(hwnd))
	return r != 0
}

// fail builds, logs and returns an operation error
func (w *WindowsAPI) fail(op string, code apperrors.ErrorCode, err error, context map[string]string) error {
	opErr := apperrors.NewOperationErrorWithContext(op, err, code, context)
	logging.LogError(w.logger, opErr, op, nil)
	return opErr
}
