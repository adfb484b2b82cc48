//go:build windows

package platform

import (
	"fmt"
	"runtime"
	"unsafe"

	apperrors "freezeframe/internal/infrastructure/errors"
	"freezeframe/internal/types"

	"github.com/lxn/win"
)

// DPI_AWARENESS_CONTEXT_PER_MONITOR_AWARE is (DPI_AWARENESS_CONTEXT)-3
var dpiAwarenessContextPerMonitorAware = ^uintptr(2)

// MDT_EFFECTIVE_DPI
const monitorDpiTypeEffective = 0

// dpiAwarenessGuard holds the calling OS thread in per-monitor DPI awareness.
// The goroutine stays locked to the thread until Release, so the scheduler
// cannot move it to a thread with a different awareness mid-query.
// Guards must not be nested on one goroutine.
type dpiAwarenessGuard struct {
	previous uintptr
	released bool
}

// acquirePerMonitorAwareness switches the current thread to per-monitor DPI
// awareness and remembers the previous context
func acquirePerMonitorAwareness() (*dpiAwarenessGuard, error) {
	runtime.LockOSThread()

	if err := procSetThreadDpiAwarenessContext.Find(); err != nil {
		runtime.UnlockOSThread()
		return nil, fmt.Errorf("SetThreadDpiAwarenessContext unavailable: %w", err)
	}

	previous, _, callErr := procSetThreadDpiAwarenessContext.Call(dpiAwarenessContextPerMonitorAware)
	if previous == 0 {
		runtime.UnlockOSThread()
		return nil, fmt.Errorf("SetThreadDpiAwarenessContext failed: %v", callErr)
	}

	return &dpiAwarenessGuard{previous: previous}, nil
}

// Release restores the previous DPI awareness context and unlocks the thread.
// Safe to call more than once.
func (g *dpiAwarenessGuard) Release() error {
	if g == nil || g.released {
		return nil
	}
	g.released = true
	defer runtime.UnlockOSThread()

	r, _, callErr := procSetThreadDpiAwarenessContext.Call(g.previous)
	if r == 0 {
		return fmt.Errorf("restoring DPI awareness context failed: %v", callErr)
	}
	return nil
}

// ScaleFactor returns monitor DPI / 96 for the monitor the window is on
func (w *WindowsAPI) ScaleFactor(hwnd types.WindowHandle) (float32, error) {
	const op = "scale_factor"
	ctx := map[string]string{"hwnd": hwnd.String()}

	guard, err := acquirePerMonitorAwareness()
	if err != nil {
		return 0, w.fail(op, apperrors.ErrCodeLookup, err, ctx)
	}
	defer func() {
		w.cleanup.failed(op, "dpi_awareness_context", guard.Release())
	}()

	monitor := win.MonitorFromWindow(win.HWND(hwnd), win.MONITOR_DEFAULTTONULL)
	if monitor == 0 {
		return 0, w.fail(op, apperrors.ErrCodeLookup, fmt.Errorf("window is not on any monitor"), ctx)
	}

	if err := procGetDpiForMonitor.Find(); err != nil {
		return 0, w.fail(op, apperrors.ErrCodeLookup, fmt.Errorf("GetDpiForMonitor unavailable: %w", err), ctx)
	}

	var dpiX, dpiY uint32
	hr, _, _ := procGetDpiForMonitor.Call(
		uintptr(monitor),
		monitorDpiTypeEffective,
		uintptr(unsafe.Pointer(&dpiX)),
		uintptr(unsafe.Pointer(&dpiY)),
	)
	if hr != 0 {
		return 0, w.fail(op, apperrors.ErrCodeLookup, fmt.Errorf("GetDpiForMonitor failed: HRESULT 0x%08x", uint32(hr)), ctx)
	}
	if dpiY == 0 {
		return 0, w.fail(op, apperrors.ErrCodeLookup, fmt.Errorf("monitor reported zero DPI"), ctx)
	}

	return dpiToScale(dpiY), nil
}
