//go:build windows

package platform

import (
	"fmt"
	"strconv"
	"unsafe"

	apperrors "freezeframe/internal/infrastructure/errors"
	"freezeframe/internal/types"
)

// GetForegroundProcess gets the focused window, the process that owns it and
// the window's scale factor. Either all three resolve or an error is returned.
func (w *WindowsAPI) GetForegroundProcess() (*types.ForegroundProcess, error) {
	const op = "get_foreground_process"

	hwnd, _, _ := procGetForegroundWindow.Call()
	if hwnd == 0 {
		return nil, w.fail(op, apperrors.ErrCodeLookup, fmt.Errorf("no foreground window"), nil)
	}
	handle := types.WindowHandle(hwnd)

	var pid uint32
	procGetWindowThreadProcessId.Call(hwnd, uintptr(unsafe.Pointer(&pid)))
	if pid == 0 {
		return nil, w.fail(op, apperrors.ErrCodeLookup, fmt.Errorf("window has no owning process"),
			map[string]string{"hwnd": handle.String()})
	}

	scale, err := w.ScaleFactor(handle)
	if err != nil {
		return nil, err
	}

	w.logger.Debug("Resolved foreground process",
		"pid", pid,
		"hwnd", handle.String(),
		"scale_factor", scale,
	)

	return &types.ForegroundProcess{
		PID:         pid,
		HWND:        handle,
		ScaleFactor: scale,
	}, nil
}

func pidContext(pid uint32) map[string]string {
	return map[string]string{"pid": strconv.FormatUint(uint64(pid), 10)}
}
