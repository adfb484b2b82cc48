//go:build windows

package platform

import (
	"fmt"

	apperrors "freezeframe/internal/infrastructure/errors"
	"freezeframe/internal/types"

	"github.com/lxn/win"
)

// BringWindowToForeground asks the OS to focus and raise the window.
// Foreground-lock rules often refuse this for background processes; that is
// reported as an activation error and not retried here.
func (w *WindowsAPI) BringWindowToForeground(hwnd types.WindowHandle) error {
	const op = "bring_window_to_foreground"

	if err := w.validateWindow(op, hwnd); err != nil {
		return err
	}

	if !win.SetForegroundWindow(win.HWND(hwnd)) {
		return w.fail(op, apperrors.ErrCodeActivation, fmt.Errorf("SetForegroundWindow refused"),
			map[string]string{"hwnd": hwnd.String()})
	}

	w.logger.Debug("Brought window to foreground", "hwnd", hwnd.String())
	return nil
}
