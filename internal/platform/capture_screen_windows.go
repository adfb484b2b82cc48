//go:build windows

package platform

import (
	"fmt"
	"image"

	"freezeframe/internal/imaging"
	apperrors "freezeframe/internal/infrastructure/errors"
	"freezeframe/internal/types"

	"github.com/kbinani/screenshot"
	"github.com/lxn/win"
)

// captureScreen copies the window's client rectangle off the desktop.
// Coordinates are read in per-monitor DPI awareness so they are physical pixels.
func (w *WindowsAPI) captureScreen(op string, hwnd types.WindowHandle) (imaging.PixelBuffer, error) {
	ctx := map[string]string{"hwnd": hwnd.String(), "backend": string(CaptureBackendScreen)}

	guard, err := acquirePerMonitorAwareness()
	if err != nil {
		return imaging.PixelBuffer{}, w.fail(op, apperrors.ErrCodeCapture, err, ctx)
	}
	defer func() {
		w.cleanup.failed(op, "dpi_awareness_context", guard.Release())
	}()

	width, height, err := w.clientSize(op, hwnd)
	if err != nil {
		return imaging.PixelBuffer{}, err
	}

	var origin win.POINT
	if !win.ClientToScreen(win.HWND(hwnd), &origin) {
		return imaging.PixelBuffer{}, w.fail(op, apperrors.ErrCodeCapture, fmt.Errorf("ClientToScreen failed"), ctx)
	}

	bounds := image.Rect(int(origin.X), int(origin.Y), int(origin.X)+width, int(origin.Y)+height)
	img, err := screenshot.CaptureRect(bounds)
	if err != nil {
		return imaging.PixelBuffer{}, w.fail(op, apperrors.ErrCodeCapture, fmt.Errorf("screen copy failed: %w", err), ctx)
	}

	buf := imaging.FromImage(img)
	if err := buf.Validate(); err != nil {
		return imaging.PixelBuffer{}, w.fail(op, apperrors.ErrCodeCapture, err, ctx)
	}
	return buf, nil
}
