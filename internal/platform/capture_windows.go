//go:build windows

package platform

import (
	"errors"
	"fmt"
	"strconv"
	"unsafe"

	"freezeframe/internal/imaging"
	apperrors "freezeframe/internal/infrastructure/errors"
	"freezeframe/internal/infrastructure/logging"
	"freezeframe/internal/types"

	"github.com/lxn/win"
)

const (
	pwClientOnly        = 0x00000001
	pwRenderFullContent = 0x00000002
	dibRGBColors        = 0
	biRGB               = 0
)

type bitmapInfoHeader struct {
	biSize          uint32
	biWidth         int32
	biHeight        int32
	biPlanes        uint16
	biBitCount      uint16
	biCompression   uint32
	biSizeImage     uint32
	biXPelsPerMeter int32
	biYPelsPerMeter int32
	biClrUsed       uint32
	biClrImportant  uint32
}

// CaptureWindow captures the window's client area and returns it as PNG
func (w *WindowsAPI) CaptureWindow(hwnd types.WindowHandle) ([]byte, error) {
	const op = "capture_window"

	if err := w.validateWindow(op, hwnd); err != nil {
		return nil, err
	}

	var (
		buf imaging.PixelBuffer
		err error
	)
	switch w.backend {
	case CaptureBackendScreen:
		buf, err = w.captureScreen(op, hwnd)
	default:
		buf, err = w.capturePrintWindow(op, hwnd)
	}
	if err != nil {
		return nil, err
	}

	data, err := imaging.EncodePNG(buf)
	if err != nil {
		logging.LogError(w.logger, err, op, map[string]interface{}{"hwnd": hwnd.String()})
		return nil, err
	}

	w.logger.Debug("Captured window",
		"hwnd", hwnd.String(),
		"backend", string(w.backend),
		"width", buf.Width,
		"height", buf.Height,
		"png_bytes", len(data),
	)
	return data, nil
}

// clientSize returns the client area size; title bar and borders are excluded
func (w *WindowsAPI) clientSize(op string, hwnd types.WindowHandle) (int, int, error) {
	var rect win.RECT
	if !win.GetClientRect(win.HWND(hwnd), &rect) {
		return 0, 0, w.fail(op, apperrors.ErrCodeCapture, fmt.Errorf("GetClientRect failed"),
			map[string]string{"hwnd": hwnd.String()})
	}

	width := int(rect.Right - rect.Left)
	height := int(rect.Bottom - rect.Top)
	if width <= 0 || height <= 0 {
		return 0, 0, w.fail(op, apperrors.ErrCodeCapture, fmt.Errorf("window has an empty client area"),
			map[string]string{
				"hwnd":   hwnd.String(),
				"width":  strconv.Itoa(width),
				"height": strconv.Itoa(height),
			})
	}
	return width, height, nil
}

// capturePrintWindow has the window render its client area into a memory
// bitmap. It works for windows that are covered by other windows.
func (w *WindowsAPI) capturePrintWindow(op string, hwnd types.WindowHandle) (imaging.PixelBuffer, error) {
	width, height, err := w.clientSize(op, hwnd)
	if err != nil {
		return imaging.PixelBuffer{}, err
	}
	ctx := map[string]string{
		"hwnd":   hwnd.String(),
		"width":  strconv.Itoa(width),
		"height": strconv.Itoa(height),
	}
	h := win.HWND(hwnd)

	windowDC := win.GetDC(h)
	if windowDC == 0 {
		return imaging.PixelBuffer{}, w.fail(op, apperrors.ErrCodeCapture, fmt.Errorf("GetDC failed"), ctx)
	}
	defer func() {
		if !win.ReleaseDC(h, windowDC) {
			w.cleanup.failed(op, "window_dc", errors.New("ReleaseDC failed"))
		}
	}()

	memDC := win.CreateCompatibleDC(windowDC)
	if memDC == 0 {
		return imaging.PixelBuffer{}, w.fail(op, apperrors.ErrCodeCapture, fmt.Errorf("CreateCompatibleDC failed"), ctx)
	}
	defer func() {
		if !win.DeleteDC(memDC) {
			w.cleanup.failed(op, "memory_dc", errors.New("DeleteDC failed"))
		}
	}()

	bitmap := win.CreateCompatibleBitmap(windowDC, int32(width), int32(height))
	if bitmap == 0 {
		return imaging.PixelBuffer{}, w.fail(op, apperrors.ErrCodeCapture, fmt.Errorf("CreateCompatibleBitmap failed"), ctx)
	}
	defer func() {
		if !win.DeleteObject(win.HGDIOBJ(bitmap)) {
			w.cleanup.failed(op, "bitmap", errors.New("DeleteObject failed"))
		}
	}()

	previous := win.SelectObject(memDC, win.HGDIOBJ(bitmap))
	if previous == 0 {
		return imaging.PixelBuffer{}, w.fail(op, apperrors.ErrCodeCapture, fmt.Errorf("SelectObject failed"), ctx)
	}
	printed, _, _ := procPrintWindow.Call(uintptr(h), uintptr(memDC), pwClientOnly|pwRenderFullContent)
	// GetDIBits needs the bitmap deselected
	win.SelectObject(memDC, previous)
	if printed == 0 {
		return imaging.PixelBuffer{}, w.fail(op, apperrors.ErrCodeCapture, fmt.Errorf("PrintWindow failed"), ctx)
	}

	header := bitmapInfoHeader{
		biWidth:       int32(width),
		biHeight:      -int32(height), // top-down rows
		biPlanes:      1,
		biBitCount:    32,
		biCompression: biRGB,
	}
	header.biSize = uint32(unsafe.Sizeof(header))

	bgra := make([]byte, width*height*imaging.BytesPerPixel)
	lines, _, _ := procGetDIBits.Call(
		uintptr(memDC),
		uintptr(bitmap),
		0,
		uintptr(height),
		uintptr(unsafe.Pointer(&bgra[0])),
		uintptr(unsafe.Pointer(&header)),
		dibRGBColors,
	)
	if int(lines) != height {
		ctx["lines"] = strconv.Itoa(int(lines))
		return imaging.PixelBuffer{}, w.fail(op, apperrors.ErrCodeCapture, fmt.Errorf("GetDIBits copied an incomplete image"), ctx)
	}

	buf, err := imaging.FromBGRA(width, height, bgra)
	if err != nil {
		logging.LogError(w.logger, err, op, nil)
		return imaging.PixelBuffer{}, err
	}
	return buf, nil
}
