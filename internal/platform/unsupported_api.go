//go:build !windows

package platform

import (
	"fmt"
	"runtime"

	apperrors "freezeframe/internal/infrastructure/errors"
	"freezeframe/internal/infrastructure/logging"
	"freezeframe/internal/types"
)

// UnsupportedAPI is returned on platforms without an implementation.
// Every primitive fails with an unsupported error; nothing panics.
type UnsupportedAPI struct {
	logger logging.Logger
}

// NewUnsupportedAPI creates the fallback API
func NewUnsupportedAPI(opts Options) *UnsupportedAPI {
	opts = opts.withDefaults()
	return &UnsupportedAPI{logger: opts.Logger}
}

// NewAPI creates the API for the current platform
func NewAPI(opts Options) API {
	return NewUnsupportedAPI(opts)
}

func (u *UnsupportedAPI) unsupported(op string) error {
	err := apperrors.NewOperationErrorWithContext(op,
		fmt.Errorf("not supported on %s", runtime.GOOS),
		apperrors.ErrCodeUnsupported,
		map[string]string{"goos": runtime.GOOS})
	u.logger.Debug("Unsupported platform operation", "operation", op, "goos", runtime.GOOS)
	return err
}

func (u *UnsupportedAPI) GetForegroundProcess() (*types.ForegroundProcess, error) {
	return nil, u.unsupported("get_foreground_process")
}

func (u *UnsupportedAPI) ScaleFactor(types.WindowHandle) (float32, error) {
	return 0, u.unsupported("scale_factor")
}

func (u *UnsupportedAPI) SuspendProcess(uint32) error {
	return u.unsupported("suspend_process")
}

func (u *UnsupportedAPI) ResumeProcess(uint32) error {
	return u.unsupported("resume_process")
}

func (u *UnsupportedAPI) BringWindowToForeground(types.WindowHandle) error {
	return u.unsupported("bring_window_to_foreground")
}

func (u *UnsupportedAPI) CaptureWindow(types.WindowHandle) ([]byte, error) {
	return nil, u.unsupported("capture_window")
}
