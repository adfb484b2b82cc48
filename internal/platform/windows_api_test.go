//go:build windows

package platform

import (
	"bytes"
	"errors"
	"image/png"
	"os"
	"os/exec"
	"testing"

	"freezeframe/internal/imaging"
	apperrors "freezeframe/internal/infrastructure/errors"
	"freezeframe/internal/infrastructure/logging"
	"freezeframe/internal/types"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"
)

// exit code reported for a process that has not terminated
const stillActive = 259

type fakeController struct {
	suspended int
	resumed   int
	err       error
}

func (f *fakeController) Suspend(windows.Handle) error {
	f.suspended++
	return f.err
}

func (f *fakeController) Resume(windows.Handle) error {
	f.resumed++
	return f.err
}

func newTestAPI(t *testing.T) (*WindowsAPI, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	return NewWindowsAPI(Options{Logger: logging.New(logging.Options{Output: &out, Level: "debug"})}), &out
}

func TestSuspendResumeWithFakeController(t *testing.T) {
	api, _ := newTestAPI(t)
	fake := &fakeController{}
	api.WithProcessController(fake)

	pid := uint32(os.Getpid())
	if err := api.SuspendProcess(pid); err != nil {
		t.Fatalf("SuspendProcess failed: %v", err)
	}
	if err := api.ResumeProcess(pid); err != nil {
		t.Fatalf("ResumeProcess failed: %v", err)
	}
	if fake.suspended != 1 || fake.resumed != 1 {
		t.Errorf("Expected one suspend and one resume, got %d/%d", fake.suspended, fake.resumed)
	}
}

func TestSuspendPrimitiveFailure(t *testing.T) {
	api, _ := newTestAPI(t)
	api.WithProcessController(&fakeController{err: errors.New("status 0xc0000022")})

	pid := uint32(os.Getpid())
	if err := api.SuspendProcess(pid); !apperrors.IsSuspend(err) {
		t.Errorf("Expected suspend error, got %v", err)
	}
	if err := api.ResumeProcess(pid); !apperrors.IsResume(err) {
		t.Errorf("Expected resume error, got %v", err)
	}
}

func TestProcessAccessErrors(t *testing.T) {
	api, _ := newTestAPI(t)
	fake := &fakeController{}
	api.WithProcessController(fake)

	if err := api.SuspendProcess(0); !apperrors.IsAccess(err) {
		t.Errorf("Expected access error for pid 0, got %v", err)
	}
	// pids are multiples of four, so this one never exists
	if err := api.ResumeProcess(0xFFFFFFF1); !apperrors.IsAccess(err) {
		t.Errorf("Expected access error for missing pid, got %v", err)
	}
	if fake.suspended != 0 || fake.resumed != 0 {
		t.Error("Primitive must not run without a process handle")
	}
}

func TestSuspendResumeChildProcess(t *testing.T) {
	cmd := exec.Command("ping", "-n", "30", "127.0.0.1")
	if err := cmd.Start(); err != nil {
		t.Skipf("cannot start child process: %v", err)
	}
	defer func() {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	}()

	api, _ := newTestAPI(t)
	pid := uint32(cmd.Process.Pid)

	if err := api.SuspendProcess(pid); err != nil {
		t.Fatalf("SuspendProcess failed: %v", err)
	}
	// suspending twice is not an error
	if err := api.SuspendProcess(pid); err != nil {
		t.Fatalf("second SuspendProcess failed: %v", err)
	}
	if err := api.ResumeProcess(pid); err != nil {
		t.Fatalf("ResumeProcess failed: %v", err)
	}
	if err := api.ResumeProcess(pid); err != nil {
		t.Fatalf("second ResumeProcess failed: %v", err)
	}

	// the child must still be alive after the suspend/resume cycle
	if cmd.ProcessState != nil {
		t.Fatalf("child exited during suspend/resume: %v", cmd.ProcessState)
	}
	h, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, pid)
	if err != nil {
		t.Fatalf("OpenProcess failed: %v", err)
	}
	defer windows.CloseHandle(h)
	var code uint32
	if err := windows.GetExitCodeProcess(h, &code); err != nil {
		t.Fatalf("GetExitCodeProcess failed: %v", err)
	}
	if code != stillActive {
		t.Errorf("Expected child to be running, exit code %d", code)
	}
}

func TestInvalidWindowHandles(t *testing.T) {
	api, _ := newTestAPI(t)

	if err := api.BringWindowToForeground(0); !apperrors.IsValidation(err) {
		t.Errorf("Expected validation error for null handle, got %v", err)
	}
	if err := api.BringWindowToForeground(0xDEAD0); !apperrors.IsValidation(err) {
		t.Errorf("Expected validation error for stale handle, got %v", err)
	}
	if _, err := api.CaptureWindow(0); !apperrors.IsValidation(err) {
		t.Errorf("Expected validation error for null capture handle, got %v", err)
	}
}

func TestIsWindow(t *testing.T) {
	desktop, _, _ := user32.NewProc("GetDesktopWindow").Call()
	if desktop == 0 {
		t.Skip("no desktop window in this session")
	}
	if !isWindow(types.WindowHandle(desktop)) {
		t.Error("Expected desktop window to be valid")
	}
	if isWindow(0xDEAD0) {
		t.Error("Expected stale handle to be invalid")
	}
	if isWindow(0) {
		t.Error("Expected null handle to be invalid")
	}
}

func TestCaptureWindowMatchesClientArea(t *testing.T) {
	api, _ := newTestAPI(t)
	proc, err := api.GetForegroundProcess()
	if err != nil {
		t.Skipf("no foreground window in this session: %v", err)
	}

	var rect win.RECT
	if !win.GetClientRect(win.HWND(proc.HWND), &rect) {
		t.Skip("GetClientRect failed on foreground window")
	}
	width := int(rect.Right - rect.Left)
	height := int(rect.Bottom - rect.Top)
	if width <= 0 || height <= 0 {
		t.Skip("foreground window has an empty client area")
	}

	backends := []CaptureBackend{CaptureBackendPrintWindow, CaptureBackendScreen}
	for _, backend := range backends {
		t.Run(string(backend), func(t *testing.T) {
			var out bytes.Buffer
			capture := NewWindowsAPI(Options{
				Logger:         logging.New(logging.Options{Output: &out, Level: "debug"}),
				CaptureBackend: backend,
			})

			data, err := capture.CaptureWindow(proc.HWND)
			if err != nil {
				t.Fatalf("CaptureWindow failed: %v", err)
			}
			img, err := png.Decode(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("capture is not a valid PNG: %v", err)
			}
			bounds := img.Bounds()
			if bounds.Dx() != width || bounds.Dy() != height {
				t.Errorf("Expected %dx%d client area, got %dx%d", width, height, bounds.Dx(), bounds.Dy())
			}
			buf := imaging.FromImage(img)
			if len(buf.Pixels) != width*height*imaging.BytesPerPixel {
				t.Errorf("Expected %d pixel bytes, got %d", width*height*imaging.BytesPerPixel, len(buf.Pixels))
			}
		})
	}
}

func TestGetForegroundProcess(t *testing.T) {
	api, _ := newTestAPI(t)

	proc, err := api.GetForegroundProcess()
	if err != nil {
		// headless sessions have no foreground window
		if !apperrors.IsLookup(err) {
			t.Fatalf("Expected lookup error, got %v", err)
		}
		t.Skip("no foreground window in this session")
	}
	if proc.PID == 0 {
		t.Error("Expected non-zero pid")
	}
	if proc.HWND.IsZero() {
		t.Error("Expected non-zero window handle")
	}
	if proc.ScaleFactor <= 0 {
		t.Errorf("Expected positive scale factor, got %v", proc.ScaleFactor)
	}
}

func TestDpiGuardRelease(t *testing.T) {
	guard, err := acquirePerMonitorAwareness()
	if err != nil {
		t.Skipf("per-monitor awareness unavailable: %v", err)
	}
	if err := guard.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if err := guard.Release(); err != nil {
		t.Errorf("second Release should be a no-op, got %v", err)
	}
}
