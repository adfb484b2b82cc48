//go:build windows

package platform

import (
	"fmt"

	apperrors "freezeframe/internal/infrastructure/errors"

	"golang.org/x/sys/windows"
)

// ProcessController is the capability that freezes and thaws every thread of
// a process through an open handle
type ProcessController interface {
	Suspend(handle windows.Handle) error
	Resume(handle windows.Handle) error
}

// ntProcessController uses ntdll's NtSuspendProcess / NtResumeProcess.
// Both act on the whole thread set; there is no partially suspended state.
type ntProcessController struct{}

func (ntProcessController) Suspend(handle windows.Handle) error {
	return callNTStatus(procNtSuspendProcess, handle)
}

func (ntProcessController) Resume(handle windows.Handle) error {
	return callNTStatus(procNtResumeProcess, handle)
}

func callNTStatus(proc *windows.LazyProc, handle windows.Handle) error {
	if err := proc.Find(); err != nil {
		return err
	}
	status, _, _ := proc.Call(uintptr(handle))
	if status != 0 {
		return windows.NTStatus(status)
	}
	return nil
}

// SuspendProcess freezes every thread of the process. Suspending an already
// suspended process is not an error.
func (w *WindowsAPI) SuspendProcess(pid uint32) error {
	const op = "suspend_process"
	return w.withProcessHandle(op, pid, func(handle windows.Handle) error {
		if err := w.controller.Suspend(handle); err != nil {
			return w.fail(op, apperrors.ErrCodeSuspend, fmt.Errorf("suspend primitive failed: %w", err), pidContext(pid))
		}
		w.logger.Debug("Suspended process", "pid", pid)
		return nil
	})
}

// ResumeProcess thaws every thread of the process. Resuming a running process
// is not an error.
func (w *WindowsAPI) ResumeProcess(pid uint32) error {
	const op = "resume_process"
	return w.withProcessHandle(op, pid, func(handle windows.Handle) error {
		if err := w.controller.Resume(handle); err != nil {
			return w.fail(op, apperrors.ErrCodeResume, fmt.Errorf("resume primitive failed: %w", err), pidContext(pid))
		}
		w.logger.Debug("Resumed process", "pid", pid)
		return nil
	})
}

// withProcessHandle opens a full-access handle, runs fn and closes the handle
// on every path. A failed close is reported but never replaces fn's result.
func (w *WindowsAPI) withProcessHandle(op string, pid uint32, fn func(windows.Handle) error) error {
	if pid == 0 {
		return w.fail(op, apperrors.ErrCodeAccess, fmt.Errorf("pid 0 is not a process"), pidContext(pid))
	}

	handle, err := windows.OpenProcess(windows.PROCESS_ALL_ACCESS, false, pid)
	if err != nil {
		return w.fail(op, apperrors.ErrCodeAccess, fmt.Errorf("OpenProcess failed: %w", err), pidContext(pid))
	}
	defer func() {
		w.cleanup.failed(op, "process_handle", windows.CloseHandle(handle))
	}()

	return fn(handle)
}
