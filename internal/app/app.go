package app

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"freezeframe/internal/config"
	"freezeframe/internal/imaging"
	apperrors "freezeframe/internal/infrastructure/errors"
	"freezeframe/internal/infrastructure/logging"
	"freezeframe/internal/platform"
	"freezeframe/internal/types"
)

// ErrOperationFailed is the only error commands return. The detailed cause is
// logged where it happened and never crosses the command boundary.
var ErrOperationFailed = errors.New("operation failed")

// Options wire an App. Platform and Logger default to the current platform
// and a JSON logger; Config defaults to config.Default().
type Options struct {
	Platform platform.API
	Logger   logging.Logger
	Config   *config.Config
}

// App struct represents the main application and is bound to the frontend
type App struct {
	ctx          context.Context
	platform     platform.API
	pipeline     *imaging.Pipeline
	logger       logging.Logger
	activation   *apperrors.RetryConfig
	targetHeight uint32

	observeCleanup  bool
	cleanupFailures atomic.Int64
}

// NewApp creates an App from configuration using the current platform
func NewApp(cfg *config.Config, logger logging.Logger) *App {
	return New(Options{Logger: logger, Config: cfg})
}

// New creates an App from explicit dependencies. Without a Platform it builds
// one with the configured capture backend and, when cleanup observation is
// enabled, registers the App as its cleanup observer.
func New(opts Options) *App {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}

	a := &App{
		ctx:      context.Background(),
		platform: opts.Platform,
		pipeline: imaging.NewPipeline(imaging.Options{
			JPEGQuality: cfg.OCR.JPEGQuality,
			Logger:      logging.WithComponent(logger, "imaging"),
		}),
		logger:         logger,
		activation:     apperrors.ActivationRetryConfig(cfg.Activation.RetryAttempts, cfg.Activation.RetryDelay),
		targetHeight:   cfg.OCR.TargetHeight,
		observeCleanup: cfg.Diagnostics.ObserveCleanupFailures,
	}

	if a.platform == nil {
		popts := platform.Options{
			Logger:         logging.WithComponent(logger, "platform"),
			CaptureBackend: platform.CaptureBackend(cfg.Capture.Backend),
		}
		if a.observeCleanup {
			popts.CleanupObserver = a.cleanupObserver()
		}
		a.platform = platform.NewAPI(popts)
	}
	return a
}

// Startup is called at application startup
func (a *App) Startup(ctx context.Context) {
	a.ctx = ctx
	a.logger.Info("Application started",
		"ocr_target_height", a.targetHeight,
		"activation_attempts", a.activation.MaxAttempts,
		"observe_cleanup_failures", a.observeCleanup,
	)
}

// DomReady is called after front-end resources have been loaded
func (a *App) DomReady(ctx context.Context) {}

// BeforeClose is called when the application is about to quit
func (a *App) BeforeClose(ctx context.Context) (prevent bool) {
	return false
}

// Shutdown is called at application termination
func (a *App) Shutdown(ctx context.Context) {
	if n := a.cleanupFailures.Load(); n > 0 {
		a.logger.Warn("Cleanup failures recorded during session", "count", n)
	}
	a.logger.Info("Application shutdown completed")
}

// cleanupCounter implements platform.CleanupObserver. It is kept off App so
// the frontend binding does not expose it.
type cleanupCounter struct {
	a *App
}

func (c cleanupCounter) CleanupFailed(operation, resource string, err error) {
	c.a.cleanupFailures.Add(1)
}

// cleanupObserver returns the observer that feeds CleanupFailures
func (a *App) cleanupObserver() platform.CleanupObserver {
	return cleanupCounter{a: a}
}

// CleanupFailures returns how many resource releases have failed so far.
// It stays zero unless diagnostics.observe_cleanup_failures is enabled.
func (a *App) CleanupFailures() int64 {
	return a.cleanupFailures.Load()
}

// DefaultOCRHeight returns the configured recognition height
func (a *App) DefaultOCRHeight() uint32 {
	return a.targetHeight
}

// GetForegroundProcess returns the focused window, its process and scale factor
func (a *App) GetForegroundProcess() (*types.ForegroundProcess, error) {
	const op = "GetForegroundProcess"
	start := time.Now()

	proc, err := a.platform.GetForegroundProcess()
	if err != nil {
		return nil, a.opaque(op, err)
	}
	a.done(op, start, map[string]interface{}{"pid": proc.PID})
	return proc, nil
}

// SuspendProcess freezes every thread of the process
func (a *App) SuspendProcess(pid uint32) error {
	const op = "SuspendProcess"
	start := time.Now()

	if err := a.platform.SuspendProcess(pid); err != nil {
		return a.opaque(op, err)
	}
	a.done(op, start, map[string]interface{}{"pid": pid})
	return nil
}

// ResumeProcess thaws every thread of the process
func (a *App) ResumeProcess(pid uint32) error {
	const op = "ResumeProcess"
	start := time.Now()

	if err := a.platform.ResumeProcess(pid); err != nil {
		return a.opaque(op, err)
	}
	a.done(op, start, map[string]interface{}{"pid": pid})
	return nil
}

// BringWindowToForeground focuses the window, retrying foreground-lock
// refusals according to the activation policy
func (a *App) BringWindowToForeground(hwnd uintptr) error {
	const op = "BringWindowToForeground"
	start := time.Now()

	if err := a.activate(types.WindowHandle(hwnd)); err != nil {
		return a.opaque(op, err)
	}
	a.done(op, start, map[string]interface{}{"hwnd": types.WindowHandle(hwnd).String()})
	return nil
}

// TakeScreenshot captures the window's client area as PNG
func (a *App) TakeScreenshot(hwnd uintptr) ([]byte, error) {
	const op = "TakeScreenshot"
	start := time.Now()

	data, err := a.platform.CaptureWindow(types.WindowHandle(hwnd))
	if err != nil {
		return nil, a.opaque(op, err)
	}
	a.done(op, start, map[string]interface{}{"png_bytes": len(data)})
	return data, nil
}

// PrepareScreenshotForOCR rescales a PNG to targetHeight and returns it as
// base64 JPEG text
func (a *App) PrepareScreenshotForOCR(png []byte, targetHeight uint32) (string, error) {
	const op = "PrepareScreenshotForOCR"
	start := time.Now()

	encoded, err := a.pipeline.Prepare(png, targetHeight)
	if err != nil {
		return "", a.opaque(op, err)
	}
	a.done(op, start, map[string]interface{}{"target_height": targetHeight})
	return encoded, nil
}

// SuspendAndCapture freezes the foreground process and captures its window.
// If the capture fails the process is resumed before returning.
func (a *App) SuspendAndCapture() (*types.FrozenWindow, error) {
	const op = "SuspendAndCapture"
	start := time.Now()

	proc, err := a.platform.GetForegroundProcess()
	if err != nil {
		return nil, a.opaque(op, err)
	}

	if err := a.platform.SuspendProcess(proc.PID); err != nil {
		return nil, a.opaque(op, err)
	}

	shot, err := a.platform.CaptureWindow(proc.HWND)
	if err != nil {
		if resumeErr := a.platform.ResumeProcess(proc.PID); resumeErr != nil {
			a.logger.Error("Process left suspended after failed capture",
				"pid", proc.PID,
				"error", resumeErr.Error(),
			)
		}
		return nil, a.opaque(op, err)
	}

	a.done(op, start, map[string]interface{}{"pid": proc.PID, "png_bytes": len(shot)})
	return &types.FrozenWindow{ForegroundProcess: *proc, Screenshot: shot}, nil
}

// ResumeAndRestore thaws the process and then gives its window focus back.
// Activation is skipped when the resume fails.
func (a *App) ResumeAndRestore(pid uint32, hwnd uintptr) error {
	const op = "ResumeAndRestore"
	start := time.Now()

	if err := a.platform.ResumeProcess(pid); err != nil {
		return a.opaque(op, err)
	}
	if err := a.activate(types.WindowHandle(hwnd)); err != nil {
		return a.opaque(op, err)
	}

	a.done(op, start, map[string]interface{}{"pid": pid})
	return nil
}

func (a *App) activate(hwnd types.WindowHandle) error {
	return apperrors.WithRetryContext(a.ctx, a.activation, func() error {
		return a.platform.BringWindowToForeground(hwnd)
	}, fmt.Sprintf("activate %s", hwnd))
}

// opaque logs the classified cause and returns the sentinel
func (a *App) opaque(op string, err error) error {
	a.logger.Warn("Command failed",
		"command", op,
		"error_code", apperrors.CodeOf(err).String(),
		"retryable", apperrors.IsRetryable(err),
		"error", err.Error(),
	)
	return ErrOperationFailed
}

func (a *App) done(op string, start time.Time, ctx map[string]interface{}) {
	logging.LogOperation(a.logger, op, time.Since(start), ctx)
}

// GetLogger returns the application's structured logger
func (a *App) GetLogger() logging.Logger {
	return a.logger
}
