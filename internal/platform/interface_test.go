package platform

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"freezeframe/internal/infrastructure/logging"
	"freezeframe/internal/testutils"
)

type recordingObserver struct {
	calls []string
}

func (r *recordingObserver) CleanupFailed(operation, resource string, err error) {
	r.calls = append(r.calls, operation+"/"+resource+": "+err.Error())
}

func TestDpiToScale(t *testing.T) {
	tests := []struct {
		dpi  uint32
		want float32
	}{
		{96, 1.0},
		{120, 1.25},
		{144, 1.5},
		{192, 2.0},
		{72, 0.75},
	}

	for _, tt := range tests {
		if got := dpiToScale(tt.dpi); got != tt.want {
			t.Errorf("dpiToScale(%d) = %v, want %v", tt.dpi, got, tt.want)
		}
	}
}

func TestOptionsWithDefaults(t *testing.T) {
	opts := Options{}.withDefaults()
	if opts.Logger == nil {
		t.Error("Expected a default logger")
	}
	if opts.CaptureBackend != CaptureBackendPrintWindow {
		t.Errorf("Expected default backend %q, got %q", CaptureBackendPrintWindow, opts.CaptureBackend)
	}

	opts = Options{CaptureBackend: CaptureBackendScreen}.withDefaults()
	if opts.CaptureBackend != CaptureBackendScreen {
		t.Errorf("Expected backend to be kept, got %q", opts.CaptureBackend)
	}
}

func TestCleanupReporter(t *testing.T) {
	var out bytes.Buffer
	observer := &recordingObserver{}
	reporter := cleanupReporter{
		logger:   logging.New(logging.Options{Output: &out}),
		observer: observer,
	}

	reporter.failed("suspend_process", "process_handle", nil)
	if len(observer.calls) != 0 || out.Len() != 0 {
		t.Fatal("Expected nil error to be ignored")
	}

	reporter.failed("suspend_process", "process_handle", errors.New("close failed"))
	if len(observer.calls) != 1 {
		t.Fatalf("Expected 1 observer call, got %d", len(observer.calls))
	}
	if observer.calls[0] != "suspend_process/process_handle: close failed" {
		t.Errorf("Unexpected observer call: %s", observer.calls[0])
	}
	if !strings.Contains(out.String(), `"level":"warn"`) {
		t.Errorf("Expected cleanup failure logged at warn, got %s", out.String())
	}
	if !strings.Contains(out.String(), "process_handle") {
		t.Errorf("Expected resource in log, got %s", out.String())
	}
}

func TestCleanupReporterWithoutObserver(t *testing.T) {
	var out bytes.Buffer
	reporter := cleanupReporter{logger: logging.New(logging.Options{Output: &out})}

	reporter.failed("capture_window", "bitmap", errors.New("DeleteObject failed"))
	if !strings.Contains(out.String(), "bitmap") {
		t.Errorf("Expected cleanup failure to be logged, got %s", out.String())
	}
}

func TestCleanupReporterFields(t *testing.T) {
	logger := &testutils.RecordingLogger{}
	reporter := cleanupReporter{logger: logger}

	reporter.failed("scale_factor", "dpi_awareness_context", errors.New("restore failed"))

	entry, ok := logger.Find("warn", "Cleanup failed")
	if !ok {
		t.Fatalf("Expected a warn entry, got %+v", logger.Entries())
	}
	fields := testutils.FieldsToMap(t, entry.Fields)
	if fields["operation"] != "scale_factor" || fields["resource"] != "dpi_awareness_context" {
		t.Errorf("Unexpected fields: %v", fields)
	}
}
