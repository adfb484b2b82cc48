package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"freezeframe/internal/testutils"

	"github.com/rs/zerolog"
)

type mockOperationError struct {
	message   string
	code      string
	retryable bool
	context   map[string]string
	timestamp time.Time
}

func (m *mockOperationError) Error() string                 { return m.message }
func (m *mockOperationError) GetCode() string               { return m.code }
func (m *mockOperationError) IsRetryable() bool             { return m.retryable }
func (m *mockOperationError) GetContext() map[string]string { return m.context }
func (m *mockOperationError) GetTimestamp() time.Time       { return m.timestamp }

type mockLogger struct {
	debugCalls []logCall
	infoCalls  []logCall
	warnCalls  []logCall
	errorCalls []logCall
}

type logCall struct {
	msg    string
	fields []interface{}
}

func (m *mockLogger) Debug(msg string, fields ...interface{}) {
	m.debugCalls = append(m.debugCalls, logCall{msg: msg, fields: fields})
}

func (m *mockLogger) Info(msg string, fields ...interface{}) {
	m.infoCalls = append(m.infoCalls, logCall{msg: msg, fields: fields})
}

func (m *mockLogger) Warn(msg string, fields ...interface{}) {
	m.warnCalls = append(m.warnCalls, logCall{msg: msg, fields: fields})
}

func (m *mockLogger) Error(msg string, fields ...interface{}) {
	m.errorCalls = append(m.errorCalls, logCall{msg: msg, fields: fields})
}

func decodeLine(t *testing.T, line string) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("Failed to parse JSON log entry: %v, output: %q", err, line)
	}
	return entry
}

func TestNewDefaultLogger(t *testing.T) {
	logger := NewDefaultLogger()
	if logger == nil {
		t.Fatal("NewDefaultLogger() returned nil")
	}

	if _, ok := logger.(*DefaultLogger); !ok {
		t.Errorf("NewDefaultLogger() returned %T, expected *DefaultLogger", logger)
	}
}

func TestDefaultLogger_LogLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: "debug", Output: &buf})

	tests := []struct {
		name           string
		logFunc        func(string, ...interface{})
		message        string
		fields         []interface{}
		levelToken     string
		expectedFields map[string]interface{}
	}{
		{
			name:           "Debug",
			logFunc:        logger.Debug,
			message:        "debug message",
			fields:         []interface{}{"key", "value"},
			levelToken:     "debug",
			expectedFields: map[string]interface{}{"key": "value"},
		},
		{
			name:           "Info",
			logFunc:        logger.Info,
			message:        "info message",
			fields:         []interface{}{"pid", 42},
			levelToken:     "info",
			expectedFields: map[string]interface{}{"pid": float64(42)}, // JSON numbers are float64
		},
		{
			name:           "Warn",
			logFunc:        logger.Warn,
			message:        "warn message",
			fields:         []interface{}{},
			levelToken:     "warn",
			expectedFields: map[string]interface{}{},
		},
		{
			name:           "Error",
			logFunc:        logger.Error,
			message:        "error message",
			fields:         []interface{}{"error", "access denied"},
			levelToken:     "error",
			expectedFields: map[string]interface{}{"error": "access denied"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.logFunc(tt.message, tt.fields...)

			entry := decodeLine(t, strings.TrimSpace(buf.String()))

			if entry[zerolog.TimestampFieldName] == nil {
				t.Error("Expected log entry to have a timestamp")
			}

			if entry[zerolog.LevelFieldName] != tt.levelToken {
				t.Errorf("Expected level %q, got %q", tt.levelToken, entry[zerolog.LevelFieldName])
			}

			if entry[zerolog.MessageFieldName] != tt.message {
				t.Errorf("Expected message %q, got %q", tt.message, entry[zerolog.MessageFieldName])
			}

			for key, expectedValue := range tt.expectedFields {
				if actual, exists := entry[key]; !exists {
					t.Errorf("Expected field %q to exist", key)
				} else if actual != expectedValue {
					t.Errorf("Expected field %q to be %v, got %v", key, expectedValue, actual)
				}
			}
		})
	}
}

func TestDefaultLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: "warn", Output: &buf})

	logger.Debug("hidden")
	logger.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected debug/info to be filtered, got %q", buf.String())
	}

	logger.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("expected warn entry, got %q", buf.String())
	}
}

func TestDefaultLogger_Pretty(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Pretty: true, Output: &buf})

	logger.Info("capturing window", "hwnd", "0x10")

	out := buf.String()
	if strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Errorf("pretty output should not be JSON: %q", out)
	}
	if !strings.Contains(out, "capturing window") || !strings.Contains(out, "hwnd=0x10") {
		t.Errorf("unexpected pretty output %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"DEBUG":   zerolog.DebugLevel,
		"info":    zerolog.InfoLevel,
		"warn":    zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"bogus":   zerolog.InfoLevel,
	}

	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestFieldsToMap_NonStringAndOddKeys(t *testing.T) {
	got := fieldsToMap([]interface{}{1, "one", "dangling"})

	if got["field_0"] != 1 || got["field_0_value"] != "one" {
		t.Errorf("non-string key not preserved: %v", got)
	}
	if got["field_1"] != "dangling" {
		t.Errorf("dangling field not preserved: %v", got)
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := WithComponent(New(Options{Output: &buf}), "platform")

	logger.Info("hello")

	entry := decodeLine(t, strings.TrimSpace(buf.String()))
	if entry["component"] != "platform" {
		t.Errorf("component = %v, want platform", entry["component"])
	}

	mockLog := &mockLogger{}
	WithComponent(mockLog, "api").Warn("wrapped", "k", "v")

	if len(mockLog.warnCalls) != 1 {
		t.Fatalf("expected 1 warn call, got %d", len(mockLog.warnCalls))
	}
	fields := testutils.FieldsToMap(t, mockLog.warnCalls[0].fields)
	if fields["component"] != "api" || fields["k"] != "v" {
		t.Errorf("unexpected fields %v", fields)
	}
}

func TestLogError_WithOperationError(t *testing.T) {
	mockLog := &mockLogger{}

	opErr := &mockOperationError{
		message:   "OpenProcess failed",
		code:      "ACCESS",
		retryable: false,
		context:   map[string]string{"pid": "1234"},
		timestamp: time.Now(),
	}

	LogError(mockLog, opErr, "suspend_process", map[string]interface{}{"caller": "shell"})

	if len(mockLog.errorCalls) != 1 {
		t.Fatalf("Expected 1 error call, got %d", len(mockLog.errorCalls))
	}

	call := mockLog.errorCalls[0]
	if !strings.Contains(call.msg, "Operation failed: OpenProcess failed") {
		t.Errorf("unexpected message %q", call.msg)
	}

	fieldsMap := testutils.FieldsToMap(t, call.fields)

	expectedFields := map[string]interface{}{
		"operation":  "suspend_process",
		"error_code": "ACCESS",
		"retryable":  false,
		"pid":        "1234",
		"caller":     "shell",
	}

	for key, expected := range expectedFields {
		if actual, exists := fieldsMap[key]; !exists {
			t.Errorf("Expected field %q not found in log call", key)
		} else if actual != expected {
			t.Errorf("Field %q: expected %v, got %v", key, expected, actual)
		}
	}
}

func TestLogError_WithRegularError(t *testing.T) {
	mockLog := &mockLogger{}

	LogError(mockLog, errors.New("regular error"), "capture_window", map[string]interface{}{"context": "value"})

	if len(mockLog.errorCalls) != 1 {
		t.Fatalf("Expected 1 error call, got %d", len(mockLog.errorCalls))
	}

	call := mockLog.errorCalls[0]
	if !strings.Contains(call.msg, "Unexpected error: regular error") {
		t.Errorf("unexpected message %q", call.msg)
	}

	fieldsMap := testutils.FieldsToMap(t, call.fields)
	if fieldsMap["operation"] != "capture_window" {
		t.Errorf("operation = %v", fieldsMap["operation"])
	}
	if fieldsMap["context"] != "value" {
		t.Errorf("context = %v", fieldsMap["context"])
	}
}

func TestLogError_NilError(t *testing.T) {
	mockLog := &mockLogger{}
	LogError(mockLog, nil, "op", nil)

	if len(mockLog.errorCalls) != 0 {
		t.Errorf("nil error should not be logged")
	}
}

func TestLogCleanupFailure(t *testing.T) {
	mockLog := &mockLogger{}

	LogCleanupFailure(mockLog, errors.New("CloseHandle failed"), "resume_process", "process_handle")

	if len(mockLog.warnCalls) != 1 {
		t.Fatalf("Expected 1 warn call, got %d", len(mockLog.warnCalls))
	}
	if len(mockLog.errorCalls) != 0 {
		t.Error("cleanup failures must not be logged as errors")
	}

	fieldsMap := testutils.FieldsToMap(t, mockLog.warnCalls[0].fields)
	if fieldsMap["resource"] != "process_handle" || fieldsMap["operation"] != "resume_process" {
		t.Errorf("unexpected fields %v", fieldsMap)
	}
}

func TestLogOperation(t *testing.T) {
	mockLog := &mockLogger{}

	LogOperation(mockLog, "capture_window", 150*time.Millisecond, map[string]interface{}{"bytes": 2048})

	if len(mockLog.debugCalls) != 1 {
		t.Fatalf("Expected 1 debug call, got %d", len(mockLog.debugCalls))
	}

	call := mockLog.debugCalls[0]
	if !strings.Contains(call.msg, "Operation completed: capture_window") {
		t.Errorf("unexpected message %q", call.msg)
	}

	fieldsMap := testutils.FieldsToMap(t, call.fields)

	expectedFields := map[string]interface{}{
		"operation":   "capture_window",
		"duration_ms": int64(150),
		"bytes":       2048,
	}

	for key, expected := range expectedFields {
		if actual, exists := fieldsMap[key]; !exists {
			t.Errorf("Expected field %q not found in log call", key)
		} else if actual != expected {
			t.Errorf("Field %q: expected %v, got %v", key, expected, actual)
		}
	}
}

func TestWailsLoggerAdapter(t *testing.T) {
	mockLog := &mockLogger{}
	adapter := NewWailsLoggerAdapter(mockLog)

	adapter.Print("print")
	adapter.Trace("trace")
	adapter.Debug("debug")
	adapter.Info("info")
	adapter.Warning("warning")
	adapter.Error("error")
	adapter.Fatal("fatal")

	if len(mockLog.infoCalls) != 2 {
		t.Errorf("expected 2 info calls, got %d", len(mockLog.infoCalls))
	}
	if len(mockLog.debugCalls) != 2 {
		t.Errorf("expected 2 debug calls, got %d", len(mockLog.debugCalls))
	}
	if len(mockLog.warnCalls) != 1 {
		t.Errorf("expected 1 warn call, got %d", len(mockLog.warnCalls))
	}
	if len(mockLog.errorCalls) != 2 {
		t.Errorf("expected fatal to be downgraded to error, got %d error calls", len(mockLog.errorCalls))
	}

	fields := testutils.FieldsToMap(t, mockLog.errorCalls[1].fields)
	if fields["wails_level"] != "fatal" {
		t.Errorf("fatal entry should be tagged, got %v", fields)
	}
}
