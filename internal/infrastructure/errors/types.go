package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ErrorCode represents the failure classes of the OS control primitives
type ErrorCode int

const (
	ErrCodeUnknown ErrorCode = iota
	ErrCodeLookup
	ErrCodeAccess
	ErrCodeSuspend
	ErrCodeResume
	ErrCodeActivation
	ErrCodeCapture
	ErrCodeDecode
	ErrCodeEncoding
	ErrCodeValidation
	ErrCodeUnsupported
)

// String returns a string representation of the error code
func (e ErrorCode) String() string {
	switch e {
	case ErrCodeLookup:
		return "LOOKUP"
	case ErrCodeAccess:
		return "ACCESS"
	case ErrCodeSuspend:
		return "SUSPEND"
	case ErrCodeResume:
		return "RESUME"
	case ErrCodeActivation:
		return "ACTIVATION"
	case ErrCodeCapture:
		return "CAPTURE"
	case ErrCodeDecode:
		return "DECODE"
	case ErrCodeEncoding:
		return "ENCODING"
	case ErrCodeValidation:
		return "VALIDATION"
	case ErrCodeUnsupported:
		return "UNSUPPORTED"
	default:
		return "UNKNOWN"
	}
}

// OperationError represents a failed OS or codec operation with context
type OperationError struct {
	Op        string            // operation name
	Err       error             // underlying error
	Code      ErrorCode         // error classification
	Retryable bool              // whether the caller may reasonably retry
	Context   map[string]string // additional context information
	Timestamp time.Time         // when the error occurred
}

func (e *OperationError) Error() string {
	if e == nil {
		return "operation error"
	}

	var parts []string

	if e.Op != "" {
		parts = append(parts, fmt.Sprintf("op=%s", e.Op))
	}

	if e.Code != ErrCodeUnknown {
		parts = append(parts, fmt.Sprintf("code=%s", e.Code.String()))
	}

	if e.Retryable {
		parts = append(parts, "retryable=true")
	}

	// Context keys are sorted so the message is stable
	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%s", k, e.Context[k]))
		}
	}

	contextStr := ""
	if len(parts) > 0 {
		contextStr = fmt.Sprintf(" [%s]", strings.Join(parts, " "))
	}

	if e.Err != nil {
		return e.Err.Error() + contextStr
	}
	return "operation error" + contextStr
}

func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is implements error matching for errors.Is
func (e *OperationError) Is(target error) bool {
	if e == nil {
		return false
	}
	if t, ok := target.(*OperationError); ok {
		return e.Code == t.Code
	}
	if e.Err != nil {
		return errors.Is(e.Err, target)
	}
	return false
}

// IsRetryable returns whether the error is retryable
func (e *OperationError) IsRetryable() bool {
	if e == nil {
		return false
	}
	return e.Retryable
}

// GetCode returns the error code as a string (for logging interface compatibility)
func (e *OperationError) GetCode() string {
	if e == nil {
		return ErrCodeUnknown.String()
	}
	return e.Code.String()
}

// GetContext returns the error context (for logging interface compatibility)
func (e *OperationError) GetContext() map[string]string {
	if e == nil || e.Context == nil {
		return make(map[string]string)
	}
	return e.Context
}

// GetTimestamp returns the error timestamp (for logging interface compatibility)
func (e *OperationError) GetTimestamp() time.Time {
	if e == nil {
		return time.Time{}
	}
	return e.Timestamp
}

// WithContext adds context information to the error by mutating the receiver.
// Not safe once the error has been handed to another goroutine.
func (e *OperationError) WithContext(key, value string) *OperationError {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	e.Context[key] = value
	return e
}

// NewOperationError creates a new operation error
func NewOperationError(op string, err error, code ErrorCode) *OperationError {
	return &OperationError{
		Op:        op,
		Err:       err,
		Code:      code,
		Retryable: isRetryableCode(code),
		Context:   make(map[string]string),
		Timestamp: time.Now(),
	}
}

// NewOperationErrorWithContext creates a new operation error with additional context
func NewOperationErrorWithContext(op string, err error, code ErrorCode, context map[string]string) *OperationError {
	opErr := NewOperationError(op, err, code)
	if context != nil {
		opErr.Context = make(map[string]string, len(context))
		for k, v := range context {
			opErr.Context[k] = v
		}
	}
	return opErr
}

// isRetryableCode reports whether a failure class is transient.
// Foreground-lock refusals clear once the user interacts with the desktop;
// everything else fails the same way on every attempt.
func isRetryableCode(code ErrorCode) bool {
	return code == ErrCodeActivation
}

// CodeOf returns the code of the first OperationError in err's chain
func CodeOf(err error) ErrorCode {
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr.Code
	}
	return ErrCodeUnknown
}

func hasCode(err error, code ErrorCode) bool {
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr.Code == code
	}
	return false
}

// IsLookup checks if the foreground window, process, monitor or DPI could not be resolved
func IsLookup(err error) bool { return hasCode(err, ErrCodeLookup) }

// IsAccess checks if a process handle could not be acquired
func IsAccess(err error) bool { return hasCode(err, ErrCodeAccess) }

// IsSuspend checks if the suspend primitive reported failure
func IsSuspend(err error) bool { return hasCode(err, ErrCodeSuspend) }

// IsResume checks if the resume primitive reported failure
func IsResume(err error) bool { return hasCode(err, ErrCodeResume) }

// IsActivation checks if the OS refused a foreground transfer
func IsActivation(err error) bool { return hasCode(err, ErrCodeActivation) }

// IsCapture checks if a window capture failed
func IsCapture(err error) bool { return hasCode(err, ErrCodeCapture) }

// IsDecode checks if image decoding failed
func IsDecode(err error) bool { return hasCode(err, ErrCodeDecode) }

// IsEncoding checks if image encoding failed
func IsEncoding(err error) bool { return hasCode(err, ErrCodeEncoding) }

// IsValidation checks if the caller violated an input contract
func IsValidation(err error) bool { return hasCode(err, ErrCodeValidation) }

// IsUnsupported checks if the operation is unavailable on this platform
func IsUnsupported(err error) bool { return hasCode(err, ErrCodeUnsupported) }

// IsRetryable checks if the error is retryable
func IsRetryable(err error) bool {
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr.Retryable
	}
	return false
}
