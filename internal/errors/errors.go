package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorCode represents a DocMint error code.
type ErrorCode string

const (
	ErrUnsupportedKind       ErrorCode = "UNSUPPORTED_KIND"       // 415
	ErrDuplicateID           ErrorCode = "DUPLICATE_ID"           // 409
	ErrUnknownTool           ErrorCode = "UNKNOWN_TOOL"           // 404
	ErrArityMismatch         ErrorCode = "ARITY_MISMATCH"         // 400
	ErrKindMismatch          ErrorCode = "KIND_MISMATCH"          // 415
	ErrInvalidConfig         ErrorCode = "INVALID_CONFIG"         // 400
	ErrIndexOutOfRange       ErrorCode = "INDEX_OUT_OF_RANGE"     // 400
	ErrDependencyUnavailable ErrorCode = "DEPENDENCY_UNAVAILABLE" // 503
	ErrTransformationFailed  ErrorCode = "TRANSFORMATION_FAILED"  // 422
	ErrInvalidRequest        ErrorCode = "INVALID_REQUEST"        // 400
	ErrInternal              ErrorCode = "INTERNAL"               // 500
)

// MintError represents a structured error with code, status, and details.
type MintError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any

	// Cause is the lower-level failure this error classifies, if any.
	Cause error
}

// Error implements the error interface.
func (e *MintError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the classified cause to errors.Is / errors.As.
func (e *MintError) Unwrap() error {
	return e.Cause
}

// NewUnsupportedKind creates a 415 error for an upload whose kind cannot be
// inferred or is not accepted by the active tool.
func NewUnsupportedKind(name, kind string, accepted []string) *MintError {
	msg := fmt.Sprintf("%s: unsupported file kind %q", name, kind)
	if kind == "" {
		msg = fmt.Sprintf("%s: file kind could not be determined", name)
	}
	if len(accepted) > 0 {
		msg += fmt.Sprintf(" (accepted: %s)", strings.Join(accepted, ", "))
	}
	return &MintError{
		Code:    ErrUnsupportedKind,
		Status:  415,
		Message: msg,
		Details: map[string]any{"name": name, "kind": kind, "accepted": accepted},
	}
}

// NewDuplicateID creates a 409 error for a tool id registered twice.
func NewDuplicateID(id string) *MintError {
	return &MintError{
		Code:    ErrDuplicateID,
		Status:  409,
		Message: fmt.Sprintf("tool %q is already registered", id),
		Details: map[string]any{"id": id},
	}
}

// NewUnknownTool creates a 404 error for a tool id missing from the registry.
func NewUnknownTool(id string) *MintError {
	return &MintError{
		Code:    ErrUnknownTool,
		Status:  404,
		Message: fmt.Sprintf("unknown tool: %s", id),
		Details: map[string]any{"id": id},
	}
}

// NewArityMismatch creates a 400 error when a tool receives the wrong number of inputs.
func NewArityMismatch(tool string, multiple bool, got int) *MintError {
	want := "exactly 1 file"
	if multiple {
		want = "at least 1 file"
	}
	return &MintError{
		Code:    ErrArityMismatch,
		Status:  400,
		Message: fmt.Sprintf("%s expects %s, got %d", tool, want, got),
		Details: map[string]any{"tool": tool, "multiple": multiple, "got": got},
	}
}

// NewKindMismatch creates a 415 error when an input kind is not accepted by a tool.
func NewKindMismatch(tool, name, kind string, accepted []string) *MintError {
	return &MintError{
		Code:    ErrKindMismatch,
		Status:  415,
		Message: fmt.Sprintf("%s does not accept %s input %q (accepted: %s)", tool, kind, name, strings.Join(accepted, ", ")),
		Details: map[string]any{"tool": tool, "name": name, "kind": kind, "accepted": accepted},
	}
}

// NewInvalidConfig creates a 400 error for an option that violates the tool's schema.
func NewInvalidConfig(option, reason string) *MintError {
	return &MintError{
		Code:    ErrInvalidConfig,
		Status:  400,
		Message: fmt.Sprintf("option %q: %s", option, reason),
		Details: map[string]any{"option": option, "reason": reason},
	}
}

// NewIndexOutOfRange creates a 400 error for a 1-indexed page outside 1..count.
func NewIndexOutOfRange(index, count int) *MintError {
	return &MintError{
		Code:    ErrIndexOutOfRange,
		Status:  400,
		Message: fmt.Sprintf("page %d is out of range (document has %d pages)", index, count),
		Details: map[string]any{"index": index, "count": count},
	}
}

// NewDependencyUnavailable creates a 503 error for a backend that is not
// present in this deployment.
func NewDependencyUnavailable(dependency string, cause error) *MintError {
	msg := fmt.Sprintf("%s is not available in this deployment", dependency)
	return &MintError{
		Code:    ErrDependencyUnavailable,
		Status:  503,
		Message: msg,
		Details: map[string]any{"dependency": dependency},
		Cause:   cause,
	}
}

// NewTransformationFailed creates a 422 error wrapping a failure raised by a
// tool's transformation.
func NewTransformationFailed(tool string, cause error) *MintError {
	reason := "unknown failure"
	if cause != nil {
		reason = cause.Error()
	}
	return &MintError{
		Code:    ErrTransformationFailed,
		Status:  422,
		Message: fmt.Sprintf("%s failed: %s", tool, reason),
		Details: map[string]any{"tool": tool},
		Cause:   cause,
	}
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *MintError {
	return &MintError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
// The message stays generic; the original error is kept in Details for logging.
func NewInternal(err error) *MintError {
	details := map[string]any{}
	if err != nil {
		details["internal_error"] = err.Error()
	}
	return &MintError{
		Code:    ErrInternal,
		Status:  500,
		Message: "an internal error occurred",
		Details: details,
		Cause:   err,
	}
}

// Is checks if an error is (or wraps) a MintError with the given code.
func Is(err error, code ErrorCode) bool {
	var mErr *MintError
	if stderrors.As(err, &mErr) {
		return mErr.Code == code
	}
	return false
}

// As returns the MintError in err's chain, or nil.
func As(err error) *MintError {
	var mErr *MintError
	if stderrors.As(err, &mErr) {
		return mErr
	}
	return nil
}
