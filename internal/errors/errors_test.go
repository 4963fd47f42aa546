package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestMintError_Error(t *testing.T) {
	err := &MintError{
		Code:    ErrUnknownTool,
		Status:  404,
		Message: "unknown tool: x",
	}

	expected := "UNKNOWN_TOOL: unknown tool: x"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestConstructors_CodeAndStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    *MintError
		code   ErrorCode
		status int
	}{
		{"unsupported kind", NewUnsupportedKind("a.bin", "", []string{"pdf"}), ErrUnsupportedKind, 415},
		{"duplicate id", NewDuplicateID("merge_pdf"), ErrDuplicateID, 409},
		{"unknown tool", NewUnknownTool("nope"), ErrUnknownTool, 404},
		{"arity", NewArityMismatch("split_pdf", false, 2), ErrArityMismatch, 400},
		{"kind mismatch", NewKindMismatch("merge_pdf", "a.png", "image", []string{"pdf"}), ErrKindMismatch, 415},
		{"invalid config", NewInvalidConfig("width", "must be an integer"), ErrInvalidConfig, 400},
		{"index out of range", NewIndexOutOfRange(4, 3), ErrIndexOutOfRange, 400},
		{"dependency", NewDependencyUnavailable("pdftoppm", nil), ErrDependencyUnavailable, 503},
		{"transformation", NewTransformationFailed("merge_pdf", fmt.Errorf("boom")), ErrTransformationFailed, 422},
		{"invalid request", NewInvalidRequest("bad"), ErrInvalidRequest, 400},
		{"internal", NewInternal(nil), ErrInternal, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("Code = %q, want %q", tt.err.Code, tt.code)
			}
			if tt.err.Status != tt.status {
				t.Errorf("Status = %d, want %d", tt.err.Status, tt.status)
			}
			if tt.err.Message == "" {
				t.Error("Message should not be empty")
			}
		})
	}
}

func TestNewUnsupportedKind_Message(t *testing.T) {
	err := NewUnsupportedKind("notes.bin", "", nil)
	if err.Message != "notes.bin: file kind could not be determined" {
		t.Errorf("Message = %q", err.Message)
	}

	err = NewUnsupportedKind("a.png", "image", []string{"pdf"})
	if err.Message != `a.png: unsupported file kind "image" (accepted: pdf)` {
		t.Errorf("Message = %q", err.Message)
	}
}

func TestNewIndexOutOfRange_Details(t *testing.T) {
	err := NewIndexOutOfRange(0, 3)
	if err.Details["index"] != 0 {
		t.Errorf("Details[index] = %v, want 0", err.Details["index"])
	}
	if err.Details["count"] != 3 {
		t.Errorf("Details[count] = %v, want 3", err.Details["count"])
	}
}

func TestNewTransformationFailed_KeepsCause(t *testing.T) {
	cause := fmt.Errorf("corrupt xref table")
	err := NewTransformationFailed("merge_pdf", cause)

	if !stderrors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
	if err.Message != "merge_pdf failed: corrupt xref table" {
		t.Errorf("Message = %q", err.Message)
	}
}

func TestNewInternal(t *testing.T) {
	t.Run("with error", func(t *testing.T) {
		err := NewInternal(fmt.Errorf("disk full"))

		if err.Message != "an internal error occurred" {
			t.Errorf("Message = %q, want generic message", err.Message)
		}
		if err.Details["internal_error"] != "disk full" {
			t.Errorf("Details[internal_error] = %v, want %q", err.Details["internal_error"], "disk full")
		}
	})

	t.Run("with nil", func(t *testing.T) {
		err := NewInternal(nil)
		if err.Details == nil {
			t.Error("Details should not be nil")
		}
	})
}

func TestIs(t *testing.T) {
	t.Run("matching code", func(t *testing.T) {
		if !Is(NewUnknownTool("x"), ErrUnknownTool) {
			t.Error("Is() = false, want true")
		}
	})

	t.Run("non-matching code", func(t *testing.T) {
		if Is(NewUnknownTool("x"), ErrDuplicateID) {
			t.Error("Is() = true, want false")
		}
	})

	t.Run("wrapped", func(t *testing.T) {
		err := fmt.Errorf("navigate: %w", NewUnknownTool("x"))
		if !Is(err, ErrUnknownTool) {
			t.Error("Is() on wrapped error = false, want true")
		}
	})

	t.Run("plain error", func(t *testing.T) {
		if Is(fmt.Errorf("plain"), ErrInternal) {
			t.Error("Is() on plain error = true, want false")
		}
	})
}

func TestAs(t *testing.T) {
	if As(fmt.Errorf("plain")) != nil {
		t.Error("As(plain) should be nil")
	}
	mErr := As(fmt.Errorf("wrap: %w", NewInvalidRequest("bad")))
	if mErr == nil || mErr.Code != ErrInvalidRequest {
		t.Errorf("As() = %v, want INVALID_REQUEST", mErr)
	}
}
