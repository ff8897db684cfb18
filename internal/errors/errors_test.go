package errors

import (
	"fmt"
	"strings"
	"testing"
)

func TestErrorCreation(t *testing.T) {
	err := E(Op("test.operation"), KindLoadDatabase, "something failed")

	if err.Op != "test.operation" {
		t.Errorf("expected Op 'test.operation', got %q", err.Op)
	}
	if err.Kind != KindLoadDatabase {
		t.Errorf("expected Kind KindLoadDatabase, got %v", err.Kind)
	}
	if err.Msg != "something failed" {
		t.Errorf("expected Msg 'something failed', got %q", err.Msg)
	}
}

func TestErrorWithWrappedError(t *testing.T) {
	underlying := fmt.Errorf("disk full")
	err := E(Op("partition.save"), KindSaveDatabase, underlying, "failed to write")

	if err.Err != underlying {
		t.Error("expected underlying error to be set")
	}

	errStr := err.Error()
	if !strings.Contains(errStr, "partition.save") {
		t.Errorf("error string should contain operation, got %q", errStr)
	}
	if !strings.Contains(errStr, "failed to write") {
		t.Errorf("error string should contain message, got %q", errStr)
	}
	if !strings.Contains(errStr, "disk full") {
		t.Errorf("error string should contain underlying error, got %q", errStr)
	}
}

func TestErrorUnwrap(t *testing.T) {
	underlying := fmt.Errorf("root cause")
	err := E(Op("test"), underlying)

	unwrapped := err.Unwrap()
	if unwrapped != underlying {
		t.Error("Unwrap should return the underlying error")
	}
}

func TestErrorStringFormats(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "op only",
			err:      &Error{Op: "test"},
			expected: "test: ",
		},
		{
			name:     "msg only",
			err:      &Error{Msg: "failed"},
			expected: "failed",
		},
		{
			name:     "err only",
			err:      &Error{Err: fmt.Errorf("root")},
			expected: "root",
		},
		{
			name:     "op and msg",
			err:      &Error{Op: "test", Msg: "failed"},
			expected: "test: failed",
		},
		{
			name:     "all fields",
			err:      &Error{Op: "test", Msg: "failed", Err: fmt.Errorf("root")},
			expected: "test: failed: root",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			if got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind     Kind
		expected string
	}{
		{KindUnknown, "unknown"},
		{KindBadRequest, "BadRequest"},
		{KindQueryCompilation, "QueryCompilationException"},
		{KindLoadDatabase, "LoadDatabaseException"},
		{KindSaveDatabase, "SaveDatabaseException"},
		{KindPreprocessing, "PreprocessingException"},
		{KindDuplicatePrimaryKey, "DuplicatePrimaryKeyException"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			got := tt.kind.String()
			if got != tt.expected {
				t.Errorf("Kind.String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestBadRequest(t *testing.T) {
	err := BadRequest("filter.compile", "position 500 out of range")
	if err.Kind != KindBadRequest {
		t.Errorf("expected KindBadRequest, got %v", err.Kind)
	}
	if !strings.Contains(err.Error(), "position 500 out of range") {
		t.Errorf("expected message in error string, got %q", err.Error())
	}
}

func TestDuplicatePrimaryKey(t *testing.T) {
	err := DuplicatePrimaryKey("table.validate", "id_3")
	if err.Kind != KindDuplicatePrimaryKey {
		t.Errorf("expected KindDuplicatePrimaryKey, got %v", err.Kind)
	}
	if !strings.Contains(err.Error(), "id_3") {
		t.Errorf("expected key in error string, got %q", err.Error())
	}
}

func TestWrap(t *testing.T) {
	// Wrap nil error
	wrapped := Wrap("test", nil)
	if wrapped != nil {
		t.Error("Wrap(nil) should return nil")
	}

	// Wrap non-nil error
	underlying := fmt.Errorf("test error")
	wrapped = Wrap("partition.load", underlying)
	if wrapped == nil {
		t.Fatal("Wrap should return non-nil for non-nil error")
	}

	appErr, ok := wrapped.(*Error)
	if !ok {
		t.Fatal("Wrap should return *Error")
	}
	if appErr.Op != "partition.load" {
		t.Errorf("expected Op 'partition.load', got %q", appErr.Op)
	}
}

func TestWrapKind(t *testing.T) {
	// Wrap nil error
	wrapped := WrapKind("test", KindLoadDatabase, "msg", nil)
	if wrapped != nil {
		t.Error("WrapKind(nil) should return nil")
	}

	// Wrap non-nil error
	underlying := fmt.Errorf("test error")
	wrapped = WrapKind("partition.load", KindLoadDatabase, "load failed", underlying)
	if wrapped == nil {
		t.Fatal("WrapKind should return non-nil for non-nil error")
	}

	errStr := wrapped.Error()
	if !strings.Contains(errStr, "load failed") {
		t.Errorf("error should contain message, got %q", errStr)
	}
	if GetKind(wrapped) != KindLoadDatabase {
		t.Errorf("expected KindLoadDatabase, got %v", GetKind(wrapped))
	}
}

func TestIsKind(t *testing.T) {
	err := E(KindLoadDatabase, "test")
	if !IsKind(err, KindLoadDatabase) {
		t.Error("expected IsKind to return true for matching kind")
	}
	if IsKind(err, KindSaveDatabase) {
		t.Error("expected IsKind to return false for non-matching kind")
	}

	// Non-Error type
	stdErr := fmt.Errorf("standard error")
	if IsKind(stdErr, KindLoadDatabase) {
		t.Error("expected IsKind to return false for non-Error type")
	}
}

func TestGetKind(t *testing.T) {
	err := E(KindQueryCompilation, "test")
	kind := GetKind(err)
	if kind != KindQueryCompilation {
		t.Errorf("expected KindQueryCompilation, got %v", kind)
	}

	// Non-Error type
	stdErr := fmt.Errorf("standard error")
	kind = GetKind(stdErr)
	if kind != KindUnknown {
		t.Errorf("expected KindUnknown for non-Error, got %v", kind)
	}
}

func TestLogAndContinue(t *testing.T) {
	// Should not panic
	LogAndContinue("test operation", fmt.Errorf("test error"))
}

func TestMustHandle(t *testing.T) {
	// nil error - should not panic
	MustHandle(nil)

	// Non-nil error - should panic
	defer func() {
		if r := recover(); r == nil {
			t.Error("MustHandle should panic on non-nil error")
		}
	}()
	MustHandle(fmt.Errorf("fatal error"))
}

func TestMust(t *testing.T) {
	// Success case
	result := Must(42, nil)
	if result != 42 {
		t.Errorf("Must should return value, got %d", result)
	}

	// Error case - should panic
	defer func() {
		if r := recover(); r == nil {
			t.Error("Must should panic on error")
		}
	}()
	Must(0, fmt.Errorf("error"))
}

func TestIgnoreError(t *testing.T) {
	// Should not panic for nil error
	IgnoreError(nil, "test")

	// Should not panic for non-nil error
	IgnoreError(fmt.Errorf("test"), "test reason")
}
