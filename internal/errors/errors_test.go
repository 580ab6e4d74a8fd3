package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestBenchError_Error(t *testing.T) {
	err := New(ErrCategoryWrite, CodeInsertFailed, "insert failed")
	expected := "[WRITE:INSERT_FAILED] insert failed"
	if err.Error() != expected {
		t.Errorf("got %q, want %q", err.Error(), expected)
	}
}

func TestBenchError_ErrorWithCause(t *testing.T) {
	cause := fmt.Errorf("UNIQUE constraint failed: users.id")
	err := NewWriteError(CodeInsertFailed, "insert failed", cause)
	expected := "[WRITE:INSERT_FAILED] insert failed: UNIQUE constraint failed: users.id"
	if err.Error() != expected {
		t.Errorf("got %q, want %q", err.Error(), expected)
	}
}

func TestBenchError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := NewTransactionError("rolled back", cause)
	if !errors.Is(err, cause) {
		t.Error("Unwrap should allow errors.Is to find the cause")
	}
}

func TestBenchError_Is(t *testing.T) {
	err1 := New(ErrCategoryWrite, CodeUpdateFailed, "first")
	err2 := New(ErrCategoryWrite, CodeUpdateFailed, "second")
	err3 := New(ErrCategoryWrite, CodeInsertFailed, "different code")

	if !errors.Is(err1, err2) {
		t.Error("errors with same category+code should match via Is")
	}
	if errors.Is(err1, err3) {
		t.Error("errors with different codes should not match via Is")
	}

	wrapped := fmt.Errorf("sync: %w", err1)
	if !errors.Is(wrapped, New(ErrCategoryWrite, CodeUpdateFailed, "")) {
		t.Error("Is should see through fmt wrapping")
	}
}

func TestIsFatal(t *testing.T) {
	tests := []struct {
		err   error
		fatal bool
	}{
		{nil, false},
		{NewConnectionError(CodeOpenFailed, "open", nil), true},
		{NewWriteError(CodeReplaceFailed, "replace", nil), false},
		{NewTransactionError("tx", nil), false},
		{NewValidationError(CodeInvalidCase, "bad case"), true},
		{fmt.Errorf("plain error"), true},
	}

	for _, tt := range tests {
		if got := IsFatal(tt.err); got != tt.fatal {
			t.Errorf("IsFatal(%v) = %v, want %v", tt.err, got, tt.fatal)
		}
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(NewReportError(CodeReportPublishFailed, "upload", nil)) {
		t.Error("report publish failures should be retryable")
	}
	if IsRetryable(NewWriteError(CodeInsertFailed, "insert", nil)) {
		t.Error("store writes must not be retryable")
	}
	if IsRetryable(fmt.Errorf("plain")) {
		t.Error("non-BenchError should not be retryable")
	}
}

func TestGetCategoryCodeAndDetail(t *testing.T) {
	err := NewTransactionError("aborted", nil).WithDetails(map[string]interface{}{"unsynced": 4})
	wrapped := fmt.Errorf("outer: %w", err)

	if cat := GetCategory(wrapped); cat != ErrCategoryTransaction {
		t.Errorf("expected TRANSACTION, got %q", cat)
	}
	if code := GetCode(wrapped); code != CodeTxAborted {
		t.Errorf("expected TX_ABORTED, got %q", code)
	}
	v, ok := GetDetail(wrapped, "unsynced")
	if !ok || v.(int) != 4 {
		t.Errorf("expected unsynced detail 4, got %v (%v)", v, ok)
	}
	if _, ok := GetDetail(fmt.Errorf("plain"), "unsynced"); ok {
		t.Error("plain error should carry no details")
	}
	if GetCategory(fmt.Errorf("plain")) != "" || GetCode(fmt.Errorf("plain")) != "" {
		t.Error("plain error should have no category or code")
	}
}
