package hashing_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/hasbyte1/go-argon2/hashing"
)

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{0, "OK"},
		{-2, "output is too short"},
		{-6, "salt is too short"},
		{-14, "memory cost is too small"},
		{-22, "memory allocation failed"},
		{-26, "there is no such type or version of Argon2"},
		{-32, "decoding failed"},
		{-35, "the password does not match the supplied hash"},
		{-1, "unknown error code"},
		{1, "unknown error code"},
		{-1000, "unknown error code"},
	}
	for _, tt := range tests {
		if got := hashing.ErrorMessage(tt.code); got != tt.want {
			t.Errorf("ErrorMessage(%d) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestErrorCode_Kind(t *testing.T) {
	tests := []struct {
		code hashing.ErrorCode
		want hashing.Kind
	}{
		{hashing.ErrOutputTooShort, hashing.ErrValidation},
		{hashing.ErrOutputTooLong, hashing.ErrValidation},
		{hashing.ErrPwdTooLong, hashing.ErrValidation},
		{hashing.ErrSaltTooShort, hashing.ErrValidation},
		{hashing.ErrSaltTooLong, hashing.ErrValidation},
		{hashing.ErrSecretTooLong, hashing.ErrValidation},
		{hashing.ErrTimeTooSmall, hashing.ErrValidation},
		{hashing.ErrTimeTooLarge, hashing.ErrValidation},
		{hashing.ErrMemoryTooLittle, hashing.ErrValidation},
		{hashing.ErrMemoryTooMuch, hashing.ErrValidation},
		{hashing.ErrThreadsTooFew, hashing.ErrValidation},
		{hashing.ErrThreadsTooMany, hashing.ErrValidation},
		{hashing.ErrMemoryAllocation, hashing.ErrResource},
		{hashing.ErrDecodingFail, hashing.ErrDecoding},
		{hashing.ErrIncorrectType, hashing.ErrDecoding},
		{hashing.ErrDecodingLengthFail, hashing.ErrDecoding},
		{hashing.ErrVerifyMismatch, hashing.ErrMismatch},
		{hashing.ErrIncorrectParameter, hashing.ErrInternal},
		{hashing.ErrEncodingFail, hashing.ErrInternal},
		{hashing.ErrThreadFail, hashing.ErrInternal},
		{hashing.ErrorCode(-99), hashing.ErrInternal},
	}
	for _, tt := range tests {
		if got := tt.code.Kind(); got != tt.want {
			t.Errorf("%d.Kind() = %v, want %v", tt.code, got, tt.want)
		}
		wrapped := fmt.Errorf("%w: context", tt.code)
		if !errors.Is(wrapped, tt.want) {
			t.Errorf("errors.Is(%v, %v) = false", wrapped, tt.want)
		}
	}
	if hashing.OK.Kind() != 0 {
		t.Errorf("OK.Kind() = %v, want 0", hashing.OK.Kind())
	}
}

func TestErrorCode_Error(t *testing.T) {
	if got := hashing.ErrMemoryTooLittle.Error(); got != "argon2: memory cost is too small" {
		t.Errorf("Error() = %q", got)
	}
	if got := hashing.ErrorCode(-4).Error(); got != "argon2: unknown error code -4" {
		t.Errorf("Error() = %q", got)
	}
}

func TestErrorCode_DistinctSentinels(t *testing.T) {
	if errors.Is(hashing.ErrSaltTooShort, hashing.ErrSaltTooLong) {
		t.Error("distinct codes must not match each other")
	}
	if errors.Is(hashing.ErrDecodingFail, hashing.ErrValidation) {
		t.Error("decoding code matched the validation kind")
	}
}

func TestCodeOf(t *testing.T) {
	if got := hashing.CodeOf(nil); got != hashing.OK {
		t.Errorf("CodeOf(nil) = %d", got)
	}
	if got := hashing.CodeOf(fmt.Errorf("outer: %w", hashing.ErrTimeTooSmall)); got != hashing.ErrTimeTooSmall {
		t.Errorf("CodeOf(wrapped) = %d", got)
	}
	if got := hashing.CodeOf(errors.New("plain")); got != hashing.ErrThreadFail {
		t.Errorf("CodeOf(plain) = %d", got)
	}
}
