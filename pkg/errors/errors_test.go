package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	err := New(ErrCodeMissingFromLock, "requests>=2.20 is missing from lock file")
	want := "MISSING_FROM_LOCK: requests>=2.20 is missing from lock file"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("open pyproject.toml: no such file")
	err := Wrap(ErrCodeInvalidManifest, cause, "load manifest")

	if !stderrors.Is(err, cause) {
		t.Error("wrapped error should match cause via errors.Is")
	}
	if got := err.Error(); got != "INVALID_MANIFEST: load manifest: open pyproject.toml: no such file" {
		t.Errorf("unexpected message: %q", got)
	}
}

func TestIsMatchesCode(t *testing.T) {
	err := New(ErrCodeVersionMismatch, "boom")

	if !Is(err, ErrCodeVersionMismatch) {
		t.Error("Is should match the error's own code")
	}
	if Is(err, ErrCodeMissingFromLock) {
		t.Error("Is should not match a different code")
	}
	if Is(stderrors.New("plain"), ErrCodeVersionMismatch) {
		t.Error("Is should not match plain errors")
	}
}

func TestIsThroughWrapping(t *testing.T) {
	inner := New(ErrCodeMalformedRequirement, "cannot parse \"!!\"")
	outer := fmt.Errorf("extra 'test': %w", inner)

	if !Is(outer, ErrCodeMalformedRequirement) {
		t.Error("Is should unwrap fmt.Errorf chains")
	}
	if GetCode(outer) != ErrCodeMalformedRequirement {
		t.Errorf("GetCode = %q, want %q", GetCode(outer), ErrCodeMalformedRequirement)
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"structured", New(ErrCodeUnknownExtra, "extra 'dev' is not defined"), "extra 'dev' is not defined"},
		{"plain", stderrors.New("plain failure"), "plain failure"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage = %q, want %q", got, tt.want)
			}
		})
	}
}
