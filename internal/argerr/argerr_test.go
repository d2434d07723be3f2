package argerr

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_ErrorString_WithCause(t *testing.T) {
	t.Parallel()
	e := Wrap(KindTransport, errors.New("boom"), "dial %s", "host")
	if got, want := e.Error(), "transport: dial host: boom"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestError_ErrorString_NoCause(t *testing.T) {
	t.Parallel()
	e := New(KindValidation, "bad input")
	if got, want := e.Error(), "validation: bad input"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestError_Unwrap(t *testing.T) {
	t.Parallel()
	cause := errors.New("root cause")
	e := Wrap(KindInternal, cause, "context")
	if !errors.Is(e, cause) {
		t.Error("expected errors.Is to find the wrapped cause")
	}
}

func TestKindOf_DirectError(t *testing.T) {
	t.Parallel()
	e := New(KindCDPTimeout, "timed out")
	if got := KindOf(e); got != KindCDPTimeout {
		t.Errorf("KindOf() = %q, want %q", got, KindCDPTimeout)
	}
}

func TestKindOf_WrappedError(t *testing.T) {
	t.Parallel()
	e := New(KindCDPTimeout, "timed out")
	wrapped := fmt.Errorf("outer: %w", e)
	if got := KindOf(wrapped); got != KindCDPTimeout {
		t.Errorf("KindOf() = %q, want %q", got, KindCDPTimeout)
	}
}

func TestKindOf_PlainError(t *testing.T) {
	t.Parallel()
	if got := KindOf(errors.New("plain")); got != KindInternal {
		t.Errorf("KindOf() = %q, want %q", got, KindInternal)
	}
}

func TestKindOf_Nil(t *testing.T) {
	t.Parallel()
	if got := KindOf(nil); got != KindInternal {
		t.Errorf("KindOf(nil) = %q, want %q", got, KindInternal)
	}
}

func TestHTTPStatus(t *testing.T) {
	t.Parallel()
	cases := []struct {
		kind Kind
		want int
	}{
		{KindValidation, 400},
		{KindMultipleMatches, 400},
		{KindNotInteractable, 400},
		{KindOriginMismatch, 400},
		{KindCDPNotAttached, 409},
		{KindNotFound, 404},
		{KindCDPRequestFailed, 500},
		{KindCDPTimeout, 500},
		{KindTransport, 500},
		{KindRegistryLock, 500},
		{KindRegistryCorrupt, 500},
		{KindInternal, 500},
	}
	for _, c := range cases {
		if got := HTTPStatus(c.kind); got != c.want {
			t.Errorf("HTTPStatus(%s) = %d, want %d", c.kind, got, c.want)
		}
	}
}

func TestExitCode(t *testing.T) {
	t.Parallel()
	cases := []struct {
		kind Kind
		want int
	}{
		{KindValidation, 2},
		{KindMultipleMatches, 2},
		{KindNotFound, 2},
		{KindTransport, 1},
		{KindInternal, 1},
	}
	for _, c := range cases {
		if got := ExitCode(c.kind); got != c.want {
			t.Errorf("ExitCode(%s) = %d, want %d", c.kind, got, c.want)
		}
	}
}
