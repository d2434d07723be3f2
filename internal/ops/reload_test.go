package ops

import (
	"strings"
	"testing"

	"github.com/vforsh/argus/internal/argerr"
)

func TestReload_NotAttachedReturnsError(t *testing.T) {
	t.Parallel()
	_, err := Reload(nil, "t1", "https://app.test", ReloadRequest{})
	if argerr.KindOf(err) != argerr.KindCDPNotAttached {
		t.Errorf("KindOf(err) = %q, want cdp_not_attached", argerr.KindOf(err))
	}
}

func TestReload_NoParamsJustReloads(t *testing.T) {
	t.Parallel()
	sess := newAttachedSession()
	res, err := Reload(sess, "t1", "https://app.test", ReloadRequest{})
	if err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if res.Reloaded != "t1" || res.URL != "https://app.test" || res.PreviousURL != "https://app.test" {
		t.Errorf("Reload() = %+v, want unchanged URL with target id t1", res)
	}
}

func TestReload_SubstitutesQueryParams(t *testing.T) {
	t.Parallel()
	sess := newAttachedSession()
	res, err := Reload(sess, "t1", "http://127.0.0.1:4000/test?initial=1", ReloadRequest{Params: "foo=bar", Param: []string{"baz=qux"}})
	if err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if res.Reloaded != "t1" {
		t.Errorf("Reloaded = %q, want t1", res.Reloaded)
	}
	if res.PreviousURL != "http://127.0.0.1:4000/test?initial=1" {
		t.Errorf("PreviousURL = %q", res.PreviousURL)
	}
	want := "http://127.0.0.1:4000/test?baz=qux&foo=bar&initial=1"
	if res.URL != want {
		t.Errorf("URL = %q, want %q", res.URL, want)
	}
}

func TestReload_RejectsNonHTTPScheme(t *testing.T) {
	t.Parallel()
	sess := newAttachedSession()
	_, err := Reload(sess, "t1", "about:blank", ReloadRequest{Param: []string{"foo=bar"}})
	if argerr.KindOf(err) != argerr.KindValidation {
		t.Errorf("KindOf(err) = %q, want validation", argerr.KindOf(err))
	}
	if got := err.Error(); !strings.Contains(got, "not http/https") {
		t.Errorf("error message %q does not contain %q", got, "not http/https")
	}
}

func TestReload_MissingEqualsIsValidationError(t *testing.T) {
	t.Parallel()
	sess := newAttachedSession()
	_, err := Reload(sess, "t1", "https://app.test", ReloadRequest{Param: []string{"noequalssign"}})
	if argerr.KindOf(err) != argerr.KindValidation {
		t.Errorf("KindOf(err) = %q, want validation", argerr.KindOf(err))
	}
}

func TestReload_EmptyKeyIsValidationError(t *testing.T) {
	t.Parallel()
	sess := newAttachedSession()
	_, err := Reload(sess, "t1", "https://app.test", ReloadRequest{Param: []string{"=value"}})
	if argerr.KindOf(err) != argerr.KindValidation {
		t.Errorf("KindOf(err) = %q, want validation", argerr.KindOf(err))
	}
}

func TestReload_BulkAmpersandSeparatedParams(t *testing.T) {
	t.Parallel()
	sess := newAttachedSession()
	_, err := Reload(sess, "t1", "https://app.test", ReloadRequest{Params: "a=1&b=2"})
	if err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
}

func TestReload_InvalidCurrentURLIsValidationError(t *testing.T) {
	t.Parallel()
	sess := newAttachedSession()
	_, err := Reload(sess, "t1", "://::not-a-url", ReloadRequest{Param: []string{"a=1"}})
	if argerr.KindOf(err) != argerr.KindValidation {
		t.Errorf("KindOf(err) = %q, want validation", argerr.KindOf(err))
	}
}
