package ops

import (
	"testing"

	"github.com/vforsh/argus/internal/argerr"
)

func TestStorageLocal_UnknownActionIsValidationError(t *testing.T) {
	t.Parallel()
	sess := sessionWithEvalResult(`null`)
	_, err := StorageLocal(sess, "https://app.test", StorageLocalRequest{Action: "bogus"})
	if argerr.KindOf(err) != argerr.KindValidation {
		t.Errorf("KindOf(err) = %q, want validation", argerr.KindOf(err))
	}
}

func TestStorageLocal_OriginMismatchRejected(t *testing.T) {
	t.Parallel()
	sess := sessionWithEvalResult(`null`)
	_, err := StorageLocal(sess, "https://app.test", StorageLocalRequest{Action: "get", Key: "k", Origin: "https://evil.test"})
	if argerr.KindOf(err) != argerr.KindOriginMismatch {
		t.Errorf("KindOf(err) = %q, want origin_mismatch", argerr.KindOf(err))
	}
}

func TestStorageLocal_MatchingOriginAllowed(t *testing.T) {
	t.Parallel()
	sess := sessionWithEvalResult(`"value"`)
	raw, err := StorageLocal(sess, "https://app.test/path", StorageLocalRequest{Action: "get", Key: "k", Origin: "https://app.test"})
	if err != nil {
		t.Fatalf("StorageLocal() error = %v", err)
	}
	if string(raw) != `"value"` {
		t.Errorf("raw = %s, want %q", raw, `"value"`)
	}
}

func TestStorageLocal_ListAction(t *testing.T) {
	t.Parallel()
	sess := sessionWithEvalResult(`["zebra","apple","mango"]`)
	raw, err := StorageLocal(sess, "https://app.test", StorageLocalRequest{Action: "list"})
	if err != nil {
		t.Fatalf("StorageLocal() error = %v", err)
	}
	if string(raw) != `["zebra","apple","mango"]` {
		t.Errorf("raw = %s, want the unsorted key array (sorting happens in the HTTP handler)", raw)
	}
}
