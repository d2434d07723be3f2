package ops

import (
	"testing"

	"github.com/vforsh/argus/internal/argerr"
)

func TestSnapshot_NotAttachedReturnsError(t *testing.T) {
	t.Parallel()
	_, err := Snapshot(nil)
	if argerr.KindOf(err) != argerr.KindCDPNotAttached {
		t.Errorf("KindOf(err) = %q, want cdp_not_attached", argerr.KindOf(err))
	}
}

func TestSnapshot_ReturnsRawTree(t *testing.T) {
	t.Parallel()
	sess := sessionWithResult(`{"nodes":[]}`)
	raw, err := Snapshot(sess)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if string(raw) != `{"nodes":[]}` {
		t.Errorf("Snapshot() = %s", raw)
	}
}
