package ops

import (
	"testing"

	"github.com/vforsh/argus/internal/argerr"
)

func TestSetFile_RejectsAllTrue(t *testing.T) {
	t.Parallel()
	err := SetFile(nil, DOMRequest{Selector: Selector{CSS: "input", All: true}})
	if argerr.KindOf(err) != argerr.KindValidation {
		t.Errorf("KindOf(err) = %q, want validation", argerr.KindOf(err))
	}
}

func TestSetFile_MultipleMatchesWhenObjectIDMissing(t *testing.T) {
	t.Parallel()
	sess := sessionWithEvalResult(`null`)
	err := SetFile(sess, DOMRequest{Selector: Selector{CSS: "input"}, Files: []string{"/tmp/a.txt"}})
	if argerr.KindOf(err) != argerr.KindMultipleMatches {
		t.Errorf("KindOf(err) = %q, want multiple_matches", argerr.KindOf(err))
	}
}
