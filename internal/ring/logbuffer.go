package ring

import (
	"regexp"
	"strings"

	"github.com/vforsh/argus/internal/model"
)

// LogFilter selects LogEvents per spec.md §4.5: all configured constraints
// must pass (AND between levels, source and sinceTs), while the match
// regexes are OR'd against each other.
type LogFilter struct {
	Levels  map[model.Level]bool
	Match   []*regexp.Regexp
	Source  string
	SinceTs int64
	// CaseInsensitive folds the Source substring check; Match regexes are
	// expected to already carry an "(?i)" prefix when this is set (the
	// caller compiles them, since Go regexes bake case sensitivity in at
	// compile time).
	CaseInsensitive bool
}

// Compile builds the func(model.LogEvent) bool predicate ring.Buffer
// expects from a LogFilter. A nil or zero-valued LogFilter matches
// everything.
func (f LogFilter) Compile() func(model.LogEvent) bool {
	return func(e model.LogEvent) bool {
		if len(f.Levels) > 0 && !f.Levels[e.Level] {
			return false
		}
		if f.SinceTs > 0 && e.Ts < f.SinceTs {
			return false
		}
		if f.Source != "" {
			if f.CaseInsensitive {
				if !strings.Contains(strings.ToLower(e.Source), strings.ToLower(f.Source)) {
					return false
				}
			} else if !strings.Contains(e.Source, f.Source) {
				return false
			}
		}
		if len(f.Match) > 0 {
			matched := false
			for _, re := range f.Match {
				if re.MatchString(e.Text) {
					matched = true
					break
				}
			}
			if !matched {
				return false
			}
		}
		return true
	}
}

// LogBuffer is a ring.Buffer specialized for LogEvents.
type LogBuffer struct {
	*Buffer[model.LogEvent]
}

// NewLogBuffer returns a LogBuffer with the given capacity (DefaultCapacity
// if cap<=0).
func NewLogBuffer(capacity int) *LogBuffer {
	return &LogBuffer{Buffer: New[model.LogEvent](capacity)}
}

func (b *LogBuffer) ListAfter(afterID int64, filter LogFilter, limit int) ([]model.LogEvent, int64) {
	return b.Buffer.ListAfter(afterID, filter.Compile(), limit)
}

func (b *LogBuffer) WaitForAfter(afterID int64, filter LogFilter, limit int, timeoutMs int) ([]model.LogEvent, int64, bool) {
	return b.Buffer.WaitForAfter(afterID, filter.Compile(), limit, timeoutMs)
}
