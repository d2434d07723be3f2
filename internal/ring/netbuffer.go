package ring

import (
	"strings"

	"github.com/vforsh/argus/internal/model"
)

// NetFilter selects NetworkRequestSummaries per spec.md §4.5: a lower-bound
// timestamp and a substring match over the (already redacted) URL.
type NetFilter struct {
	SinceTs   int64
	URLSubstr string
}

func (f NetFilter) Compile() func(model.NetworkRequestSummary) bool {
	return func(n model.NetworkRequestSummary) bool {
		if f.SinceTs > 0 && n.Ts < f.SinceTs {
			return false
		}
		if f.URLSubstr != "" && !strings.Contains(n.URL, f.URLSubstr) {
			return false
		}
		return true
	}
}

// NetBuffer is a ring.Buffer specialized for NetworkRequestSummaries.
type NetBuffer struct {
	*Buffer[model.NetworkRequestSummary]
}

func NewNetBuffer(capacity int) *NetBuffer {
	return &NetBuffer{Buffer: New[model.NetworkRequestSummary](capacity)}
}

func (b *NetBuffer) ListAfter(afterID int64, filter NetFilter, limit int) ([]model.NetworkRequestSummary, int64) {
	return b.Buffer.ListAfter(afterID, filter.Compile(), limit)
}

func (b *NetBuffer) WaitForAfter(afterID int64, filter NetFilter, limit int, timeoutMs int) ([]model.NetworkRequestSummary, int64, bool) {
	return b.Buffer.WaitForAfter(afterID, filter.Compile(), limit, timeoutMs)
}
