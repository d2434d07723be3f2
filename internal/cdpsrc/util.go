package cdpsrc

import (
	"encoding/json"
	"time"

	"github.com/vforsh/argus/internal/util"
)

func unmarshalParams(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, v)
}

func reconnectDelay(attempt int) time.Duration {
	return util.ReconnectDelay(attempt)
}
