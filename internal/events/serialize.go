package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vforsh/argus/internal/cdp"
)

// MaxPreviewChars bounds the length of an event's text as built by
// ConcatText. The per-argument previews carried in an event's args are not
// truncated against it.
const MaxPreviewChars = 4000

// RemoteObject mirrors the CDP Runtime.RemoteObject shape fields the
// serializer inspects.
type RemoteObject struct {
	Type                string          `json:"type"`
	Subtype             string          `json:"subtype,omitempty"`
	ClassName           string          `json:"className,omitempty"`
	Value               json.RawMessage `json:"value,omitempty"`
	UnserializableValue string          `json:"unserializableValue,omitempty"`
	Description         string          `json:"description,omitempty"`
	ObjectID            string          `json:"objectId,omitempty"`
	Preview             *objectPreview  `json:"preview,omitempty"`
}

type objectPreview struct {
	Properties []propertyPreview `json:"properties"`
}

type propertyPreview struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Serializer turns CDP RemoteObjects into the bounded preview values that
// populate LogEvent.Args, per spec.md §4.4.1's fallback chain: literal
// value, then unserializableValue, then preview.properties, then (for
// plain objects with an objectId) Runtime.getProperties bounded to the
// first 50 own properties, then description/subtype/type.
type Serializer struct {
	Session *cdp.Session
}

// SerializeArg returns the preview value for a single console argument.
func (s *Serializer) SerializeArg(ctx context.Context, obj RemoteObject) any {
	if len(obj.Value) > 0 {
		var v any
		if err := json.Unmarshal(obj.Value, &v); err == nil {
			return v
		}
		return string(obj.Value)
	}
	if obj.UnserializableValue != "" {
		return obj.UnserializableValue
	}
	if obj.Preview != nil && len(obj.Preview.Properties) > 0 {
		m := make(map[string]string, len(obj.Preview.Properties))
		for _, p := range obj.Preview.Properties {
			m[p.Name] = p.Value
		}
		return m
	}
	if obj.Type == "object" && obj.ObjectID != "" && s.Session != nil {
		if props, ok := s.getOwnProperties(ctx, obj.ObjectID); ok {
			return props
		}
	}
	if obj.Description != "" {
		return obj.Description
	}
	if obj.Subtype != "" {
		return obj.Subtype
	}
	return obj.Type
}

type getPropertiesResult struct {
	Result []struct {
		Name  string        `json:"name"`
		Value *RemoteObject `json:"value"`
	} `json:"result"`
}

// getOwnProperties calls Runtime.getProperties, bounded to the first 50 own
// properties, no recursion (spec.md §4.4.1).
func (s *Serializer) getOwnProperties(ctx context.Context, objectID string) (map[string]string, bool) {
	raw, err := s.Session.SendAndWait("Runtime.getProperties", map[string]any{
		"objectId":      objectID,
		"ownProperties": true,
	}, cdp.SendOptions{})
	if err != nil {
		return nil, false
	}
	var parsed getPropertiesResult
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, false
	}
	out := make(map[string]string)
	for i, p := range parsed.Result {
		if i >= 50 {
			break
		}
		if p.Value == nil {
			continue
		}
		out[p.Name] = describeValue(*p.Value)
	}
	return out, true
}

func describeValue(obj RemoteObject) string {
	if len(obj.Value) > 0 {
		return string(obj.Value)
	}
	if obj.Description != "" {
		return obj.Description
	}
	return obj.Type
}

// ConcatText coerces each arg's preview to a string and concatenates them
// with a single space, per spec.md §4.4 "text is the concatenation of
// string-coerced args".
func ConcatText(args []any) string {
	out := ""
	for i, a := range args {
		if i > 0 {
			out += " "
		}
		out += coerceString(a)
	}
	return truncate(out, MaxPreviewChars)
}

func coerceString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return "null"
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(b)
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
