package gateway

import (
	"bytes"
	"encoding/json"
)

// maxEnvelopeDepth covers {data:{data:X}}, the deepest wrapping the backend
// produces.
const maxEnvelopeDepth = 2

// Unwrap strips response envelopes. {data:{data:X}}, {data:X} and X all
// yield X. An object counts as an envelope when it has "data" and no "id",
// so entities with a data field are left alone while envelope metadata such
// as pagination or timestamps is ignored.
func Unwrap(raw json.RawMessage) json.RawMessage {
	current := json.RawMessage(bytes.TrimSpace(raw))
	for depth := 0; depth < maxEnvelopeDepth; depth++ {
		inner, ok := envelopePayload(current)
		if !ok {
			break
		}
		current = inner
	}
	return current
}

// UnwrapList is Unwrap for collections that may also arrive keyed, such as
// {data:{users:[...]}}. The first key in keys that holds an array at any
// envelope level wins.
func UnwrapList(raw json.RawMessage, keys ...string) json.RawMessage {
	current := json.RawMessage(bytes.TrimSpace(raw))
	for depth := 0; depth <= maxEnvelopeDepth; depth++ {
		if list, ok := keyedArray(current, keys); ok {
			return list
		}
		inner, ok := envelopePayload(current)
		if !ok {
			break
		}
		current = inner
	}
	return current
}

func envelopePayload(raw json.RawMessage) (json.RawMessage, bool) {
	fields, ok := objectFields(raw)
	if !ok {
		return nil, false
	}
	data, ok := fields["data"]
	if !ok {
		return nil, false
	}
	if _, entity := fields["id"]; entity {
		return nil, false
	}
	return json.RawMessage(bytes.TrimSpace(data)), true
}

func keyedArray(raw json.RawMessage, keys []string) (json.RawMessage, bool) {
	if len(keys) == 0 {
		return nil, false
	}
	fields, ok := objectFields(raw)
	if !ok {
		return nil, false
	}
	for _, key := range keys {
		value, ok := fields[key]
		if !ok {
			continue
		}
		trimmed := bytes.TrimSpace(value)
		if len(trimmed) > 0 && trimmed[0] == '[' {
			return json.RawMessage(trimmed), true
		}
	}
	return nil, false
}

func objectFields(raw json.RawMessage) (map[string]json.RawMessage, bool) {
	if len(raw) == 0 || raw[0] != '{' {
		return nil, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, false
	}
	return fields, true
}
