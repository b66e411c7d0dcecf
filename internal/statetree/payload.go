package statetree

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"time"
)

// payload is the JSON body of a state message.
type payload struct {
	Val any   `json:"val"`
	Ack bool  `json:"ack"`
	Ts  int64 `json:"ts"`
}

// EncodePayload serializes a state. Non-finite floats are sent as strings
// ("NaN", "Infinity", "-Infinity") since JSON has no literal for them.
func EncodePayload(st State) ([]byte, error) {
	return json.Marshal(payload{
		Val: jsonSafe(st.Val),
		Ack: st.Ack,
		Ts:  st.Ts.UnixMilli(),
	})
}

// DecodePayload parses a state message. Bodies that are not a state object
// are taken as a raw user value with ack=false.
func DecodePayload(data []byte) State {
	trimmed := bytes.TrimSpace(data)

	if len(trimmed) > 0 && trimmed[0] == '{' {
		var raw struct {
			Val *json.RawMessage `json:"val"`
			Ack bool             `json:"ack"`
			Ts  int64            `json:"ts"`
		}
		if err := json.Unmarshal(trimmed, &raw); err == nil && raw.Val != nil {
			st := State{Ack: raw.Ack}
			if raw.Ts > 0 {
				st.Ts = time.UnixMilli(raw.Ts)
			}
			var v any
			if err := json.Unmarshal(*raw.Val, &v); err == nil {
				st.Val = v
			}
			return st
		}
	}

	var v any
	if err := json.Unmarshal(trimmed, &v); err == nil {
		return State{Val: v}
	}
	return State{Val: strings.TrimSpace(string(data))}
}

func jsonSafe(v any) any {
	f, ok := v.(float64)
	if !ok {
		return v
	}
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return f
}

// Topic converts a state id to an MQTT topic under prefix.
func Topic(prefix, id string) string {
	t := strings.ReplaceAll(id, ".", "/")
	if prefix == "" {
		return t
	}
	return strings.TrimRight(prefix, "/") + "/" + t
}

// ID converts an MQTT topic under prefix back to a state id.
// It returns false when the topic is outside prefix.
func ID(prefix, topic string) (string, bool) {
	if prefix != "" {
		p := strings.TrimRight(prefix, "/") + "/"
		if !strings.HasPrefix(topic, p) {
			return "", false
		}
		topic = strings.TrimPrefix(topic, p)
	}
	if topic == "" {
		return "", false
	}
	return strings.ReplaceAll(topic, "/", "."), true
}
