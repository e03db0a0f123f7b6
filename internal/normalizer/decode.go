package normalizer

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// envelope is the upstream healthcheck response.
type envelope struct {
	URL       flexString `json:"url"`
	CheckedAt flexString `json:"checkedAt"`
	Result    struct {
		Summary struct {
			OK      bool   `json:"ok"`
			Message string `json:"message"`
		} `json:"summary"`
		Details    map[string]json.RawMessage `json:"details"`
		DurationMs float64                    `json:"durationMs"`
	} `json:"result"`
}

// checkDetail is one entry of result.details.
type checkDetail struct {
	OK    truthy          `json:"ok"`
	Meta  json.RawMessage `json:"meta"`
	Error json.RawMessage `json:"error"`
}

// flexString accepts a JSON string, number or null.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(string(b))
	return nil
}

// truthy decodes loosely typed flags: true, non-zero numbers and non-empty
// strings other than "0"/"false" are true.
type truthy bool

func (t *truthy) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0, bytes.Equal(b, []byte("null")), bytes.Equal(b, []byte("false")):
		*t = false
	case bytes.Equal(b, []byte("true")):
		*t = true
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(strings.ToLower(s))
		*t = truthy(s != "" && s != "0" && s != "false")
	case b[0] == '{' || b[0] == '[':
		*t = truthy(len(b) > 2)
	default:
		n, err := strconv.ParseFloat(string(b), 64)
		if err != nil {
			return err
		}
		*t = truthy(n != 0)
	}
	return nil
}

// decodeMeta fills v from raw; absent or null meta leaves v at its zero value.
func decodeMeta(raw json.RawMessage, v any) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	return json.Unmarshal(raw, v)
}

// errorText returns the upstream error message, or "" when there is none.
func errorText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) || bytes.Equal(raw, []byte("false")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Message != "" {
		return obj.Message
	}
	return string(raw)
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
