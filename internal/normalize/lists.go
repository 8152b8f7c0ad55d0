package normalize

import (
	"encoding/json"
	"strings"
)

// EncodeList serialises a list column as a JSON array.
func EncodeList(items []string) string {
	if items == nil {
		items = []string{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		// []string always marshals
		return "[]"
	}
	return string(b)
}

// DecodeList turns a stored list column back into its elements.
//
// JSON arrays are tried first. Anything else goes through the legacy
// string decoding so older cache files keep working: strip backslashes,
// strip one layer of surrounding quotes, strip surrounding brackets, split
// on ", ", then strip residual quotes from each element.
// Empty input and the Unknown sentinel decode to an empty list.
func DecodeList(raw string) []string {
	s := strings.TrimSpace(raw)
	if s == "" || s == Unknown {
		return []string{}
	}

	if strings.HasPrefix(s, "[") {
		var items []string
		if err := json.Unmarshal([]byte(s), &items); err == nil {
			if items == nil {
				items = []string{}
			}
			return items
		}
	}

	return decodeLegacyList(s)
}

func decodeLegacyList(s string) []string {
	s = strings.ReplaceAll(s, `\`, "")
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	s = strings.TrimLeft(s, "[")
	s = strings.TrimRight(s, "]")
	if strings.TrimSpace(s) == "" {
		return []string{}
	}

	parts := strings.Split(s, ", ")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		items = append(items, strings.Trim(p, `"`))
	}
	return items
}
