package dto

import (
	"encoding/json"
	"strings"
)

// NumericInput holds an amount exactly as the client typed it. It accepts both
// JSON numbers and strings so that parsing (and the fallback rules around it)
// stay in the service layer.
type NumericInput string

// UnmarshalJSON implements json.Unmarshaler
func (n *NumericInput) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*n = ""
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = NumericInput(s)
		return nil
	}
	*n = NumericInput(raw)
	return nil
}

// String returns the raw input
func (n NumericInput) String() string {
	return string(n)
}
