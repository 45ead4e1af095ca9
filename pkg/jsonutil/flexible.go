// Package jsonutil holds JSON helpers shared by the stores and provider clients.
package jsonutil

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// FlexibleStringValue decodes a JSON value that should be a string but may
// arrive as a number or boolean from a model provider. null and empty input
// yield "". Objects and arrays are returned as their raw JSON text.
func FlexibleStringValue(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}

	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return strconv.FormatBool(b)
	}

	return string(raw)
}
