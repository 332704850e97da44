package api

import (
	"encoding/json"
	"strconv"
)

func jsonUnmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// idString normalizes a JSON id field to its decimal string form. Numbers
// keep their integer rendering; anything else is passed through for the
// guard's syntactic validation to reject.
func idString(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		if id != float64(int64(id)) {
			// Fractional ids fail the guard's integer check downstream.
			return strconv.FormatFloat(id, 'f', -1, 64)
		}
		return strconv.FormatInt(int64(id), 10)
	case json.Number:
		return id.String()
	case nil:
		return ""
	default:
		return ""
	}
}
