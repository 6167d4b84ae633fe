package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// ID identifies a record. The memory backend issues decimal strings, the
// persistent backends UUIDs.
type ID string

// UnmarshalJSON accepts a JSON string or a JSON number, so that clients
// sending numeric identifiers (including 0) are treated as having supplied
// the field.
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if string(b) == "null" {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("catalog: identifier must be a string or number, got %s", b)
	}
	*id = numericID(f)
	return nil
}

// numericID renders a JSON number the way it compares as a number, so 1,
// 1.0 and 1e0 all name record "1".
func numericID(f float64) ID {
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return ID(strconv.FormatInt(int64(f), 10))
	}
	return ID(strconv.FormatFloat(f, 'f', -1, 64))
}

func (id ID) String() string { return string(id) }
