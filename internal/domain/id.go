package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ID is an identifier issued by the API. The backend emits numeric ids in
// some deployments and string ids in others; both decode into an ID.
type ID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	switch {
	case bytes.Equal(data, []byte("null")):
		*id = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("unmarshal id: %w", err)
		}

		*id = ID(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("unmarshal id: %w", err)
		}

		*id = ID(n.String())
	}

	return nil
}

func (id ID) String() string {
	return string(id)
}
