package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Metadata is an opaque string-keyed map attached to billing entities. It is
// stored as a JSON text column; the domain contract is only that the map
// survives a round-trip.
type Metadata map[string]string

// Value implements driver.Valuer.
func (m Metadata) Value() (driver.Value, error) {
	if len(m) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (m *Metadata) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported metadata column type %T", value)
	}
	if len(raw) == 0 {
		*m = nil
		return nil
	}
	return json.Unmarshal(raw, m)
}

// Merge returns a copy of m with the entries of other applied on top.
func (m Metadata) Merge(other Metadata) Metadata {
	if len(m) == 0 && len(other) == 0 {
		return nil
	}
	merged := make(Metadata, len(m)+len(other))
	for k, v := range m {
		merged[k] = v
	}
	for k, v := range other {
		merged[k] = v
	}
	return merged
}
