package store

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Row is one result row. Columns and Values are parallel.
type Row struct {
	Columns []string
	Values  []any
}

// Get returns the value of the first column named name.
func (r Row) Get(name string) (any, bool) {
	for i, c := range r.Columns {
		if c == name {
			return r.Values[i], true
		}
	}
	return nil, false
}

// MarshalJSON writes the row as an object with keys in column order.
// A repeated column name is written once, with its first value.
func (r Row) MarshalJSON() ([]byte, error) {
	if len(r.Columns) != len(r.Values) {
		return nil, fmt.Errorf("row has %d columns and %d values", len(r.Columns), len(r.Values))
	}

	var buf bytes.Buffer
	seen := make(map[string]struct{}, len(r.Columns))

	buf.WriteByte('{')
	for i, col := range r.Columns {
		if _, dup := seen[col]; dup {
			continue
		}
		seen[col] = struct{}{}

		key, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(jsonValue(r.Values[i]))
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", col, err)
		}
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// jsonValue converts driver values that encoding/json would mangle.
// Drivers return text and NUMERIC columns as []byte; those are strings here.
func jsonValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
