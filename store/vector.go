package store

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
)

// Vector is a fixed-dimension dense embedding, stored as a bracketed,
// comma-separated literal ("[0.1,0.2,...]") so the same Go type round-trips
// through both the Postgres pgvector column and the SQLite BLOB column
// without a dialect-specific model.
type Vector []float64

// Value implements driver.Valuer.
func (v Vector) Value() (driver.Value, error) {
	if v == nil {
		return nil, nil
	}
	var b strings.Builder
	b.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
	}
	b.WriteByte(']')
	return b.String(), nil
}

// Scan implements sql.Scanner.
func (v *Vector) Scan(src any) error {
	if src == nil {
		*v = nil
		return nil
	}

	var s string
	switch t := src.(type) {
	case string:
		s = t
	case []byte:
		s = string(t)
	default:
		return fmt.Errorf("store: cannot scan %T into Vector", src)
	}

	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	if s == "" {
		*v = Vector{}
		return nil
	}

	parts := strings.Split(s, ",")
	out := make(Vector, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return fmt.Errorf("store: parse vector element %q: %w", p, err)
		}
		out[i] = f
	}
	*v = out
	return nil
}

// FromFloat64 converts a plain []float64 (the types.Page/Abstract
// representation) to a Vector, or nil if s is empty.
func FromFloat64(s []float64) Vector {
	if len(s) == 0 {
		return nil
	}
	return Vector(s)
}

// ToFloat64 converts a Vector back to a plain []float64, or nil if empty.
func (v Vector) ToFloat64() []float64 {
	if len(v) == 0 {
		return nil
	}
	return []float64(v)
}
