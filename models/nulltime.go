package models

import (
	"database/sql"
	"encoding/json"
	"time"
)

// NullTime - wraps built-in sql.NullTime the same way NullString does for
// nullable timestamp columns (published_at)
type NullTime sql.NullTime

// NewNullTime - builds a non-null NullTime
func NewNullTime(t time.Time) NullTime {
	return NullTime{Time: t, Valid: true}
}

// Scan - function to scan value from sql row's field
func (nt *NullTime) Scan(value interface{}) error {
	var t sql.NullTime
	if err := t.Scan(value); err != nil {
		return err
	}

	*nt = NullTime{Time: t.Time, Valid: value != nil}
	return nil
}

// MarshalJSON - custom marshal func for NullTime
func (nt NullTime) MarshalJSON() ([]byte, error) {
	if !nt.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(nt.Time)
}

// UnmarshalJSON - custom unmarshal func for NullTime
func (nt *NullTime) UnmarshalJSON(b []byte) error {
	var x interface{}
	if err := json.Unmarshal(b, &x); err != nil {
		return err
	}
	switch v := x.(type) {
	case nil:
		nt.Valid = false
	case string:
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return err
		}
		nt.Time = t
		nt.Valid = true
	}

	return nil
}
