package models

import (
	"database/sql"
	"encoding/json"
)

// NullString - wraps built-in sql.NullString
// We need this struct for nullable text columns (summary, company, phone and
// so on) so that json representation stores only null or the string value,
// not the whole sql.NullString struct
type NullString sql.NullString

// NewNullString - builds a NullString that is null when s is empty
func NewNullString(s string) NullString {
	return NullString{String: s, Valid: s != ""}
}

// Value - helpful function to get value of NullString type field
func (ns *NullString) Value() interface{} {
	if ns.Valid {
		return ns.String
	}
	return nil
}

// Scan - function to scan value from sql row's field
func (ns *NullString) Scan(value interface{}) error {
	var s sql.NullString
	if err := s.Scan(value); err != nil {
		return err
	}

	*ns = NullString{String: s.String, Valid: value != nil}
	return nil
}

// MarshalJSON - custom marshal func for NullString
func (ns NullString) MarshalJSON() ([]byte, error) {
	if !ns.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(ns.String)
}

// UnmarshalJSON - custom unmarshal func for NullString
// We also need to define custom unmarshal func to parse json null value or
// json string into NullString type
func (ns *NullString) UnmarshalJSON(b []byte) error {
	var x interface{}
	err := json.Unmarshal(b, &x)
	if err != nil {
		return err
	}
	switch s := x.(type) {
	case nil:
		ns.Valid = false
	case string:
		ns.String = s
		ns.Valid = true
	}

	return nil
}
