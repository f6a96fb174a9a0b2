// Package xjson is the single JSON import site of the module. Documents,
// stored records and node payloads are encoded through goccy/go-json.
package xjson

import (
	stdjson "encoding/json"

	gjson "github.com/goccy/go-json"
)

func Marshal(v interface{}) ([]byte, error) {
	return gjson.Marshal(v)
}

func MarshalIndent(v interface{}, prefix, indent string) ([]byte, error) {
	return gjson.MarshalIndent(v, prefix, indent)
}

func Unmarshal(data []byte, v interface{}) error {
	return gjson.Unmarshal(data, v)
}

// Valid reports whether data is a valid JSON encoding.
func Valid(data []byte) bool {
	return gjson.Valid(data)
}

// RawMessage is kept compatible with encoding/json's RawMessage type.
type RawMessage = stdjson.RawMessage

// String encodes v and returns the text, or an empty string for nil values.
// Encoding failures are reported as an error so that log writers can decide
// whether to drop the payload.
func String(v interface{}) (string, error) {
	if v == nil {
		return "", nil
	}
	data, err := Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
