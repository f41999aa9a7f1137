// Package utils holds the JSON byte helpers the SDK uses wherever a
// struct crosses a string-valued store: the cached user snapshot, the
// role-cache snapshot and the pending OAuth bundle all round-trip
// through these.
package utils

import "github.com/goccy/go-json"

// StructToBytes serializes a value for a KeyValue slot.
func StructToBytes(s interface{}) ([]byte, error) {
	return json.Marshal(s)
}

// BytesToStruct deserializes a KeyValue slot back into a value. Corrupt
// payloads surface the decode error so callers can discard the slot.
func BytesToStruct(data []byte, s interface{}) error {
	return json.Unmarshal(data, s)
}
