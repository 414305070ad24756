package redis

import (
	"bytes"

	"github.com/vmihailenco/msgpack/v5"
)

// Encode serializes a payload for the wire.
func Encode(payload any) ([]byte, error) {
	return msgpack.Marshal(payload)
}

// Decode is the inverse of Encode. Integers decode as int64, floats as
// float64 and maps as map[string]any; typed ports coerce them back.
func Decode(data []byte) (any, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.UseLooseInterfaceDecoding(true)
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
