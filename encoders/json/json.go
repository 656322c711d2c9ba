// Package json is the default Serializer: a thin wrapper over
// encoding/json, matching the codec the core already uses for its own
// CONNECT/INFO frames.
package json

import "encoding/json"

// Codec implements nats.Serializer with encoding/json.
type Codec struct{}

func (Codec) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (Codec) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}
