// Package protobuf is an optional Serializer for callers whose payloads
// are protocol buffer messages. It supports both the legacy
// github.com/golang/protobuf proto.Message interface and the newer
// google.golang.org/protobuf one, since the pack carries dependencies on
// both generations.
package protobuf

import (
	"fmt"

	legacyproto "github.com/golang/protobuf/proto"
	"google.golang.org/protobuf/proto"
)

// Codec implements nats.Serializer for protobuf-generated message types.
type Codec struct{}

func (Codec) Marshal(v interface{}) ([]byte, error) {
	switch m := v.(type) {
	case proto.Message:
		return proto.Marshal(m)
	case legacyproto.Message:
		return legacyproto.Marshal(m)
	default:
		return nil, fmt.Errorf("encoders/protobuf: %T does not implement proto.Message", v)
	}
}

func (Codec) Unmarshal(data []byte, v interface{}) error {
	switch m := v.(type) {
	case proto.Message:
		return proto.Unmarshal(data, m)
	case legacyproto.Message:
		return legacyproto.Unmarshal(data, m)
	default:
		return fmt.Errorf("encoders/protobuf: %T does not implement proto.Message", v)
	}
}
