// Package bson is an optional Serializer backed by the MongoDB driver's
// BSON codec, for callers that share payload types with a Mongo-backed
// service.
package bson

import "go.mongodb.org/mongo-driver/bson"

// Codec implements nats.Serializer with BSON encoding.
type Codec struct{}

func (Codec) Marshal(v interface{}) ([]byte, error) {
	return bson.Marshal(v)
}

func (Codec) Unmarshal(data []byte, v interface{}) error {
	return bson.Unmarshal(data, v)
}
