package nats

// Serializer is the payload codec capability the core consumes; it never
// implements one itself beyond the default in encoders/json. See
// encoders/protobuf and encoders/bson for alternative implementations.
type Serializer interface {
	Marshal(v interface{}) ([]byte, error)
	Unmarshal(data []byte, v interface{}) error
}
