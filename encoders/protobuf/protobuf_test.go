package protobuf

import "testing"

// notAProtoMessage deliberately does not implement proto.Message, to
// exercise the codec's rejection path without depending on generated
// .pb.go types.
type notAProtoMessage struct{}

func TestCodecRejectsNonProtoMessage(t *testing.T) {
	c := Codec{}
	if _, err := c.Marshal(notAProtoMessage{}); err == nil {
		t.Fatal("expected an error marshaling a non-proto.Message value")
	}
	if err := c.Unmarshal([]byte{}, &notAProtoMessage{}); err == nil {
		t.Fatal("expected an error unmarshaling into a non-proto.Message value")
	}
}
