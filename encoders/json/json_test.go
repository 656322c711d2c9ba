package json

import "testing"

func TestCodecRoundTrip(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}
	c := Codec{}

	data, err := c.Marshal(payload{Name: "x"})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var out payload
	if err := c.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if out.Name != "x" {
		t.Fatalf("out.Name = %q, want x", out.Name)
	}
}
