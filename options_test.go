package nats

import "testing"

func TestNewOptionsRequiresSeedURLs(t *testing.T) {
	if _, err := NewOptions(nil); err != ErrNoServers {
		t.Fatalf("NewOptions(nil) error = %v, want %v", err, ErrNoServers)
	}
}

func TestNewOptionsAppliesFunctionalOptions(t *testing.T) {
	o, err := NewOptions([]string{"127.0.0.1:4222"},
		WithMaxPingsOut(5),
		WithNoRandomize(),
		WithInboxPrefix("_MYINBOX."),
	)
	if err != nil {
		t.Fatalf("NewOptions() error = %v", err)
	}
	if o.MaxPingsOut != 5 || !o.NoRandomize || o.InboxPrefix != "_MYINBOX." {
		t.Fatalf("options = %+v", o)
	}
}

func TestNewOptionsRejectsInvalidAuth(t *testing.T) {
	_, err := NewOptions([]string{"127.0.0.1:4222"}, WithAuth(AuthMethod{User: "u", Token: "t"}))
	if err != ErrInvalidAuth {
		t.Fatalf("NewOptions() error = %v, want %v", err, ErrInvalidAuth)
	}
}

func TestNewOptionsDefaultsSerializerAndLogger(t *testing.T) {
	o, err := NewOptions([]string{"127.0.0.1:4222"})
	if err != nil {
		t.Fatalf("NewOptions() error = %v", err)
	}
	if o.Serializer == nil {
		t.Fatal("Serializer was not defaulted")
	}
	if o.Logger == nil {
		t.Fatal("Logger was not defaulted")
	}
}
