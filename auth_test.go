package nats

import (
	"testing"

	"github.com/nats-io/nkeys"
)

func TestAuthMethodValidateRejectsAmbiguous(t *testing.T) {
	a := AuthMethod{User: "u", Token: "t"}
	if err := a.Validate(); err == nil {
		t.Fatal("expected error for both user and token set")
	}
}

func TestAuthMethodValidateAcceptsEmpty(t *testing.T) {
	var a AuthMethod
	if err := a.Validate(); err != nil {
		t.Fatalf("Validate() on empty AuthMethod = %v, want nil", err)
	}
}

func TestBuildAuthFieldsUserPass(t *testing.T) {
	f, err := buildAuthFields(AuthMethod{User: "bob", Pass: "secret"}, "")
	if err != nil {
		t.Fatalf("buildAuthFields() error = %v", err)
	}
	if f.user != "bob" || f.pass != "secret" {
		t.Fatalf("fields = %+v", f)
	}
}

func TestBuildAuthFieldsNKeySignsNonce(t *testing.T) {
	kp, err := nkeys.CreateUser()
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	seed, err := kp.Seed()
	if err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	pub, err := kp.PublicKey()
	if err != nil {
		t.Fatalf("PublicKey() error = %v", err)
	}

	f, err := buildAuthFields(AuthMethod{NKeySeed: seed}, "nonce-123")
	if err != nil {
		t.Fatalf("buildAuthFields() error = %v", err)
	}
	if f.nkey != pub {
		t.Fatalf("nkey = %q, want %q", f.nkey, pub)
	}
	if f.sig == "" {
		t.Fatal("expected a non-empty signature when a nonce is present")
	}
}

func TestBuildAuthFieldsNKeyNoNonceNoSig(t *testing.T) {
	kp, err := nkeys.CreateUser()
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	seed, _ := kp.Seed()

	f, err := buildAuthFields(AuthMethod{NKeySeed: seed}, "")
	if err != nil {
		t.Fatalf("buildAuthFields() error = %v", err)
	}
	if f.sig != "" {
		t.Fatal("expected no signature when the server sent no nonce")
	}
}
