package nats

import (
	"strings"
	"testing"
)

func TestSerializePublishNoReply(t *testing.T) {
	buf := newBuffer(1024)
	c := &Command{kind: cmdPublish, pub: pubItem{subject: "foo", data: []byte("hi")}}
	if err := c.serialize(buf); err != nil {
		t.Fatalf("serialize() error = %v", err)
	}
	want := "PUB foo 2\r\nhi\r\n"
	if got := string(buf.Bytes()); got != want {
		t.Fatalf("serialize() = %q, want %q", got, want)
	}
}

func TestSerializePublishWithReply(t *testing.T) {
	buf := newBuffer(1024)
	c := &Command{kind: cmdPublish, pub: pubItem{subject: "foo", reply: "bar", data: []byte("hi")}}
	if err := c.serialize(buf); err != nil {
		t.Fatalf("serialize() error = %v", err)
	}
	want := "PUB foo bar 2\r\nhi\r\n"
	if got := string(buf.Bytes()); got != want {
		t.Fatalf("serialize() = %q, want %q", got, want)
	}
}

func TestSerializeHPub(t *testing.T) {
	buf := newBuffer(1024)
	h := Header{"X-A": {"1"}}
	c := &Command{kind: cmdPublish, pub: pubItem{subject: "foo", headers: h, data: []byte("hi")}}
	if err := c.serialize(buf); err != nil {
		t.Fatalf("serialize() error = %v", err)
	}
	got := string(buf.Bytes())
	if !strings.HasPrefix(got, "HPUB foo ") {
		t.Fatalf("serialize() = %q, want HPUB frame", got)
	}
	if !strings.HasSuffix(got, "hi\r\n") {
		t.Fatalf("serialize() = %q, want payload suffix", got)
	}
}

func TestSerializeSubUnsub(t *testing.T) {
	buf := newBuffer(1024)
	c := newSubscribeCommand(7, "foo.bar", "")
	if err := c.serialize(buf); err != nil {
		t.Fatalf("serialize() error = %v", err)
	}
	if got := string(buf.Bytes()); got != "SUB foo.bar 7\r\n" {
		t.Fatalf("serialize() = %q", got)
	}

	buf.Reset()
	c2 := newSubscribeCommand(8, "foo.bar", "workers")
	if err := c2.serialize(buf); err != nil {
		t.Fatalf("serialize() error = %v", err)
	}
	if got := string(buf.Bytes()); got != "SUB foo.bar workers 8\r\n" {
		t.Fatalf("serialize() = %q", got)
	}

	buf.Reset()
	c3 := newUnsubscribeCommand(8)
	if err := c3.serialize(buf); err != nil {
		t.Fatalf("serialize() error = %v", err)
	}
	if got := string(buf.Bytes()); got != "UNSUB 8\r\n" {
		t.Fatalf("serialize() = %q", got)
	}
}

func TestCompleteWithoutDoneChannelDoesNotPanic(t *testing.T) {
	c := &Command{kind: cmdPublish}
	c.complete(nil) // must not panic when done is nil (fire-and-forget)
}

func TestCompleteDeliversErrorOnce(t *testing.T) {
	c := &Command{kind: cmdPublish, done: make(chan error, 1)}
	wantErr := ErrConnectionLost
	c.complete(wantErr)
	if got := <-c.done; got != wantErr {
		t.Fatalf("complete() delivered %v, want %v", got, wantErr)
	}
	if _, ok := <-c.done; ok {
		t.Fatal("done channel should be closed after complete()")
	}
}
