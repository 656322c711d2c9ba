package nats

import (
	"reflect"
	"testing"
)

type recordedEvents struct {
	infos     [][]byte
	pings     int
	pongs     int
	oks       int
	errs      []string
	msgs      []*Msg
	protoErrs []error
}

func newRecordingParser(rec *recordedEvents) *parser {
	return newParser(parserEvents{
		onInfo: func(raw []byte) { rec.infos = append(rec.infos, append([]byte(nil), raw...)) },
		onPing: func() { rec.pings++ },
		onPong: func() { rec.pongs++ },
		onOK:   func() { rec.oks++ },
		onErr:  func(msg string) { rec.errs = append(rec.errs, msg) },
		onMsg: func(subject string, sid uint64, reply string, data []byte) {
			rec.msgs = append(rec.msgs, &Msg{Subject: subject, Reply: reply, Data: append([]byte(nil), data...)})
		},
		onHMsg: func(subject string, sid uint64, reply string, hdr Header, status, desc string, data []byte) {
			rec.msgs = append(rec.msgs, &Msg{Subject: subject, Reply: reply, Header: hdr, Data: append([]byte(nil), data...)})
		},
		onProtoErr: func(err error) { rec.protoErrs = append(rec.protoErrs, err) },
	})
}

func TestParserControlLines(t *testing.T) {
	rec := &recordedEvents{}
	p := newRecordingParser(rec)

	p.feed([]byte("INFO {\"server_id\":\"x\"}\r\nPING\r\nPONG\r\n+OK\r\n-ERR 'bad'\r\n"))

	if len(rec.infos) != 1 || string(rec.infos[0]) != `{"server_id":"x"}` {
		t.Fatalf("infos = %v", rec.infos)
	}
	if rec.pings != 1 || rec.pongs != 1 || rec.oks != 1 {
		t.Fatalf("counts = %+v", rec)
	}
	if len(rec.errs) != 1 || rec.errs[0] != "'bad'" {
		t.Fatalf("errs = %v", rec.errs)
	}
}

func TestParserMsgAcrossPartialFeeds(t *testing.T) {
	rec := &recordedEvents{}
	p := newRecordingParser(rec)

	frame := "MSG foo.bar 9 5\r\nhello\r\n"
	// Split the single frame across many feed() calls, including a split
	// in the middle of the control line and a split mid-payload.
	for i := 0; i < len(frame); i++ {
		p.feed([]byte{frame[i]})
	}

	if len(rec.msgs) != 1 {
		t.Fatalf("got %d msgs, want 1", len(rec.msgs))
	}
	m := rec.msgs[0]
	if m.Subject != "foo.bar" || string(m.Data) != "hello" {
		t.Fatalf("msg = %+v", m)
	}
}

func TestParserMsgWithReply(t *testing.T) {
	rec := &recordedEvents{}
	p := newRecordingParser(rec)

	p.feed([]byte("MSG foo.bar 9 reply.to 5\r\nhello\r\n"))

	if len(rec.msgs) != 1 {
		t.Fatalf("got %d msgs, want 1", len(rec.msgs))
	}
	if rec.msgs[0].Reply != "reply.to" {
		t.Fatalf("reply = %q, want reply.to", rec.msgs[0].Reply)
	}
}

func TestParserHMsgWithHeaders(t *testing.T) {
	rec := &recordedEvents{}
	p := newRecordingParser(rec)

	hdrBlock := "NATS/1.0\r\nX-Trace: abc\r\n\r\n"
	body := "payload"
	total := len(hdrBlock) + len(body)
	frame := "HMSG foo.bar 9 " + itoa(len(hdrBlock)) + " " + itoa(total) + "\r\n" + hdrBlock + body + "\r\n"

	p.feed([]byte(frame))

	if len(rec.msgs) != 1 {
		t.Fatalf("got %d msgs, want 1", len(rec.msgs))
	}
	m := rec.msgs[0]
	if string(m.Data) != body {
		t.Fatalf("data = %q, want %q", m.Data, body)
	}
	if !reflect.DeepEqual(m.Header.Values("X-Trace"), []string{"abc"}) {
		t.Fatalf("header X-Trace = %v", m.Header.Values("X-Trace"))
	}
}

func TestParserMultipleFramesInOneFeed(t *testing.T) {
	rec := &recordedEvents{}
	p := newRecordingParser(rec)

	p.feed([]byte("MSG a 1 1\r\nA\r\nMSG b 2 1\r\nB\r\nPING\r\n"))

	if len(rec.msgs) != 2 || rec.pings != 1 {
		t.Fatalf("rec = %+v", rec)
	}
	if rec.msgs[0].Subject != "a" || rec.msgs[1].Subject != "b" {
		t.Fatalf("subjects = %s, %s", rec.msgs[0].Subject, rec.msgs[1].Subject)
	}
}

func TestParserMalformedMsgArgsReportsProtoErr(t *testing.T) {
	rec := &recordedEvents{}
	p := newRecordingParser(rec)

	p.feed([]byte("MSG only-one-field\r\n"))

	if len(rec.protoErrs) != 1 {
		t.Fatalf("got %d protoErrs, want 1", len(rec.protoErrs))
	}
}

func TestParserHdrLenExceedsTotalIsRejected(t *testing.T) {
	rec := &recordedEvents{}
	p := newRecordingParser(rec)

	p.feed([]byte("HMSG foo 1 100 5\r\n"))

	if len(rec.protoErrs) != 1 {
		t.Fatalf("got %d protoErrs, want 1", len(rec.protoErrs))
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}
