package nats

import (
	"strconv"
)

const (
	_CRLF_  = "\r\n"
	_SPC_   = " "
	_EMPTY_ = ""
)

// Protocol verbs recognized by the reader and emitted by the writer.
var (
	opInfo = []byte("INFO")
	opPing = []byte("PING")
	opPong = []byte("PONG")
	opOK   = []byte("+OK")
	opErr  = []byte("-ERR")
	opMsg  = []byte("MSG")
	opHMsg = []byte("HMSG")
)

type cmdKind int

const (
	cmdConnect cmdKind = iota
	cmdPing
	cmdPong
	cmdPublish
	cmdPublishBatch
	cmdSubscribe
	cmdSubscribeBatch
	cmdUnsubscribe
	cmdDirectWrite
)

type pubItem struct {
	subject, reply string
	headers        Header
	data           []byte
}

type subItem struct {
	sid     uint64
	subject string
	queue   string
}

// Command is a pooled, tagged-variant unit of work. A single serialize
// call appends its wire bytes into the writer's shared buffer; completion
// is signaled only after the byte range containing it has been handed to
// the socket successfully (see writer.go).
type Command struct {
	kind cmdKind
	gen  uint64
	pool *cmdPool

	connectJSON []byte // pre-marshaled CONNECT json payload

	pub  pubItem
	pubs []pubItem

	sub  subItem
	subs []subItem

	raw    []byte
	repeat int

	done chan error // nil for fire-and-forget commands
}

func (c *Command) reset(gen uint64, pool *cmdPool) {
	*c = Command{gen: gen, pool: pool}
}

func newConnectCommand(payload []byte) *Command {
	return &Command{kind: cmdConnect, connectJSON: payload, done: make(chan error, 1)}
}

func newSubscribeCommand(sid uint64, subject, queue string) *Command {
	return &Command{kind: cmdSubscribe, sub: subItem{sid: sid, subject: subject, queue: queue}}
}

func newSubscribeBatchCommand(subs []subItem) *Command {
	return &Command{kind: cmdSubscribeBatch, subs: subs, done: make(chan error, 1)}
}

func newUnsubscribeCommand(sid uint64) *Command {
	return &Command{kind: cmdUnsubscribe, sub: subItem{sid: sid}}
}

// serialize appends c's wire representation into buf. A failure here fails
// only this command; the batch it belongs to continues.
func (c *Command) serialize(buf *buffer) error {
	switch c.kind {
	case cmdConnect:
		buf.WriteString("CONNECT ")
		buf.Write(c.connectJSON)
		buf.WriteString(_CRLF_)
	case cmdPing:
		buf.WriteString("PING" + _CRLF_)
	case cmdPong:
		buf.WriteString("PONG" + _CRLF_)
	case cmdPublish:
		writePub(buf, c.pub)
	case cmdPublishBatch:
		for _, p := range c.pubs {
			writePub(buf, p)
		}
	case cmdSubscribe:
		writeSub(buf, c.sub)
	case cmdSubscribeBatch:
		for _, s := range c.subs {
			writeSub(buf, s)
		}
	case cmdUnsubscribe:
		writeUnsub(buf, c.sub.sid)
	case cmdDirectWrite:
		n := c.repeat
		if n < 1 {
			n = 1
		}
		for i := 0; i < n; i++ {
			buf.Write(c.raw)
		}
	default:
		return &ProtocolError{Msg: "unknown command kind"}
	}
	return nil
}

func writePub(buf *buffer, p pubItem) {
	if len(p.headers) > 0 {
		hdr := encodeHeaders(p.headers)
		total := len(hdr) + len(p.data)
		if p.reply != "" {
			buf.WriteString("HPUB " + p.subject + _SPC_ + p.reply + _SPC_ + strconv.Itoa(len(hdr)) + _SPC_ + strconv.Itoa(total) + _CRLF_)
		} else {
			buf.WriteString("HPUB " + p.subject + _SPC_ + strconv.Itoa(len(hdr)) + _SPC_ + strconv.Itoa(total) + _CRLF_)
		}
		buf.Write(hdr)
		buf.Write(p.data)
		buf.WriteString(_CRLF_)
		return
	}
	if p.reply != "" {
		buf.WriteString("PUB " + p.subject + _SPC_ + p.reply + _SPC_ + strconv.Itoa(len(p.data)) + _CRLF_)
	} else {
		buf.WriteString("PUB " + p.subject + _SPC_ + strconv.Itoa(len(p.data)) + _CRLF_)
	}
	buf.Write(p.data)
	buf.WriteString(_CRLF_)
}

func writeSub(buf *buffer, s subItem) {
	if s.queue != "" {
		buf.WriteString("SUB " + s.subject + _SPC_ + s.queue + _SPC_ + strconv.FormatUint(s.sid, 10) + _CRLF_)
	} else {
		buf.WriteString("SUB " + s.subject + _SPC_ + strconv.FormatUint(s.sid, 10) + _CRLF_)
	}
}

func writeUnsub(buf *buffer, sid uint64) {
	buf.WriteString("UNSUB " + strconv.FormatUint(sid, 10) + _CRLF_)
}

// complete signals c's async completion, if any, and returns c to its
// pool, if any. Called by the writer loop exactly once per command: with
// serialize's error if serialize failed, otherwise after the batch
// containing it either flushed successfully (err == nil) or failed
// (err != nil).
func (c *Command) complete(err error) {
	if c.done != nil {
		c.done <- err
		close(c.done)
	}
	if c.pool != nil {
		c.pool.put(c)
	}
}
