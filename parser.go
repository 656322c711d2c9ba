package nats

import (
	"bytes"
	"strconv"
)

// parserEvents are the callbacks a parser dispatches discrete protocol
// events to. All callbacks run synchronously, on the reader loop's
// goroutine, in server frame order.
type parserEvents struct {
	onInfo     func(raw []byte)
	onPing     func()
	onPong     func()
	onOK       func()
	onErr      func(msg string)
	onMsg      func(subject string, sid uint64, reply string, data []byte)
	onHMsg     func(subject string, sid uint64, reply string, hdr Header, status, statusDesc string, data []byte)
	onProtoErr func(err error)
}

type pendingMsg struct {
	subject string
	sid     uint64
	reply   string
	hdrLen  int
	total   int
	headers bool
}

// parser is a streaming NATS protocol reader. It consumes arbitrary byte
// chunks via feed and materializes discrete events via its parserEvents,
// buffering internally across partial control lines and partial payload
// bodies. Payloads are handed out as views into its accumulation buffer;
// each MSG/HMSG frame still allocates its subject/reply strings and a
// small pending-frame record.
type parser struct {
	buf     []byte
	events  parserEvents
	pending *pendingMsg
}

func newParser(events parserEvents) *parser {
	return &parser{events: events}
}

// feed appends data to the parser's internal buffer and drains as many
// complete frames as are available. Partial frames remain buffered for
// the next call.
func (p *parser) feed(data []byte) {
	p.buf = append(p.buf, data...)

	for {
		if p.pending != nil {
			if !p.drainPending() {
				return
			}
			continue
		}

		idx := bytes.IndexByte(p.buf, '\n')
		if idx < 0 {
			return
		}
		line := p.buf[:idx]
		if len(line) > 0 && line[len(line)-1] == '\r' {
			line = line[:len(line)-1]
		}
		p.buf = p.buf[idx+1:]

		if err := p.dispatchLine(line); err != nil {
			p.events.onProtoErr(err)
		}
	}
}

// drainPending attempts to complete the in-flight MSG/HMSG payload.
// Returns false if more bytes are needed.
func (p *parser) drainPending() bool {
	need := p.pending.total + len(_CRLF_)
	if len(p.buf) < need {
		return false
	}
	payload := p.buf[:p.pending.total]
	p.buf = p.buf[need:]

	pm := p.pending
	p.pending = nil

	if pm.headers {
		if pm.hdrLen > len(payload) {
			p.events.onProtoErr(&ProtocolError{Msg: "hdr-size exceeds available payload"})
			return true
		}
		hdr, status, desc, err := parseHeaders(payload[:pm.hdrLen])
		if err != nil {
			p.events.onProtoErr(err)
			return true
		}
		p.events.onHMsg(pm.subject, pm.sid, pm.reply, hdr, status, desc, payload[pm.hdrLen:])
		return true
	}
	p.events.onMsg(pm.subject, pm.sid, pm.reply, payload)
	return true
}

func (p *parser) dispatchLine(line []byte) error {
	sp := bytes.IndexByte(line, ' ')
	var op, args []byte
	if sp < 0 {
		op = line
	} else {
		op = line[:sp]
		args = bytes.TrimSpace(line[sp+1:])
	}

	switch {
	case bytes.EqualFold(op, opInfo):
		p.events.onInfo(args)
	case bytes.EqualFold(op, opPing):
		p.events.onPing()
	case bytes.EqualFold(op, opPong):
		p.events.onPong()
	case bytes.EqualFold(op, opOK):
		p.events.onOK()
	case bytes.EqualFold(op, opErr):
		p.events.onErr(string(args))
	case bytes.EqualFold(op, opMsg):
		return p.startMsg(args, false)
	case bytes.EqualFold(op, opHMsg):
		return p.startMsg(args, true)
	default:
		return &ProtocolError{Msg: "unknown protocol operation: " + string(op)}
	}
	return nil
}

func (p *parser) startMsg(args []byte, headers bool) error {
	fields := bytes.Fields(args)

	var subject, reply string
	var sid uint64
	var hdrLen, total int
	var err error

	switch {
	case !headers && len(fields) == 3:
		subject = string(fields[0])
		sid, err = strconv.ParseUint(string(fields[1]), 10, 64)
		if err == nil {
			total, err = strconv.Atoi(string(fields[2]))
		}
	case !headers && len(fields) == 4:
		subject = string(fields[0])
		sid, err = strconv.ParseUint(string(fields[1]), 10, 64)
		reply = string(fields[2])
		if err == nil {
			total, err = strconv.Atoi(string(fields[3]))
		}
	case headers && len(fields) == 4:
		subject = string(fields[0])
		sid, err = strconv.ParseUint(string(fields[1]), 10, 64)
		if err == nil {
			hdrLen, err = strconv.Atoi(string(fields[2]))
		}
		if err == nil {
			total, err = strconv.Atoi(string(fields[3]))
		}
	case headers && len(fields) == 5:
		subject = string(fields[0])
		sid, err = strconv.ParseUint(string(fields[1]), 10, 64)
		reply = string(fields[2])
		if err == nil {
			hdrLen, err = strconv.Atoi(string(fields[3]))
		}
		if err == nil {
			total, err = strconv.Atoi(string(fields[4]))
		}
	default:
		op := "MSG"
		if headers {
			op = "HMSG"
		}
		return &ProtocolError{Msg: "malformed " + op + " arguments: " + string(args)}
	}
	if err != nil {
		return &ProtocolError{Msg: "malformed MSG/HMSG arguments: " + err.Error()}
	}
	if headers && hdrLen > total {
		return &ProtocolError{Msg: "hdr-size exceeds total-size"}
	}
	if total < 0 || hdrLen < 0 {
		return &ProtocolError{Msg: "negative size in MSG/HMSG arguments"}
	}

	p.pending = &pendingMsg{subject: subject, sid: sid, reply: reply, hdrLen: hdrLen, total: total, headers: headers}
	return nil
}
