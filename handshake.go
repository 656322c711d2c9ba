package nats

import (
	"context"
	"encoding/json"
	"strings"
)

// connectOnce dials rawURL, runs the handshake of spec.md §4.6 to
// completion, and — on success — installs the new socket, reader loop,
// writer loop and ping timer on nc and transitions it to Open. On any
// failure it tears everything it started back down and returns a
// HandshakeError (or the dial error itself).
func (nc *Conn) connectOnce(ctx context.Context, rawURL string, reconnect bool) error {
	var sock *socket
	var err error
	tlsUpgraded := false

	if nc.opts.TLSMode == TLSImplicit {
		sock, err = dialImplicitTLS(ctx, rawURL, nc.opts.TLSOptions)
		tlsUpgraded = true
	} else {
		sock, err = dialSocket(ctx, rawURL)
	}
	if err != nil {
		return err
	}

	infoSig := newSignal()
	pongSig := newSignal()

	events := parserEvents{
		onInfo: func(raw []byte) {
			var si ServerInfo
			if jerr := json.Unmarshal(raw, &si); jerr != nil {
				infoSig.done(&ProtocolError{Msg: "invalid INFO json: " + jerr.Error()})
				return
			}
			nc.mu.Lock()
			nc.info = si
			nc.mu.Unlock()

			if !tlsUpgraded && nc.opts.TLSMode != TLSDisable {
				need := nc.opts.TLSMode == TLSRequire || nc.opts.TLSMode == TLSPrefer || si.TLSRequired
				if need {
					if uerr := upgradeTLS(sock, nc.opts.TLSOptions); uerr != nil {
						infoSig.done(uerr)
						return
					}
					tlsUpgraded = true
				}
			}
			infoSig.done(nil)
		},
		onPing: func() {
			nc.writerState.pushPriority(&Command{kind: cmdPong})
		},
		onPong: func() {
			nc.mu.Lock()
			pt := nc.pingTimer
			nc.mu.Unlock()
			if pt != nil {
				pt.onPong()
			}
			pongSig.done(nil)
		},
		onOK: func() {},
		onErr: func(msg string) {
			if isAuthErrorMsg(msg) {
				aerr := &AuthError{Msg: msg}
				if !pongSig.isDone() {
					pongSig.done(aerr)
				} else {
					nc.logger.Errorf("nats: %v", aerr)
					sock.abort(aerr)
				}
				return
			}
			if !pongSig.isDone() {
				pongSig.done(&ServerError{Msg: msg})
				return
			}
			nc.logger.Errorf("nats: server error: %s", msg)
		},
		onMsg: func(subject string, sid uint64, reply string, data []byte) {
			nc.subs.dispatch(sid, subject, reply, nil, data)
		},
		onHMsg: func(subject string, sid uint64, reply string, hdr Header, status, desc string, data []byte) {
			if status != "" {
				hdr.Set("Status", status)
			}
			nc.subs.dispatch(sid, subject, reply, hdr, data)
		},
		onProtoErr: func(perr error) {
			nc.logger.Errorf("nats: %v", perr)
			sock.abort(perr)
		},
	}

	p := newParser(events)
	reader := runReaderLoop(sock, p)

	// writer is started only once CONNECT (and, on reconnect, the
	// subscribe replay batch) has already been pushed to the priority
	// lane below, so its very first drain cycle never has a chance to
	// drain the regular queue — and hand a producer's command to the
	// socket — ahead of CONNECT (spec.md §4.2 invariant 1).
	var writer *writerLoop

	teardown := func(cause error) error {
		if writer != nil {
			writer.requestStop()
		}
		sock.abort(cause)
		reader.wait()
		return &HandshakeError{Cause: cause}
	}

	if werr := infoSig.wait(ctx); werr != nil {
		return teardown(werr)
	}

	nc.mu.Lock()
	info := nc.info
	auth := nc.opts.Auth
	nc.mu.Unlock()

	fields, aerr := buildAuthFields(auth, info.Nonce)
	if aerr != nil {
		return teardown(aerr)
	}

	payload, merr := json.Marshal(connectInfo{
		TLSRequired: tlsUpgraded,
		User:        fields.user,
		Pass:        fields.pass,
		AuthToken:   fields.token,
		NKey:        fields.nkey,
		Sig:         fields.sig,
		Headers:     true,
		Lang:        "go",
		Version:     Version,
		Protocol:    1,
	})
	if merr != nil {
		return teardown(merr)
	}

	connectCmd := newConnectCommand(payload)
	nc.writerState.pushPriority(connectCmd)
	nc.writerState.pushPriority(&Command{kind: cmdPing})

	var subBatch *Command
	if reconnect {
		subBatch = newSubscribeBatchCommand(nc.subs.listForReplay())
		nc.writerState.pushPriority(subBatch)
	}

	writer = runWriterLoop(nc.writerState, sock)

	if cerr := waitCommand(ctx, connectCmd); cerr != nil {
		return teardown(cerr)
	}
	if werr := pongSig.wait(ctx); werr != nil {
		return teardown(werr)
	}
	if subBatch != nil {
		if serr := waitCommand(ctx, subBatch); serr != nil {
			return teardown(serr)
		}
	}

	nc.mu.Lock()
	nc.sock = sock
	nc.reader = reader
	nc.writerL = writer
	nc.lastURL = rawURL
	nc.state = Open
	pt := newPingTimer(nc.opts.PingInterval, nc.opts.MaxPingsOut, nc.writerState.enqueue, sock.abort)
	nc.pingTimer = pt
	nc.mu.Unlock()
	pt.start()

	return nil
}

func waitCommand(ctx context.Context, c *Command) error {
	select {
	case err := <-c.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// isAuthErrorMsg reports whether a server -ERR message names an
// authorization failure. The exact wording is server-chosen and not a
// stable contract (spec.md §9); only the presence of "auth" is load-
// bearing here, not any specific phrase.
func isAuthErrorMsg(msg string) bool {
	return strings.Contains(strings.ToLower(msg), "auth")
}
