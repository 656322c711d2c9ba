package nats

import (
	"net"
	"testing"
	"time"
)

func TestReaderLoopFeedsParser(t *testing.T) {
	client, server := net.Pipe()
	sock := newSocket(client)

	pingCh := make(chan struct{}, 1)
	p := newParser(parserEvents{
		onInfo:     func([]byte) {},
		onPing:     func() { pingCh <- struct{}{} },
		onPong:     func() {},
		onOK:       func() {},
		onErr:      func(string) {},
		onMsg:      func(string, uint64, string, []byte) {},
		onHMsg:     func(string, uint64, string, Header, string, string, []byte) {},
		onProtoErr: func(error) {},
	})

	rl := runReaderLoop(sock, p)

	go func() {
		server.Write([]byte("PING\r\n"))
	}()

	select {
	case <-pingCh:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for PING to be parsed")
	}

	server.Close()
	rl.wait()
}

func TestReaderLoopExitsOnSocketAbort(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()
	sock := newSocket(client)

	p := newParser(parserEvents{
		onInfo: func([]byte) {}, onPing: func() {}, onPong: func() {},
		onOK: func() {}, onErr: func(string) {},
		onMsg: func(string, uint64, string, []byte) {}, onHMsg: func(string, uint64, string, Header, string, string, []byte) {},
		onProtoErr: func(error) {},
	})
	rl := runReaderLoop(sock, p)

	sock.abort(ErrDisposed)

	select {
	case <-rl.doneCh:
	case <-time.After(2 * time.Second):
		t.Fatal("readerLoop did not exit after socket abort")
	}
}
