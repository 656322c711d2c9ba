package nats

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/crypto/ocsp"
)

// TLSMode controls whether and how a socket is upgraded to TLS.
type TLSMode int

const (
	// TLSAuto upgrades only if the server's INFO advertises tls_required.
	TLSAuto TLSMode = iota
	// TLSPrefer always attempts the upgrade after INFO, even if the server
	// does not require it. It does not check whether the server supports
	// TLS and does not fall back to plain TCP: a failed TLS handshake fails
	// the connection attempt, as with TLSRequire.
	TLSPrefer
	// TLSRequire fails the connection if the server does not support TLS.
	TLSRequire
	// TLSImplicit dials directly with TLS, skipping the INFO negotiation
	// (used for servers listening on a dedicated TLS port).
	TLSImplicit
	// TLSDisable never upgrades, even if the server requires it.
	TLSDisable
)

// TLSOptions configures the TLS upgrade path. Certificate/key *loading* is
// explicitly out of scope (spec.md §1): callers hand the core an
// already-built *tls.Config.
type TLSOptions struct {
	Config *tls.Config
	// RevocationCheck, when true, performs an OCSP lookup against the
	// leaf certificate's configured responder after the handshake and
	// fails the connection if the certificate was revoked.
	RevocationCheck bool
}

// dialImplicitTLS dials addr directly over TLS, for TLSImplicit mode.
func dialImplicitTLS(ctx context.Context, addr string, opts TLSOptions) (*socket, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = &tls.Config{}
	}
	var d tls.Dialer
	d.Config = cfg
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	tlsConn := conn.(*tls.Conn)
	if opts.RevocationCheck {
		if err := checkRevocation(tlsConn); err != nil {
			_ = conn.Close()
			return nil, &HandshakeError{Cause: err}
		}
	}
	return newSocket(conn), nil
}

// upgradeTLS re-wraps an already-connected plain socket's net.Conn with
// TLS, used after the server's INFO has been inspected (TLSAuto/Prefer/
// Require). It replaces sock.conn in place; the caller must not use sock
// concurrently while this runs.
func upgradeTLS(sock *socket, opts TLSOptions) error {
	cfg := opts.Config
	if cfg == nil {
		cfg = &tls.Config{}
	}
	tlsConn := tls.Client(sock.conn, cfg)
	if err := tlsConn.HandshakeContext(context.Background()); err != nil {
		return err
	}
	sock.conn = tlsConn
	if opts.RevocationCheck {
		if err := checkRevocation(tlsConn); err != nil {
			return err
		}
	}
	return nil
}

// checkRevocation performs a best-effort OCSP lookup on the leaf
// certificate. It is a no-op (not an error) if the certificate carries no
// OCSP responder, since not all CAs issue one.
func checkRevocation(conn *tls.Conn) error {
	state := conn.ConnectionState()
	if len(state.PeerCertificates) == 0 {
		return nil
	}
	leaf := state.PeerCertificates[0]
	if len(leaf.OCSPServer) == 0 {
		return nil
	}
	var issuer = leaf
	if len(state.PeerCertificates) > 1 {
		issuer = state.PeerCertificates[1]
	}
	req, err := ocsp.CreateRequest(leaf, issuer, nil)
	if err != nil {
		return fmt.Errorf("nats: building OCSP request: %w", err)
	}
	resp, err := http.Post(leaf.OCSPServer[0], "application/ocsp-request", newByteReader(req))
	if err != nil {
		return fmt.Errorf("nats: OCSP request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("nats: reading OCSP response: %w", err)
	}
	parsed, err := ocsp.ParseResponseForCert(body, leaf, issuer)
	if err != nil {
		return fmt.Errorf("nats: parsing OCSP response: %w", err)
	}
	if parsed.Status == ocsp.Revoked {
		return fmt.Errorf("nats: certificate revoked at %s", parsed.RevokedAt)
	}
	return nil
}
