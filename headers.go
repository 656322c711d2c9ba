package nats

import (
	"bytes"
	"strings"
)

const headerLine = "NATS/1.0"

// Header holds HMSG header key/value pairs. Keys are case-sensitive on the
// wire (the server does not canonicalize them), so this is a plain map
// rather than net/textproto's MIMEHeader.
type Header map[string][]string

// Get returns the first value associated with key, or "".
func (h Header) Get(key string) string {
	if h == nil {
		return ""
	}
	v := h[key]
	if len(v) == 0 {
		return ""
	}
	return v[0]
}

// Values returns all values associated with key.
func (h Header) Values(key string) []string { return h[key] }

// Set replaces any existing values for key.
func (h Header) Set(key, value string) { h[key] = []string{value} }

// Add appends value to key's existing values.
func (h Header) Add(key, value string) { h[key] = append(h[key], value) }

// encodeHeaders renders h as the HMSG header block, including the leading
// NATS/1.0 status line and the terminating blank line.
func encodeHeaders(h Header) []byte {
	var buf bytes.Buffer
	buf.WriteString(headerLine)
	buf.WriteString(_CRLF_)
	for k, values := range h {
		for _, v := range values {
			buf.WriteString(k)
			buf.WriteString(": ")
			buf.WriteString(v)
			buf.WriteString(_CRLF_)
		}
	}
	buf.WriteString(_CRLF_)
	return buf.Bytes()
}

// parseHeaders parses the HMSG header block (the hdr-size-length prefix of
// the frame's body). It returns the decoded Header plus, for a status-only
// block such as "NATS/1.0 503 No Responders\r\n\r\n", the status code and
// description with no other header lines.
func parseHeaders(block []byte) (Header, string, string, error) {
	lines := strings.Split(string(block), _CRLF_)
	if len(lines) == 0 || !strings.HasPrefix(lines[0], headerLine) {
		return nil, "", "", &ProtocolError{Msg: "invalid header block: missing NATS/1.0 status line"}
	}

	status, desc := "", ""
	if rest := strings.TrimSpace(strings.TrimPrefix(lines[0], headerLine)); rest != "" {
		parts := strings.SplitN(rest, " ", 2)
		status = parts[0]
		if len(parts) == 2 {
			desc = parts[1]
		}
	}

	h := make(Header)
	for _, line := range lines[1:] {
		if line == "" {
			continue
		}
		idx := strings.IndexByte(line, ':')
		if idx < 0 {
			return nil, "", "", &ProtocolError{Msg: "invalid header line: missing ':': " + line}
		}
		key := strings.TrimSpace(line[:idx])
		value := strings.TrimSpace(line[idx+1:])
		if key == "" {
			return nil, "", "", &ProtocolError{Msg: "invalid header line: empty key"}
		}
		h.Add(key, value)
	}
	return h, status, desc, nil
}
