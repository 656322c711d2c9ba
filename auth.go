package nats

import (
	"encoding/base64"

	"github.com/nats-io/nkeys"
)

// AuthMethod carries optional CONNECT-time credentials. At most one of
// User/Pass, Token or NKeySeed may be set; Validate enforces that.
type AuthMethod struct {
	User     string
	Pass     string
	Token    string
	NKeySeed []byte
}

func (a AuthMethod) empty() bool {
	return a.User == "" && a.Pass == "" && a.Token == "" && len(a.NKeySeed) == 0
}

// Validate rejects ambiguous configurations (e.g. both a Token and an
// NKeySeed set).
func (a AuthMethod) Validate() error {
	set := 0
	if a.User != "" || a.Pass != "" {
		set++
	}
	if a.Token != "" {
		set++
	}
	if len(a.NKeySeed) > 0 {
		set++
	}
	if set > 1 {
		return ErrInvalidAuth
	}
	return nil
}

// connectFields holds the pieces of the CONNECT JSON payload that auth
// contributes; sig is only populated for an NKey seed when the server sent
// a nonce (ServerInfo.Nonce non-empty).
type connectFields struct {
	user  string
	pass  string
	token string
	nkey  string
	sig   string
}

// buildAuthFields derives the auth-related CONNECT fields from a and the
// server's advertised nonce (empty if the server did not challenge).
func buildAuthFields(a AuthMethod, nonce string) (connectFields, error) {
	var f connectFields
	switch {
	case a.User != "" || a.Pass != "":
		f.user, f.pass = a.User, a.Pass
	case a.Token != "":
		f.token = a.Token
	case len(a.NKeySeed) > 0:
		kp, err := nkeys.FromSeed(a.NKeySeed)
		if err != nil {
			return f, err
		}
		pub, err := kp.PublicKey()
		if err != nil {
			return f, err
		}
		f.nkey = pub
		if nonce != "" {
			sig, err := kp.Sign([]byte(nonce))
			if err != nil {
				return f, err
			}
			f.sig = base64.RawURLEncoding.EncodeToString(sig)
		}
	}
	return f, nil
}
