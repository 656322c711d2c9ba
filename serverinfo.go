package nats

// ServerInfo is parsed from the server's INFO frame.
type ServerInfo struct {
	ServerID     string   `json:"server_id"`
	Version      string   `json:"version"`
	Host         string   `json:"host"`
	Port         int      `json:"port"`
	AuthRequired bool     `json:"auth_required"`
	TLSRequired  bool     `json:"tls_required"`
	MaxPayload   int64    `json:"max_payload"`
	ConnectURLs  []string `json:"connect_urls"`
	Nonce        string   `json:"nonce"`
	Headers      bool     `json:"headers"`
}

// connectInfo is the CONNECT JSON payload sent to the server.
type connectInfo struct {
	Verbose     bool   `json:"verbose"`
	Pedantic    bool   `json:"pedantic"`
	TLSRequired bool   `json:"tls_required"`
	User        string `json:"user,omitempty"`
	Pass        string `json:"pass,omitempty"`
	AuthToken   string `json:"auth_token,omitempty"`
	NKey        string `json:"nkey,omitempty"`
	Sig         string `json:"sig,omitempty"`
	Headers     bool   `json:"headers"`
	Name        string `json:"name,omitempty"`
	Lang        string `json:"lang"`
	Version     string `json:"version"`
	Protocol    int    `json:"protocol"`
}
