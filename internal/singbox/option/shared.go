package option

import "encoding/json"

type TLSOptions struct {
	Enabled    bool            `json:"enabled"`
	ServerName string          `json:"server_name,omitempty"`
	Insecure   bool            `json:"insecure,omitempty"`
	ALPN       []string        `json:"alpn,omitempty"`
	UTLS       *UTLSOptions    `json:"utls,omitempty"`
	Reality    *RealityOptions `json:"reality,omitempty"`
}

// UTLSOptions selects the browser ClientHello the handshake mimics.
type UTLSOptions struct {
	Enabled     bool   `json:"enabled"`
	Fingerprint string `json:"fingerprint,omitempty"`
}

type RealityOptions struct {
	Enabled   bool   `json:"enabled"`
	PublicKey string `json:"public_key"`
	ShortID   string `json:"short_id"`
}

// Hysteria2Obfs is nested under "obfs"; the runtime rejects a flat obfs_password.
type Hysteria2Obfs struct {
	Type     string `json:"type"`
	Password string `json:"password"`
}

// Transport kinds.
const (
	TransportTCP       = "tcp"
	TransportWebSocket = "ws"
	TransportGRPC      = "grpc"
	TransportHTTP2     = "h2"
)

// TransportOptions is a tagged option: Type decides which of the kind-specific
// blocks is meaningful, and only that block is encoded.
type TransportOptions struct {
	Type      string
	WebSocket WebSocketOptions
	GRPC      GRPCOptions
	HTTP2     HTTP2Options
}

type WebSocketOptions struct {
	Path    string            `json:"path"`
	Headers map[string]string `json:"headers,omitempty"`
}

type GRPCOptions struct {
	ServiceName string `json:"service_name"`
}

type HTTP2Options struct {
	Path string   `json:"path"`
	Host []string `json:"host,omitempty"`
}

func TCPTransport() *TransportOptions {
	return &TransportOptions{Type: TransportTCP}
}

func WebSocketTransport(path, host string) *TransportOptions {
	return &TransportOptions{
		Type: TransportWebSocket,
		WebSocket: WebSocketOptions{
			Path:    path,
			Headers: map[string]string{"Host": host},
		},
	}
}

func GRPCTransport(serviceName string) *TransportOptions {
	return &TransportOptions{
		Type: TransportGRPC,
		GRPC: GRPCOptions{ServiceName: serviceName},
	}
}

func HTTP2Transport(path, host string) *TransportOptions {
	return &TransportOptions{
		Type: TransportHTTP2,
		HTTP2: HTTP2Options{
			Path: path,
			Host: []string{host},
		},
	}
}

func (t TransportOptions) MarshalJSON() ([]byte, error) {
	switch t.Type {
	case TransportWebSocket:
		return marshalTyped(t.Type, t.WebSocket)
	case TransportGRPC:
		return marshalTyped(t.Type, t.GRPC)
	case TransportHTTP2:
		return marshalTyped(t.Type, t.HTTP2)
	default:
		return json.Marshal(struct {
			Type string `json:"type"`
		}{t.Type})
	}
}
