package option

import "encoding/json"

// Outbound type identifiers as understood by the proxy runtime.
const (
	TypeVLESS     = "vless"
	TypeVMess     = "vmess"
	TypeHysteria2 = "hysteria2"
	TypeDirect    = "direct"
	TypeBlock     = "block"
	TypeDNS       = "dns"
	TypeURLTest   = "urltest"
)

// Outbound is the closed set of egress definitions a document can carry.
// Values are immutable; WithTag returns a renamed copy.
type Outbound interface {
	Type() string
	Tag() string
	WithTag(tag string) Outbound

	outbound()
}

// Standard sink outbounds.

type DirectOutbound struct {
	Name string `json:"tag"`
}

type BlockOutbound struct {
	Name string `json:"tag"`
}

// DNSOutbound is the sink that answers DNS-protocol traffic.
type DNSOutbound struct {
	Name string `json:"tag"`
}

// Proxy outbounds, produced by the link parsers.

type VLESSOutbound struct {
	Name       string            `json:"tag"`
	Server     string            `json:"server"`
	ServerPort int               `json:"server_port"`
	UUID       string            `json:"uuid"`
	Encryption string            `json:"encryption,omitempty"`
	Flow       string            `json:"flow,omitempty"`
	TLS        *TLSOptions       `json:"tls,omitempty"`
	Transport  *TransportOptions `json:"transport,omitempty"`
}

type VMessOutbound struct {
	Name       string            `json:"tag"`
	Server     string            `json:"server"`
	ServerPort int               `json:"server_port"`
	UUID       string            `json:"uuid"`
	AlterID    int               `json:"alter_id"`
	Security   string            `json:"security"`
	TLS        *TLSOptions       `json:"tls,omitempty"`
	Transport  *TransportOptions `json:"transport,omitempty"`
}

type Hysteria2Outbound struct {
	Name        string         `json:"tag"`
	Server      string         `json:"server"`
	ServerPort  int            `json:"server_port"`
	ServerPorts []string       `json:"server_ports,omitempty"`
	Password    string         `json:"password"`
	UpMbps      int            `json:"up_mbps"`
	DownMbps    int            `json:"down_mbps"`
	Obfs        *Hysteria2Obfs `json:"obfs,omitempty"`
	TLS         *TLSOptions    `json:"tls"`
}

// URLTestOutbound is the latency-probing auto-selection group. It is only
// ever synthesized by the builder.
type URLTestOutbound struct {
	Name      string   `json:"tag"`
	Outbounds []string `json:"outbounds"`
	URL       string   `json:"url"`
	Interval  string   `json:"interval"`
	Tolerance int      `json:"tolerance"`
}

func (o DirectOutbound) Type() string    { return TypeDirect }
func (o BlockOutbound) Type() string     { return TypeBlock }
func (o DNSOutbound) Type() string       { return TypeDNS }
func (o VLESSOutbound) Type() string     { return TypeVLESS }
func (o VMessOutbound) Type() string     { return TypeVMess }
func (o Hysteria2Outbound) Type() string { return TypeHysteria2 }
func (o URLTestOutbound) Type() string   { return TypeURLTest }

func (o DirectOutbound) Tag() string    { return o.Name }
func (o BlockOutbound) Tag() string     { return o.Name }
func (o DNSOutbound) Tag() string       { return o.Name }
func (o VLESSOutbound) Tag() string     { return o.Name }
func (o VMessOutbound) Tag() string     { return o.Name }
func (o Hysteria2Outbound) Tag() string { return o.Name }
func (o URLTestOutbound) Tag() string   { return o.Name }

func (o DirectOutbound) WithTag(tag string) Outbound    { o.Name = tag; return o }
func (o BlockOutbound) WithTag(tag string) Outbound     { o.Name = tag; return o }
func (o DNSOutbound) WithTag(tag string) Outbound       { o.Name = tag; return o }
func (o VLESSOutbound) WithTag(tag string) Outbound     { o.Name = tag; return o }
func (o VMessOutbound) WithTag(tag string) Outbound     { o.Name = tag; return o }
func (o Hysteria2Outbound) WithTag(tag string) Outbound { o.Name = tag; return o }
func (o URLTestOutbound) WithTag(tag string) Outbound {
	o.Name = tag
	o.Outbounds = append([]string(nil), o.Outbounds...)
	return o
}

func (DirectOutbound) outbound()    {}
func (BlockOutbound) outbound()     {}
func (DNSOutbound) outbound()       {}
func (VLESSOutbound) outbound()     {}
func (VMessOutbound) outbound()     {}
func (Hysteria2Outbound) outbound() {}
func (URLTestOutbound) outbound()   {}

// marshalTyped prefixes the encoded body with its "type" key.
func marshalTyped[T any](kind string, body T) ([]byte, error) {
	head, err := json.Marshal(struct {
		Type string `json:"type"`
	}{kind})
	if err != nil {
		return nil, err
	}
	rest, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	if len(rest) <= 2 {
		return head, nil
	}
	// {"type":"x"} + {"tag":...} -> {"type":"x","tag":...}
	out := make([]byte, 0, len(head)+len(rest))
	out = append(out, head[:len(head)-1]...)
	out = append(out, ',')
	out = append(out, rest[1:]...)
	return out, nil
}

func (o DirectOutbound) MarshalJSON() ([]byte, error) {
	type plain DirectOutbound
	return marshalTyped(o.Type(), plain(o))
}

func (o BlockOutbound) MarshalJSON() ([]byte, error) {
	type plain BlockOutbound
	return marshalTyped(o.Type(), plain(o))
}

func (o DNSOutbound) MarshalJSON() ([]byte, error) {
	type plain DNSOutbound
	return marshalTyped(o.Type(), plain(o))
}

func (o VLESSOutbound) MarshalJSON() ([]byte, error) {
	type plain VLESSOutbound
	return marshalTyped(o.Type(), plain(o))
}

func (o VMessOutbound) MarshalJSON() ([]byte, error) {
	type plain VMessOutbound
	return marshalTyped(o.Type(), plain(o))
}

func (o Hysteria2Outbound) MarshalJSON() ([]byte, error) {
	type plain Hysteria2Outbound
	return marshalTyped(o.Type(), plain(o))
}

func (o URLTestOutbound) MarshalJSON() ([]byte, error) {
	type plain URLTestOutbound
	return marshalTyped(o.Type(), plain(o))
}

// IsProxy reports whether o is a parsed proxy server rather than a sink or group.
func IsProxy(o Outbound) bool {
	switch o.(type) {
	case VLESSOutbound, VMessOutbound, Hysteria2Outbound:
		return true
	}
	return false
}

// TransportType names the stream transport a proxy rides on.
func TransportType(o Outbound) string {
	var t *TransportOptions
	switch v := o.(type) {
	case VLESSOutbound:
		t = v.Transport
	case VMessOutbound:
		t = v.Transport
	case Hysteria2Outbound:
		return "quic"
	default:
		return ""
	}
	if t == nil || t.Type == "" {
		return TransportTCP
	}
	return t.Type
}
