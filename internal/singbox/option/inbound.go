package option

const (
	TypeTun   = "tun"
	TypeMixed = "mixed"
)

// Inbound is a local listener definition.
type Inbound interface {
	Type() string
	Tag() string

	inbound()
}

// TunInbound captures system traffic through a virtual network interface.
type TunInbound struct {
	Name                     string `json:"tag"`
	InterfaceName            string `json:"interface_name,omitempty"`
	Inet4Address             string `json:"inet4_address"`
	MTU                      int    `json:"mtu,omitempty"`
	AutoRoute                bool   `json:"auto_route"`
	StrictRoute              bool   `json:"strict_route"`
	Stack                    string `json:"stack,omitempty"`
	Sniff                    bool   `json:"sniff"`
	SniffOverrideDestination bool   `json:"sniff_override_destination"`
}

// MixedInbound serves HTTP and SOCKS on one port.
type MixedInbound struct {
	Name       string `json:"tag"`
	Listen     string `json:"listen"`
	ListenPort int    `json:"listen_port"`
	Sniff      bool   `json:"sniff"`
}

func (i TunInbound) Type() string   { return TypeTun }
func (i MixedInbound) Type() string { return TypeMixed }

func (i TunInbound) Tag() string   { return i.Name }
func (i MixedInbound) Tag() string { return i.Name }

func (TunInbound) inbound()   {}
func (MixedInbound) inbound() {}

func (i TunInbound) MarshalJSON() ([]byte, error) {
	type plain TunInbound
	return marshalTyped(i.Type(), plain(i))
}

func (i MixedInbound) MarshalJSON() ([]byte, error) {
	type plain MixedInbound
	return marshalTyped(i.Type(), plain(i))
}
