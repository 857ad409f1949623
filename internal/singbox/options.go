package singbox

import "boxlink/internal/singbox/option"

// Sink tags seeded into every document.
const (
	TagDirect = "direct"
	TagBlock  = "block"
	TagDNSOut = "dns-out"
)

// Options carries the tunable parts of a generated document. The zero value
// is not useful; start from DefaultOptions.
type Options struct {
	LogLevel     string
	LogTimestamp bool

	GroupTag      string
	ProbeURL      string
	ProbeInterval string
	Tolerance     int

	DNSServers  []DNSServerOptions
	DNSRules    []option.DNSRule
	DNSStrategy string

	TunEnabled   bool
	TunInterface string
	TunAddress   string
	TunStack     string
	MixedListen  string
	MixedPort    int

	BlockDomains   []string
	BlockKeywords  []string
	DirectSuffixes []string
	DirectGeosite  []string
	DirectGeoIP    []string
	PrivateCIDRs   []string

	CacheFile bool
	ClashAPI  *option.ClashAPIOptions
}

// DNSServerOptions describes one resolver. Remote resolvers are reached
// through the document's default target, the rest always go direct.
type DNSServerOptions struct {
	Tag     string `yaml:"tag" toml:"tag"`
	Address string `yaml:"address" toml:"address"`
	Remote  bool   `yaml:"remote" toml:"remote"`
}

func DefaultOptions() Options {
	return Options{
		LogLevel:     "info",
		LogTimestamp: true,

		GroupTag:      "auto_select_proxies",
		ProbeURL:      "http://www.gstatic.com/generate_204",
		ProbeInterval: "10m",
		Tolerance:     200,

		DNSServers: []DNSServerOptions{
			{Tag: "dns_cf_tls", Address: "tls://1.1.1.1", Remote: true},
			{Tag: "dns_google_doh", Address: "https://dns.google/dns-query", Remote: true},
			{Tag: "dns_cf_plain_backup", Address: "1.0.0.1", Remote: true},
			{Tag: "dns_ali", Address: "223.5.5.5"},
			{Tag: "dns_shecan", Address: "185.51.200.2"},
			{Tag: "dns_system", Address: "local"},
		},
		DNSRules: []option.DNSRule{
			{Geosite: []string{"category-ir"}, Server: "dns_ali"},
			{DomainSuffix: []string{".ir"}, Server: "dns_ali"},
			{QueryType: []string{"A", "AAAA"}, Server: "dns_cf_tls", RewriteTTL: 300},
			{Server: "dns_system"},
		},
		DNSStrategy: "ipv4_only",

		TunEnabled:   true,
		TunInterface: "NotePadVPN-TUN",
		TunAddress:   "172.19.0.1/28",
		TunStack:     "mixed",
		MixedListen:  "127.0.0.1",
		MixedPort:    2080,

		BlockDomains:   []string{"allatori.com", "analytics.example.com"},
		BlockKeywords:  []string{"ads", "tracker"},
		DirectSuffixes: []string{".ir", "arvancloud.ir", "arvancloud.com", "cdn.ir", "shaparak.ir", "digikala.com"},
		DirectGeosite:  []string{"category-ir"},
		DirectGeoIP:    []string{"ir"},
		PrivateCIDRs:   []string{"192.168.0.0/16", "10.0.0.0/8", "172.16.0.0/12"},

		CacheFile: true,
	}
}
