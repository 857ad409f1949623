// Package inspect summarizes a batch of parsed outbounds without touching the
// network: protocol and transport mix, tag collisions, TLS usage and where
// literal server addresses sit.
package inspect

import (
	"net"
	"sort"
	"strings"

	"github.com/biter777/countries"
	"github.com/samber/lo"
	"github.com/yl2chen/cidranger"

	"boxlink/internal/geoip"
	"boxlink/internal/singbox/option"
)

// PrivateRanges are address blocks a public proxy server should never be in.
var PrivateRanges = []string{
	"0.0.0.0/8",
	"10.0.0.0/8",
	"100.64.0.0/10",
	"127.0.0.0/8",
	"169.254.0.0/16",
	"172.16.0.0/12",
	"192.168.0.0/16",
	"::1/128",
	"fc00::/7",
	"fe80::/10",
}

type Server struct {
	Tag     string
	Type    string
	Address string
	Port    int
	Private bool
	Country string // ISO code, "" when unknown or not an IP
	ISP     string
}

type Report struct {
	Protocols  map[string]int
	Transports map[string]int
	Security   map[string]int
	Collisions map[string]int // raw tag -> occurrences, only when > 1
	Countries  map[string]int
	Servers    []Server
}

// Inspector matches server addresses against private ranges and, when a
// GeoIP database is loaded, resolves their country.
type Inspector struct {
	ranger cidranger.Ranger
	geo    bool
}

func New(useGeoIP bool) *Inspector {
	r := cidranger.NewPCTrieRanger()
	for _, cidr := range PrivateRanges {
		if _, n, err := net.ParseCIDR(cidr); err == nil {
			r.Insert(cidranger.NewBasicRangerEntry(*n))
		}
	}
	return &Inspector{ranger: r, geo: useGeoIP}
}

// IsPrivate reports whether addr is a literal IP inside PrivateRanges.
func (in *Inspector) IsPrivate(addr string) bool {
	ip := net.ParseIP(strings.Trim(addr, "[]"))
	if ip == nil {
		return strings.EqualFold(addr, "localhost")
	}
	ok, err := in.ranger.Contains(ip)
	return err == nil && ok
}

func (in *Inspector) Analyze(proxies []option.Outbound) *Report {
	rep := &Report{
		Protocols:  make(map[string]int),
		Transports: make(map[string]int),
		Security:   make(map[string]int),
		Collisions: make(map[string]int),
		Countries:  make(map[string]int),
	}

	tagCounts := lo.CountValuesBy(proxies, func(o option.Outbound) string { return o.Tag() })
	for tag, n := range tagCounts {
		if n > 1 {
			rep.Collisions[tag] = n
		}
	}

	for _, p := range proxies {
		rep.Protocols[p.Type()]++
		rep.Transports[option.TransportType(p)]++
		rep.Security[security(p)]++

		srv := Server{Tag: p.Tag(), Type: p.Type()}
		srv.Address, srv.Port = endpoint(p)
		srv.Private = in.IsPrivate(srv.Address)
		if in.geo && !srv.Private {
			if res, err := geoip.Lookup(srv.Address); err == nil {
				srv.Country = res.Country
				srv.ISP = res.ISP
				rep.Countries[res.Country]++
			}
		}
		rep.Servers = append(rep.Servers, srv)
	}

	sort.SliceStable(rep.Servers, func(i, j int) bool {
		return rep.Servers[i].Private && !rep.Servers[j].Private
	})
	return rep
}

// CountryName returns the English name of an ISO alpha-2 code.
func CountryName(code string) string {
	c := countries.ByName(code)
	if c == countries.Unknown {
		return code
	}
	return c.String()
}

func security(o option.Outbound) string {
	var tls *option.TLSOptions
	switch v := o.(type) {
	case option.VLESSOutbound:
		tls = v.TLS
	case option.VMessOutbound:
		tls = v.TLS
	case option.Hysteria2Outbound:
		tls = v.TLS
	}
	switch {
	case tls == nil || !tls.Enabled:
		return "none"
	case tls.Reality != nil:
		return "reality"
	case tls.Insecure:
		return "tls (insecure)"
	}
	return "tls"
}

func endpoint(o option.Outbound) (string, int) {
	switch v := o.(type) {
	case option.VLESSOutbound:
		return v.Server, v.ServerPort
	case option.VMessOutbound:
		return v.Server, v.ServerPort
	case option.Hysteria2Outbound:
		return v.Server, v.ServerPort
	}
	return "", 0
}
