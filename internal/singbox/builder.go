// Package singbox assembles parsed outbounds into a complete routing document.
package singbox

import (
	"errors"
	"fmt"

	"github.com/samber/lo"

	"boxlink/internal/singbox/option"
)

// ErrNoValidOutbounds is returned when a batch produced no usable proxy.
var ErrNoValidOutbounds = errors.New("no valid outbounds")

// Build turns proxies into a full document. proxies keeps its input order and
// is not modified; colliding tags are rewritten on copies. An empty batch is
// not turned into a direct-only document: it fails with ErrNoValidOutbounds.
func Build(proxies []option.Outbound, opts Options) (*option.Config, error) {
	if len(proxies) == 0 {
		return nil, ErrNoValidOutbounds
	}
	return assemble(proxies, opts), nil
}

func assemble(proxies []option.Outbound, opts Options) *option.Config {
	outbounds, proxyTags, seen := uniqueOutbounds(proxies)

	target := TagDirect
	switch len(proxyTags) {
	case 0:
	case 1:
		target = proxyTags[0]
	default:
		group := option.URLTestOutbound{
			Name:      uniqueTag(seen, opts.GroupTag),
			Outbounds: proxyTags,
			URL:       opts.ProbeURL,
			Interval:  opts.ProbeInterval,
			Tolerance: opts.Tolerance,
		}
		seen[group.Name] = true
		outbounds = append(outbounds, group)
		target = group.Name
	}

	cfg := &option.Config{
		Log: &option.LogOptions{
			Level:     opts.LogLevel,
			Timestamp: opts.LogTimestamp,
		},
		DNS:       buildDNS(opts, target),
		Inbounds:  buildInbounds(opts),
		Outbounds: outbounds,
		Route:     buildRoute(opts, target),
		Experimental: &option.ExperimentalOptions{
			ClashAPI: opts.ClashAPI,
		},
	}
	if opts.CacheFile {
		cfg.Experimental.CacheFile = &option.CacheFileOptions{Enabled: true}
	}
	return cfg
}

// uniqueOutbounds seeds the sinks, then appends every proxy under a tag no
// earlier outbound uses.
func uniqueOutbounds(proxies []option.Outbound) ([]option.Outbound, []string, map[string]bool) {
	outbounds := []option.Outbound{
		option.DirectOutbound{Name: TagDirect},
		option.BlockOutbound{Name: TagBlock},
		option.DNSOutbound{Name: TagDNSOut},
	}
	seen := lo.SliceToMap(outbounds, func(o option.Outbound) (string, bool) {
		return o.Tag(), true
	})

	renamed := lo.Map(proxies, func(o option.Outbound, _ int) option.Outbound {
		t := uniqueTag(seen, o.Tag())
		seen[t] = true
		if t != o.Tag() {
			return o.WithTag(t)
		}
		return o
	})
	outbounds = append(outbounds, renamed...)

	tags := lo.Map(renamed, func(o option.Outbound, _ int) string { return o.Tag() })
	return outbounds, tags, seen
}

// uniqueTag appends the smallest _n that makes t unused.
func uniqueTag(seen map[string]bool, t string) string {
	if !seen[t] {
		return t
	}
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s_%d", t, n)
		if !seen[candidate] {
			return candidate
		}
	}
}

func buildDNS(opts Options, target string) *option.DNSOptions {
	servers := lo.Map(opts.DNSServers, func(s DNSServerOptions, _ int) option.DNSServer {
		detour := TagDirect
		if s.Remote {
			detour = target
		}
		return option.DNSServer{Address: s.Address, Tag: s.Tag, Detour: detour}
	})
	return &option.DNSOptions{
		Servers:  servers,
		Rules:    append([]option.DNSRule(nil), opts.DNSRules...),
		Strategy: opts.DNSStrategy,
	}
}

func buildInbounds(opts Options) []option.Inbound {
	var inbounds []option.Inbound
	if opts.TunEnabled {
		inbounds = append(inbounds, option.TunInbound{
			Name:          "tun-in",
			InterfaceName: opts.TunInterface,
			Inet4Address:  opts.TunAddress,
			AutoRoute:     true,
			StrictRoute:   true,
			Stack:         opts.TunStack,
			Sniff:         true,
		})
	}
	inbounds = append(inbounds, option.MixedInbound{
		Name:       "mixed-proxy-in",
		Listen:     opts.MixedListen,
		ListenPort: opts.MixedPort,
		Sniff:      true,
	})
	return inbounds
}

// buildRoute emits rules in priority order; unmatched traffic falls to target.
func buildRoute(opts Options, target string) *option.RouteOptions {
	rules := []option.RouteRule{
		{Protocol: []string{"dns"}, Outbound: TagDNSOut},
	}
	if len(opts.BlockDomains) > 0 {
		rules = append(rules, option.RouteRule{Domain: opts.BlockDomains, Outbound: TagBlock})
	}
	if len(opts.BlockKeywords) > 0 {
		rules = append(rules, option.RouteRule{DomainKeyword: opts.BlockKeywords, Outbound: TagBlock})
	}
	if len(opts.DirectSuffixes) > 0 {
		rules = append(rules, option.RouteRule{DomainSuffix: opts.DirectSuffixes, Outbound: TagDirect})
	}
	if len(opts.DirectGeosite) > 0 {
		rules = append(rules, option.RouteRule{Geosite: opts.DirectGeosite, Outbound: TagDirect})
	}
	if len(opts.DirectGeoIP) > 0 {
		rules = append(rules, option.RouteRule{GeoIP: opts.DirectGeoIP, Outbound: TagDirect})
	}
	if len(opts.PrivateCIDRs) > 0 {
		rules = append(rules, option.RouteRule{IPCIDR: opts.PrivateCIDRs, Outbound: TagDirect})
	}
	rules = append(rules, option.RouteRule{Domain: []string{"localhost"}, Outbound: TagDirect})

	return &option.RouteOptions{
		Rules:               rules,
		Final:               target,
		AutoDetectInterface: true,
		OverrideAndroidVPN:  true,
	}
}
