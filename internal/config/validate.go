package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/miekg/dns"
)

// Validate reports every problem found, joined into one error.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...interface{}) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	s := c.Subscription
	switch s.Collector {
	case "http", "allorigins":
	default:
		add("subscription.collector: unknown collector %q", s.Collector)
	}
	if s.Collector == "allorigins" && !govalidator.IsRequestURL(s.RelayURL) {
		add("subscription.relay_url: %q is not a valid url", s.RelayURL)
	}
	if s.Proxy != "" && !govalidator.IsRequestURL(s.Proxy) {
		add("subscription.proxy: %q is not a valid url", s.Proxy)
	}

	d := c.Document
	if !govalidator.IsRequestURL(d.URLTest.URL) {
		add("document.urltest.url: %q is not a valid url", d.URLTest.URL)
	}
	if _, err := time.ParseDuration(d.URLTest.Interval); err != nil {
		add("document.urltest.interval: %v", err)
	}
	if d.URLTest.Tag == "" {
		add("document.urltest.tag: must not be empty")
	}
	if d.URLTest.Tolerance < 0 {
		add("document.urltest.tolerance: must not be negative")
	}

	servers := make(map[string]bool)
	for _, srv := range d.DNS.Servers {
		if srv.Tag == "" || srv.Address == "" {
			add("document.dns.servers: tag and address are required")
			continue
		}
		servers[srv.Tag] = true
	}
	for i, r := range d.DNS.Rules {
		if !servers[r.Server] {
			add("document.dns.rules[%d]: unknown server %q", i, r.Server)
		}
		for _, qt := range r.QueryType {
			if _, ok := dns.StringToType[strings.ToUpper(qt)]; !ok {
				add("document.dns.rules[%d]: unknown query type %q", i, qt)
			}
		}
		catchAll := len(r.Geosite)+len(r.Domain)+len(r.DomainSuffix)+len(r.QueryType) == 0
		if catchAll && i != len(d.DNS.Rules)-1 {
			add("document.dns.rules[%d]: catch-all rule must be last", i)
		}
	}

	in := d.Inbounds
	if !govalidator.IsIP(in.MixedListen) {
		add("document.inbounds.mixed_listen: %q is not an ip", in.MixedListen)
	}
	if !validPort(in.MixedPort) {
		add("document.inbounds.mixed_port: %d out of range", in.MixedPort)
	}
	if in.Tun {
		if _, _, err := net.ParseCIDR(in.TunAddress); err != nil {
			add("document.inbounds.tun_address: %v", err)
		}
	}

	for _, cidr := range d.Route.PrivateCIDRs {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			add("document.route.private_cidrs: %v", err)
		}
	}

	if d.ClashAPI.ExternalController != "" {
		if _, port, err := net.SplitHostPort(d.ClashAPI.ExternalController); err != nil || !govalidator.IsPort(port) {
			add("document.clash_api.external_controller: %q is not host:port", d.ClashAPI.ExternalController)
		}
	}

	for i, p := range c.Publishers {
		if p.Name == "" || p.Type == "" {
			add("publishers[%d]: name and type are required", i)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func validPort(p int) bool {
	return p > 0 && p <= 65535
}
