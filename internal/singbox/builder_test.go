package singbox

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"boxlink/internal/singbox/option"
)

func vless(tag string) option.Outbound {
	return option.VLESSOutbound{
		Name:       tag,
		Server:     "example.com",
		ServerPort: 443,
		UUID:       "11111111-1111-1111-1111-111111111111",
		Transport:  option.TCPTransport(),
	}
}

func tagsOf(cfg *option.Config) []string {
	var tags []string
	for _, o := range cfg.Outbounds {
		tags = append(tags, o.Tag())
	}
	return tags
}

func TestTagUniqueness(t *testing.T) {
	cases := []struct {
		name  string
		input []string
		extra int
	}{
		{"empty", nil, 3},
		{"single", []string{"node"}, 3},
		{"sink collisions", []string{"direct", "block", "dns-out"}, 4},
		{"repeats", []string{"a", "a", "a", "a_1", "auto_select_proxies"}, 4},
	}

	for _, tc := range cases {
		var proxies []option.Outbound
		for _, tag := range tc.input {
			proxies = append(proxies, vless(tag))
		}
		cfg := assemble(proxies, DefaultOptions())

		if got, want := len(cfg.Outbounds), len(tc.input)+tc.extra; got != want {
			t.Fatalf("%s: expected %d outbounds, got %d (%v)", tc.name, want, got, tagsOf(cfg))
		}
		seen := make(map[string]bool)
		for _, tag := range tagsOf(cfg) {
			if seen[tag] {
				t.Fatalf("%s: duplicate tag %q in %v", tc.name, tag, tagsOf(cfg))
			}
			seen[tag] = true
		}
	}
}

func TestCollisionSuffix(t *testing.T) {
	cfg := assemble([]option.Outbound{vless("a"), vless("a"), vless("a"), vless("direct")}, DefaultOptions())
	want := []string{"direct", "block", "dns-out", "a", "a_1", "a_2", "direct_1", "auto_select_proxies"}
	if got := tagsOf(cfg); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected tags:\n got %v\nwant %v", got, want)
	}
}

func TestBuildDoesNotMutateInput(t *testing.T) {
	proxies := []option.Outbound{vless("a"), vless("a")}
	if _, err := Build(proxies, DefaultOptions()); err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if proxies[1].Tag() != "a" {
		t.Fatalf("input mutated: %q", proxies[1].Tag())
	}
}

func TestDefaultTarget(t *testing.T) {
	opts := DefaultOptions()

	cfg := assemble(nil, opts)
	if cfg.Route.Final != TagDirect {
		t.Fatalf("zero proxies should route direct, got %q", cfg.Route.Final)
	}

	cfg = assemble([]option.Outbound{vless("solo")}, opts)
	if cfg.Route.Final != "solo" {
		t.Fatalf("single proxy should be final, got %q", cfg.Route.Final)
	}
	if _, ok := cfg.Outbound(opts.GroupTag); ok {
		t.Fatalf("single proxy must not synthesize a group")
	}

	cfg = assemble([]option.Outbound{vless("x"), vless("y"), vless("x")}, opts)
	if cfg.Route.Final != opts.GroupTag {
		t.Fatalf("expected group as final, got %q", cfg.Route.Final)
	}
	o, ok := cfg.Outbound(opts.GroupTag)
	if !ok {
		t.Fatalf("group missing from %v", tagsOf(cfg))
	}
	group := o.(option.URLTestOutbound)
	if !reflect.DeepEqual(group.Outbounds, []string{"x", "y", "x_1"}) {
		t.Fatalf("unexpected members: %v", group.Outbounds)
	}
	if group.URL != opts.ProbeURL || group.Interval != "10m" || group.Tolerance != 200 {
		t.Fatalf("unexpected probe settings: %+v", group)
	}
}

func TestGroupTagIsUniquified(t *testing.T) {
	opts := DefaultOptions()
	cfg := assemble([]option.Outbound{vless("auto_select_proxies"), vless("b")}, opts)
	if cfg.Route.Final != "auto_select_proxies_1" {
		t.Fatalf("unexpected final: %q", cfg.Route.Final)
	}
	group, _ := cfg.Outbound(cfg.Route.Final)
	if !reflect.DeepEqual(group.(option.URLTestOutbound).Outbounds, []string{"auto_select_proxies", "b"}) {
		t.Fatalf("unexpected members: %+v", group)
	}
}

func TestBuildEmpty(t *testing.T) {
	cfg, err := Build(nil, DefaultOptions())
	if !errors.Is(err, ErrNoValidOutbounds) || cfg != nil {
		t.Fatalf("expected ErrNoValidOutbounds, got %v / %v", cfg, err)
	}
}

func TestDNSDetour(t *testing.T) {
	cfg := assemble([]option.Outbound{vless("solo")}, DefaultOptions())
	detours := make(map[string]string)
	for _, s := range cfg.DNS.Servers {
		detours[s.Tag] = s.Detour
	}
	if detours["dns_cf_tls"] != "solo" || detours["dns_google_doh"] != "solo" {
		t.Fatalf("remote resolvers should use the default target: %v", detours)
	}
	if detours["dns_ali"] != TagDirect || detours["dns_system"] != TagDirect {
		t.Fatalf("local resolvers must go direct: %v", detours)
	}
	last := cfg.DNS.Rules[len(cfg.DNS.Rules)-1]
	if last.Server != "dns_system" || len(last.Geosite)+len(last.DomainSuffix)+len(last.QueryType) != 0 {
		t.Fatalf("catch-all must be the last dns rule: %+v", last)
	}
}

func TestRouteRuleOrder(t *testing.T) {
	cfg := assemble([]option.Outbound{vless("solo")}, DefaultOptions())
	rules := cfg.Route.Rules
	if rules[0].Outbound != TagDNSOut || rules[0].Protocol[0] != "dns" {
		t.Fatalf("dns protocol rule must be first: %+v", rules[0])
	}
	if rules[1].Outbound != TagBlock || rules[2].Outbound != TagBlock {
		t.Fatalf("block rules must follow: %+v", rules[1:3])
	}
	for _, r := range rules[3:] {
		if r.Outbound != TagDirect {
			t.Fatalf("remaining rules should go direct: %+v", r)
		}
	}
	if !cfg.Route.AutoDetectInterface || !cfg.Route.OverrideAndroidVPN {
		t.Fatalf("unexpected route flags: %+v", cfg.Route)
	}
}

func TestEncodeTopLevelKeys(t *testing.T) {
	cfg, err := Build([]option.Outbound{vless("a"), vless("b")}, DefaultOptions())
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	b, err := Encode(cfg)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(b, &doc); err != nil {
		t.Fatalf("document is not valid json: %v", err)
	}
	for _, key := range []string{"log", "dns", "inbounds", "outbounds", "route", "experimental"} {
		if _, ok := doc[key]; !ok {
			t.Fatalf("missing top-level key %q", key)
		}
	}
	if !strings.Contains(string(doc["inbounds"]), `"type": "tun"`) {
		t.Fatalf("tun inbound missing: %s", doc["inbounds"])
	}
	if !strings.Contains(string(doc["experimental"]), `"cache_file"`) {
		t.Fatalf("cache file missing: %s", doc["experimental"])
	}
}

func TestSplitLines(t *testing.T) {
	got := SplitLines("  vless://a \r\n\r\n\thttps://sub.example.com/x\n\n hy2://b@c:1  ")
	want := []string{"vless://a", "https://sub.example.com/x", "hy2://b@c:1"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected lines: %q", got)
	}
	if !IsSubscription(got[1]) || IsSubscription(got[0]) || !IsSubscription("HTTP://x") {
		t.Fatalf("subscription detection is wrong")
	}
	if d := Dedupe([]string{"a", "b", "a"}); !reflect.DeepEqual(d, []string{"a", "b"}) {
		t.Fatalf("unexpected dedupe: %v", d)
	}
}
