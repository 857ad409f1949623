package parser

import (
	"fmt"
	"net/url"
	"strings"

	"boxlink/internal/singbox/option"
	"boxlink/internal/singbox/tag"
)

const (
	defaultUpMbps   = 20
	defaultDownMbps = 100
)

// hysteria2://<auth>@<host>:<port>?<query>#<remark>, also hy2://.
func parseHysteria2(raw string) (option.Outbound, error) {
	if i := strings.Index(raw, "://"); i >= 0 {
		raw = "hysteria2" + raw[i:]
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, malformed(raw, "%v", err)
	}
	if u.Hostname() == "" {
		return nil, malformed(raw, "missing host")
	}
	port, ok := parsePort(u.Port())
	if !ok {
		return nil, malformed(raw, "invalid port %q", u.Port())
	}

	// auth may be encoded as user or as user:pass.
	var password string
	if u.User != nil {
		password = u.User.Username()
		if password == "" {
			password, _ = u.User.Password()
		}
	}
	if password == "" {
		return nil, malformed(raw, "missing auth")
	}

	q := u.Query()
	remark := u.Fragment
	if remark == "" {
		remark = fmt.Sprintf("hy2_%s_%d", u.Hostname(), port)
	}

	out := option.Hysteria2Outbound{
		Name:       tag.Sanitize(remark),
		Server:     u.Hostname(),
		ServerPort: port,
		Password:   password,
		UpMbps:     bandwidth(firstParam(q, "upmbps", "up"), defaultUpMbps),
		DownMbps:   bandwidth(firstParam(q, "downmbps", "down"), defaultDownMbps),
		TLS: &option.TLSOptions{
			Enabled:    true,
			ServerName: firstNonEmpty(q.Get("sni"), u.Hostname()),
			Insecure:   isTrue(q.Get("insecure")) || isTrue(q.Get("allowInsecure")),
			ALPN:       []string{"h3"},
			UTLS: &option.UTLSOptions{
				Enabled:     q.Get("utls_enabled") == "true",
				Fingerprint: firstNonEmpty(q.Get("fp"), defaultFingerprint),
			},
		},
	}
	if alpn := splitList(q.Get("alpn")); len(alpn) > 0 {
		out.TLS.ALPN = alpn
	}
	if hops := q.Get("mport"); hops != "" {
		out.ServerPorts = portRanges(hops)
	}
	if obfs := q.Get("obfs"); obfs != "" {
		out.Obfs = &option.Hysteria2Obfs{
			Type:     obfs,
			Password: firstParam(q, "obfs-password", "obfs_password"),
		}
	}
	return out, nil
}

func bandwidth(v string, def int) int {
	if n, ok := leadingInt(v); ok && n > 0 {
		return n
	}
	return def
}

// portRanges converts "20000-30000,443" into ["20000:30000", "443:443"].
func portRanges(v string) []string {
	var out []string
	for _, item := range splitList(v) {
		lo, hi, found := strings.Cut(item, "-")
		if !found {
			hi = lo
		}
		a, okA := parsePort(lo)
		b, okB := parsePort(hi)
		if !okA || !okB || a > b {
			continue
		}
		out = append(out, fmt.Sprintf("%d:%d", a, b))
	}
	return out
}
