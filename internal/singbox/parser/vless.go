package parser

import (
	"fmt"
	"net/url"

	"boxlink/internal/singbox/option"
	"boxlink/internal/singbox/tag"
)

// vless://<uuid>@<host>:<port>?<query>#<remark>
func parseVLESS(raw string) (option.Outbound, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, malformed(raw, "%v", err)
	}
	if u.User == nil || u.User.Username() == "" {
		return nil, malformed(raw, "missing uuid")
	}
	if u.Hostname() == "" {
		return nil, malformed(raw, "missing host")
	}

	q := u.Query()
	security := q.Get("security")
	secure := isSecure(security)

	port := 80
	if secure {
		port = 443
	}
	if u.Port() != "" {
		p, ok := parsePort(u.Port())
		if !ok {
			return nil, malformed(raw, "invalid port %q", u.Port())
		}
		port = p
	}

	remark := u.Fragment
	if remark == "" {
		portLabel := u.Port()
		if portLabel == "" {
			portLabel = "default"
		}
		remark = fmt.Sprintf("vless_%s_%s", u.Hostname(), portLabel)
	}

	out := option.VLESSOutbound{
		Name:       tag.Sanitize(remark),
		Server:     u.Hostname(),
		ServerPort: port,
		UUID:       u.User.Username(),
	}

	switch {
	case secure:
		out.TLS = buildTLS(firstNonEmpty(firstParam(q, "sni", "host"), u.Hostname()), q.Get("fp"))
		if alpn := q.Get("alpn"); alpn != "" {
			out.TLS.ALPN = splitList(alpn)
		}
		out.TLS.Insecure = isTrue(firstParam(q, "allowInsecure", "insecure", "allow_insecure"))
		if security == "reality" {
			pbk := q.Get("pbk")
			if pbk == "" {
				return nil, malformed(raw, "reality requires pbk")
			}
			out.TLS.Reality = &option.RealityOptions{
				Enabled:   true,
				PublicKey: pbk,
				ShortID:   q.Get("sid"),
			}
		}
		out.Flow = q.Get("flow")
	case (security == "" || security == "none") && q.Get("encryption") == "none":
		// Plain VLESS must state encryption explicitly for the runtime.
		out.Encryption = "none"
	}

	out.Transport = buildTransport(
		q.Get("type"),
		q.Get("path"),
		firstNonEmpty(q.Get("host"), u.Hostname()),
		q.Get("serviceName"),
	)
	return out, nil
}
