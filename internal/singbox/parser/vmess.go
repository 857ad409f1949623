package parser

import (
	"encoding/json"
	"fmt"
	"strings"

	"boxlink/internal/singbox/option"
	"boxlink/internal/singbox/tag"
)

// vmessJSON is the base64 envelope behind vmess://. Generators disagree on
// whether port and aid are strings or numbers.
type vmessJSON struct {
	V           interface{} `json:"v"`
	Ps          string      `json:"ps"`
	Add         string      `json:"add"`
	Port        interface{} `json:"port"`
	Id          string      `json:"id"`
	Aid         interface{} `json:"aid"`
	Scy         string      `json:"scy"`
	Security    string      `json:"security"`
	Net         string      `json:"net"`
	Type        string      `json:"type"`
	Host        string      `json:"host"`
	Path        string      `json:"path"`
	ServiceName string      `json:"serviceName"`
	Tls         string      `json:"tls"`
	Sni         string      `json:"sni"`
	Alpn        string      `json:"alpn"`
	Fp          string      `json:"fp"`
	Pbk         string      `json:"pbk"`
	Sid         string      `json:"sid"`
}

func parseVMess(raw string) (option.Outbound, error) {
	body := raw[strings.Index(raw, "://")+3:]
	jsonStr, err := DecodeBase64(body)
	if err != nil {
		return nil, malformed(raw, "base64: %v", err)
	}

	var v vmessJSON
	if err := json.Unmarshal([]byte(jsonStr), &v); err != nil {
		return nil, malformed(raw, "json: %v", err)
	}
	if v.Add == "" {
		return nil, malformed(raw, "missing add")
	}
	if v.Id == "" {
		return nil, malformed(raw, "missing id")
	}
	portStr := looseString(v.Port)
	port, ok := parsePort(portStr)
	if !ok {
		return nil, malformed(raw, "invalid port %q", portStr)
	}
	alterID, _ := leadingInt(looseString(v.Aid))

	remark := v.Ps
	if remark == "" {
		remark = fmt.Sprintf("vmess_%s_%s", v.Add, firstNonEmpty(portStr, "default"))
	}

	out := option.VMessOutbound{
		Name:       tag.Sanitize(remark),
		Server:     v.Add,
		ServerPort: port,
		UUID:       v.Id,
		AlterID:    alterID,
		Security:   firstNonEmpty(v.Scy, v.Security, "auto"),
	}

	net := strings.ToLower(v.Net)
	// Some generators drop the tls marker for ws/h2 behind a CDN host.
	implicitTLS := (net == option.TransportWebSocket || net == option.TransportHTTP2) && (v.Host != "" || v.Sni != "")
	if isSecure(v.Tls) || implicitTLS {
		out.TLS = buildTLS(firstNonEmpty(v.Sni, v.Host, v.Add), v.Fp)
		if v.Alpn != "" {
			out.TLS.ALPN = splitList(v.Alpn)
		}
		if v.Tls == "reality" {
			out.TLS.Reality = &option.RealityOptions{
				Enabled:   true,
				PublicKey: v.Pbk,
				ShortID:   v.Sid,
			}
		}
	}

	// grpc carries its service name in the path field.
	out.Transport = buildTransport(
		net,
		v.Path,
		firstNonEmpty(v.Host, v.Add),
		firstNonEmpty(v.Path, v.ServiceName),
	)
	return out, nil
}

// looseString renders a JSON scalar that may be a string or a number.
func looseString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return fmt.Sprintf("%.0f", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
