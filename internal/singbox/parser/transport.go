package parser

import (
	"strings"

	"boxlink/internal/singbox/option"
)

const defaultFingerprint = "chrome"

// buildTransport maps a link's transport kind onto runtime transport options.
// host must already carry its fallback. Unknown kinds become plain TCP.
func buildTransport(kind, path, host, serviceName string) *option.TransportOptions {
	switch strings.ToLower(kind) {
	case option.TransportWebSocket:
		return option.WebSocketTransport(firstNonEmpty(path, "/"), host)
	case option.TransportGRPC:
		return option.GRPCTransport(serviceName)
	case option.TransportHTTP2, "http":
		return option.HTTP2Transport(firstNonEmpty(path, "/"), host)
	default:
		return option.TCPTransport()
	}
}

func isSecure(security string) bool {
	return security == "tls" || security == "reality"
}

// buildTLS returns an enabled TLS block with a uTLS browser fingerprint.
func buildTLS(serverName, fingerprint string) *option.TLSOptions {
	return &option.TLSOptions{
		Enabled:    true,
		ServerName: serverName,
		UTLS: &option.UTLSOptions{
			Enabled:     true,
			Fingerprint: firstNonEmpty(fingerprint, defaultFingerprint),
		},
	}
}
