// Package parser turns share links into runtime outbounds.
package parser

import (
	"errors"
	"fmt"
	"strings"

	"boxlink/internal/singbox/option"
)

var (
	// ErrMalformedLink means a recognised scheme failed structural parsing.
	ErrMalformedLink = errors.New("malformed link")
	// ErrUnsupportedScheme means no parser claims the link; callers skip it.
	ErrUnsupportedScheme = errors.New("unsupported scheme")
)

// Parse dispatches raw to the parser registered for its scheme.
func Parse(raw string) (option.Outbound, error) {
	raw = FixIllegalUrl(raw)
	parts := strings.SplitN(raw, "://", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, Preview(raw))
	}

	scheme := strings.ToLower(parts[0])
	switch scheme {
	case "vless":
		return parseVLESS(raw)
	case "vmess":
		return parseVMess(raw)
	case "hysteria2", "hy2":
		return parseHysteria2(raw)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, scheme)
	}
}

// Scheme returns the lower-cased scheme of raw, or "" when it has none.
func Scheme(raw string) string {
	parts := strings.SplitN(FixIllegalUrl(raw), "://", 2)
	if len(parts) != 2 {
		return ""
	}
	return strings.ToLower(parts[0])
}

func malformed(raw, format string, args ...interface{}) error {
	return fmt.Errorf("%w (%s): %s", ErrMalformedLink, Preview(raw), fmt.Sprintf(format, args...))
}
