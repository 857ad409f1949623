package collectors

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/net/proxy"

	"boxlink/internal/logger"
	"boxlink/internal/singbox"
	"boxlink/internal/singbox/parser"
)

const (
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "boxlink/1.0"

	maxBodySize = 16 << 20
)

// NewHTTPClient builds a client from collector params. "_proxy_url" may be an
// http(s) proxy or a socks5 upstream; "timeout" accepts a duration, a duration
// string or a number of seconds (int or string).
func NewHTTPClient(params map[string]interface{}) (*http.Client, error) {
	client := &http.Client{Timeout: DurationParam(params, "timeout", DefaultTimeout)}

	proxyStr := StringParam(params, "_proxy_url")
	if proxyStr == "" {
		return client, nil
	}
	pURL, err := url.Parse(proxyStr)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy url: %w", err)
	}

	switch strings.ToLower(pURL.Scheme) {
	case "http", "https":
		client.Transport = &http.Transport{Proxy: http.ProxyURL(pURL)}
	default:
		dialer, err := proxy.FromURL(pURL, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("unsupported proxy: %w", err)
		}
		client.Transport = &http.Transport{
			DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				if cd, ok := dialer.(proxy.ContextDialer); ok {
					return cd.DialContext(ctx, network, addr)
				}
				return dialer.Dial(network, addr)
			},
		}
	}
	logger.Log.Debugf("Collector using proxy: %s", proxyStr)
	return client, nil
}

// Fetch performs a GET and returns the body of a 200 response.
func Fetch(ctx context.Context, client *http.Client, target, userAgent string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("non-200 status code: %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
}

// DecodeBody turns subscription content into link lines. Bodies are normally
// base64; a body that is already plain text with links is accepted as is.
func DecodeBody(body string) ([]string, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, fmt.Errorf("empty subscription body")
	}

	compact := strings.Join(strings.Fields(body), "")
	if decoded, err := parser.DecodeBase64(compact); err == nil && utf8.ValidString(decoded) && strings.Contains(decoded, "://") {
		return singbox.SplitLines(decoded), nil
	}
	if strings.Contains(body, "://") {
		return singbox.SplitLines(body), nil
	}
	return nil, fmt.Errorf("body is neither base64 nor a link list")
}

func StringParam(params map[string]interface{}, key string) string {
	v, _ := params[key].(string)
	return v
}

func DurationParam(params map[string]interface{}, key string, def time.Duration) time.Duration {
	switch v := params[key].(type) {
	case time.Duration:
		if v > 0 {
			return v
		}
	case int:
		if v > 0 {
			return time.Duration(v) * time.Second
		}
	case string:
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return def
}
