package collectors

import (
	"encoding/base64"
	"reflect"
	"testing"
	"time"
)

func TestDecodeBodyBase64(t *testing.T) {
	plain := "vless://a@b:443#one\r\n\nhy2://p@c:8443#two\n"
	encoded := base64.StdEncoding.EncodeToString([]byte(plain))
	// providers often wrap at 76 columns
	wrapped := encoded[:10] + "\n" + encoded[10:]

	lines, err := DecodeBody(wrapped)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	want := []string{"vless://a@b:443#one", "hy2://p@c:8443#two"}
	if !reflect.DeepEqual(lines, want) {
		t.Fatalf("unexpected lines: %q", lines)
	}
}

func TestDecodeBodyPlainText(t *testing.T) {
	lines, err := DecodeBody("vless://a@b:443#one\nvmess://abcd\n")
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(lines) != 2 || lines[1] != "vmess://abcd" {
		t.Fatalf("unexpected lines: %q", lines)
	}
}

func TestDecodeBodyRejectsGarbage(t *testing.T) {
	for _, body := range []string{"", "   ", "<html>blocked</html>", base64.StdEncoding.EncodeToString([]byte("hello"))} {
		if _, err := DecodeBody(body); err == nil {
			t.Fatalf("expected error for %q", body)
		}
	}
}

func TestDurationParam(t *testing.T) {
	params := map[string]interface{}{"a": 5, "b": "2m", "c": time.Second, "d": "bogus", "e": "10"}
	if d := DurationParam(params, "a", 0); d != 5*time.Second {
		t.Fatalf("unexpected int duration: %v", d)
	}
	if d := DurationParam(params, "b", 0); d != 2*time.Minute {
		t.Fatalf("unexpected string duration: %v", d)
	}
	if d := DurationParam(params, "c", 0); d != time.Second {
		t.Fatalf("unexpected duration: %v", d)
	}
	if d := DurationParam(params, "e", 0); d != 10*time.Second {
		t.Fatalf("bare seconds string should parse, got %v", d)
	}
	if d := DurationParam(params, "d", DefaultTimeout); d != DefaultTimeout {
		t.Fatalf("expected default, got %v", d)
	}
}

func TestNewHTTPClientProxy(t *testing.T) {
	c, err := NewHTTPClient(map[string]interface{}{"_proxy_url": "socks5://127.0.0.1:1080"})
	if err != nil || c.Transport == nil {
		t.Fatalf("socks5 proxy not applied: %v", err)
	}
	c, err = NewHTTPClient(map[string]interface{}{"_proxy_url": "http://127.0.0.1:8080"})
	if err != nil || c.Transport == nil {
		t.Fatalf("http proxy not applied: %v", err)
	}
	if _, err := NewHTTPClient(map[string]interface{}{"_proxy_url": "ftp://127.0.0.1"}); err == nil {
		t.Fatalf("expected unsupported proxy error")
	}
}

func TestRegistry(t *testing.T) {
	if _, err := Get("missing"); err == nil {
		t.Fatalf("expected lookup error")
	}
}
