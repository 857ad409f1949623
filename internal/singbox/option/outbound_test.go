package option

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestOutboundJSONStartsWithType(t *testing.T) {
	out := VLESSOutbound{
		Name:       "node",
		Server:     "example.com",
		ServerPort: 443,
		UUID:       "11111111-1111-1111-1111-111111111111",
		Transport:  TCPTransport(),
	}
	b, err := json.Marshal(out)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if !strings.HasPrefix(string(b), `{"type":"vless","tag":"node",`) {
		t.Fatalf("unexpected prefix: %s", b)
	}
	if !strings.Contains(string(b), `"transport":{"type":"tcp"}`) {
		t.Fatalf("expected bare tcp transport: %s", b)
	}
}

func TestTransportEncodesOnlyItsKind(t *testing.T) {
	b, err := json.Marshal(GRPCTransport(""))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(b) != `{"type":"grpc","service_name":""}` {
		t.Fatalf("unexpected grpc transport: %s", b)
	}

	b, err = json.Marshal(HTTP2Transport("/", "cdn.example.com"))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(b) != `{"type":"h2","path":"/","host":["cdn.example.com"]}` {
		t.Fatalf("unexpected h2 transport: %s", b)
	}

	b, err = json.Marshal(WebSocketTransport("/ws", "cdn.example.com"))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(b) != `{"type":"ws","path":"/ws","headers":{"Host":"cdn.example.com"}}` {
		t.Fatalf("unexpected ws transport: %s", b)
	}
}

func TestSinkOutbounds(t *testing.T) {
	b, err := json.Marshal([]Outbound{
		DirectOutbound{Name: "direct"},
		BlockOutbound{Name: "block"},
		DNSOutbound{Name: "dns-out"},
	})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	want := `[{"type":"direct","tag":"direct"},{"type":"block","tag":"block"},{"type":"dns","tag":"dns-out"}]`
	if string(b) != want {
		t.Fatalf("unexpected sinks:\n got %s\nwant %s", b, want)
	}
}

func TestHysteria2ObfsIsNested(t *testing.T) {
	out := Hysteria2Outbound{
		Name:       "hy",
		Server:     "1.2.3.4",
		ServerPort: 8443,
		Password:   "secret",
		UpMbps:     20,
		DownMbps:   100,
		Obfs:       &Hysteria2Obfs{Type: "salamander", Password: "p"},
		TLS:        &TLSOptions{Enabled: true, ServerName: "1.2.3.4"},
	}
	b, err := json.Marshal(out)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if !strings.Contains(string(b), `"obfs":{"type":"salamander","password":"p"}`) {
		t.Fatalf("obfs not nested: %s", b)
	}
	if strings.Contains(string(b), "obfs_password") {
		t.Fatalf("flat obfs_password leaked: %s", b)
	}
}

func TestWithTagCopies(t *testing.T) {
	group := URLTestOutbound{Name: "auto", Outbounds: []string{"a", "b"}}
	renamed := group.WithTag("auto_1").(URLTestOutbound)
	renamed.Outbounds[0] = "changed"
	if group.Name != "auto" || group.Outbounds[0] != "a" {
		t.Fatalf("original mutated: %+v", group)
	}
	if !IsProxy(VMessOutbound{}) || IsProxy(group) || IsProxy(DirectOutbound{}) {
		t.Fatalf("IsProxy misclassified variants")
	}
}
