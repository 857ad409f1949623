package stdout

import (
	"bytes"
	"strings"
	"testing"
)

func TestPublishWritesDocument(t *testing.T) {
	var buf bytes.Buffer
	p := &Publisher{Out: &buf}
	if err := p.Publish("laptop", []byte(`{"log":{}}`), nil); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "laptop.json") || !strings.Contains(out, `{"log":{}}`) {
		t.Fatalf("unexpected output: %q", out)
	}
}
