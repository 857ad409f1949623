package convert

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"boxlink/internal/collectors"
	"boxlink/internal/singbox"
	"boxlink/internal/singbox/option"
)

const uuid = "11111111-1111-1111-1111-111111111111"

type fakeCollector struct {
	subs  map[string][]string
	calls int32
	delay map[string]time.Duration
}

func (f *fakeCollector) Collect(ctx context.Context, target string, _ map[string]interface{}) ([]string, error) {
	atomic.AddInt32(&f.calls, 1)
	if d := f.delay[target]; d > 0 {
		time.Sleep(d)
	}
	lines, ok := f.subs[target]
	if !ok {
		return nil, collectors.FetchFailed(target, errors.New("404"))
	}
	return lines, nil
}

func proxyCount(cfg *option.Config) int {
	n := 0
	for _, o := range cfg.Outbounds {
		if option.IsProxy(o) {
			n++
		}
	}
	return n
}

func TestPartialBatch(t *testing.T) {
	lines := []string{
		"vless://" + uuid + "@a.example.com:443?security=tls#A",
		"vmess://%%%not-base64%%%",
		"hy2://secret@b.example.com:8443#B",
	}
	res, err := New(nil, nil, singbox.DefaultOptions()).Convert(context.Background(), lines)
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Kind != KindMalformedLink {
		t.Fatalf("expected exactly one malformed diagnostic, got %v", res.Diagnostics)
	}
	if got := proxyCount(res.Config); got != 2 {
		t.Fatalf("expected 2 proxies, got %d", got)
	}
	// 3 sinks + 2 proxies + group
	if len(res.Config.Outbounds) != 6 {
		t.Fatalf("unexpected outbound count %d", len(res.Config.Outbounds))
	}
}

func TestDiagnosticNamesSourceOnce(t *testing.T) {
	line := "vmess://!!!notb64"
	res, _ := New(nil, nil, singbox.DefaultOptions()).Convert(context.Background(), []string{line})
	if len(res.Diagnostics) != 1 {
		t.Fatalf("expected one diagnostic, got %v", res.Diagnostics)
	}
	d := res.Diagnostics[0]
	if d.Source != line {
		t.Fatalf("unexpected source %q", d.Source)
	}
	if got := d.String(); strings.Count(got, line) != 1 || !strings.HasPrefix(got, "[MalformedLink] ") {
		t.Fatalf("source should appear exactly once: %q", got)
	}
}

func TestUnsupportedLinesAreSkipped(t *testing.T) {
	lines := []string{
		"some chatter copied from a channel",
		"trojan://pw@x.example.com:443",
		"hy2://secret@b.example.com:8443#B",
	}
	res, err := New(nil, nil, singbox.DefaultOptions()).Convert(context.Background(), lines)
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}
	if len(res.Diagnostics) != 0 || len(res.Skipped) != 2 {
		t.Fatalf("unexpected diagnostics %v / skipped %v", res.Diagnostics, res.Skipped)
	}
	if res.Config.Route.Final != "B" {
		t.Fatalf("single proxy should be the default target, got %q", res.Config.Route.Final)
	}
}

func TestNoValidOutbounds(t *testing.T) {
	res, err := New(nil, nil, singbox.DefaultOptions()).Convert(context.Background(), []string{"vless://broken", "", "hello"})
	if !errors.Is(err, singbox.ErrNoValidOutbounds) {
		t.Fatalf("expected ErrNoValidOutbounds, got %v", err)
	}
	if res == nil || res.Config != nil || len(res.Diagnostics) != 1 {
		t.Fatalf("expected diagnostics without a document, got %+v", res)
	}
}

func TestSubscriptionsKeepInputOrder(t *testing.T) {
	fc := &fakeCollector{
		subs: map[string][]string{
			"https://slow.example.com": {"hy2://p@slow.example.com:1#slow"},
			"https://fast.example.com": {"hy2://p@fast.example.com:1#fast", "https://nested.example.com"},
		},
		delay: map[string]time.Duration{"https://slow.example.com": 20 * time.Millisecond},
	}
	lines := []string{
		"https://slow.example.com",
		"hy2://p@inline.example.com:1#inline",
		"https://fast.example.com",
		"https://down.example.com",
	}

	var fetched int32
	c := New(fc, nil, singbox.DefaultOptions())
	c.OnFetch = func(FetchStat) { atomic.AddInt32(&fetched, 1) }

	res, err := c.Convert(context.Background(), lines)
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}
	if fc.calls != 3 || fetched != 3 || len(res.Fetches) != 3 {
		t.Fatalf("expected 3 fetches, got calls=%d hook=%d stats=%d", fc.calls, fetched, len(res.Fetches))
	}

	var tags []string
	for _, o := range res.Proxies {
		tags = append(tags, o.Tag())
	}
	if fmt.Sprint(tags) != "[slow inline fast]" {
		t.Fatalf("unexpected order: %v", tags)
	}
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Kind != KindSubscriptionFetchFailed {
		t.Fatalf("expected one fetch diagnostic, got %v", res.Diagnostics)
	}
	if len(res.Skipped) != 1 || res.Skipped[0] != "https://nested.example.com" {
		t.Fatalf("nested subscription should be skipped: %v", res.Skipped)
	}
}

func TestSubscriptionWithoutCollector(t *testing.T) {
	res, err := New(nil, nil, singbox.DefaultOptions()).Convert(context.Background(), []string{
		"https://sub.example.com",
		"hy2://p@b.example.com:1#b",
	})
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Kind != KindSubscriptionFetchFailed {
		t.Fatalf("unexpected diagnostics: %v", res.Diagnostics)
	}
}

func TestDedupe(t *testing.T) {
	link := "hy2://p@b.example.com:1#b"
	c := New(nil, nil, singbox.DefaultOptions())
	c.Dedupe = true
	res, err := c.Convert(context.Background(), []string{link, link})
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}
	if len(res.Proxies) != 1 {
		t.Fatalf("expected duplicate to be dropped, got %d", len(res.Proxies))
	}
}

func TestCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(&fakeCollector{}, nil, singbox.DefaultOptions()).Convert(ctx, []string{"https://sub.example.com"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
