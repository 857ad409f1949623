package http

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"boxlink/internal/collectors"
)

func TestCollectBase64Subscription(t *testing.T) {
	body := base64.StdEncoding.EncodeToString([]byte("vless://a@b:443#x\nhy2://p@c:1#y"))
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(body))
	}))
	defer srv.Close()

	lines, err := (&URLCollector{}).Collect(context.Background(), srv.URL, map[string]interface{}{"user_agent": "tester"})
	if err != nil {
		t.Fatalf("collect failed: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("unexpected lines: %q", lines)
	}
	if gotUA != "tester" {
		t.Fatalf("user agent not sent: %q", gotUA)
	}
}

func TestCollectStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := (&URLCollector{}).Collect(context.Background(), srv.URL, nil)
	if !errors.Is(err, collectors.ErrFetchFailed) {
		t.Fatalf("expected ErrFetchFailed, got %v", err)
	}
}

func TestCollectCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("vless://a@b:1"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (&URLCollector{}).Collect(ctx, srv.URL, nil); !errors.Is(err, collectors.ErrFetchFailed) {
		t.Fatalf("expected ErrFetchFailed, got %v", err)
	}
}

func TestRegistered(t *testing.T) {
	c, err := collectors.Get("http")
	if err != nil {
		t.Fatalf("http collector not registered: %v", err)
	}
	if _, ok := c.(*URLCollector); !ok {
		t.Fatalf("unexpected collector type %T", c)
	}
}
