package store

import (
	"errors"
	"testing"
	"time"

	"boxlink/internal/db"
)

const sampleDoc = `{"outbounds":[{"type":"direct","tag":"direct"},{"type":"vless","tag":"a"},{"type":"hysteria2","tag":"b"},{"type":"urltest","tag":"auto_select_proxies"}],"route":{"final":"auto_select_proxies"}}`

func newTestStore(t *testing.T) *GormStore {
	t.Helper()
	database, err := db.Connect("file::memory:")
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	// each pooled connection would otherwise see its own empty memory db
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close(database) })

	if err := db.Migrate(database); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	return NewGormStore(database)
}

func TestSaveLoadOverwrite(t *testing.T) {
	s := newTestStore(t)

	name, err := s.Save("  my home/config! ", []byte(sampleDoc))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if name != "my_homeconfig" {
		t.Fatalf("unexpected sanitized name: %q", name)
	}

	doc, err := s.Load(name)
	if err != nil || string(doc) != sampleDoc {
		t.Fatalf("load mismatch: %v %s", err, doc)
	}

	if _, err := s.Save(name, []byte(`{"outbounds":[]}`)); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	doc, _ = s.Load(name)
	if string(doc) != `{"outbounds":[]}` {
		t.Fatalf("document not replaced: %s", doc)
	}

	list, err := s.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("overwrite must not add a row, got %d", len(list))
	}
	if list[0].Document != "" {
		t.Fatalf("list should not carry documents")
	}
}

func TestListSummary(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Save("one", []byte(sampleDoc)); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if _, err := s.Save("two", []byte(`{"outbounds":[{"type":"vmess"}],"route":{"final":"x"}}`)); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	list, err := s.List()
	if err != nil || len(list) != 2 {
		t.Fatalf("unexpected list: %v %v", list, err)
	}
	byName := map[string]int{}
	for _, row := range list {
		byName[row.Name] = row.ProxyCount
	}
	if byName["one"] != 2 || byName["two"] != 1 {
		t.Fatalf("unexpected proxy counts: %v", byName)
	}
}

func TestDeleteAndNotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Save("gone", []byte(sampleDoc)); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := s.Delete("gone"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := s.Load("gone"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Delete("gone"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestLoadDeleteBySavedName(t *testing.T) {
	s := newTestStore(t)
	name, err := s.Save("My Config", []byte(sampleDoc))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if name != "My_Config" {
		t.Fatalf("unexpected stored name %q", name)
	}
	doc, err := s.Load("My Config")
	if err != nil || string(doc) != sampleDoc {
		t.Fatalf("load by the same name failed: %v", err)
	}
	if err := s.Delete("My Config"); err != nil {
		t.Fatalf("delete by the same name failed: %v", err)
	}
	if _, err := s.Load("My_Config"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if _, err := s.Load("!!!"); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName on load, got %v", err)
	}
	if err := s.Delete("  "); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName on delete, got %v", err)
	}
}

func TestSaveRejects(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Save("!!!", []byte(sampleDoc)); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
	if _, err := s.Save("ok", []byte("{not json")); err == nil {
		t.Fatalf("expected invalid json error")
	}
}

func TestSanitizeName(t *testing.T) {
	cases := map[string]string{
		"Work  Laptop":    "Work_Laptop",
		"a.b-c_d":         "a.b-c_d",
		"کانفیگ 1":        "_1",
		"Config_24-05-01": "Config_24-05-01",
	}
	for in, want := range cases {
		got, err := SanitizeName(in)
		if err != nil || got != want {
			t.Fatalf("SanitizeName(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if got := DefaultName(time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)); got != "Config_24-05-01_09-30" {
		t.Fatalf("unexpected default name: %q", got)
	}
}
