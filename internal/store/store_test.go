package store

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

type testDoc struct {
	Enabled bool     `json:"enabled"`
	Words   []string `json:"words"`
	Count   int      `json:"count"`
}

func TestGetMissingReturnsNotFound(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	var doc testDoc
	if err := s.Get("123", "security", &doc); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPutThenGet(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	in := testDoc{Enabled: true, Words: []string{"a", "b"}, Count: 3}
	if err := s.Put("123", "security", in); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	var out testDoc
	if err := s.Get("123", "security", &out); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !out.Enabled || len(out.Words) != 2 || out.Count != 3 {
		t.Errorf("round-trip mismatch: %+v", out)
	}
}

func TestPutIsolatesGuilds(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Put("111", "levels", testDoc{Count: 1}); err != nil {
		t.Fatal(err)
	}
	if err := s.Put("222", "levels", testDoc{Count: 2}); err != nil {
		t.Fatal(err)
	}

	var a, b testDoc
	if err := s.Get("111", "levels", &a); err != nil {
		t.Fatal(err)
	}
	if err := s.Get("222", "levels", &b); err != nil {
		t.Fatal(err)
	}
	if a.Count != 1 || b.Count != 2 {
		t.Errorf("guild isolation broken: a=%d b=%d", a.Count, b.Count)
	}
}

func TestUpdateCreatesFreshDocument(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	err = Update(s, "123", "daily", func() *testDoc { return &testDoc{Enabled: true} }, func(d *testDoc) error {
		d.Count++
		return nil
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	var out testDoc
	if err := s.Get("123", "daily", &out); err != nil {
		t.Fatal(err)
	}
	if !out.Enabled || out.Count != 1 {
		t.Errorf("unexpected document: %+v", out)
	}
}

func TestUpdateConcurrentIncrements(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = Update(s, "123", "counter", func() *testDoc { return &testDoc{} }, func(d *testDoc) error {
				d.Count++
				return nil
			})
		}()
	}
	wg.Wait()

	var out testDoc
	if err := s.Get("123", "counter", &out); err != nil {
		t.Fatal(err)
	}
	if out.Count != n {
		t.Errorf("lost updates: got %d, want %d", out.Count, n)
	}
}

func TestPutWritesNoTempLeftover(t *testing.T) {
	root := t.TempDir()
	s, err := New(root)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Put("123", "welcome", testDoc{}); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(root, "123", "welcome.json.tmp")); !os.IsNotExist(err) {
		t.Error("temp file left behind")
	}
}

func TestGuilds(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Put("111", "x", testDoc{}); err != nil {
		t.Fatal(err)
	}
	if err := s.Put("222", "x", testDoc{}); err != nil {
		t.Fatal(err)
	}

	guilds, err := s.Guilds()
	if err != nil {
		t.Fatal(err)
	}
	if len(guilds) != 2 {
		t.Errorf("expected 2 guilds, got %v", guilds)
	}
}
