package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNew_RequiresPath(t *testing.T) {
	if _, err := New("", 0); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestWatcher_DebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "state.db")

	w, err := New(dbPath, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	// A burst of writes to the db and its WAL sibling.
	for i := 0; i < 5; i++ {
		if err := os.WriteFile(dbPath, []byte("x"), 0o644); err != nil {
			t.Fatalf("write db: %v", err)
		}
		if err := os.WriteFile(dbPath+"-wal", []byte("x"), 0o644); err != nil {
			t.Fatalf("write wal: %v", err)
		}
	}

	// Expect consolidated events for both paths.
	seen := map[string]int{}
	deadline := time.After(2 * time.Second)
	for len(seen) < 2 {
		select {
		case ev := <-w.Events():
			seen[ev.Path]++
		case err := <-w.Errors():
			t.Fatalf("watcher error: %v", err)
		case <-deadline:
			t.Fatalf("timed out waiting for events, saw %v", seen)
		}
	}

	// Debouncing must consolidate the 5-write burst into far fewer events.
	for path, n := range seen {
		if n >= 5 {
			t.Errorf("path %s: got %d events for 5 writes, expected debouncing", path, n)
		}
	}
}

func TestWatcher_IgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "state.db")

	w, err := New(dbPath, 30*time.Millisecond)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write unrelated: %v", err)
	}

	select {
	case ev := <-w.Events():
		t.Fatalf("unexpected event for unrelated file: %+v", ev)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_StopClosesChannels(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "state.db")

	w, err := New(dbPath, 30*time.Millisecond)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx := context.Background()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	if _, ok := <-w.Events(); ok {
		t.Fatalf("expected events channel to be closed")
	}

	// Stop is idempotent.
	if err := w.Stop(); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
}
