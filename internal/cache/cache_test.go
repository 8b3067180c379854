package cache

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(t.TempDir(), DefaultMaxAge)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return c
}

func TestPutGetRoundTrip(t *testing.T) {
	c := newTestCache(t)

	audio := []byte("fake audio payload")
	meta := Metadata{DurationSeconds: 12.5}
	if err := c.Put("key1", audio, meta); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	entry, ok := c.Get("key1")
	if !ok {
		t.Fatal("Get returned miss for stored key")
	}
	if !bytes.Equal(entry.Audio, audio) {
		t.Error("audio payload mismatch")
	}
	if entry.Meta.DurationSeconds != 12.5 {
		t.Errorf("duration = %v, want 12.5", entry.Meta.DurationSeconds)
	}
	if entry.InsertedAt.IsZero() {
		t.Error("InsertedAt not set")
	}
}

func TestGetMiss(t *testing.T) {
	c := newTestCache(t)
	if _, ok := c.Get("nope"); ok {
		t.Error("expected miss for unknown key")
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	c, err := Open(dir, DefaultMaxAge)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	payload := bytes.Repeat([]byte("audio data block "), 200) // above compression threshold
	if err := c.Put("persistent", payload, Metadata{DurationSeconds: 3}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := Open(dir, DefaultMaxAge)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	entry, ok := reopened.Get("persistent")
	if !ok {
		t.Fatal("entry lost across reopen")
	}
	if !bytes.Equal(entry.Audio, payload) {
		t.Error("payload mismatch after reopen")
	}
	if entry.Meta.DurationSeconds != 3 {
		t.Errorf("duration = %v, want 3", entry.Meta.DurationSeconds)
	}
}

func TestEvictOlderThanBoundary(t *testing.T) {
	c := newTestCache(t)

	if err := c.Put("fresh", []byte("a"), Metadata{}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := c.Put("stale", []byte("b"), Metadata{}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	// Backdate entries around a 7 day horizon.
	c.index["fresh"].InsertedAt = time.Now().Add(-6 * 24 * time.Hour)
	c.index["stale"].InsertedAt = time.Now().Add(-8 * 24 * time.Hour)

	removed := c.EvictOlderThan(7 * 24 * time.Hour)
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if _, ok := c.Get("fresh"); !ok {
		t.Error("6 day old entry was evicted")
	}
	if _, ok := c.Get("stale"); ok {
		t.Error("8 day old entry survived eviction")
	}
}

func TestExpiredEntryIsMiss(t *testing.T) {
	c := newTestCache(t)

	if err := c.Put("old", []byte("x"), Metadata{}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	c.index["old"].InsertedAt = time.Now().Add(-DefaultMaxAge - time.Hour)

	if _, ok := c.Get("old"); ok {
		t.Error("expired entry served as hit")
	}
	if c.Len() != 0 {
		t.Errorf("expired entry still indexed, len = %d", c.Len())
	}
}

func TestCorruptEntryIsMiss(t *testing.T) {
	c := newTestCache(t)

	payload := bytes.Repeat([]byte("compressible audio "), 200)
	if err := c.Put("corrupt", payload, Metadata{}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	// Truncate the payload file behind the cache's back.
	file := c.index["corrupt"].File
	if err := os.WriteFile(filepath.Join(c.dir, file), []byte("garbage"), 0o644); err != nil {
		t.Fatalf("failed to corrupt entry: %v", err)
	}

	if _, ok := c.Get("corrupt"); ok {
		t.Error("corrupt entry served as hit")
	}
	if _, ok := c.index["corrupt"]; ok {
		t.Error("corrupt entry not dropped from index")
	}
}

func TestMissingFileIsMiss(t *testing.T) {
	c := newTestCache(t)

	if err := c.Put("gone", []byte("x"), Metadata{}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	os.Remove(filepath.Join(c.dir, c.index["gone"].File))

	if _, ok := c.Get("gone"); ok {
		t.Error("entry with missing file served as hit")
	}
}

func TestTotalSizeTracksEntries(t *testing.T) {
	c := newTestCache(t)

	if c.TotalSize() != 0 {
		t.Fatalf("empty cache size = %d", c.TotalSize())
	}
	if err := c.Put("a", []byte("12345"), Metadata{}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if c.TotalSize() != 5 {
		t.Errorf("size = %d, want 5", c.TotalSize())
	}
	if err := c.Delete("a"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if c.TotalSize() != 0 {
		t.Errorf("size after delete = %d, want 0", c.TotalSize())
	}
}

func TestPutReplacesExisting(t *testing.T) {
	c := newTestCache(t)

	if err := c.Put("k", []byte("first"), Metadata{DurationSeconds: 1}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := c.Put("k", []byte("second"), Metadata{DurationSeconds: 2}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	entry, ok := c.Get("k")
	if !ok {
		t.Fatal("replaced entry missing")
	}
	if string(entry.Audio) != "second" {
		t.Errorf("payload = %q, want %q", entry.Audio, "second")
	}
	if c.Len() != 1 {
		t.Errorf("len = %d, want 1", c.Len())
	}
}

func TestClear(t *testing.T) {
	c := newTestCache(t)

	for _, key := range []string{"a", "b", "c"} {
		if err := c.Put(key, []byte(key), Metadata{}); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}
	if err := c.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if c.Len() != 0 || c.TotalSize() != 0 {
		t.Errorf("after Clear: len = %d size = %d", c.Len(), c.TotalSize())
	}
}

func TestOpenUnwritableDir(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("running as root, permission checks do not apply")
	}

	parent := t.TempDir()
	if err := os.Chmod(parent, 0o500); err != nil {
		t.Fatalf("chmod failed: %v", err)
	}
	defer os.Chmod(parent, 0o755)

	_, err := Open(filepath.Join(parent, "sub"), DefaultMaxAge)
	if err == nil {
		t.Fatal("expected error for unwritable directory")
	}
	if !errors.Is(err, ErrStorageUnavailable) {
		t.Errorf("error = %v, want ErrStorageUnavailable", err)
	}
}
