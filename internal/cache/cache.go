package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/klauspost/compress/zstd"
)

// ErrStorageUnavailable indicates the cache directory cannot be created
// or accessed. Callers should degrade to cache-miss-always behavior
// instead of failing.
var ErrStorageUnavailable = errors.New("cache: storage unavailable")

// DefaultMaxAge is how long entries live before age-based eviction.
const DefaultMaxAge = 7 * 24 * time.Hour

const (
	indexFileName = "cache_index.json"

	// compressThreshold is the minimum payload size worth compressing.
	compressThreshold = 1024
)

// Metadata is caller-supplied data stored alongside the audio payload.
type Metadata struct {
	DurationSeconds float64 `json:"duration_seconds"`
}

// Entry is a cached audio clip together with its metadata.
type Entry struct {
	Key        string
	Audio      []byte
	Meta       Metadata
	InsertedAt time.Time
}

type indexEntry struct {
	File       string    `json:"file"`
	Size       int64     `json:"size"`
	Compressed bool      `json:"compressed"`
	InsertedAt time.Time `json:"inserted_at"`
	Meta       Metadata  `json:"meta"`
}

// Cache is a disk-backed audio store with age-based eviction.
type Cache struct {
	dir    string
	maxAge time.Duration

	encoder *zstd.Encoder
	decoder *zstd.Decoder

	mu    sync.RWMutex
	index map[string]*indexEntry
	size  int64
}

// Open creates or reopens a cache under dir. A maxAge of zero uses
// DefaultMaxAge; a negative maxAge disables age-based expiry on reads.
func Open(dir string, maxAge time.Duration) (*Cache, error) {
	if maxAge == 0 {
		maxAge = DefaultMaxAge
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	c := &Cache{
		dir:     dir,
		maxAge:  maxAge,
		encoder: encoder,
		decoder: decoder,
		index:   make(map[string]*indexEntry),
	}

	if err := c.loadIndex(); err != nil {
		// Non-fatal: start with an empty index.
		log.Debug("cache index unreadable, starting fresh", "dir", dir, "err", err)
		c.index = make(map[string]*indexEntry)
	}
	for _, entry := range c.index {
		c.size += entry.Size
	}

	return c, nil
}

// Get retrieves a cached entry. Expired, missing or corrupt entries are
// removed and reported as misses.
func (c *Cache) Get(key string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.index[key]
	if !ok {
		return Entry{}, false
	}

	if c.maxAge > 0 && time.Since(entry.InsertedAt) > c.maxAge {
		c.removeLocked(key, entry)
		return Entry{}, false
	}

	data, err := os.ReadFile(filepath.Join(c.dir, entry.File))
	if err != nil {
		c.removeLocked(key, entry)
		return Entry{}, false
	}

	if entry.Compressed {
		data, err = c.decoder.DecodeAll(data, nil)
		if err != nil {
			c.removeLocked(key, entry)
			return Entry{}, false
		}
	}

	return Entry{
		Key:        key,
		Audio:      data,
		Meta:       entry.Meta,
		InsertedAt: entry.InsertedAt,
	}, true
}

// Put stores an audio payload, replacing any existing entry for key.
func (c *Cache) Put(key string, audio []byte, meta Metadata) error {
	toWrite := audio
	compressed := false
	if len(audio) > compressThreshold {
		candidate := c.encoder.EncodeAll(audio, nil)
		if len(candidate) < len(audio) {
			toWrite = candidate
			compressed = true
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.index[key]; ok {
		c.removeLocked(key, existing)
	}

	file := entryFileName(key)
	if err := writeFileAtomic(filepath.Join(c.dir, file), toWrite); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}

	c.index[key] = &indexEntry{
		File:       file,
		Size:       int64(len(toWrite)),
		Compressed: compressed,
		InsertedAt: time.Now(),
		Meta:       meta,
	}
	c.size += int64(len(toWrite))

	return c.saveIndexLocked()
}

// Delete removes an entry if present.
func (c *Cache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.index[key]
	if !ok {
		return nil
	}
	c.removeLocked(key, entry)
	return c.saveIndexLocked()
}

// EvictOlderThan removes entries inserted more than maxAge ago and
// returns how many were removed. Concurrent readers see either the
// pre-eviction or post-eviction state.
func (c *Cache) EvictOlderThan(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, entry := range c.index {
		if entry.InsertedAt.Before(cutoff) {
			c.removeLocked(key, entry)
			removed++
		}
	}
	if removed > 0 {
		if err := c.saveIndexLocked(); err != nil {
			log.Warn("failed to save cache index after eviction", "err", err)
		}
	}
	return removed
}

// Evict applies the configured max age.
func (c *Cache) Evict() int {
	return c.EvictOlderThan(c.maxAge)
}

// TotalSize returns the total on-disk payload size in bytes.
func (c *Cache) TotalSize() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.size
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.index)
}

// Keys returns the keys of all cached entries.
func (c *Cache) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, 0, len(c.index))
	for key := range c.index {
		keys = append(keys, key)
	}
	return keys
}

// Clear removes every entry.
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, entry := range c.index {
		c.removeLocked(key, entry)
	}
	return c.saveIndexLocked()
}

// Close persists the index.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saveIndexLocked()
}

func (c *Cache) removeLocked(key string, entry *indexEntry) {
	os.Remove(filepath.Join(c.dir, entry.File))
	c.size -= entry.Size
	delete(c.index, key)
}

func (c *Cache) loadIndex() error {
	data, err := os.ReadFile(filepath.Join(c.dir, indexFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return json.Unmarshal(data, &c.index)
}

func (c *Cache) saveIndexLocked() error {
	data, err := json.Marshal(c.index)
	if err != nil {
		return err
	}
	return writeFileAtomic(filepath.Join(c.dir, indexFileName), data)
}

func entryFileName(key string) string {
	hash := sha256.Sum256([]byte(key))
	return hex.EncodeToString(hash[:16]) + ".audio"
}

// writeFileAtomic writes via a temp file and rename so readers never
// observe partial content.
func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"

	file, err := os.Create(tmp)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	closeErr := file.Close()

	if err != nil {
		os.Remove(tmp)
		return err
	}
	if closeErr != nil {
		os.Remove(tmp)
		return closeErr
	}

	return os.Rename(tmp, path)
}
