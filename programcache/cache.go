// Package programcache stores driver-compiled program binaries keyed by the
// assembled sources and the driver identity that produced them.
//
// Entries are added on the first successful link of a program and never
// evicted. A Cache may be shared by several devices, including devices on
// different goroutines, and persisted between runs with Save and Load.
package programcache

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"sync"
	"sync/atomic"

	"golang.org/x/crypto/blake2b"
)

// Cache errors.
var (
	// ErrCorruptEntry is reported for an on-disk entry that fails validation.
	ErrCorruptEntry = errors.New("programcache: corrupt entry")

	// ErrEmptyBinary is returned by Insert for zero-length binary data.
	ErrEmptyBinary = errors.New("programcache: empty binary")
)

// Sources is the cache key: the driver identity and both assembled stages.
// It is comparable and used directly as a map key.
type Sources struct {
	Renderer string
	VS       string
	FS       string
}

// Digest returns a blake2b-256 digest over the length-prefixed fields.
func (s Sources) Digest() [blake2b.Size256]byte {
	h, _ := blake2b.New256(nil)
	var n [8]byte
	for _, field := range [...]string{s.Renderer, s.VS, s.FS} {
		binary.LittleEndian.PutUint64(n[:], uint64(len(field)))
		h.Write(n[:])
		h.Write([]byte(field))
	}
	var out [blake2b.Size256]byte
	h.Sum(out[:0])
	return out
}

// Key returns the hex digest, used as the on-disk file name.
func (s Sources) Key() string {
	d := s.Digest()
	return hex.EncodeToString(d[:])
}

// Binary is an opaque driver program binary and its format tag.
type Binary struct {
	Format uint32
	Data   []byte
}

// Stats reports cache activity.
type Stats struct {
	Hits    uint64
	Misses  uint64
	Entries int
	// Skipped counts on-disk entries rejected by Load.
	Skipped uint64
}

// Cache maps Sources to Binary. It is safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	entries map[Sources]Binary
	// stale holds keys removed since the last Save. Their files on disk,
	// if any, no longer match memory and are rewritten.
	stale map[Sources]struct{}

	hits    uint64
	misses  uint64
	skipped uint64
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{entries: make(map[Sources]Binary), stale: make(map[Sources]struct{})}
}

// Get returns the binary stored for src.
func (c *Cache) Get(src Sources) (Binary, bool) {
	c.mu.RLock()
	b, ok := c.entries[src]
	c.mu.RUnlock()
	if ok {
		atomic.AddUint64(&c.hits, 1)
	} else {
		atomic.AddUint64(&c.misses, 1)
	}
	return b, ok
}

// Contains reports whether src has an entry without touching the stats.
func (c *Cache) Contains(src Sources) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[src]
	return ok
}

// Insert stores bin for src unless an entry already exists. It reports
// whether the entry was added. The data slice is retained.
func (c *Cache) Insert(src Sources, bin Binary) (bool, error) {
	if len(bin.Data) == 0 {
		return false, ErrEmptyBinary
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[src]; ok {
		return false, nil
	}
	c.entries[src] = bin
	Logger().Debug("programcache: inserted", "key", src.Key()[:16], "format", bin.Format, "bytes", len(bin.Data))
	return true, nil
}

// Remove drops the entry for src, used when the driver rejects a binary.
// The next Save replaces the saved file with whatever is inserted for src
// afterwards.
func (c *Cache) Remove(src Sources) {
	c.mu.Lock()
	delete(c.entries, src)
	c.stale[src] = struct{}{}
	c.mu.Unlock()
}

// Len returns the number of entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns a snapshot of the cache statistics.
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:    atomic.LoadUint64(&c.hits),
		Misses:  atomic.LoadUint64(&c.misses),
		Entries: c.Len(),
		Skipped: atomic.LoadUint64(&c.skipped),
	}
}
