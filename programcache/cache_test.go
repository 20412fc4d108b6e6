package programcache

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestCacheDistinctSources(t *testing.T) {
	c := New()
	a := Sources{Renderer: "r", VS: "vs", FS: "fs-a"}
	b := Sources{Renderer: "r", VS: "vs", FS: "fs-b"}

	for _, src := range []Sources{a, b, a} {
		if _, err := c.Insert(src, Binary{Format: 1, Data: []byte(src.FS)}); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}
	if got := c.Len(); got != 2 {
		t.Errorf("Len() = %d, want 2", got)
	}
	if a.Key() == b.Key() {
		t.Error("Key() equal for different fragment sources")
	}
}

func TestCacheFirstInsertWins(t *testing.T) {
	c := New()
	src := Sources{Renderer: "r", VS: "v", FS: "f"}
	if added, _ := c.Insert(src, Binary{Format: 1, Data: []byte("one")}); !added {
		t.Fatal("first Insert() added = false")
	}
	if added, _ := c.Insert(src, Binary{Format: 2, Data: []byte("two")}); added {
		t.Error("second Insert() added = true")
	}
	got, ok := c.Get(src)
	if !ok || string(got.Data) != "one" || got.Format != 1 {
		t.Errorf("Get() = %+v, %v, want first binary", got, ok)
	}
}

func TestCacheEmptyBinary(t *testing.T) {
	c := New()
	if _, err := c.Insert(Sources{}, Binary{Format: 1}); !errors.Is(err, ErrEmptyBinary) {
		t.Errorf("Insert(empty) error = %v, want ErrEmptyBinary", err)
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
}

func TestCacheStats(t *testing.T) {
	c := New()
	src := Sources{VS: "v"}
	c.Get(src)
	_, _ = c.Insert(src, Binary{Data: []byte{1}})
	c.Get(src)
	c.Get(src)
	if c.Contains(Sources{VS: "other"}) {
		t.Error("Contains(other) = true")
	}

	st := c.Stats()
	if st.Hits != 2 || st.Misses != 1 || st.Entries != 1 {
		t.Errorf("Stats() = %+v, want 2 hits 1 miss 1 entry", st)
	}
}

func TestCacheRemove(t *testing.T) {
	c := New()
	src := Sources{VS: "v"}
	_, _ = c.Insert(src, Binary{Data: []byte{1}})
	c.Remove(src)
	if c.Contains(src) {
		t.Error("Contains() after Remove = true")
	}
}

func TestCacheConcurrent(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 50 {
				src := Sources{VS: string(rune('a' + j%10))}
				_, _ = c.Insert(src, Binary{Data: []byte{byte(i)}})
				c.Get(src)
			}
		}()
	}
	wg.Wait()
	if got := c.Len(); got != 10 {
		t.Errorf("Len() = %d, want 10", got)
	}
}

func TestDigestLengthPrefixed(t *testing.T) {
	a := Sources{Renderer: "ab", VS: "c"}
	b := Sources{Renderer: "a", VS: "bc"}
	if a.Digest() == b.Digest() {
		t.Error("Digest() collides for shifted field boundaries")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	c := New()
	entries := map[Sources]Binary{
		{Renderer: "r1", VS: "vs1", FS: "fs1"}: {Format: 7, Data: []byte("bin1")},
		{Renderer: "r1", VS: "vs2", FS: "fs2"}: {Format: 7, Data: []byte("bin2")},
	}
	for src, bin := range entries {
		_, _ = c.Insert(src, bin)
	}
	if err := c.Save(dir); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if loaded.Len() != len(entries) {
		t.Fatalf("Len() = %d, want %d", loaded.Len(), len(entries))
	}
	for src, want := range entries {
		got, ok := loaded.Get(src)
		if !ok || got.Format != want.Format || !bytes.Equal(got.Data, want.Data) {
			t.Errorf("Get(%v) = %+v, %v, want %+v", src, got, ok, want)
		}
	}

	// A second save is a no-op for existing files.
	if err := loaded.Save(dir); err != nil {
		t.Fatalf("second Save() error = %v", err)
	}
	files, _ := os.ReadDir(dir)
	if len(files) != len(entries) {
		t.Errorf("files = %d, want %d", len(files), len(entries))
	}
}

func TestSaveReplacesRejectedBinary(t *testing.T) {
	dir := t.TempDir()
	src := Sources{Renderer: "r", VS: "v", FS: "f"}
	c := New()
	_, _ = c.Insert(src, Binary{Format: 1, Data: []byte("old")})
	if err := c.Save(dir); err != nil {
		t.Fatal(err)
	}

	next, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	next.Remove(src)
	if added, _ := next.Insert(src, Binary{Format: 2, Data: []byte("new")}); !added {
		t.Fatal("Insert() after Remove() = false, want true")
	}
	if err := next.Save(dir); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	got, ok := reopened.Get(src)
	if !ok || got.Format != 2 || string(got.Data) != "new" {
		t.Errorf("Get() after re-save = %d %q, %v, want 2 \"new\"", got.Format, got.Data, ok)
	}

	// Once written, the key is no longer rewritten.
	next.mu.RLock()
	_, stale := next.stale[src]
	next.mu.RUnlock()
	if stale {
		t.Error("key still marked stale after Save")
	}
}

func TestLoadSkipsCorrupt(t *testing.T) {
	dir := t.TempDir()
	c := New()
	src := Sources{Renderer: "r", VS: "v", FS: "f"}
	_, _ = c.Insert(src, Binary{Format: 1, Data: []byte("payload")})
	if err := c.Save(dir); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, src.Key()+fileExt)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	data[headerSize] ^= 0xFF
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "junk.bin"), []byte("GLPB"), 0o600); err != nil {
		t.Fatal(err)
	}

	loaded := New()
	n, err := loaded.Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if n != 0 || loaded.Len() != 0 {
		t.Errorf("Load() = %d entries, want 0", n)
	}
	if got := loaded.Stats().Skipped; got != 2 {
		t.Errorf("Stats().Skipped = %d, want 2", got)
	}
}

func TestLoadRenamedFileSkipped(t *testing.T) {
	dir := t.TempDir()
	src := Sources{Renderer: "r", VS: "v", FS: "f"}
	if err := os.WriteFile(filepath.Join(dir, "deadbeef.bin"), encodeEntry(src, Binary{Data: []byte{1}}), 0o600); err != nil {
		t.Fatal(err)
	}
	c := New()
	if n, _ := c.Load(dir); n != 0 {
		t.Errorf("Load() = %d, want 0 for mismatched name", n)
	}
}

func TestLoadMissingDir(t *testing.T) {
	n, err := New().Load(filepath.Join(t.TempDir(), "absent"))
	if err != nil || n != 0 {
		t.Errorf("Load(missing) = %d, %v, want 0, nil", n, err)
	}
}

func TestDecodeEntry(t *testing.T) {
	src := Sources{Renderer: "renderer", VS: "vertex", FS: "fragment"}
	bin := Binary{Format: 0xABCD, Data: []byte{9, 8, 7}}
	enc := encodeEntry(src, bin)

	tests := []struct {
		name    string
		data    []byte
		wantErr bool
	}{
		{"valid", enc, false},
		{"short", enc[:10], true},
		{"truncated", enc[:len(enc)-1], true},
		{"empty", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotSrc, gotBin, err := decodeEntry(tt.data)
			if (err != nil) != tt.wantErr {
				t.Fatalf("decodeEntry() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrCorruptEntry) {
					t.Errorf("decodeEntry() error = %v, want ErrCorruptEntry", err)
				}
				return
			}
			if gotSrc != src || gotBin.Format != bin.Format || !bytes.Equal(gotBin.Data, bin.Data) {
				t.Errorf("decodeEntry() = %+v, %+v", gotSrc, gotBin)
			}
		})
	}
}
