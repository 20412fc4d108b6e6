package programcache

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"

	"golang.org/x/crypto/blake2b"
)

// On-disk entry layout, little endian:
//
//	magic "GLPB" | version u32 | format u32 |
//	len(renderer) u32 | len(vs) u32 | len(fs) u32 | len(data) u32 |
//	renderer | vs | fs | data | blake2b-256 of everything before
const (
	fileMagic   = "GLPB"
	fileVersion = 1
	fileExt     = ".bin"
	headerSize  = 4 + 6*4
)

func encodeEntry(src Sources, bin Binary) []byte {
	var buf bytes.Buffer
	buf.Grow(headerSize + len(src.Renderer) + len(src.VS) + len(src.FS) + len(bin.Data) + blake2b.Size256)
	buf.WriteString(fileMagic)
	for _, v := range [...]uint32{
		fileVersion,
		bin.Format,
		uint32(len(src.Renderer)),
		uint32(len(src.VS)),
		uint32(len(src.FS)),
		uint32(len(bin.Data)),
	} {
		_ = binary.Write(&buf, binary.LittleEndian, v)
	}
	buf.WriteString(src.Renderer)
	buf.WriteString(src.VS)
	buf.WriteString(src.FS)
	buf.Write(bin.Data)
	sum := blake2b.Sum256(buf.Bytes())
	buf.Write(sum[:])
	return buf.Bytes()
}

func decodeEntry(b []byte) (Sources, Binary, error) {
	if len(b) < headerSize+blake2b.Size256 {
		return Sources{}, Binary{}, fmt.Errorf("%w: short file (%d bytes)", ErrCorruptEntry, len(b))
	}
	body, sum := b[:len(b)-blake2b.Size256], b[len(b)-blake2b.Size256:]
	if want := blake2b.Sum256(body); !bytes.Equal(sum, want[:]) {
		return Sources{}, Binary{}, fmt.Errorf("%w: checksum mismatch", ErrCorruptEntry)
	}
	if string(body[:4]) != fileMagic {
		return Sources{}, Binary{}, fmt.Errorf("%w: bad magic %q", ErrCorruptEntry, body[:4])
	}
	var hdr [6]uint32
	for i := range hdr {
		hdr[i] = binary.LittleEndian.Uint32(body[4+4*i:])
	}
	if hdr[0] != fileVersion {
		return Sources{}, Binary{}, fmt.Errorf("%w: version %d", ErrCorruptEntry, hdr[0])
	}
	rest := body[headerSize:]
	total := uint64(hdr[2]) + uint64(hdr[3]) + uint64(hdr[4]) + uint64(hdr[5])
	if total != uint64(len(rest)) {
		return Sources{}, Binary{}, fmt.Errorf("%w: length mismatch", ErrCorruptEntry)
	}
	take := func(n uint32) []byte {
		out := rest[:n]
		rest = rest[n:]
		return out
	}
	src := Sources{
		Renderer: string(take(hdr[2])),
		VS:       string(take(hdr[3])),
		FS:       string(take(hdr[4])),
	}
	bin := Binary{Format: hdr[1], Data: bytes.Clone(take(hdr[5]))}
	return src, bin, nil
}

// Save writes every entry to dir, one file per entry named by its key.
// Files already on disk are left alone unless their key was removed since
// the last Save, in which case the current binary replaces them.
func (c *Cache) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("programcache: create %s: %w", dir, err)
	}

	c.mu.RLock()
	snapshot := make(map[Sources]Binary, len(c.entries))
	for k, v := range c.entries {
		snapshot[k] = v
	}
	stale := make(map[Sources]struct{}, len(c.stale))
	for k := range c.stale {
		stale[k] = struct{}{}
	}
	c.mu.RUnlock()

	written := 0
	for src, bin := range snapshot {
		path := filepath.Join(dir, src.Key()+fileExt)
		if _, replace := stale[src]; !replace {
			if _, err := os.Stat(path); err == nil {
				continue
			}
		}
		if err := writeFileAtomic(path, encodeEntry(src, bin)); err != nil {
			return fmt.Errorf("programcache: save %s: %w", path, err)
		}
		written++
	}

	c.mu.Lock()
	for src := range stale {
		if _, ok := snapshot[src]; ok {
			delete(c.stale, src)
		}
	}
	c.mu.Unlock()
	Logger().Debug("programcache: saved", "dir", dir, "written", written, "entries", len(snapshot))
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Load reads the entries saved in dir and returns how many were added.
// A missing directory is not an error. Files that fail validation are
// skipped with a warning and counted in Stats().Skipped.
func (c *Cache) Load(dir string) (int, error) {
	files, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("programcache: load %s: %w", dir, err)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name() < files[j].Name() })

	loaded := 0
	for _, f := range files {
		name := f.Name()
		if f.IsDir() || !strings.HasSuffix(name, fileExt) {
			continue
		}
		path := filepath.Join(dir, name)
		src, bin, err := readEntry(path)
		if err == nil && src.Key()+fileExt != name {
			err = fmt.Errorf("%w: key does not match file name", ErrCorruptEntry)
		}
		if err != nil {
			atomic.AddUint64(&c.skipped, 1)
			Logger().Warn("programcache: skipping entry", "path", path, "err", err)
			continue
		}
		if added, _ := c.Insert(src, bin); added {
			loaded++
		}
	}
	Logger().Debug("programcache: loaded", "dir", dir, "entries", loaded)
	return loaded, nil
}

func readEntry(path string) (Sources, Binary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Sources{}, Binary{}, err
	}
	return decodeEntry(data)
}

// Open creates a cache populated from dir.
func Open(dir string) (*Cache, error) {
	c := New()
	if _, err := c.Load(dir); err != nil {
		return nil, err
	}
	return c, nil
}
