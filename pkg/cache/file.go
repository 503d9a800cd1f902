package cache

import (
	"bytes"
	"context"
	"encoding/binary"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// entryExt marks cache entries; temporary files from interrupted writes do
// not carry it and are ignored by Stats and Clear.
const entryExt = ".entry"

// entryMagic starts every entry file. It is followed by the expiry as
// big-endian Unix nanoseconds (0 for none) and the raw data.
var entryMagic = []byte("CLC1")

const headerLen = 4 + 8

// FileCache stores entries as files below a directory, sharded by the first
// byte of the key hash. Binary artifacts are written as-is.
type FileCache struct {
	dir string
}

// NewFileCache creates dir if needed and returns a cache rooted there.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir}, nil
}

func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	p := c.path(key)
	raw, err := os.ReadFile(p)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	data, expires, ok := decodeEntry(raw)
	if !ok || (!expires.IsZero() && time.Now().After(expires)) {
		_ = os.Remove(p)
		return nil, false, nil
	}
	return data, true, nil
}

// Set writes the entry to a temporary file and renames it into place, so
// readers never see a partial entry.
func (c *FileCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	p := c.path(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(p), ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(encodeEntry(data, ttl)); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), p)
}

func (c *FileCache) Delete(ctx context.Context, key string) error {
	if err := os.Remove(c.path(key)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (c *FileCache) Close() error { return nil }

// Dir returns the cache directory.
func (c *FileCache) Dir() string { return c.dir }

// Stats reports the number of entries and their total size on disk.
func (c *FileCache) Stats() (entries int, bytes int64, err error) {
	err = c.walk(func(_ string, info fs.FileInfo) {
		entries++
		bytes += info.Size()
	})
	return entries, bytes, err
}

// Clear removes every entry and the emptied shard directories, and returns
// how many entries were removed. The cache directory itself stays.
func (c *FileCache) Clear() (int, error) {
	n := 0
	err := c.walk(func(p string, _ fs.FileInfo) {
		if os.Remove(p) == nil {
			n++
		}
	})
	if err != nil {
		return n, err
	}
	shards, _ := os.ReadDir(c.dir)
	for _, d := range shards {
		if d.IsDir() {
			_ = os.Remove(filepath.Join(c.dir, d.Name()))
		}
	}
	return n, nil
}

func (c *FileCache) walk(fn func(p string, info fs.FileInfo)) error {
	err := filepath.WalkDir(c.dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(p) != entryExt {
			return nil
		}
		if info, err := d.Info(); err == nil {
			fn(p, info)
		}
		return nil
	})
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (c *FileCache) path(key string) string {
	h := Hash([]byte(key))
	return filepath.Join(c.dir, h[:2], h[2:]+entryExt)
}

func encodeEntry(data []byte, ttl time.Duration) []byte {
	buf := make([]byte, headerLen, headerLen+len(data))
	copy(buf, entryMagic)
	if ttl > 0 {
		binary.BigEndian.PutUint64(buf[4:], uint64(time.Now().Add(ttl).UnixNano()))
	}
	return append(buf, data...)
}

func decodeEntry(raw []byte) (data []byte, expires time.Time, ok bool) {
	if len(raw) < headerLen || !bytes.Equal(raw[:4], entryMagic) {
		return nil, time.Time{}, false
	}
	if ns := binary.BigEndian.Uint64(raw[4:headerLen]); ns != 0 {
		expires = time.Unix(0, int64(ns))
	}
	return raw[headerLen:], expires, true
}

var _ Cache = (*FileCache)(nil)
