package cache

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"time"
)

// FileCache stores entries on disk for CLI usage, one file per key in a
// hash-sharded directory tree. Entries are the raw payload prefixed with
// an 8-byte big-endian unix-nano expiry (zero means no expiration), so
// tile and artifact blobs land on disk as-is instead of being inflated
// by a text encoding.
type FileCache struct {
	dir string
}

const entryHeader = 8

// NewFileCache creates a file cache rooted at dir, creating the
// directory if needed.
func NewFileCache(dir string) (Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir}, nil
}

// Get retrieves a value. Corrupt and expired entries are removed and
// reported as misses.
func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if len(raw) < entryHeader {
		_ = os.Remove(path)
		return nil, false, nil
	}

	expiry := int64(binary.BigEndian.Uint64(raw[:entryHeader]))
	if expiry != 0 && time.Now().UnixNano() > expiry {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return raw[entryHeader:], true, nil
}

// Set stores a value. A zero TTL disables expiration.
func (c *FileCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	var expiry int64
	if ttl != 0 {
		expiry = time.Now().Add(ttl).UnixNano()
	}

	buf := make([]byte, entryHeader+len(data))
	binary.BigEndian.PutUint64(buf[:entryHeader], uint64(expiry))
	copy(buf[entryHeader:], data)

	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0o644)
}

// Delete removes a value. Deleting a missing key is not an error.
func (c *FileCache) Delete(ctx context.Context, key string) error {
	err := os.Remove(c.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Close does nothing for the file cache.
func (c *FileCache) Close() error {
	return nil
}

// path maps a key to a file under the cache root. The first two hex
// digits of the key hash shard entries across subdirectories so a large
// tile cache does not pile every file into one directory.
func (c *FileCache) path(key string) string {
	h := Hash([]byte(key))
	return filepath.Join(c.dir, h[:2], h[2:]+".bin")
}

var _ Cache = (*FileCache)(nil)
