package sources

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/vmihailenco/msgpack/v5"
)

// cacheSchemaVersion invalidates stored entries when [File] changes shape.
const cacheSchemaVersion uint16 = 1

// ErrCache is returned when the block cache cannot be created.
var ErrCache = errors.New("block cache")

// Cache memoises [Extract] by file path and content. Entries are kept in
// memory and, when a directory is configured, on disk as msgpack files.
// A nil *Cache extracts without caching. It is safe for concurrent use.
//
// Create instances with [NewCache].
type Cache struct {
	mem *lru.Cache[string, *File]
	dir string
	mu  sync.RWMutex
}

type cachePayload struct {
	File   *File  `msgpack:"file"`
	Schema uint16 `msgpack:"schema"`
}

// NewCache creates a [Cache] holding up to size files in memory. When dir is
// not empty, entries are also persisted below it.
func NewCache(size int, dir string) (*Cache, error) {
	mem, err := lru.New[string, *File](size)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCache, err)
	}

	if dir != "" {
		err = os.MkdirAll(dir, 0o755)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCache, err)
		}
	}

	return &Cache{mem: mem, dir: dir}, nil
}

// Extract returns the cached extraction of src, running [Extract] on a miss.
// Disk errors are ignored; the cache only ever saves work.
func (c *Cache) Extract(filename string, src []byte) (*File, error) {
	if c == nil {
		return Extract(filename, src)
	}

	key := cacheKey(filename, src)

	if f, ok := c.mem.Get(key); ok {
		return f, nil
	}

	if f, ok := c.load(key); ok {
		c.mem.Add(key, f)

		return f, nil
	}

	f, err := Extract(filename, src)
	if err != nil {
		return nil, err
	}

	c.mem.Add(key, f)
	_ = c.store(key, f)

	return f, nil
}

// Len returns the number of files held in memory.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}

	return c.mem.Len()
}

func cacheKey(filename string, src []byte) string {
	h := sha256.New()
	h.Write([]byte(filename))
	h.Write([]byte{0})
	h.Write(src)

	return hex.EncodeToString(h.Sum(nil))
}

func (c *Cache) pathFor(key string) string {
	return filepath.Join(c.dir, "blocks", key[:2], key+".mp")
}

func (c *Cache) load(key string) (*File, bool) {
	if c.dir == "" {
		return nil, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := os.ReadFile(c.pathFor(key))
	if err != nil {
		return nil, false
	}

	var payload cachePayload

	err = msgpack.Unmarshal(data, &payload)
	if err != nil || payload.Schema != cacheSchemaVersion || payload.File == nil {
		return nil, false
	}

	return payload.File, true
}

func (c *Cache) store(key string, f *File) error {
	if c.dir == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)

	err := os.MkdirAll(filepath.Dir(p), 0o755)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}

	defer os.Remove(tmp.Name())

	err = msgpack.NewEncoder(tmp).Encode(cachePayload{File: f, Schema: cacheSchemaVersion})
	if err != nil {
		_ = tmp.Close()

		return err
	}

	err = tmp.Close()
	if err != nil {
		return err
	}

	return os.Rename(tmp.Name(), p)
}
