package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Bump when the cleanEntry format changes; stale entries are ignored.
const cacheSchemaVersion uint16 = 1

// Cache remembers which file contents came out of a repair run clean
// for a given rule set, keyed by content hash. A nil *Cache disables
// caching: every method is a no-op on a nil receiver.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

type cleanEntry struct {
	Schema    uint16
	Rules     []string
	CheckedAt int64
}

// OpenCache initializes a disk cache at the standard location
// ($XDG_CACHE_HOME or ~/.cache) under the given application name.
func OpenCache(app string) (*Cache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir}, nil
}

// OpenCacheAt initializes a disk cache rooted at an explicit directory.
func OpenCacheAt(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir}, nil
}

// key mixes the file content hash with the rule ids so that changing
// the selected rules invalidates prior clean verdicts.
func key(contentHash [sha256.Size]byte, ruleIDs []string) string {
	h := sha256.New()
	h.Write(contentHash[:])
	for _, id := range ruleIDs {
		h.Write([]byte(id))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (c *Cache) pathFor(k string) string {
	// Subdirectory keeps the cache root listable and easy to clear.
	return filepath.Join(c.dir, "clean", k+".mp")
}

// MarkClean records that content with the given hash has no repairable
// violations under the rule set.
func (c *Cache) MarkClean(contentHash [sha256.Size]byte, ruleIDs []string) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key(contentHash, ruleIDs))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	entry := cleanEntry{
		Schema:    cacheSchemaVersion,
		Rules:     ruleIDs,
		CheckedAt: time.Now().Unix(),
	}
	if err := msgpack.NewEncoder(f).Encode(&entry); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Atomic replace
	return os.Rename(f.Name(), p)
}

// IsClean reports whether the content hash was recorded clean for
// exactly this rule set. A missing or stale entry is simply a miss.
func (c *Cache) IsClean(contentHash [sha256.Size]byte, ruleIDs []string) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key(contentHash, ruleIDs)))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	var entry cleanEntry
	if err := msgpack.NewDecoder(f).Decode(&entry); err != nil {
		return false, nil
	}
	if entry.Schema != cacheSchemaVersion || !slices.Equal(entry.Rules, ruleIDs) {
		return false, nil
	}
	return true, nil
}

// DropAll removes every cached verdict, useful after a rule changes
// behavior without changing its id.
func (c *Cache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		return err
	}
	return os.RemoveAll(old)
}
