// Package cache stores canonical records on disk keyed by file content, so
// unchanged submissions are not lexed again on the next run.
package cache

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zeebo/blake3"

	"github.com/panbanda/simfeat/pkg/config"
	"github.com/panbanda/simfeat/pkg/models"
)

// formatVersion changes whenever the stored layout or the canonicalization
// rules change, orphaning every older entry.
const formatVersion = "simfeat-record-v2"

// Cache is a directory of record entries. A nil *Cache is a disabled
// cache: lookups miss and writes are dropped.
type Cache struct {
	dir   string
	ttl   time.Duration
	scope string
}

// Entry is the on-disk form of one cached record.
type Entry struct {
	Source string         `json:"source"`
	Stored time.Time      `json:"stored"`
	Record *models.Record `json:"record"`
}

// New opens the cache rooted at dir, creating it if needed. Entries older
// than ttl are treated as missing.
func New(dir string, ttl time.Duration) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir, ttl: ttl, scope: formatVersion}, nil
}

// FromConfig opens the configured cache, or returns nil when caching is
// off. Entries are scoped to the lexer settings that shaped them.
func FromConfig(cfg *config.Config) (*Cache, error) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}
	c, err := New(cfg.Cache.Dir, time.Duration(cfg.Cache.TTL)*time.Hour)
	if err != nil {
		return nil, err
	}
	c.scope = Fingerprint(cfg)
	return c, nil
}

// Fingerprint identifies the settings that influence record contents.
func Fingerprint(cfg *config.Config) string {
	lx := cfg.Lexer
	parts := []string{formatVersion, strings.ToLower(lx.Language)}
	if lx.StripTemplate {
		parts = append(parts, "strip")
		parts = append(parts, lx.StripPatterns...)
	}
	return HashBytes([]byte(strings.Join(parts, "\x00")))
}

// HashBytes is the hex BLAKE3-256 digest of data.
func HashBytes(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func (c *Cache) Enabled() bool { return c != nil }

// entryPath fans entries out over 256 subdirectories by key prefix.
func (c *Cache) entryPath(path string) string {
	key := HashBytes([]byte(c.scope + "\x00" + path))
	return filepath.Join(c.dir, key[:2], key[2:]+".json")
}

// GetRecord returns the record stored for path when src still hashes to
// what was stored and the entry is fresh. Stale entries are removed.
func (c *Cache) GetRecord(path string, src []byte) (*models.Record, bool) {
	if c == nil {
		return nil, false
	}
	file := c.entryPath(path)
	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, false
	}

	var e Entry
	switch {
	case json.Unmarshal(raw, &e) != nil, e.Record == nil:
		return nil, false
	case e.Source != HashBytes(src):
		return nil, false
	case time.Since(e.Stored) > c.ttl:
		_ = os.Remove(file)
		return nil, false
	}
	return e.Record, true
}

// SetRecord stores record for path. The entry becomes visible atomically.
func (c *Cache) SetRecord(path string, src []byte, record *models.Record) error {
	if c == nil {
		return nil
	}
	raw, err := json.Marshal(Entry{Source: HashBytes(src), Stored: time.Now(), Record: record})
	if err != nil {
		return err
	}

	file := c.entryPath(path)
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(file), ".tmp-*")
	if err != nil {
		return err
	}
	_, werr := tmp.Write(raw)
	cerr := tmp.Close()
	if err := errors.Join(werr, cerr); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), file)
}

// Clear deletes the cache directory and everything in it.
func (c *Cache) Clear() error {
	if c == nil {
		return nil
	}
	return os.RemoveAll(c.dir)
}

// Stats describes the entries currently on disk.
type Stats struct {
	Entries   int           `json:"entries"`
	TotalSize int64         `json:"total_size"`
	OldestAge time.Duration `json:"oldest_age"`
	NewestAge time.Duration `json:"newest_age"`
}

func (c *Cache) GetStats() (*Stats, error) {
	st := &Stats{}
	if c == nil {
		return st, nil
	}

	now := time.Now()
	err := filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(path) != ".json" {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		age := now.Sub(info.ModTime())
		if st.Entries == 0 || age > st.OldestAge {
			st.OldestAge = age
		}
		if st.Entries == 0 || age < st.NewestAge {
			st.NewestAge = age
		}
		st.Entries++
		st.TotalSize += info.Size()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return st, nil
}
