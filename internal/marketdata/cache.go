package marketdata

import (
	"crypto/md5"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Cache is a file-based cache keyed by a hash of the request parameters.
type Cache struct {
	dir     string
	ttl     time.Duration
	enabled bool
}

// NewCache creates a cache rooted at dir. A disabled cache is a no-op.
func NewCache(dir string, ttl time.Duration, enabled bool) *Cache {
	return &Cache{dir: dir, ttl: ttl, enabled: enabled}
}

func (c *Cache) key(method string, params any) string {
	data, _ := json.Marshal(params)
	hash := md5.Sum(data)
	return fmt.Sprintf("%s_%x.json", method, hash)
}

// Get loads a cached value into result, returning false on miss or expiry.
func (c *Cache) Get(method string, params, result any) bool {
	if !c.enabled {
		return false
	}

	path := filepath.Join(c.dir, c.key(method, params))
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	if time.Since(info.ModTime()) > c.ttl {
		os.Remove(path)
		return false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return json.Unmarshal(data, result) == nil
}

// Set stores a value; cache write failures are returned but callers may
// ignore them, a cold cache is never fatal.
func (c *Cache) Set(method string, params, value any) error {
	if !c.enabled {
		return nil
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.dir, c.key(method, params)), data, 0o644)
}
