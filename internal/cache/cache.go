package cache

import (
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// Response is a cached upstream reply
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

func init() {
	gob.Register(&Response{})
}

type Cache interface {
	Get(key string) (*Response, bool)
	// Set stores value for ttl; a ttl <= 0 stores nothing
	Set(key string, value *Response, ttl time.Duration)
	Delete(key string)
	Clear()
	Stats() CacheStats
	Load(path string) error
	Save(path string) error
}

type CacheStats struct {
	Hits       int64     `json:"hits"`
	Misses     int64     `json:"misses"`
	Size       int       `json:"size"`
	LastAccess time.Time `json:"last_access"`
}

type LRUCache struct {
	cache   *cache.Cache
	mu      sync.RWMutex
	stats   CacheStats
	maxSize int
}

func NewCache(maxSize int, cleanupInterval time.Duration) Cache {
	if cleanupInterval <= 0 {
		cleanupInterval = time.Hour
	}
	return &LRUCache{
		cache:   cache.New(cache.NoExpiration, cleanupInterval),
		maxSize: maxSize,
		stats:   CacheStats{},
	}
}

func (c *LRUCache) Get(key string) (*Response, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.LastAccess = time.Now()

	if data, found := c.cache.Get(key); found {
		if resp, ok := data.(*Response); ok {
			c.stats.Hits++
			return resp, true
		}
	}

	c.stats.Misses++
	return nil, false
}

func (c *LRUCache) Set(key string, value *Response, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.cache.Get(key); !exists && c.maxSize > 0 && c.cache.ItemCount() >= c.maxSize {
		c.removeOldest()
	}

	c.cache.Set(key, value, ttl)
}

func (c *LRUCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache.Delete(key)
}

func (c *LRUCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache.Flush()
	c.stats = CacheStats{}
}

func (c *LRUCache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := c.stats
	stats.Size = c.cache.ItemCount()
	return stats
}

// Load merges unexpired entries saved by a previous run; a missing file is ignored
func (c *LRUCache) Load(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.cache.LoadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load cache from %s: %w", path, err)
	}
	return nil
}

// Save writes all entries to path so the next run can reuse them
func (c *LRUCache) Save(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache.DeleteExpired()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	if err := c.cache.SaveFile(path); err != nil {
		return fmt.Errorf("failed to save cache to %s: %w", path, err)
	}
	return nil
}

// removeOldest evicts the entry closest to expiry
func (c *LRUCache) removeOldest() {
	items := c.cache.Items()
	if len(items) == 0 {
		return
	}

	var oldestKey string
	var oldestExpiration int64

	for key, item := range items {
		if oldestKey == "" || item.Expiration < oldestExpiration {
			oldestKey = key
			oldestExpiration = item.Expiration
		}
	}

	if oldestKey != "" {
		c.cache.Delete(oldestKey)
	}
}

// GenerateCacheKey derives a key from the request method, URL and form fields
func GenerateCacheKey(method, url string, form map[string]string) string {
	names := make([]string, 0, len(form))
	for name := range form {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(strings.ToUpper(method))
	b.WriteString(" ")
	b.WriteString(url)
	for _, name := range names {
		b.WriteString("\n")
		b.WriteString(name)
		b.WriteString("=")
		b.WriteString(form[name])
	}

	sum := sha256.Sum256([]byte(b.String()))
	return "resp:" + hex.EncodeToString(sum[:])
}
