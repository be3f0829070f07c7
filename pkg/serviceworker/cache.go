package serviceworker

import (
	"sort"
	"sync"

	gocache "github.com/patrickmn/go-cache"
)

// Cache is one named cache namespace mapping request keys to responses
type Cache struct {
	name    string
	entries *gocache.Cache
}

// Name returns the namespace name
func (c *Cache) Name() string {
	return c.name
}

// Put stores a copy of the response, replacing any entry for the same key
func (c *Cache) Put(key string, resp *Response) {
	c.entries.Set(key, resp.clone(), gocache.NoExpiration)
}

// Match returns a copy of the cached response for key
func (c *Cache) Match(key string) (*Response, bool) {
	v, ok := c.entries.Get(key)
	if !ok {
		return nil, false
	}
	resp := v.(*Response).clone()
	resp.FromCache = true
	return resp, true
}

// Keys returns the cached request keys, sorted
func (c *Cache) Keys() []string {
	items := c.entries.Items()
	keys := make([]string, 0, len(items))
	for k := range items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of cached entries
func (c *Cache) Len() int {
	return c.entries.ItemCount()
}

// CacheStorage holds the named caches of one origin
type CacheStorage struct {
	mu     sync.Mutex
	caches *gocache.Cache
	order  []string
}

// NewCacheStorage creates empty storage
func NewCacheStorage() *CacheStorage {
	return &CacheStorage{caches: gocache.New(gocache.NoExpiration, 0)}
}

// Open returns the named cache, creating it if needed
func (s *CacheStorage) Open(name string) *Cache {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.caches.Get(name); ok {
		return v.(*Cache)
	}
	c := &Cache{name: name, entries: gocache.New(gocache.NoExpiration, 0)}
	s.caches.Set(name, c, gocache.NoExpiration)
	s.order = append(s.order, name)
	return c
}

// Has reports whether a cache with that name exists
func (s *CacheStorage) Has(name string) bool {
	_, ok := s.caches.Get(name)
	return ok
}

// Delete removes a cache and reports whether it existed
func (s *CacheStorage) Delete(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.caches.Get(name); !ok {
		return false
	}
	s.caches.Delete(name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Keys returns the cache names in creation order
func (s *CacheStorage) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...)
}

// Match searches every cache in creation order
func (s *CacheStorage) Match(key string) (*Response, bool) {
	for _, name := range s.Keys() {
		v, ok := s.caches.Get(name)
		if !ok {
			continue
		}
		if resp, ok := v.(*Cache).Match(key); ok {
			return resp, true
		}
	}
	return nil, false
}
