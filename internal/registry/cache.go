package registry

import (
	"sync"
	"time"
)

// docCache keeps fetched index documents by path. An entry older than the
// TTL is stale: it is revalidated with its ETag rather than trusted.
type docCache struct {
	mu   sync.Mutex
	ttl  time.Duration
	now  func() time.Time
	docs map[string]cachedDoc
}

type cachedDoc struct {
	body    []byte
	etag    string
	fetched time.Time
}

func newDocCache(ttl time.Duration) *docCache {
	return &docCache{
		ttl:  ttl,
		now:  time.Now,
		docs: make(map[string]cachedDoc),
	}
}

// lookup returns the document stored for path and whether it is still fresh.
func (c *docCache) lookup(path string) (doc cachedDoc, fresh, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	doc, ok = c.docs[path]
	if !ok {
		return doc, false, false
	}
	return doc, c.now().Sub(doc.fetched) < c.ttl, true
}

func (c *docCache) store(path string, body []byte, etag string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs[path] = cachedDoc{body: body, etag: etag, fetched: c.now()}
}

// renew marks a stale document fresh again after the server confirmed it.
func (c *docCache) renew(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if doc, ok := c.docs[path]; ok {
		doc.fetched = c.now()
		c.docs[path] = doc
	}
}
