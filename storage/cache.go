package storage

import (
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"

	"polyterm/poly"
)

// DefaultCacheSize is the number of polynomials NewCache keeps when given a
// non-positive size.
const DefaultCacheSize = 1024

type cache struct {
	Storage
	polys *lru.Cache

	// writes counts completed writes. A Fetch miss only fills the cache if
	// no write completed while it was reading the backend.
	mu     sync.Mutex
	writes uint64
}

// NewCache returns a Storage that answers Fetch from an LRU cache in front
// of st. Writes through the returned Storage invalidate the cached entry.
// Callers always receive their own copy of a cached polynomial.
func NewCache(st Storage, size int) (Storage, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	polys, err := lru.New(size)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &cache{Storage: st, polys: polys}, nil
}

func (c *cache) Fetch(name string) (*poly.Poly, error) {
	if v, ok := c.polys.Get(name); ok {
		return v.(*poly.Poly).Copy(), nil
	}
	c.mu.Lock()
	writes := c.writes
	c.mu.Unlock()

	p, err := c.Storage.Fetch(name)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.writes == writes {
		c.polys.Add(name, p.Copy())
	}
	c.mu.Unlock()
	return p, nil
}

func (c *cache) invalidate(name string) {
	c.mu.Lock()
	c.writes++
	c.polys.Remove(name)
	c.mu.Unlock()
}

func (c *cache) Insert(name string, p *poly.Poly) error {
	err := c.Storage.Insert(name, p)
	c.invalidate(name)
	return err
}

func (c *cache) Update(name string, p *poly.Poly) error {
	err := c.Storage.Update(name, p)
	c.invalidate(name)
	return err
}

func (c *cache) Delete(name string) error {
	err := c.Storage.Delete(name)
	c.invalidate(name)
	return err
}

func (c *cache) Close() error {
	c.polys.Purge()
	return c.Storage.Close()
}
