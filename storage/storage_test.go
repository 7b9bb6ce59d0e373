package storage_test

import (
	"sync"
	"testing"

	"github.com/pkg/errors"
	gc "gopkg.in/check.v1"

	"polyterm/poly"
	"polyterm/storage"
	"polyterm/storage/mock"
)

func Test(t *testing.T) { gc.TestingT(t) }

type CacheSuite struct {
	mock  *mock.Storage
	cache storage.Storage
}

var _ = gc.Suite(&CacheSuite{})

var _ storage.Storage = (*mock.Storage)(nil)

func (s *CacheSuite) SetUpTest(c *gc.C) {
	s.mock = mock.NewStorage(mock.Polys(map[string]*poly.Poly{
		"x": poly.NewPoly(poly.Term{Coeff: 1, Degree: 1}),
	}))
	var err error
	s.cache, err = storage.NewCache(s.mock, 2)
	c.Assert(err, gc.IsNil)
}

func (s *CacheSuite) TestFetchCached(c *gc.C) {
	for i := 0; i < 3; i++ {
		p, err := s.cache.Fetch("x")
		c.Assert(err, gc.IsNil)
		c.Assert(p.String(), gc.Equals, "1.0x")
	}
	c.Assert(s.mock.MethodCount("Fetch"), gc.Equals, 1)
}

func (s *CacheSuite) TestFetchReturnsCopy(c *gc.C) {
	p, err := s.cache.Fetch("x")
	c.Assert(err, gc.IsNil)
	p.Neg()
	q, err := s.cache.Fetch("x")
	c.Assert(err, gc.IsNil)
	c.Assert(q.String(), gc.Equals, "1.0x")
}

func (s *CacheSuite) TestNotFoundNotCached(c *gc.C) {
	for i := 0; i < 2; i++ {
		_, err := s.cache.Fetch("y")
		c.Assert(storage.IsNotFound(err), gc.Equals, true)
	}
	c.Assert(s.mock.MethodCount("Fetch"), gc.Equals, 2)
}

func (s *CacheSuite) TestWritesInvalidate(c *gc.C) {
	for _, write := range []func() error{
		func() error { return s.cache.Update("x", poly.NewPoly()) },
		func() error { return s.cache.Delete("x") },
		func() error { return s.cache.Insert("x", poly.NewPoly()) },
	} {
		_, err := s.cache.Fetch("x")
		c.Assert(err, gc.IsNil)
		n := s.mock.MethodCount("Fetch")
		c.Assert(write(), gc.IsNil)
		_, err = s.cache.Fetch("x")
		c.Assert(err, gc.IsNil)
		c.Assert(s.mock.MethodCount("Fetch"), gc.Equals, n+1)
	}
}

func (s *CacheSuite) TestUpdateDuringFetchMiss(c *gc.C) {
	var mu sync.Mutex
	current := poly.NewPoly(poly.Term{Coeff: 1, Degree: 1})
	entered := make(chan struct{})
	release := make(chan struct{})
	blocked := true
	m := mock.NewStorage(
		mock.Fetch(func(string) (*poly.Poly, error) {
			mu.Lock()
			p, block := current.Copy(), blocked
			blocked = false
			mu.Unlock()
			if block {
				close(entered)
				<-release
			}
			return p, nil
		}),
		mock.Update(func(_ string, p *poly.Poly) error {
			mu.Lock()
			current = p.Copy()
			mu.Unlock()
			return nil
		}),
	)
	cache, err := storage.NewCache(m, 2)
	c.Assert(err, gc.IsNil)

	fetched := make(chan *poly.Poly)
	go func() {
		p, err := cache.Fetch("p")
		c.Check(err, gc.IsNil)
		fetched <- p
	}()
	<-entered
	c.Assert(cache.Update("p", poly.NewPoly(poly.Term{Coeff: 2, Degree: 2})), gc.IsNil)
	close(release)
	c.Assert((<-fetched).String(), gc.Equals, "1.0x")

	p, err := cache.Fetch("p")
	c.Assert(err, gc.IsNil)
	c.Assert(p.String(), gc.Equals, "2.0x^2")
	p, err = cache.Fetch("p")
	c.Assert(err, gc.IsNil)
	c.Assert(p.String(), gc.Equals, "2.0x^2")
	c.Assert(m.MethodCount("Fetch"), gc.Equals, 2)
}

func (s *CacheSuite) TestClose(c *gc.C) {
	c.Assert(s.cache.Close(), gc.IsNil)
	c.Assert(s.mock.MethodCount("Close"), gc.Equals, 1)
}

type UpsertSuite struct{}

var _ = gc.Suite(&UpsertSuite{})

func (s *UpsertSuite) TestUpsertFetchError(c *gc.C) {
	boom := errors.New("boom")
	m := mock.NewStorage(mock.Fetch(func(string) (*poly.Poly, error) { return nil, boom }))
	_, err := storage.Upsert(m, "x", poly.NewPoly())
	c.Assert(errors.Cause(err), gc.Equals, boom)
	c.Assert(m.MethodCount("Insert"), gc.Equals, 0)
	c.Assert(m.MethodCount("Update"), gc.Equals, 0)
}

func (s *UpsertSuite) TestUpsertNotifyError(c *gc.C) {
	m := mock.NewStorage()
	m.Subscribe(func(storage.PolyChange) error { return errors.New("listener failed") })
	change, err := storage.Upsert(m, "x", poly.NewPoly())
	c.Assert(err, gc.ErrorMatches, "listener failed")
	c.Assert(change, gc.Equals, storage.PolyAdded{Name: "x"})
	c.Assert(m.MethodCount("Insert"), gc.Equals, 1)
}

func (s *UpsertSuite) TestCheckName(c *gc.C) {
	c.Assert(storage.CheckName("p"), gc.IsNil)
	c.Assert(errors.Cause(storage.CheckName("")), gc.Equals, storage.ErrInvalidName)
	long := make([]byte, storage.MaxNameLen+1)
	for i := range long {
		long[i] = 'a'
	}
	c.Assert(errors.Cause(storage.CheckName(string(long))), gc.Equals, storage.ErrInvalidName)
}

func (s *UpsertSuite) TestChangeStrings(c *gc.C) {
	c.Assert(storage.PolyAdded{Name: "p"}.String(), gc.Equals, `polynomial "p" added`)
	c.Assert(storage.PolyReplaced{Name: "p"}.String(), gc.Equals, `polynomial "p" replaced`)
	c.Assert(storage.PolyDeleted{Name: "p"}.String(), gc.Equals, `polynomial "p" deleted`)
	c.Assert(storage.PolyNotChanged{}.Names(), gc.IsNil)
}
