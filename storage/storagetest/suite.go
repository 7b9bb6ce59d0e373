// Package storagetest provides a gocheck suite that any polynomial Storage
// implementation can run against itself.
package storagetest

import (
	gc "gopkg.in/check.v1"

	"polyterm/poly"
	"polyterm/storage"
)

type Cleanup func()

type StorageFactory func(c *gc.C) (storage.Storage, Cleanup)

type StorageSuite struct {
	Factory StorageFactory

	st      storage.Storage
	cleanup Cleanup
}

func NewStorageSuite(factory StorageFactory) *StorageSuite {
	return &StorageSuite{Factory: factory}
}

func (s *StorageSuite) SetUpTest(c *gc.C) {
	s.st, s.cleanup = s.Factory(c)
}

func (s *StorageSuite) TearDownTest(c *gc.C) {
	if s.st != nil {
		c.Assert(s.st.Close(), gc.IsNil)
	}
	if s.cleanup != nil {
		s.cleanup()
	}
}

func mustParse(c *gc.C, text string) *poly.Poly {
	p, err := poly.ParseString(text)
	c.Assert(err, gc.IsNil)
	return p
}

func (s *StorageSuite) TestInsertFetch(c *gc.C) {
	p := mustParse(c, "4 5\n-2 3\n2 1\n3 0\n")
	c.Assert(s.st.Insert("sample", p), gc.IsNil)

	q, err := s.st.Fetch("sample")
	c.Assert(err, gc.IsNil)
	c.Assert(q.Equal(p), gc.Equals, true, gc.Commentf("%v != %v", q, p))
	c.Assert(q.String(), gc.Equals, "3.0 + 2.0x + -2.0x^3 + 4.0x^5")

	err = s.st.Insert("sample", poly.NewPoly())
	c.Assert(storage.IsExists(err), gc.Equals, true, gc.Commentf("%v", err))
}

func (s *StorageSuite) TestZeroPoly(c *gc.C) {
	c.Assert(s.st.Insert("zero", poly.NewPoly()), gc.IsNil)
	q, err := s.st.Fetch("zero")
	c.Assert(err, gc.IsNil)
	c.Assert(q.IsZero(), gc.Equals, true)
}

func (s *StorageSuite) TestFractionalCoeffs(c *gc.C) {
	p := poly.NewPoly(poly.Term{Coeff: 0.1, Degree: 3}, poly.Term{Coeff: -1e-9, Degree: 0})
	c.Assert(s.st.Insert("frac", p), gc.IsNil)
	q, err := s.st.Fetch("frac")
	c.Assert(err, gc.IsNil)
	c.Assert(q.Terms(), gc.DeepEquals, p.Terms())
}

func (s *StorageSuite) TestFetchNotFound(c *gc.C) {
	_, err := s.st.Fetch("nope")
	c.Assert(storage.IsNotFound(err), gc.Equals, true, gc.Commentf("%v", err))
}

func (s *StorageSuite) TestInvalidName(c *gc.C) {
	err := s.st.Insert("", poly.NewPoly())
	c.Assert(err, gc.NotNil)
}

func (s *StorageSuite) TestUpdateDelete(c *gc.C) {
	err := s.st.Update("p", poly.NewPoly())
	c.Assert(storage.IsNotFound(err), gc.Equals, true, gc.Commentf("%v", err))
	err = s.st.Delete("p")
	c.Assert(storage.IsNotFound(err), gc.Equals, true, gc.Commentf("%v", err))

	c.Assert(s.st.Insert("p", mustParse(c, "1 1\n")), gc.IsNil)
	c.Assert(s.st.Update("p", mustParse(c, "2 2\n")), gc.IsNil)
	q, err := s.st.Fetch("p")
	c.Assert(err, gc.IsNil)
	c.Assert(q.Terms(), gc.DeepEquals, []poly.Term{{Coeff: 2, Degree: 2}})

	c.Assert(s.st.Delete("p"), gc.IsNil)
	_, err = s.st.Fetch("p")
	c.Assert(storage.IsNotFound(err), gc.Equals, true, gc.Commentf("%v", err))
}

func (s *StorageSuite) TestNames(c *gc.C) {
	names, err := s.st.Names()
	c.Assert(err, gc.IsNil)
	c.Assert(names, gc.HasLen, 0)

	for _, name := range []string{"b", "a", "c"} {
		c.Assert(s.st.Insert(name, mustParse(c, "1 0\n")), gc.IsNil)
	}
	names, err = s.st.Names()
	c.Assert(err, gc.IsNil)
	c.Assert(names, gc.DeepEquals, []string{"a", "b", "c"})
}

func (s *StorageSuite) TestUpsertNotifies(c *gc.C) {
	var changes []storage.PolyChange
	s.st.Subscribe(func(change storage.PolyChange) error {
		changes = append(changes, change)
		return nil
	})

	p := mustParse(c, "1 1\n1 0\n")
	change, err := storage.Upsert(s.st, "p", p)
	c.Assert(err, gc.IsNil)
	c.Assert(change, gc.Equals, storage.PolyAdded{Name: "p"})

	change, err = storage.Upsert(s.st, "p", p.Copy())
	c.Assert(err, gc.IsNil)
	c.Assert(change, gc.Equals, storage.PolyNotChanged{})

	change, err = storage.Upsert(s.st, "p", poly.NewPoly().Mul(p, p))
	c.Assert(err, gc.IsNil)
	c.Assert(change, gc.Equals, storage.PolyReplaced{Name: "p"})

	change, err = storage.Remove(s.st, "p")
	c.Assert(err, gc.IsNil)
	c.Assert(change, gc.Equals, storage.PolyDeleted{Name: "p"})

	c.Assert(changes, gc.DeepEquals, []storage.PolyChange{
		storage.PolyAdded{Name: "p"},
		storage.PolyReplaced{Name: "p"},
		storage.PolyDeleted{Name: "p"},
	})
}
