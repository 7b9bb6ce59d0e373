// Package leveldb provides a polynomial Storage backed by goleveldb, either
// on disk or entirely in memory.
package leveldb

import (
	"bytes"
	"sync"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	leveldberrors "github.com/syndtr/goleveldb/leveldb/errors"
	lstorage "github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"

	"polyterm/poly"
	"polyterm/storage"
)

var keyPrefix = []byte("poly:")

type polyStorage struct {
	storage.Listeners

	db   *leveldb.DB
	path string

	// mu serializes the existence check and write of Insert, Update and
	// Delete.
	mu sync.Mutex
}

var _ storage.Storage = (*polyStorage)(nil)

// Open opens or creates a leveldb polynomial store at path.
func Open(path string) (storage.Storage, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open leveldb %q", path)
	}
	return &polyStorage{db: db, path: path}, nil
}

// OpenMem creates a polynomial store held in memory. Its contents are lost
// on Close.
func OpenMem() (storage.Storage, error) {
	db, err := leveldb.Open(lstorage.NewMemStorage(), nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &polyStorage{db: db}, nil
}

func polyKey(name string) []byte {
	return append(append([]byte(nil), keyPrefix...), name...)
}

func (st *polyStorage) Close() error {
	return errors.WithStack(st.db.Close())
}

func (st *polyStorage) Names() ([]string, error) {
	var names []string
	iter := st.db.NewIterator(util.BytesPrefix(keyPrefix), nil)
	for iter.Next() {
		names = append(names, string(bytes.TrimPrefix(iter.Key(), keyPrefix)))
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return nil, errors.WithStack(err)
	}
	return names, nil
}

func (st *polyStorage) Fetch(name string) (*poly.Poly, error) {
	doc, err := st.db.Get(polyKey(name), nil)
	if err == leveldberrors.ErrNotFound {
		return nil, errors.WithStack(storage.ErrPolyNotFound)
	} else if err != nil {
		return nil, errors.WithStack(err)
	}
	p, err := poly.Parse(bytes.NewReader(doc))
	if err != nil {
		return nil, errors.Wrapf(err, "stored polynomial %q is corrupt", name)
	}
	return p, nil
}

func (st *polyStorage) has(name string) (bool, error) {
	ok, err := st.db.Has(polyKey(name), nil)
	return ok, errors.WithStack(err)
}

func (st *polyStorage) put(name string, p *poly.Poly) error {
	var buf bytes.Buffer
	_, err := p.WriteTo(&buf)
	if err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(st.db.Put(polyKey(name), buf.Bytes(), nil))
}

func (st *polyStorage) Insert(name string, p *poly.Poly) error {
	if err := storage.CheckName(name); err != nil {
		return err
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	ok, err := st.has(name)
	if err != nil {
		return err
	}
	if ok {
		return errors.WithStack(storage.ErrPolyExists)
	}
	return st.put(name, p)
}

func (st *polyStorage) Update(name string, p *poly.Poly) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	ok, err := st.has(name)
	if err != nil {
		return err
	}
	if !ok {
		return errors.WithStack(storage.ErrPolyNotFound)
	}
	return st.put(name, p)
}

func (st *polyStorage) Delete(name string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	ok, err := st.has(name)
	if err != nil {
		return err
	}
	if !ok {
		return errors.WithStack(storage.ErrPolyNotFound)
	}
	return errors.WithStack(st.db.Delete(polyKey(name), nil))
}
