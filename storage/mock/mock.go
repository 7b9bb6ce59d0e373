/*
   polyterm - Sparse polynomial arithmetic over term lists
   Copyright (C) 2012-2014  Casey Marshall

   This program is free software: you can redistribute it and/or modify
   it under the terms of the GNU Affero General Public License as published by
   the Free Software Foundation, version 3.

   This program is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
   GNU Affero General Public License for more details.

   You should have received a copy of the GNU Affero General Public License
   along with this program.  If not, see <http://www.gnu.org/licenses/>.
*/

package mock

import (
	"sort"
	"sync"

	"polyterm/poly"
	"polyterm/storage"
)

type MethodCall struct {
	Name string
	Args []interface{}
}

type Recorder struct {
	mu    sync.Mutex
	Calls []MethodCall
}

func (m *Recorder) record(name string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, MethodCall{Name: name, Args: args})
}

func (m *Recorder) MethodCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int
	for _, call := range m.Calls {
		if name == call.Name {
			n++
		}
	}
	return n
}

type closeFunc func() error
type namesFunc func() ([]string, error)
type fetchFunc func(string) (*poly.Poly, error)
type writeFunc func(string, *poly.Poly) error
type deleteFunc func(string) error

type Storage struct {
	Recorder
	close_ closeFunc
	names  namesFunc
	fetch  fetchFunc
	insert writeFunc
	update writeFunc
	delete deleteFunc

	notified []func(storage.PolyChange) error
}

type Option func(*Storage)

func Close(f closeFunc) Option   { return func(m *Storage) { m.close_ = f } }
func Names(f namesFunc) Option   { return func(m *Storage) { m.names = f } }
func Fetch(f fetchFunc) Option   { return func(m *Storage) { m.fetch = f } }
func Insert(f writeFunc) Option  { return func(m *Storage) { m.insert = f } }
func Update(f writeFunc) Option  { return func(m *Storage) { m.update = f } }
func Delete(f deleteFunc) Option { return func(m *Storage) { m.delete = f } }

// Polys is an Option that serves Names and Fetch from a fixed map.
func Polys(polys map[string]*poly.Poly) Option {
	return func(m *Storage) {
		m.names = func() ([]string, error) {
			var names []string
			for name := range polys {
				names = append(names, name)
			}
			sort.Strings(names)
			return names, nil
		}
		m.fetch = func(name string) (*poly.Poly, error) {
			p, ok := polys[name]
			if !ok {
				return nil, storage.ErrPolyNotFound
			}
			return p.Copy(), nil
		}
	}
}

func NewStorage(options ...Option) *Storage {
	m := &Storage{}
	for _, option := range options {
		option(m)
	}
	return m
}

func (m *Storage) Close() error {
	m.record("Close")
	if m.close_ != nil {
		return m.close_()
	}
	return nil
}
func (m *Storage) Names() ([]string, error) {
	m.record("Names")
	if m.names != nil {
		return m.names()
	}
	return nil, nil
}
func (m *Storage) Fetch(name string) (*poly.Poly, error) {
	m.record("Fetch", name)
	if m.fetch != nil {
		return m.fetch(name)
	}
	return nil, storage.ErrPolyNotFound
}
func (m *Storage) Insert(name string, p *poly.Poly) error {
	m.record("Insert", name, p)
	if m.insert != nil {
		return m.insert(name, p)
	}
	return nil
}
func (m *Storage) Update(name string, p *poly.Poly) error {
	m.record("Update", name, p)
	if m.update != nil {
		return m.update(name, p)
	}
	return nil
}
func (m *Storage) Delete(name string) error {
	m.record("Delete", name)
	if m.delete != nil {
		return m.delete(name)
	}
	return nil
}
func (m *Storage) Subscribe(f func(storage.PolyChange) error) {
	m.notified = append(m.notified, f)
}
func (m *Storage) Notify(change storage.PolyChange) error {
	for _, cb := range m.notified {
		err := cb(change)
		if err != nil {
			return err
		}
	}
	return nil
}
