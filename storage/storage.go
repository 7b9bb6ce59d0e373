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

package storage

import (
	"fmt"
	"io"
	"sync"

	"github.com/pkg/errors"

	"polyterm/poly"
)

var (
	ErrPolyNotFound = errors.New("polynomial not found")
	ErrPolyExists   = errors.New("polynomial already exists")
	ErrInvalidName  = errors.New("invalid polynomial name")
)

func IsNotFound(err error) bool {
	return errors.Cause(err) == ErrPolyNotFound
}

func IsExists(err error) bool {
	return errors.Cause(err) == ErrPolyExists
}

// MaxNameLen is the longest polynomial name a Storage accepts.
const MaxNameLen = 255

// CheckName returns ErrInvalidName unless name can be stored.
func CheckName(name string) error {
	if name == "" || len(name) > MaxNameLen {
		return errors.Wrapf(ErrInvalidName, "%q", name)
	}
	return nil
}

// Storage defines the API that is needed to implement a complete storage
// backend for named polynomials.
type Storage interface {
	io.Closer
	Queryer
	Updater
	Notifier
}

// Queryer defines the storage API for listing and retrieving polynomials.
type Queryer interface {

	// Names returns the names of all stored polynomials, sorted.
	Names() ([]string, error)

	// Fetch returns the polynomial stored under name, or ErrPolyNotFound.
	Fetch(name string) (*poly.Poly, error)
}

// Inserter defines the storage API for inserting polynomials.
type Inserter interface {

	// Insert stores a new polynomial. If one is already stored under the
	// name, ErrPolyExists is returned and nothing is changed.
	Insert(name string, p *poly.Poly) error
}

// Updater defines the storage API for writing polynomials.
type Updater interface {
	Inserter

	// Update replaces the polynomial stored under name, or returns
	// ErrPolyNotFound.
	Update(name string, p *poly.Poly) error

	// Delete removes the polynomial stored under name, or returns
	// ErrPolyNotFound.
	Delete(name string) error
}

type Notifier interface {
	// Subscribe registers a polynomial change callback function.
	Subscribe(func(PolyChange) error)

	// Notify invokes all registered callbacks with a change notification.
	Notify(change PolyChange) error
}

type PolyChange interface {
	Names() []string
}

type PolyAdded struct {
	Name string
}

func (pa PolyAdded) Names() []string { return []string{pa.Name} }

func (pa PolyAdded) String() string {
	return fmt.Sprintf("polynomial %q added", pa.Name)
}

type PolyReplaced struct {
	Name string
}

func (pr PolyReplaced) Names() []string { return []string{pr.Name} }

func (pr PolyReplaced) String() string {
	return fmt.Sprintf("polynomial %q replaced", pr.Name)
}

type PolyDeleted struct {
	Name string
}

func (pd PolyDeleted) Names() []string { return []string{pd.Name} }

func (pd PolyDeleted) String() string {
	return fmt.Sprintf("polynomial %q deleted", pd.Name)
}

type PolyNotChanged struct{}

func (pnc PolyNotChanged) Names() []string { return nil }

func (pnc PolyNotChanged) String() string {
	return "polynomial not changed"
}

// Listeners is a Notifier that backends embed to fan change notifications
// out to subscribers.
type Listeners struct {
	mu        sync.Mutex
	listeners []func(PolyChange) error
}

func (l *Listeners) Subscribe(f func(PolyChange) error) {
	l.mu.Lock()
	l.listeners = append(l.listeners, f)
	l.mu.Unlock()
}

func (l *Listeners) Notify(change PolyChange) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, f := range l.listeners {
		err := f(change)
		if err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}

// Upsert stores p under name, inserting or replacing as needed, and notifies
// subscribers of the change.
func Upsert(st Storage, name string, p *poly.Poly) (PolyChange, error) {
	last, err := st.Fetch(name)
	if IsNotFound(err) {
		err = st.Insert(name, p)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		change := PolyAdded{Name: name}
		return change, errors.WithStack(st.Notify(change))
	} else if err != nil {
		return nil, errors.WithStack(err)
	}

	if last.Equal(p) {
		return PolyNotChanged{}, nil
	}
	err = st.Update(name, p)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	change := PolyReplaced{Name: name}
	return change, errors.WithStack(st.Notify(change))
}

// Remove deletes the polynomial stored under name and notifies subscribers.
func Remove(st Storage, name string) (PolyChange, error) {
	err := st.Delete(name)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	change := PolyDeleted{Name: name}
	return change, errors.WithStack(st.Notify(change))
}
