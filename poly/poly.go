/*
   polyterm - Sparse polynomial arithmetic over term lists

   Copyright (c) 2012-2015  Casey Marshall <cmars@cmarstech.com>

   This program is free software: you can redistribute it and/or modify
   it under the terms of the GNU General Public License as published by
   the Free Software Foundation, either version 3 of the License, or
   (at your option) any later version.

   This program is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
   GNU General Public License for more details.

   You should have received a copy of the GNU General Public License
   along with this program.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package poly implements sparse polynomials with real coefficients, stored
// as a list of terms in descending degree order.
package poly

import (
	"math"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Poly represents a sparse polynomial.
type Poly struct {

	// terms is the list of non-zero terms, ordered by descending degree.
	// Only polynomials built from unchecked input may break that order;
	// see Validate.
	terms []Term
}

// NewPoly creates a polynomial from the given terms, taken as-is. Callers
// are expected to supply them in descending degree order.
//
// For example, NewPoly(Term{4, 5}, Term{3, 0}) represents 4x^5 + 3.
// NewPoly() is the zero polynomial.
func NewPoly(terms ...Term) *Poly {
	p := &Poly{}
	if len(terms) > 0 {
		p.terms = append([]Term(nil), terms...)
	}
	return p
}

// String represents a polynomial as its terms joined by " + ", lowest degree
// first, such as "3.0 + 2.0x + -2.0x^3 + 4.0x^5". The zero polynomial is "0".
func (p *Poly) String() string {
	if len(p.terms) == 0 {
		return "0"
	}
	parts := make([]string, 0, len(p.terms))
	for i := len(p.terms) - 1; i >= 0; i-- {
		parts = append(parts, p.terms[i].String())
	}
	return strings.Join(parts, " + ")
}

// Degree returns the highest exponent that appears in the polynomial, or -1
// for the zero polynomial.
func (p *Poly) Degree() int {
	if len(p.terms) == 0 {
		return -1
	}
	return p.terms[0].Degree
}

// Len returns the number of stored terms.
func (p *Poly) Len() int {
	return len(p.terms)
}

// IsZero returns whether p is the zero polynomial.
func (p *Poly) IsZero() bool {
	return len(p.terms) == 0
}

// IsFinite returns whether every coefficient is a finite number.
func (p *Poly) IsFinite() bool {
	for _, t := range p.terms {
		if math.IsNaN(t.Coeff) || math.IsInf(t.Coeff, 0) {
			return false
		}
	}
	return true
}

// Terms returns a copy of the polynomial terms in storage order.
func (p *Poly) Terms() []Term {
	return append([]Term(nil), p.terms...)
}

// Copy returns a deep copy of the polynomial.
func (p *Poly) Copy() *Poly {
	if log.IsLevelEnabled(log.TraceLevel) {
		log.WithField("poly", p.String()).Trace("poly copy")
	}
	return NewPoly(p.terms...)
}

// Equal compares with another polynomial for equality. Terms must match
// exactly and in the same order.
func (p *Poly) Equal(q *Poly) bool {
	if len(p.terms) != len(q.terms) {
		return false
	}
	for i := range p.terms {
		if p.terms[i] != q.terms[i] {
			return false
		}
	}
	return true
}

// Add sets the Poly to the sum of two Polys, returning the result. Terms of
// equal degree are summed, and a sum of exactly zero drops the term. Neither
// x nor y is changed, and p may be either of them.
func (p *Poly) Add(x, y *Poly) *Poly {
	switch {
	case len(x.terms) == 0:
		p.terms = y.Copy().terms
		return p
	case len(y.terms) == 0:
		p.terms = x.Copy().terms
		return p
	}

	sum := make([]Term, 0, len(x.terms)+len(y.terms))
	i, j := 0, 0
	for i < len(x.terms) && j < len(y.terms) {
		xt, yt := x.terms[i], y.terms[j]
		switch {
		case xt.Degree > yt.Degree:
			sum = append(sum, xt)
			i++
		case xt.Degree < yt.Degree:
			sum = append(sum, yt)
			j++
		default:
			if c := xt.Coeff + yt.Coeff; c != 0 {
				sum = append(sum, Term{Coeff: c, Degree: xt.Degree})
			}
			i++
			j++
		}
	}
	sum = append(sum, x.terms[i:]...)
	sum = append(sum, y.terms[j:]...)

	if len(sum) == 0 {
		sum = nil
	}
	p.terms = sum
	return p
}

// Neg negates the Poly, returning the result.
func (p *Poly) Neg() *Poly {
	for i := range p.terms {
		p.terms[i].Coeff = -p.terms[i].Coeff
	}
	return p
}

// Sub sets the Poly to the difference of two Polys, returning the result.
func (p *Poly) Sub(x, y *Poly) *Poly {
	return p.Add(x, y.Copy().Neg())
}

// Mul sets the Poly to the product of two Polys, returning the result.
//
// Each term of y is multiplied through x to form one row of partial
// products, and the rows are summed with Add, which merges like degrees and
// drops cancelled terms.
func (p *Poly) Mul(x, y *Poly) *Poly {
	if len(x.terms) == 0 || len(y.terms) == 0 {
		p.terms = nil
		return p
	}

	product := NewPoly()
	row := &Poly{terms: make([]Term, 0, len(x.terms))}
	for _, yt := range y.terms {
		row.terms = row.terms[:0]
		for _, xt := range x.terms {
			c := xt.Coeff * yt.Coeff
			if c == 0 {
				continue
			}
			row.terms = append(row.terms, Term{Coeff: c, Degree: xt.Degree + yt.Degree})
		}
		product.Add(product, row)
	}
	p.terms = product.terms
	return p
}

// PolyTerm creates a new Poly with a single term.
func PolyTerm(degree int, c float64) *Poly {
	if c == 0 {
		return NewPoly()
	}
	return NewPoly(Term{Coeff: c, Degree: degree})
}

// Eval returns the value of the Poly at x. Terms are summed in storage
// order, highest degree first.
func (p *Poly) Eval(x float64) float64 {
	var sum float64
	for _, t := range p.terms {
		sum += t.Coeff * math.Pow(x, float64(t.Degree))
	}
	return sum
}
