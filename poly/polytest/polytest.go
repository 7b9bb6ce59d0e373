// Package polytest provides random polynomial generation for unit tests.
package polytest

import (
	"sort"

	"github.com/jmcvetta/randutil"
	"github.com/pkg/errors"

	"polyterm/poly"
)

// Config bounds the shape of generated polynomials.
type Config struct {
	MaxTerms  int
	MaxDegree int
	MaxCoeff  int
}

// DefaultConfig keeps coefficients small and integral, so that sums and
// products of generated polynomials are exact in float64.
var DefaultConfig = Config{
	MaxTerms:  6,
	MaxDegree: 12,
	MaxCoeff:  9,
}

var signs = []randutil.Choice{
	{Weight: 1, Item: 1.0},
	{Weight: 1, Item: -1.0},
}

// Random returns a canonical polynomial with up to MaxTerms terms. It may be
// the zero polynomial.
func (c Config) Random() (*poly.Poly, error) {
	if c.MaxTerms > c.MaxDegree+1 {
		return nil, errors.Errorf("cannot fit %d terms below degree %d", c.MaxTerms, c.MaxDegree)
	}
	n, err := randutil.IntRange(0, c.MaxTerms+1)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	seen := make(map[int]bool)
	var degrees []int
	for len(degrees) < n {
		d, err := randutil.IntRange(0, c.MaxDegree+1)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		if !seen[d] {
			seen[d] = true
			degrees = append(degrees, d)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(degrees)))

	terms := make([]poly.Term, len(degrees))
	for i, d := range degrees {
		mag, err := randutil.IntRange(1, c.MaxCoeff+1)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		sign, err := randutil.WeightedChoice(signs)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		terms[i] = poly.Term{Coeff: sign.Item.(float64) * float64(mag), Degree: d}
	}
	return poly.NewPoly(terms...), nil
}

// MustRandom is like Random but panics on error.
func (c Config) MustRandom() *poly.Poly {
	p, err := c.Random()
	if err != nil {
		panic(err)
	}
	return p
}

// Random returns a polynomial generated with DefaultConfig.
func Random() (*poly.Poly, error) {
	return DefaultConfig.Random()
}

// MustRandom returns a polynomial generated with DefaultConfig, panicking on
// error.
func MustRandom() *poly.Poly {
	return DefaultConfig.MustRandom()
}
