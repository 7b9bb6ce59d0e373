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

package poly

import (
	"math"
	"strconv"
	"strings"
)

// Term is a single coefficient and degree pair of a polynomial, such as the
// 4x^5 in 4x^5 - 2x^3 + 3.
type Term struct {
	Coeff  float64 `json:"coeff"`
	Degree int     `json:"degree"`
}

// String renders the term as "c", "cx" or "cx^d" depending on its degree.
func (t Term) String() string {
	switch t.Degree {
	case 0:
		return FormatCoeff(t.Coeff)
	case 1:
		return FormatCoeff(t.Coeff) + "x"
	}
	return FormatCoeff(t.Coeff) + "x^" + strconv.Itoa(t.Degree)
}

// FormatCoeff formats a coefficient the way polynomial text output has
// always shown them: integral values keep a trailing ".0", very large and
// very small magnitudes use "E" notation, and non-finite values are spelled
// out.
//
// For example 3 is "3.0", -0.25 is "-0.25" and 12500000 is "1.25E7".
func FormatCoeff(c float64) string {
	switch {
	case math.IsNaN(c):
		return "NaN"
	case math.IsInf(c, 1):
		return "Infinity"
	case math.IsInf(c, -1):
		return "-Infinity"
	}

	abs := math.Abs(c)
	if abs == 0 || (abs >= 1e-3 && abs < 1e7) {
		s := strconv.FormatFloat(c, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	}

	s := strconv.FormatFloat(c, 'E', -1, 64)
	i := strings.IndexByte(s, 'E')
	mant, exp := s[:i], s[i+1:]
	if !strings.Contains(mant, ".") {
		mant += ".0"
	}
	// Exponent comes back as "+07" or "-05".
	n, err := strconv.Atoi(exp)
	if err != nil {
		return s
	}
	return mant + "E" + strconv.Itoa(n)
}

// parseCoeff is the inverse of FormatCoeff. It also accepts anything
// strconv.ParseFloat does.
func parseCoeff(s string) (float64, error) {
	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1), nil
	case "-Infinity":
		return math.Inf(-1), nil
	}
	return strconv.ParseFloat(s, 64)
}
