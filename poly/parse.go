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
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var (
	errMissingCoeff  = errors.New("missing coefficient")
	errMissingDegree = errors.New("missing degree")
)

// ParseError reports a malformed line of polynomial input.
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d %q: %v", e.Line, e.Text, e.Err)
}

// Unwrap returns the underlying error, for errors.Is and errors.As.
func (e *ParseError) Unwrap() error { return e.Err }

// IsParseError returns whether err was caused by malformed input.
func IsParseError(err error) bool {
	_, ok := errors.Cause(err).(*ParseError)
	return ok
}

// Parse reads a polynomial in the line format, one term per line:
//
//	4 5
//	-2 3
//	2 1
//	3 0
//
// which represents 4x^5 - 2x^3 + 2x + 3. Terms are kept in the order read;
// input is expected to be in descending degree order already. Tokens after
// the degree are ignored. Empty input is the zero polynomial.
func Parse(r io.Reader) (*Poly, error) {
	p := NewPoly()
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		t, err := parseTermLine(line)
		if err != nil {
			return nil, &ParseError{Line: lineNum, Text: line, Err: err}
		}
		p.terms = append(p.terms, t)
	}
	if err := scanner.Err(); err == bufio.ErrTooLong {
		return nil, &ParseError{Line: lineNum + 1, Err: err}
	} else if err != nil {
		return nil, errors.WithStack(err)
	}
	return p, nil
}

func parseTermLine(line string) (Term, error) {
	fields := strings.Fields(line)
	if len(fields) < 1 {
		return Term{}, errMissingCoeff
	}
	if len(fields) < 2 {
		return Term{}, errMissingDegree
	}
	coeff, err := parseCoeff(fields[0])
	if err != nil {
		return Term{}, errors.Wrapf(err, "invalid coefficient %q", fields[0])
	}
	degree, err := strconv.Atoi(fields[1])
	if err != nil {
		return Term{}, errors.Wrapf(err, "invalid degree %q", fields[1])
	}
	return Term{Coeff: coeff, Degree: degree}, nil
}

// ParseString parses a polynomial from its line format.
func ParseString(s string) (*Poly, error) {
	return Parse(strings.NewReader(s))
}

// ParseLines parses a polynomial from its line format, already split into
// lines.
func ParseLines(lines []string) (*Poly, error) {
	return ParseString(strings.Join(lines, "\n"))
}

// MustParseString is like ParseString but panics on error.
func MustParseString(s string) *Poly {
	p, err := ParseString(s)
	if err != nil {
		panic(err)
	}
	return p
}

// ParseRendered parses the output of Poly.String back into a polynomial,
// restoring descending storage order.
func ParseRendered(s string) (*Poly, error) {
	s = strings.TrimSpace(s)
	if s == "0" {
		return NewPoly(), nil
	}
	parts := strings.Split(s, " + ")
	p := &Poly{terms: make([]Term, len(parts))}
	for i, part := range parts {
		t, err := parseRenderedTerm(part)
		if err != nil {
			return nil, &ParseError{Line: 1, Text: part, Err: err}
		}
		p.terms[len(parts)-1-i] = t
	}
	return p, nil
}

func parseRenderedTerm(s string) (Term, error) {
	var (
		coeffText = s
		degree    int
	)
	if i := strings.Index(s, "x^"); i >= 0 {
		coeffText = s[:i]
		d, err := strconv.Atoi(s[i+2:])
		if err != nil {
			return Term{}, errors.Wrapf(err, "invalid degree %q", s[i+2:])
		}
		degree = d
	} else if strings.HasSuffix(s, "x") {
		coeffText = strings.TrimSuffix(s, "x")
		degree = 1
	}
	if coeffText == "" {
		return Term{}, errMissingCoeff
	}
	coeff, err := parseCoeff(coeffText)
	if err != nil {
		return Term{}, errors.Wrapf(err, "invalid coefficient %q", coeffText)
	}
	return Term{Coeff: coeff, Degree: degree}, nil
}

// WriteTo writes the polynomial in the line format read by Parse.
func (p *Poly) WriteTo(w io.Writer) (int64, error) {
	var n int64
	for _, t := range p.terms {
		nw, err := fmt.Fprintf(w, "%s %d\n", strconv.FormatFloat(t.Coeff, 'g', -1, 64), t.Degree)
		n += int64(nw)
		if err != nil {
			return n, errors.WithStack(err)
		}
	}
	return n, nil
}
