package poly

import (
	"fmt"
)

// ValidationError describes the first term that keeps a polynomial from
// being in canonical form.
type ValidationError struct {
	Index  int
	Term   Term
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("term %d (%v): %s", e.Index, e.Term, e.Reason)
}

// Validate reports whether the polynomial is in canonical form: degrees
// non-negative, unique and descending, and no zero coefficients. Arithmetic
// results always are. Parsed input is not checked at parse time, so callers
// that accept external input use Validate to flag it; the polynomial is left
// as it was.
func (p *Poly) Validate() error {
	for i, t := range p.terms {
		if t.Degree < 0 {
			return &ValidationError{Index: i, Term: t, Reason: "negative degree"}
		}
		if t.Coeff == 0 {
			return &ValidationError{Index: i, Term: t, Reason: "zero coefficient"}
		}
		if i > 0 {
			prev := p.terms[i-1].Degree
			if t.Degree == prev {
				return &ValidationError{Index: i, Term: t, Reason: "duplicate degree"}
			}
			if t.Degree > prev {
				return &ValidationError{Index: i, Term: t,
					Reason: fmt.Sprintf("degree %d follows lower degree %d", t.Degree, prev)}
			}
		}
	}
	return nil
}
