package poly

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// MarshalJSON encodes the polynomial as an array of terms in storage order.
func (p *Poly) MarshalJSON() ([]byte, error) {
	terms := p.terms
	if terms == nil {
		terms = []Term{}
	}
	return json.Marshal(terms)
}

// UnmarshalJSON decodes an array of terms, keeping their order.
func (p *Poly) UnmarshalJSON(data []byte) error {
	var terms []Term
	if err := json.Unmarshal(data, &terms); err != nil {
		return errors.WithStack(err)
	}
	if len(terms) == 0 {
		terms = nil
	}
	p.terms = terms
	return nil
}
