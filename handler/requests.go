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

package handler

import (
	"math"
	"net/http"
	"strconv"

	"github.com/pkg/errors"
)

// Operation enumerates the arithmetic operations served under /ops.
type Operation string

const (
	OperationAdd = Operation("add")
	OperationMul = Operation("mul")
)

func ParseOperation(s string) (Operation, bool) {
	op := Operation(s)
	switch op {
	case OperationAdd, OperationMul:
		return op, true
	}
	return Operation(""), false
}

// Combine contains the parameters of an /ops request.
type Combine struct {
	Op   Operation
	A    string
	B    string
	Into string
}

func ParseCombine(op Operation, req *http.Request) (*Combine, error) {
	err := req.ParseForm()
	if err != nil {
		return nil, errors.WithStack(err)
	}

	cb := Combine{
		Op:   op,
		A:    req.Form.Get("a"),
		B:    req.Form.Get("b"),
		Into: req.Form.Get("into"),
	}
	if cb.A == "" {
		return nil, errors.Errorf("missing required parameter: a")
	}
	if cb.B == "" {
		return nil, errors.Errorf("missing required parameter: b")
	}
	return &cb, nil
}

// Eval contains the parameters of an evaluation request.
type Eval struct {
	Name string
	X    float64
}

func ParseEval(name string, req *http.Request) (*Eval, error) {
	err := req.ParseForm()
	if err != nil {
		return nil, errors.WithStack(err)
	}

	xs := req.Form.Get("x")
	if xs == "" {
		return nil, errors.Errorf("missing required parameter: x")
	}
	x, err := strconv.ParseFloat(xs, 64)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid parameter x=%q", xs)
	}
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return nil, errors.Errorf("invalid parameter x=%q: not a finite number", xs)
	}
	return &Eval{Name: name, X: x}, nil
}
