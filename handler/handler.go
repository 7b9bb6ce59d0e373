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
	"bytes"
	"encoding/json"
	"io"
	"io/ioutil"
	"math"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"polyterm/poly"
	"polyterm/storage"
)

const DefaultMaxBodySize = 1 << 20

var errNonFinite = errors.New("non-finite coefficient")

func httpError(w http.ResponseWriter, statusCode int, err error) {
	if statusCode != http.StatusNotFound {
		log.Errorf("HTTP %d: %+v", statusCode, err)
	}
	http.Error(w, http.StatusText(statusCode), statusCode)
}

func storageError(w http.ResponseWriter, err error) {
	switch {
	case storage.IsNotFound(err):
		httpError(w, http.StatusNotFound, err)
	case storage.IsExists(err):
		httpError(w, http.StatusConflict, err)
	case errors.Cause(err) == storage.ErrInvalidName:
		httpError(w, http.StatusBadRequest, err)
	default:
		httpError(w, http.StatusInternalServerError, err)
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	doc, err := json.Marshal(v)
	if err != nil {
		httpError(w, http.StatusInternalServerError, errors.WithStack(err))
		return
	}
	writeDoc(w, statusCode, doc)
}

func writeDoc(w http.ResponseWriter, statusCode int, doc []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, err := w.Write(doc)
	if err != nil {
		log.Errorf("error writing response: %v", err)
	}
}

type Handler struct {
	storage storage.Storage

	strict      bool
	maxBodySize int64
}

type HandlerOption func(h *Handler) error

// Strict rejects stored input that is not in canonical form, instead of
// storing it with a warning.
func Strict(strict bool) HandlerOption {
	return func(h *Handler) error {
		h.strict = strict
		return nil
	}
}

func MaxBodySize(n int64) HandlerOption {
	return func(h *Handler) error {
		if n <= 0 {
			return errors.Errorf("invalid max body size %d", n)
		}
		h.maxBodySize = n
		return nil
	}
}

func NewHandler(storage storage.Storage, options ...HandlerOption) (*Handler, error) {
	h := &Handler{
		storage:     storage,
		maxBodySize: DefaultMaxBodySize,
	}
	for _, option := range options {
		err := option(h)
		if err != nil {
			return nil, errors.WithStack(err)
		}
	}
	registerMetrics()
	return h, nil
}

func (h *Handler) Register(r *httprouter.Router) {
	r.GET("/polys", h.List)
	r.GET("/polys/:name", h.Get)
	r.PUT("/polys/:name", h.Put)
	r.DELETE("/polys/:name", h.Delete)
	r.GET("/polys/:name/eval", h.Eval)
	r.POST("/ops/:op", h.Combine)
}

type namesDoc struct {
	Names []string `json:"names"`
}

type polyDoc struct {
	Name   string     `json:"name,omitempty"`
	Terms  *poly.Poly `json:"terms"`
	Text   string     `json:"text"`
	Degree int        `json:"degree"`
}

func newPolyDoc(name string, p *poly.Poly) *polyDoc {
	return &polyDoc{
		Name:   name,
		Terms:  p,
		Text:   p.String(),
		Degree: p.Degree(),
	}
}

type changeDoc struct {
	Name    string `json:"name"`
	Change  string `json:"change"`
	Warning string `json:"warning,omitempty"`
}

type evalDoc struct {
	Name  string   `json:"name"`
	X     float64  `json:"x"`
	Value *float64 `json:"value,omitempty"`
	Text  string   `json:"text"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	names, err := h.storage.Names()
	if err != nil {
		httpError(w, http.StatusInternalServerError, errors.WithStack(err))
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, &namesDoc{Names: names})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	name := ps.ByName("name")
	p, err := h.storage.Fetch(name)
	if err != nil {
		storageError(w, err)
		return
	}
	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain")
		_, err = p.WriteTo(w)
		if err != nil {
			log.Errorf("error writing polynomial %q: %v", name, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, newPolyDoc(name, p))
}

func (h *Handler) Put(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	name := ps.ByName("name")
	body, err := ioutil.ReadAll(io.LimitReader(r.Body, h.maxBodySize+1))
	if err != nil {
		httpError(w, http.StatusBadRequest, errors.WithStack(err))
		return
	}
	if int64(len(body)) > h.maxBodySize {
		log.WithField("name", name).Warningf("rejected input larger than %d bytes", h.maxBodySize)
		http.Error(w, http.StatusText(http.StatusRequestEntityTooLarge), http.StatusRequestEntityTooLarge)
		return
	}
	p, err := poly.Parse(bytes.NewReader(body))
	if err != nil {
		if poly.IsParseError(err) {
			log.WithField("name", name).Warningf("rejected input: %v", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		httpError(w, http.StatusInternalServerError, err)
		return
	}

	if !p.IsFinite() {
		log.WithField("name", name).Warning("rejected non-finite coefficient")
		http.Error(w, errNonFinite.Error(), http.StatusBadRequest)
		return
	}

	doc := &changeDoc{Name: name}
	if verr := p.Validate(); verr != nil {
		recordInputWarning()
		if h.strict {
			log.WithField("name", name).Warningf("rejected non-canonical input: %v", verr)
			http.Error(w, verr.Error(), http.StatusUnprocessableEntity)
			return
		}
		log.WithField("name", name).Warningf("storing non-canonical input: %v", verr)
		doc.Warning = verr.Error()
	}

	change, err := storage.Upsert(h.storage, name, p)
	if err != nil {
		storageError(w, err)
		return
	}
	doc.Change = changeName(change)
	log.WithFields(log.Fields{"name": name, "change": doc.Change}).Info("put")
	writeJSON(w, http.StatusOK, doc)
}

func changeName(change storage.PolyChange) string {
	switch change.(type) {
	case storage.PolyAdded:
		return "added"
	case storage.PolyReplaced:
		return "replaced"
	case storage.PolyDeleted:
		return "deleted"
	}
	return "unchanged"
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	name := ps.ByName("name")
	_, err := storage.Remove(h.storage, name)
	if err != nil {
		storageError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Eval(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ev, err := ParseEval(ps.ByName("name"), r)
	if err != nil {
		httpError(w, http.StatusBadRequest, err)
		return
	}
	p, err := h.storage.Fetch(ev.Name)
	if err != nil {
		storageError(w, err)
		return
	}

	start := time.Now()
	value := p.Eval(ev.X)
	recordOperation("eval", time.Since(start))

	doc := &evalDoc{Name: ev.Name, X: ev.X, Text: poly.FormatCoeff(value)}
	if !math.IsNaN(value) && !math.IsInf(value, 0) {
		doc.Value = &value
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *Handler) Combine(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	op, ok := ParseOperation(ps.ByName("op"))
	if !ok {
		httpError(w, http.StatusNotFound, errors.Errorf("operation not found: %v", ps.ByName("op")))
		return
	}
	cb, err := ParseCombine(op, r)
	if err != nil {
		httpError(w, http.StatusBadRequest, err)
		return
	}
	a, err := h.storage.Fetch(cb.A)
	if err != nil {
		storageError(w, err)
		return
	}
	b, err := h.storage.Fetch(cb.B)
	if err != nil {
		storageError(w, err)
		return
	}

	start := time.Now()
	var result *poly.Poly
	switch cb.Op {
	case OperationAdd:
		result = poly.NewPoly().Add(a, b)
	case OperationMul:
		result = poly.NewPoly().Mul(a, b)
	}
	recordOperation(string(cb.Op), time.Since(start))

	if !result.IsFinite() {
		log.WithFields(log.Fields{"op": cb.Op, "a": cb.A, "b": cb.B}).Warning("result overflowed")
		http.Error(w, errNonFinite.Error(), http.StatusUnprocessableEntity)
		return
	}
	doc, err := json.Marshal(newPolyDoc(cb.Into, result))
	if err != nil {
		httpError(w, http.StatusInternalServerError, errors.WithStack(err))
		return
	}

	if cb.Into != "" {
		change, err := storage.Upsert(h.storage, cb.Into, result)
		if err != nil {
			storageError(w, err)
			return
		}
		log.WithFields(log.Fields{
			"op":     cb.Op,
			"a":      cb.A,
			"b":      cb.B,
			"into":   cb.Into,
			"change": changeName(change),
		}).Info("stored result")
	}
	writeDoc(w, http.StatusOK, doc)
}
