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

package server

import (
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/carbocation/interpose"
	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/tomb.v2"

	"polyterm/handler"
	"polyterm/metrics"
	"polyterm/storage"
	"polyterm/storage/leveldb"
	"polyterm/storage/pg"
)

type Server struct {
	settings        *Settings
	st              storage.Storage
	middle          *interpose.Middleware
	r               *httprouter.Router
	logWriter       io.WriteCloser
	metricsListener *metrics.Metrics

	t        tomb.Tomb
	httpAddr chan string
}

type statusCodeResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func NewStatusCodeResponseWriter(w http.ResponseWriter) *statusCodeResponseWriter {
	// WriteHeader is not called if our response implicitly
	// returns 200 OK, so we default to that status code.
	return &statusCodeResponseWriter{w, http.StatusOK}
}

func (scrw *statusCodeResponseWriter) WriteHeader(code int) {
	scrw.statusCode = code
	scrw.ResponseWriter.WriteHeader(code)
}

func HandlerOptions(settings *Settings) []handler.HandlerOption {
	opts := []handler.HandlerOption{
		handler.Strict(settings.HTTP.Strict),
	}
	if settings.HTTP.MaxBodySize > 0 {
		opts = append(opts, handler.MaxBodySize(settings.HTTP.MaxBodySize))
	}
	return opts
}

var newCache = storage.NewCache

func NewServer(settings *Settings) (*Server, error) {
	if settings == nil {
		defaults := DefaultSettings()
		settings = &defaults
	}
	s := &Server{
		settings: settings,
		r:        httprouter.New(),
		httpAddr: make(chan string, 1),
	}

	var err error
	s.st, err = DialStorage(settings)
	if err != nil {
		return nil, err
	}
	if settings.Cache.Size > 0 {
		cached, err := newCache(s.st, settings.Cache.Size)
		if err != nil {
			s.st.Close()
			return nil, errors.WithStack(err)
		}
		s.st = cached
	}

	s.middle = interpose.New()
	s.middle.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
			start := time.Now()
			scrw := NewStatusCodeResponseWriter(rw)
			next.ServeHTTP(scrw, req)
			duration := time.Since(start)
			fields := log.Fields{
				req.Method:    req.URL.String(),
				"duration":    duration.String(),
				"from":        req.RemoteAddr,
				"host":        req.Host,
				"status-code": scrw.statusCode,
				"user-agent":  req.UserAgent(),
			}
			proxyHeaders := []string{
				"x-forwarded-for",
				"x-forwarded-host",
				"x-forwarded-server",
			}
			for _, ph := range proxyHeaders {
				if v := req.Header.Get(ph); v != "" {
					fields[ph] = v
				}
			}
			log.WithFields(fields).Info()
			recordHTTPRequestDuration(req.Method, scrw.statusCode, duration)
		})
	})
	s.middle.UseHandler(s.r)

	if settings.Metrics != nil {
		s.metricsListener = metrics.NewMetrics(settings.Metrics)
	}

	h, err := handler.NewHandler(s.st, HandlerOptions(settings)...)
	if err != nil {
		s.st.Close()
		return nil, errors.WithStack(err)
	}
	h.Register(s.r)

	registerMetrics()
	s.st.Subscribe(metricsStorageNotifier)

	return s, nil
}

func DialStorage(settings *Settings) (storage.Storage, error) {
	switch settings.DB.Driver {
	case "leveldb":
		return leveldb.Open(settings.DB.DSN)
	case "memory":
		return leveldb.OpenMem()
	case "postgres":
		return pg.Dial(settings.DB.DSN)
	}
	return nil, errors.Errorf("storage driver %q not supported", settings.DB.Driver)
}

func (s *Server) Start() error {
	s.openLog()

	s.t.Go(s.listenAndServeHTTP)

	if s.metricsListener != nil {
		s.metricsListener.Start()
	}

	return nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

func (s *Server) openLog() {
	defer func() {
		level, err := log.ParseLevel(strings.ToLower(s.settings.LogLevel))
		if err != nil {
			log.Warningf("invalid LogLevel=%q: %v", s.settings.LogLevel, err)
			return
		}
		log.SetLevel(level)
	}()

	s.logWriter = nopCloser{os.Stderr}
	if s.settings.LogFile != "" {
		f, err := os.OpenFile(s.settings.LogFile, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
		if err != nil {
			log.Errorf("failed to open LogFile=%q: %v", s.settings.LogFile, err)
		} else {
			s.logWriter = f
		}
	}
	log.SetOutput(s.logWriter)
	log.Debug("log opened")
}

func (s *Server) closeLog() {
	log.SetOutput(os.Stderr)
	s.logWriter.Close()
}

func (s *Server) LogRotate() {
	w := s.logWriter
	s.openLog()
	w.Close()
}

// Addr blocks until the HTTP listener is bound and returns its address, or
// the empty string if it could not be bound.
func (s *Server) Addr() string {
	addr, ok := <-s.httpAddr
	if ok {
		s.httpAddr <- addr
	}
	return addr
}

func (s *Server) Wait() error {
	return s.t.Wait()
}

func (s *Server) Stop() {
	defer s.closeLog()

	if s.metricsListener != nil {
		s.metricsListener.Stop()
	}
	s.t.Kill(nil)
	s.t.Wait()

	err := s.st.Close()
	if err != nil {
		log.Errorf("error closing storage: %+v", err)
	}
}

// tcpKeepAliveListener sets TCP keep-alive timeouts on accepted
// connections so dead TCP connections eventually go away.
type tcpKeepAliveListener struct {
	*net.TCPListener
}

// Accept implements net.Listener.
func (ln tcpKeepAliveListener) Accept() (net.Conn, error) {
	tc, err := ln.AcceptTCP()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	tc.SetKeepAlive(true)
	tc.SetKeepAlivePeriod(3 * time.Minute)
	return tc, nil
}

func (s *Server) newListener(addr string) (net.Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	s.t.Go(func() error {
		<-s.t.Dying()
		return ln.Close()
	})
	return tcpKeepAliveListener{ln.(*net.TCPListener)}, nil
}

func (s *Server) listenAndServeHTTP() error {
	ln, err := s.newListener(s.settings.HTTP.Bind)
	if err != nil {
		close(s.httpAddr)
		return errors.WithStack(err)
	}
	s.httpAddr <- ln.Addr().String()
	err = http.Serve(ln, s.middle)
	select {
	case <-s.t.Dying():
		return nil
	default:
	}
	return errors.WithStack(err)
}
