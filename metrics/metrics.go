// Package metrics serves the Prometheus exposition endpoint on its own
// listener.
package metrics

import (
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"gopkg.in/errgo.v1"
	"gopkg.in/tomb.v2"
)

type Metrics struct {
	s    *Settings
	mux  *http.ServeMux
	t    tomb.Tomb
	addr chan string
}

func NewMetrics(s *Settings) *Metrics {
	if s == nil {
		s = DefaultSettings()
	}

	m := &Metrics{
		s:    s,
		mux:  http.NewServeMux(),
		addr: make(chan string, 1),
	}
	m.mux.Handle(m.s.MetricsPath, promhttp.Handler())

	return m
}

func (m *Metrics) Start() {
	m.t.Go(func() error {
		log.Info("metrics: starting")
		ln, err := net.Listen("tcp", m.s.MetricsAddr)
		if err != nil {
			log.Errorf("failed to serve metrics: %v", err)
			close(m.addr)
			return errgo.Mask(err)
		}
		m.addr <- ln.Addr().String()
		m.t.Go(func() error {
			<-m.t.Dying()
			return ln.Close()
		})
		err = http.Serve(ln, m.mux)
		select {
		case <-m.t.Dying():
			return nil
		default:
		}
		log.Errorf("failed to serve metrics: %v", err)
		return errgo.Mask(err)
	})
}

// Addr blocks until the listener is bound and returns its address, or the
// empty string if it could not be bound.
func (m *Metrics) Addr() string {
	addr, ok := <-m.addr
	if ok {
		m.addr <- addr
	}
	return addr
}

func (m *Metrics) Stop() {
	log.Info("metrics: stopping")
	m.t.Kill(nil)
	if err := m.t.Wait(); err != nil {
		log.Error(errgo.Details(err))
	}
	log.Info("metrics: stopped")
}
