package metrics

import (
	"io/ioutil"
	"net/http"
	stdtesting "testing"

	"github.com/prometheus/client_golang/prometheus"
	gc "gopkg.in/check.v1"
)

func Test(t *stdtesting.T) { gc.TestingT(t) }

type MetricsSuite struct{}

var _ = gc.Suite(&MetricsSuite{})

func (s *MetricsSuite) TestDefaults(c *gc.C) {
	m := NewMetrics(nil)
	c.Assert(m.s.MetricsAddr, gc.Equals, ":9627")
	c.Assert(m.s.MetricsPath, gc.Equals, "/metrics")
	c.Assert(DefaultSettings(), gc.Not(gc.Equals), DefaultSettings())
}

func (s *MetricsSuite) TestServe(c *gc.C) {
	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "polyterm",
		Name:      "metrics_test_total",
		Help:      "Exercised by the metrics listener test",
	})
	prometheus.MustRegister(counter)
	defer prometheus.Unregister(counter)
	counter.Add(3)

	m := NewMetrics(&Settings{MetricsAddr: "127.0.0.1:0", MetricsPath: "/x/metrics"})
	m.Start()
	defer m.Stop()
	addr := m.Addr()
	c.Assert(addr, gc.Not(gc.Equals), "")

	res, err := http.Get("http://" + addr + "/x/metrics")
	c.Assert(err, gc.IsNil)
	body, err := ioutil.ReadAll(res.Body)
	res.Body.Close()
	c.Assert(err, gc.IsNil)
	c.Assert(res.StatusCode, gc.Equals, http.StatusOK)
	c.Assert(string(body), gc.Matches, `(?s).*polyterm_metrics_test_total 3\n.*`)

	res, err = http.Get("http://" + addr + "/metrics")
	c.Assert(err, gc.IsNil)
	res.Body.Close()
	c.Assert(res.StatusCode, gc.Equals, http.StatusNotFound)
}

func (s *MetricsSuite) TestBindFailure(c *gc.C) {
	m := NewMetrics(&Settings{MetricsAddr: "not an address", MetricsPath: "/metrics"})
	m.Start()
	c.Assert(m.Addr(), gc.Equals, "")
	m.Stop()
}
