package server

import (
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	stdtesting "testing"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	gc "gopkg.in/check.v1"

	"polyterm/storage"
)

func Test(t *stdtesting.T) { gc.TestingT(t) }

type ServerSuite struct {
	srv *Server
	url string
}

var _ = gc.Suite(&ServerSuite{})

func (s *ServerSuite) SetUpTest(c *gc.C) {
	settings := DefaultSettings()
	settings.HTTP.Bind = "127.0.0.1:0"
	settings.DB.Driver = "memory"
	settings.Metrics = nil
	settings.LogLevel = "error"

	var err error
	s.srv, err = NewServer(&settings)
	c.Assert(err, gc.IsNil)
	c.Assert(s.srv.Start(), gc.IsNil)
	addr := s.srv.Addr()
	c.Assert(addr, gc.Not(gc.Equals), "")
	s.url = "http://" + addr
}

func (s *ServerSuite) TearDownTest(c *gc.C) {
	s.srv.Stop()
}

func (s *ServerSuite) do(c *gc.C, method, path, body string) (int, string) {
	req, err := http.NewRequest(method, s.url+path, strings.NewReader(body))
	c.Assert(err, gc.IsNil)
	res, err := http.DefaultClient.Do(req)
	c.Assert(err, gc.IsNil)
	defer res.Body.Close()
	doc, err := ioutil.ReadAll(res.Body)
	c.Assert(err, gc.IsNil)
	return res.StatusCode, string(doc)
}

func (s *ServerSuite) TestRoundTrip(c *gc.C) {
	added := testutil.ToFloat64(serverMetrics.polysAdded)
	replaced := testutil.ToFloat64(serverMetrics.polysReplaced)
	deleted := testutil.ToFloat64(serverMetrics.polysDeleted)

	code, _ := s.do(c, "PUT", "/polys/sample", "4 5\n-2 3\n2 1\n3 0\n")
	c.Assert(code, gc.Equals, http.StatusOK)
	code, _ = s.do(c, "PUT", "/polys/sample", "4 5\n-2 3\n2 1\n3 0\n")
	c.Assert(code, gc.Equals, http.StatusOK)
	code, _ = s.do(c, "PUT", "/polys/sample", "4 5\n3 0\n")
	c.Assert(code, gc.Equals, http.StatusOK)

	code, body := s.do(c, "GET", "/polys/sample/eval?x=2", "")
	c.Assert(code, gc.Equals, http.StatusOK)
	var doc struct {
		Value float64 `json:"value"`
	}
	c.Assert(json.Unmarshal([]byte(body), &doc), gc.IsNil)
	c.Assert(doc.Value, gc.Equals, 131.0)

	code, _ = s.do(c, "DELETE", "/polys/sample", "")
	c.Assert(code, gc.Equals, http.StatusNoContent)
	code, _ = s.do(c, "GET", "/polys/sample", "")
	c.Assert(code, gc.Equals, http.StatusNotFound)

	c.Assert(testutil.ToFloat64(serverMetrics.polysAdded), gc.Equals, added+1)
	c.Assert(testutil.ToFloat64(serverMetrics.polysReplaced), gc.Equals, replaced+1)
	c.Assert(testutil.ToFloat64(serverMetrics.polysDeleted), gc.Equals, deleted+1)
}

func (s *ServerSuite) TestRequestDuration(c *gc.C) {
	rec := httptest.NewRecorder()
	req, err := http.NewRequest("GET", "/polys/absent", nil)
	c.Assert(err, gc.IsNil)
	s.srv.middle.ServeHTTP(rec, req)
	c.Assert(rec.Code, gc.Equals, http.StatusNotFound)
	c.Assert(testutil.CollectAndCount(serverMetrics.httpRequestDuration) > 0, gc.Equals, true)
}

type LogSuite struct{}

var _ = gc.Suite(&LogSuite{})

func (s *LogSuite) TestLogFile(c *gc.C) {
	logFile := filepath.Join(c.MkDir(), "polyterm.log")
	settings := DefaultSettings()
	settings.HTTP.Bind = "127.0.0.1:0"
	settings.DB.Driver = "memory"
	settings.Metrics = nil
	settings.LogFile = logFile
	settings.LogLevel = "info"

	srv, err := NewServer(&settings)
	c.Assert(err, gc.IsNil)
	c.Assert(srv.Start(), gc.IsNil)
	c.Assert(srv.Addr(), gc.Not(gc.Equals), "")
	rec := httptest.NewRecorder()
	req, err := http.NewRequest("GET", "/polys", nil)
	c.Assert(err, gc.IsNil)
	srv.middle.ServeHTTP(rec, req)
	c.Assert(rec.Code, gc.Equals, http.StatusOK)
	srv.LogRotate()
	srv.Stop()

	data, err := ioutil.ReadFile(logFile)
	c.Assert(err, gc.IsNil)
	c.Assert(string(data), gc.Matches, `(?s).*GET=/polys.*status-code=200.*`)
}

func (s *LogSuite) TestLeveldbDriver(c *gc.C) {
	settings := DefaultSettings()
	settings.DB.DSN = filepath.Join(c.MkDir(), "polyterm.db")
	st, err := DialStorage(&settings)
	c.Assert(err, gc.IsNil)
	c.Assert(st.Close(), gc.IsNil)
}

func (s *LogSuite) TestCacheFailureClosesStorage(c *gc.C) {
	defer func(f func(storage.Storage, int) (storage.Storage, error)) { newCache = f }(newCache)
	newCache = func(storage.Storage, int) (storage.Storage, error) {
		return nil, errors.New("no cache for you")
	}

	settings := DefaultSettings()
	settings.DB.DSN = filepath.Join(c.MkDir(), "polyterm.db")
	_, err := NewServer(&settings)
	c.Assert(err, gc.ErrorMatches, "no cache for you")

	// goleveldb holds a file lock until the store is closed.
	st, err := DialStorage(&settings)
	c.Assert(err, gc.IsNil)
	c.Assert(st.Close(), gc.IsNil)
}
