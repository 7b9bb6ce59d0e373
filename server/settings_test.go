package server

import (
	gc "gopkg.in/check.v1"

	"polyterm/metrics"
)

type SettingsSuite struct{}

var _ = gc.Suite(&SettingsSuite{})

func (s *SettingsSuite) TestDefaults(c *gc.C) {
	settings, err := ParseSettings("")
	c.Assert(err, gc.IsNil)
	c.Assert(settings.HTTP.Bind, gc.Equals, ":11380")
	c.Assert(settings.HTTP.Strict, gc.Equals, false)
	c.Assert(settings.HTTP.MaxBodySize, gc.Equals, int64(1<<20))
	c.Assert(settings.DB, gc.Equals, DBConfig{Driver: "leveldb", DSN: "polyterm.db"})
	c.Assert(settings.Cache.Size, gc.Equals, 1024)
	c.Assert(settings.Metrics, gc.DeepEquals, &metrics.Settings{MetricsAddr: ":9627", MetricsPath: "/metrics"})
	c.Assert(settings.LogLevel, gc.Equals, "INFO")
	c.Assert(settings.LogFile, gc.Equals, "")
}

func (s *SettingsSuite) TestParse(c *gc.C) {
	settings, err := ParseSettings(`
[polyterm]
loglevel = "DEBUG"
logfile = "/var/log/polyterm.log"

[polyterm.http]
bind = "127.0.0.1:8080"
strict = true
maxBodySize = 4096

[polyterm.db]
driver = "postgres"
dsn = "dbname=polyterm sslmode=disable"

[polyterm.cache]
size = 0

[polyterm.metrics]
metricsAddr = ":9999"
`)
	c.Assert(err, gc.IsNil)
	c.Assert(settings.LogLevel, gc.Equals, "DEBUG")
	c.Assert(settings.LogFile, gc.Equals, "/var/log/polyterm.log")
	c.Assert(settings.HTTP, gc.Equals, HTTPConfig{Bind: "127.0.0.1:8080", Strict: true, MaxBodySize: 4096})
	c.Assert(settings.DB, gc.Equals, DBConfig{Driver: "postgres", DSN: "dbname=polyterm sslmode=disable"})
	c.Assert(settings.Cache.Size, gc.Equals, 0)
	c.Assert(settings.Metrics.MetricsAddr, gc.Equals, ":9999")
	c.Assert(settings.Metrics.MetricsPath, gc.Equals, "/metrics")
}

func (s *SettingsSuite) TestParseErrors(c *gc.C) {
	for _, testCase := range []struct {
		conf, match string
	}{
		{"[polyterm\n", ".*"},
		{"[polyterm.http]\nbind = 11380\n", ".*"},
		{"[polyterm.cache]\nsize = -1\n", "invalid cache size -1"},
	} {
		_, err := ParseSettings(testCase.conf)
		c.Assert(err, gc.ErrorMatches, testCase.match, gc.Commentf("%q", testCase.conf))
	}
}

func (s *SettingsSuite) TestDialStorageUnsupported(c *gc.C) {
	settings := DefaultSettings()
	settings.DB.Driver = "mongo"
	_, err := DialStorage(&settings)
	c.Assert(err, gc.ErrorMatches, `storage driver "mongo" not supported`)
}
