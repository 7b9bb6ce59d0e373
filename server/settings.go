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
	"github.com/BurntSushi/toml"
	"gopkg.in/errgo.v1"

	"polyterm/handler"
	"polyterm/metrics"
	"polyterm/storage"
)

const (
	DefaultHTTPBind = ":11380"
)

type HTTPConfig struct {
	Bind string `toml:"bind"`

	// Reject non-canonical polynomials instead of storing them with a warning
	Strict      bool  `toml:"strict"`
	MaxBodySize int64 `toml:"maxBodySize"`
}

const (
	DefaultDBDriver = "leveldb"
	DefaultDBDSN    = "polyterm.db"
)

type DBConfig struct {
	Driver string `toml:"driver"`
	DSN    string `toml:"dsn"`
}

type CacheConfig struct {
	// Zero disables the cache.
	Size int `toml:"size"`
}

type Settings struct {
	HTTP  HTTPConfig  `toml:"http"`
	DB    DBConfig    `toml:"db"`
	Cache CacheConfig `toml:"cache"`

	Metrics *metrics.Settings `toml:"metrics"`

	LogFile  string `toml:"logfile"`
	LogLevel string `toml:"loglevel"`
}

const (
	DefaultLogLevel = "INFO"
)

func DefaultSettings() Settings {
	return Settings{
		HTTP: HTTPConfig{
			Bind:        DefaultHTTPBind,
			MaxBodySize: handler.DefaultMaxBodySize,
		},
		DB: DBConfig{
			Driver: DefaultDBDriver,
			DSN:    DefaultDBDSN,
		},
		Cache: CacheConfig{
			Size: storage.DefaultCacheSize,
		},
		Metrics:  metrics.DefaultSettings(),
		LogLevel: DefaultLogLevel,
	}
}

func ParseSettings(data string) (*Settings, error) {
	var doc struct {
		Polyterm Settings `toml:"polyterm"`
	}
	doc.Polyterm = DefaultSettings()
	_, err := toml.Decode(data, &doc)
	if err != nil {
		return nil, errgo.Mask(err)
	}
	if doc.Polyterm.Cache.Size < 0 {
		return nil, errgo.Newf("invalid cache size %d", doc.Polyterm.Cache.Size)
	}
	return &doc.Polyterm, nil
}
