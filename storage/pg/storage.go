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

package pg

import (
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"polyterm/poly"
	"polyterm/storage"
)

type polyStorage struct {
	*sql.DB
	storage.Listeners
}

var _ storage.Storage = (*polyStorage)(nil)

var crTablesSQL = []string{
	`CREATE TABLE IF NOT EXISTS polys (
name TEXT NOT NULL PRIMARY KEY,
doc jsonb NOT NULL,
ctime TIMESTAMP WITH TIME ZONE NOT NULL,
mtime TIMESTAMP WITH TIME ZONE NOT NULL
)`,
}

var crIndexesSQL = []string{
	`CREATE INDEX IF NOT EXISTS polys_mtime ON polys(mtime);`,
}

// Dial returns PostgreSQL polynomial storage connected to the given database
// URL.
func Dial(url string) (storage.Storage, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return New(db)
}

// New returns PostgreSQL polynomial storage on an open database handle,
// creating its table if needed.
func New(db *sql.DB) (storage.Storage, error) {
	st := &polyStorage{DB: db}
	err := st.createTables()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create tables")
	}
	err = st.createIndexes()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create indexes")
	}
	return st, nil
}

func (st *polyStorage) createTables() error {
	for _, crTableSQL := range crTablesSQL {
		_, err := st.Exec(crTableSQL)
		if err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}

func (st *polyStorage) createIndexes() error {
	for _, crIndexSQL := range crIndexesSQL {
		_, err := st.Exec(crIndexSQL)
		if err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}

func (st *polyStorage) Names() ([]string, error) {
	rows, err := st.Query("SELECT name FROM polys ORDER BY name COLLATE \"C\"")
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		err = rows.Scan(&name)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		names = append(names, name)
	}
	return names, errors.WithStack(rows.Err())
}

func (st *polyStorage) Fetch(name string) (*poly.Poly, error) {
	var doc []byte
	err := st.QueryRow("SELECT doc FROM polys WHERE name = $1", name).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, errors.WithStack(storage.ErrPolyNotFound)
	} else if err != nil {
		return nil, errors.WithStack(err)
	}

	var p poly.Poly
	err = json.Unmarshal(doc, &p)
	if err != nil {
		return nil, errors.Wrapf(err, "stored polynomial %q is corrupt", name)
	}
	return &p, nil
}

func (st *polyStorage) Insert(name string, p *poly.Poly) error {
	if err := storage.CheckName(name); err != nil {
		return err
	}
	doc, err := json.Marshal(p)
	if err != nil {
		return errors.WithStack(err)
	}
	now := time.Now().UTC()
	result, err := st.Exec("INSERT INTO polys (name, doc, ctime, mtime) "+
		"VALUES ($1, $2, $3, $3) ON CONFLICT (name) DO NOTHING", name, string(doc), now)
	if err != nil {
		return errors.WithStack(err)
	}
	return checkAffected(result, storage.ErrPolyExists)
}

func (st *polyStorage) Update(name string, p *poly.Poly) error {
	doc, err := json.Marshal(p)
	if err != nil {
		return errors.WithStack(err)
	}
	result, err := st.Exec("UPDATE polys SET doc = $2, mtime = $3 WHERE name = $1",
		name, string(doc), time.Now().UTC())
	if err != nil {
		return errors.WithStack(err)
	}
	return checkAffected(result, storage.ErrPolyNotFound)
}

func (st *polyStorage) Delete(name string) error {
	result, err := st.Exec("DELETE FROM polys WHERE name = $1", name)
	if err != nil {
		return errors.WithStack(err)
	}
	return checkAffected(result, storage.ErrPolyNotFound)
}

func checkAffected(result sql.Result, none error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return errors.WithStack(err)
	}
	if n == 0 {
		return errors.WithStack(none)
	}
	return nil
}
