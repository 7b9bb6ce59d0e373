// Package pgtest runs a private postgres server for integration tests of the
// polynomial store. Tests are skipped when no postgres installation is found.
package pgtest

import (
	"database/sql"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/lib/pq"
	gc "gopkg.in/check.v1"
)

// Server is a postgres process listening only on a unix socket inside its
// own data directory.
type Server struct {
	URL string

	cmd *exec.Cmd
}

func bindir() (string, error) {
	out, err := exec.Command("pg_config", "--bindir").Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// Start initializes a fresh cluster in a directory owned by c and starts
// postgres on it.
func Start(c *gc.C) *Server {
	bin, err := bindir()
	if err != nil {
		c.Skip(fmt.Sprintf("postgres not available: %v", err))
	}

	dir := c.MkDir()
	out, err := exec.Command(filepath.Join(bin, "initdb"), "-D", dir, "-A", "trust").CombinedOutput()
	if err != nil {
		// initdb refuses to run as root.
		c.Skip(fmt.Sprintf("initdb failed: %v: %s", err, out))
	}

	s := &Server{
		URL: "host=" + dir + " dbname=postgres sslmode=disable",
		cmd: exec.Command(filepath.Join(bin, "postgres"), "-D", dir,
			"-c", "listen_addresses=",
			"-c", "unix_socket_directories="+dir,
			"-c", "fsync=off"),
	}
	c.Assert(s.cmd.Start(), gc.IsNil, gc.Commentf("starting postgres"))

	for n := 0; n < 100; n++ {
		if err = s.ping(); err == nil {
			return s
		}
		time.Sleep(50 * time.Millisecond)
	}
	s.Stop(c)
	c.Fatalf("postgres did not become ready: %v", err)
	return nil
}

func (s *Server) ping() error {
	db, err := sql.Open("postgres", s.URL)
	if err != nil {
		return err
	}
	defer db.Close()
	_, err = db.Exec("SELECT 1")
	return err
}

// Stop shuts postgres down. Its data directory is removed with c's
// temporary directories.
func (s *Server) Stop(c *gc.C) {
	if s.cmd == nil {
		return
	}
	c.Check(s.cmd.Process.Signal(os.Interrupt), gc.IsNil)
	c.Check(s.cmd.Wait(), gc.IsNil)
	s.cmd = nil
}
