package main

import (
	"bytes"
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polyterm/poly"
)

func writeFile(t *testing.T, dir, name, text string) string {
	path := filepath.Join(dir, name)
	require.NoError(t, ioutil.WriteFile(path, []byte(text), 0644))
	return path
}

func TestRunOne(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "p", "4 5\n-2 3\n2 1\n3 0\n")

	var out bytes.Buffer
	x := 1.0
	require.NoError(t, run(&out, config{x: &x}, []string{p}))
	assert.Equal(t, "p1 = 3.0 + 2.0x + -2.0x^3 + 4.0x^5\np1(1.0) = 7.0\n", out.String())
}

func TestRunTwo(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a", "1 1\n1 0\n")
	b := writeFile(t, dir, "b", "1 1\n-1 0\n")

	var out bytes.Buffer
	x := 2.0
	require.NoError(t, run(&out, config{x: &x}, []string{a, b}))
	assert.Equal(t, ""+
		"p1 = 1.0 + 1.0x\n"+
		"p2 = -1.0 + 1.0x\n"+
		"sum = 2.0x\n"+
		"product = -1.0 + 1.0x^2\n"+
		"p1(2.0) = 3.0\n"+
		"p2(2.0) = 1.0\n"+
		"sum(2.0) = 4.0\n"+
		"product(2.0) = 3.0\n", out.String())
}

func TestRunNoEval(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a", "")

	var out bytes.Buffer
	require.NoError(t, run(&out, config{}, []string{a}))
	assert.Equal(t, "p1 = 0\n", out.String())
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, dir, "bad", "4 5\nx 3\n")
	loose := writeFile(t, dir, "loose", "1 0\n1 2\n")

	var out bytes.Buffer
	err := run(&out, config{}, []string{bad})
	require.Error(t, err)
	assert.True(t, poly.IsParseError(err), "%v", err)
	assert.Contains(t, err.Error(), "line 2")

	err = run(&out, config{}, []string{filepath.Join(dir, "missing")})
	assert.Error(t, err)

	out.Reset()
	require.NoError(t, run(&out, config{}, []string{loose}))
	assert.Equal(t, "p1 = 1.0x^2 + 1.0\n", out.String())

	err = run(&out, config{validate: true}, []string{loose})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not canonical")
}
