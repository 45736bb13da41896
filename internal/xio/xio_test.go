// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package xio

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadLines(t *testing.T) {
	ls, err := ReadLines(strings.NewReader("G a\n\n  F b  \n\t\nc"))
	require.NoError(t, err)
	assert.Equal(t, []string{"G a", "F b", "c"}, ls)
}

func TestOpenPlainGzipSymlink(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "goals.ltlf")
	require.NoError(t, os.WriteFile(plain, []byte("F a\nG b\n"), 0o644))

	gz := filepath.Join(dir, "goals.ltlf.gz")
	f, err := os.Create(gz)
	require.NoError(t, err)
	w := gzip.NewWriter(f)
	_, err = w.Write([]byte("F a\nG b\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())

	link := filepath.Join(dir, "link.ltlf")
	require.NoError(t, os.Symlink("goals.ltlf", link))

	for _, p := range []string{plain, gz, link} {
		ls, err := ReadFileLines(p)
		require.NoError(t, err, p)
		assert.Equal(t, []string{"F a", "G b"}, ls, p)
	}

	_, err = Open(filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestBase(t *testing.T) {
	assert.Equal(t, "a.yaml", Base("a.yaml.gz"))
	assert.Equal(t, "a.yaml", Base("a.yaml.bz2"))
	assert.Equal(t, "a.yaml", Base("a.yaml"))
}
