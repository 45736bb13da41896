// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package xio opens input files the way every command of this module
// does: "-" for standard input, symlinks resolved, and transparent
// gzip or bzip2 decompression by file extension.
package xio

import (
	"bufio"
	"compress/bzip2"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"
)

type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (r *readCloser) Close() error {
	var err error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if e := r.closers[i].Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}

// Open opens p for reading.
func Open(p string) (io.ReadCloser, error) {
	if p == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	st, err := os.Lstat(p)
	if err != nil {
		return nil, err
	}
	if st.Mode()&os.ModeSymlink != 0 {
		q, err := os.Readlink(p)
		if err != nil {
			return nil, err
		}
		if !filepath.IsAbs(q) {
			q = filepath.Join(filepath.Dir(p), q)
		}
		p = q
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	if strings.HasSuffix(p, ".gz") {
		r, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &readCloser{Reader: r, closers: []io.Closer{f, r}}, nil
	}
	if strings.HasSuffix(p, ".bz2") {
		return &readCloser{Reader: bzip2.NewReader(f), closers: []io.Closer{f}}, nil
	}
	return f, nil
}

// Base returns p without a compression extension.
func Base(p string) string {
	for _, ext := range []string{".gz", ".bz2"} {
		if strings.HasSuffix(p, ext) {
			return p[:len(p)-len(ext)]
		}
	}
	return p
}

// ReadLines returns the non-blank lines of r, trimmed.
func ReadLines(r io.Reader) ([]string, error) {
	var res []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		ln := strings.TrimSpace(sc.Text())
		if ln == "" {
			continue
		}
		res = append(res, ln)
	}
	return res, sc.Err()
}

// ReadFileLines opens p and returns its non-blank lines.
func ReadFileLines(p string) ([]string, error) {
	r, err := Open(p)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return ReadLines(r)
}
