// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package bench

import (
	"errors"
	"fmt"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/go-air/rims/internal/xio"
)

// ErrSuite indicates a malformed suite file.
var ErrSuite = errors.New("bench: invalid suite")

// Instance is a domain, a problem and a file of goals, one per line.
type Instance struct {
	Domain  string `yaml:"domain"`
	Problem string `yaml:"problem"`
	Goals   string `yaml:"goals"`
}

func (i Instance) String() string {
	return fmt.Sprintf("%s/%s/%s", filepath.Base(i.Domain), filepath.Base(i.Problem), filepath.Base(i.Goals))
}

// Suite is a named list of instances.
type Suite struct {
	Name      string     `yaml:"name"`
	Instances []Instance `yaml:"instances"`
}

// ReadSuite reads the suite file at path.  Relative instance paths are
// taken relative to the directory of path.
func ReadSuite(path string) (*Suite, error) {
	r, err := xio.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	s := &Suite{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(s); err != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrSuite, path, err)
	}
	if s.Name == "" {
		s.Name = filepath.Base(xio.Base(path))
	}
	dir := filepath.Dir(path)
	var errs []error
	for k := range s.Instances {
		inst := &s.Instances[k]
		for _, p := range []*string{&inst.Domain, &inst.Problem, &inst.Goals} {
			if *p == "" {
				errs = append(errs, fmt.Errorf("%w: %s: instance %d: missing path", ErrSuite, path, k))
				continue
			}
			if !filepath.IsAbs(*p) {
				*p = filepath.Join(dir, *p)
			}
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return s, nil
}
