// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package domain

import (
	"errors"
	"fmt"
	"io"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/go-air/rims/internal/xio"
	"github.com/go-air/rims/ltlf"
)

var (
	// ErrDomain indicates an invalid domain or problem description.
	ErrDomain = errors.New("domain: invalid description")
	// ErrVocabulary indicates a goal proposition which is neither a
	// fluent, an action nor an action bit.
	ErrVocabulary = errors.New("domain: unknown proposition")
	// ErrInvariants indicates unsatisfiable invariants or an initial
	// state violating them.
	ErrInvariants = errors.New("domain: invariants violated")
)

// Effect is one nondeterministic outcome of an action.
type Effect struct {
	Add []string `yaml:"add"`
	Del []string `yaml:"del"`
}

// Action is a nondeterministic action.  The environment picks one of
// Effects when the action is executed.
type Action struct {
	Name    string   `yaml:"name"`
	Pre     string   `yaml:"pre"`
	Effects []Effect `yaml:"effects"`
}

// Domain is a fully observable nondeterministic planning domain.
type Domain struct {
	Name       string   `yaml:"name"`
	Fluents    []string `yaml:"fluents"`
	Actions    []Action `yaml:"actions"`
	Invariants []string `yaml:"invariants"`
}

// Problem gives the initial state of a domain.
type Problem struct {
	Name   string   `yaml:"name"`
	Domain string   `yaml:"domain"`
	Init   []string `yaml:"init"`
}

func decode(r io.Reader, v interface{}) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %s", ErrDomain, err)
	}
	return nil
}

// ReadDomain decodes a domain from r.
func ReadDomain(r io.Reader) (*Domain, error) {
	d := &Domain{}
	if err := decode(r, d); err != nil {
		return nil, err
	}
	return d, nil
}

// ReadProblem decodes a problem from r.
func ReadProblem(r io.Reader) (*Problem, error) {
	p := &Problem{}
	if err := decode(r, p); err != nil {
		return nil, err
	}
	return p, nil
}

// LoadDomain reads the domain file at path.
func LoadDomain(path string) (*Domain, error) {
	r, err := xio.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	d, err := ReadDomain(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// LoadProblem reads the problem file at path.
func LoadProblem(path string) (*Problem, error) {
	r, err := xio.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	p, err := ReadProblem(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

var (
	identRe   = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
	bitNameRe = regexp.MustCompile(`^(act|rct)_[0-9]+$`)
)

const (
	agErrName  = "ag_err"
	envErrName = "env_err"
)

func checkName(kind, nm string) error {
	switch {
	case !identRe.MatchString(nm):
		return fmt.Errorf("%w: %s %q is not an identifier", ErrDomain, kind, nm)
	case ltlf.IsKeyword(nm):
		return fmt.Errorf("%w: %s %q is a keyword", ErrDomain, kind, nm)
	case bitNameRe.MatchString(nm) || nm == agErrName || nm == envErrName:
		return fmt.Errorf("%w: %s %q is reserved", ErrDomain, kind, nm)
	}
	return nil
}

// Validate checks d, reporting every problem found.
func (d *Domain) Validate() error {
	var errs []error
	fluents := make(map[string]bool, len(d.Fluents))
	for _, f := range d.Fluents {
		if err := checkName("fluent", f); err != nil {
			errs = append(errs, err)
		}
		if fluents[f] {
			errs = append(errs, fmt.Errorf("%w: duplicate fluent %q", ErrDomain, f))
		}
		fluents[f] = true
	}
	if len(d.Actions) == 0 {
		errs = append(errs, fmt.Errorf("%w: no actions", ErrDomain))
	}
	actions := make(map[string]bool, len(d.Actions))
	for _, a := range d.Actions {
		if err := checkName("action", a.Name); err != nil {
			errs = append(errs, err)
		}
		if actions[a.Name] || fluents[a.Name] {
			errs = append(errs, fmt.Errorf("%w: duplicate name %q", ErrDomain, a.Name))
		}
		actions[a.Name] = true
		if len(a.Effects) == 0 {
			errs = append(errs, fmt.Errorf("%w: action %q has no effects", ErrDomain, a.Name))
		}
		for i, e := range a.Effects {
			for _, f := range append(append([]string(nil), e.Add...), e.Del...) {
				if !fluents[f] {
					errs = append(errs, fmt.Errorf("%w: action %q effect %d: undeclared fluent %q",
						ErrDomain, a.Name, i, f))
				}
			}
		}
		if a.Pre != "" {
			if err := checkProp(a.Pre, fluents); err != nil {
				errs = append(errs, fmt.Errorf("action %q precondition: %w", a.Name, err))
			}
		}
	}
	for i, inv := range d.Invariants {
		if err := checkProp(inv, fluents); err != nil {
			errs = append(errs, fmt.Errorf("invariant %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// Validate checks p against d.
func (p *Problem) Validate(d *Domain) error {
	var errs []error
	if p.Domain != "" && p.Domain != d.Name {
		errs = append(errs, fmt.Errorf("%w: problem %q is for domain %q, not %q",
			ErrDomain, p.Name, p.Domain, d.Name))
	}
	fluents := make(map[string]bool, len(d.Fluents))
	for _, f := range d.Fluents {
		fluents[f] = true
	}
	for _, f := range p.Init {
		if !fluents[f] {
			errs = append(errs, fmt.Errorf("%w: init: undeclared fluent %q", ErrDomain, f))
		}
	}
	return errors.Join(errs...)
}

// checkProp checks s is a propositional formula over fluents.
func checkProp(s string, fluents map[string]bool) error {
	f, err := ltlf.Parse(s)
	if err != nil {
		return err
	}
	if !isPropositional(f) {
		return fmt.Errorf("%w: %q is temporal", ErrDomain, s)
	}
	for _, p := range ltlf.Props(f) {
		if !fluents[p] {
			return fmt.Errorf("%w: undeclared fluent %q", ErrDomain, p)
		}
	}
	return nil
}

func isPropositional(f *ltlf.Formula) bool {
	switch f.Op() {
	case ltlf.OpTrue, ltlf.OpFalse, ltlf.OpAtom:
		return true
	case ltlf.OpNot, ltlf.OpAnd, ltlf.OpOr, ltlf.OpImplies, ltlf.OpEquiv:
		for i := 0; i < f.Len(); i++ {
			if !isPropositional(f.Kid(i)) {
				return false
			}
		}
		return true
	}
	return false
}
