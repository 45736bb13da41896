// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package repl

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrUsage indicates a malformed command.
var ErrUsage = errors.New("repl: usage")

// Cmd is a parsed command line, name(arg,...).
type Cmd struct {
	Name string
	Args []string
}

var cmdRe = regexp.MustCompile(`^([a-z_]+)\s*(?:\((.*)\))?$`)

// Parse parses a command line.  Arguments are split at commas and
// trimmed.
func Parse(line string) (Cmd, error) {
	line = strings.TrimSpace(line)
	sm := cmdRe.FindStringSubmatch(line)
	if sm == nil {
		return Cmd{}, fmt.Errorf("%w: cannot parse %q", ErrUsage, line)
	}
	c := Cmd{Name: sm[1]}
	if strings.TrimSpace(sm[2]) == "" {
		return c, nil
	}
	for _, a := range strings.Split(sm[2], ",") {
		c.Args = append(c.Args, strings.TrimSpace(a))
	}
	return c, nil
}

func (c Cmd) arity(n int) error {
	if len(c.Args) != n {
		return fmt.Errorf("%w: %s takes %d arguments, got %d", ErrUsage, c.Name, n, len(c.Args))
	}
	return nil
}

func (c Cmd) int(i int) (int, error) {
	v, err := strconv.Atoi(c.Args[i])
	if err != nil {
		return 0, fmt.Errorf("%w: %s: argument %d: %q is not an integer", ErrUsage, c.Name, i+1, c.Args[i])
	}
	return v, nil
}

func (c Cmd) ints() ([]int, error) {
	if len(c.Args) == 0 {
		return nil, fmt.Errorf("%w: %s takes at least one argument", ErrUsage, c.Name)
	}
	res := make([]int, len(c.Args))
	for i := range c.Args {
		v, err := c.int(i)
		if err != nil {
			return nil, err
		}
		res[i] = v
	}
	return res, nil
}

// goal returns the goal text and priority of is_realizable commands.
// The goal may not contain commas, the priority is the last argument.
func (c Cmd) goal() (string, int, error) {
	if err := c.arity(2); err != nil {
		return "", 0, err
	}
	if c.Args[0] == "" {
		return "", 0, fmt.Errorf("%w: %s: empty goal", ErrUsage, c.Name)
	}
	k, err := c.int(1)
	if err != nil {
		return "", 0, err
	}
	return c.Args[0], k, nil
}
