// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package repl implements the line oriented command loop driving an
// intention manager.
package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/go-air/rims/dfa"
	"github.com/go-air/rims/intent"
	"github.com/go-air/rims/ltlf"
)

const help = `commands:
  help
  halt
  get_domain_state
  get_intentions_length
  get_all_intentions
  get_intention(k)
  is_final
  get_all_actions
  is_winning(id)
  is_certainly_progressing(id)
  get_all_winning_actions
  get_all_certainly_progressing_actions
  drop(id,...)
  do_action(id)
  is_realizable(goal,k)
  is_realizable_and_weak_adopt(goal,k)
  is_realizable_and_strong_adopt(goal,k)
  export_aiger(path)
`

// Option configures a Loop.
type Option func(*Loop)

// WithColor enables colored output.
func WithColor(on bool) Option {
	return func(l *Loop) { l.color = on }
}

// WithLogger sets the logger of a Loop.
func WithLogger(lg *zap.Logger) Option {
	return func(l *Loop) { l.log = lg }
}

// WithReactions sets the source of environment reactions.  By default
// the loop asks for them on its input.
func WithReactions(src intent.ReactionSource) Option {
	return func(l *Loop) { l.src = src }
}

// Loop reads commands from its input and writes answers to its output.
type Loop struct {
	mgr   *intent.Manager
	in    *bufio.Scanner
	out   io.Writer
	log   *zap.Logger
	src   intent.ReactionSource
	color bool

	ok, bad, prompt *color.Color
}

// New creates a Loop over m.
func New(m *intent.Manager, in io.Reader, out io.Writer, opts ...Option) *Loop {
	l := &Loop{
		mgr:    m,
		in:     bufio.NewScanner(in),
		out:    out,
		log:    zap.NewNop(),
		ok:     color.New(color.FgGreen),
		bad:    color.New(color.FgRed),
		prompt: color.New(color.FgCyan)}
	for _, o := range opts {
		o(l)
	}
	for _, c := range []*color.Color{l.ok, l.bad, l.prompt} {
		if l.color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	if l.src == nil {
		l.src = intent.ReactionFunc(l.askReaction)
	}
	return l
}

func (l *Loop) say(cmd, format string, args ...interface{}) {
	fmt.Fprintf(l.out, "[rims][run][%s] %s\n", cmd, fmt.Sprintf(format, args...))
}

func (l *Loop) sayOK(cmd, format string, args ...interface{}) {
	fmt.Fprintf(l.out, "[rims][run][%s] %s\n", cmd, l.ok.Sprintf(format, args...))
}

func (l *Loop) sayErr(cmd string, err error) {
	fmt.Fprintf(l.out, "[rims][run][%s] %s\n", cmd, l.bad.Sprint(err.Error()))
}

func (l *Loop) ask(cmd, question string) (string, bool) {
	fmt.Fprintf(l.out, "[rims][run][%s] %s ", cmd, l.prompt.Sprint(question))
	if !l.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(l.in.Text()), true
}

func (l *Loop) askReaction(ctx context.Context, action int) (int, error) {
	s, ok := l.ask("do_action", "reaction id:")
	if !ok {
		return 0, io.ErrUnexpectedEOF
	}
	r, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: reaction %q is not an integer", ErrUsage, s)
	}
	return r, nil
}

// Run executes commands until halt or the end of the input.  Command
// errors are reported on the output and do not stop the loop.  Malformed
// goals, unknown propositions and context errors do.
func (l *Loop) Run(ctx context.Context) error {
	l.say("help", "type help for the list of commands")
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(l.out, l.prompt.Sprint("> "))
		if !l.in.Scan() {
			return l.in.Err()
		}
		line := strings.TrimSpace(l.in.Text())
		if line == "" {
			continue
		}
		halt, err := l.Exec(ctx, line)
		if err != nil {
			return err
		}
		if halt {
			return nil
		}
	}
}

// Exec executes one command line.  It returns whether the loop should
// halt, with the error that caused it if any.
func (l *Loop) Exec(ctx context.Context, line string) (bool, error) {
	c, err := Parse(line)
	if err != nil {
		l.sayErr("parse", err)
		return false, nil
	}
	l.log.Debug("command", zap.String("cmd", c.Name), zap.Strings("args", c.Args))
	halt, err := l.exec(ctx, c)
	if err == nil {
		return halt, nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, io.ErrUnexpectedEOF) {
		return true, err
	}
	l.sayErr(c.Name, err)
	if fatal(err) {
		l.log.Error("fatal command error", zap.String("cmd", c.Name), zap.Error(err))
		return true, err
	}
	return false, nil
}

// fatal tells whether err comes from a malformed goal.
func fatal(err error) bool {
	return errors.Is(err, ltlf.ErrSyntax) ||
		errors.Is(err, ltlf.ErrOperator) ||
		errors.Is(err, intent.ErrVocabulary)
}

func (l *Loop) exec(ctx context.Context, c Cmd) (bool, error) {
	m := l.mgr
	noArgs := func() error { return c.arity(0) }
	switch c.Name {
	case "help":
		fmt.Fprint(l.out, help)
	case "halt":
		l.say(c.Name, "bye")
		return true, nil
	case "get_domain_state":
		if err := noArgs(); err != nil {
			return false, err
		}
		l.say(c.Name, "%s", strings.Join(m.DomainState(), " "))
	case "get_intentions_length":
		if err := noArgs(); err != nil {
			return false, err
		}
		l.say(c.Name, "%d", m.Len())
	case "get_all_intentions":
		if err := noArgs(); err != nil {
			return false, err
		}
		for k, s := range m.Intentions() {
			l.say(c.Name, "%d: %s", k+1, s)
		}
	case "get_intention":
		if err := c.arity(1); err != nil {
			return false, err
		}
		k, err := c.int(0)
		if err != nil {
			return false, err
		}
		i, err := m.Intention(k)
		if err != nil {
			return false, err
		}
		l.say(c.Name, "%d: %s (adopted as %s)", k, i, i.Text)
	case "is_final":
		if err := noArgs(); err != nil {
			return false, err
		}
		st := m.IsFinal()
		if st.AgentError {
			l.say(c.Name, "agent error")
		}
		if st.EnvError {
			l.say(c.Name, "environment error")
		}
		l.say(c.Name, "%t", st.Final)
	case "get_all_actions":
		if err := noArgs(); err != nil {
			return false, err
		}
		for id, a := range m.Actions() {
			l.say(c.Name, "%d: %s", id, a)
		}
	case "is_winning", "is_certainly_progressing":
		if err := c.arity(1); err != nil {
			return false, err
		}
		id, err := c.int(0)
		if err != nil {
			return false, err
		}
		q := m.IsWinning
		if c.Name == "is_certainly_progressing" {
			q = m.IsCertainlyProgressing
		}
		ok, err := q(id)
		if err != nil {
			return false, err
		}
		l.say(c.Name, "%t", ok)
	case "get_all_winning_actions", "get_all_certainly_progressing_actions":
		if err := noArgs(); err != nil {
			return false, err
		}
		ids := m.WinningActions()
		if c.Name == "get_all_certainly_progressing_actions" {
			ids = m.ProgressingActions()
		}
		names := m.Actions()
		for _, id := range ids {
			l.say(c.Name, "%d: %s", id, names[id])
		}
	case "drop":
		ids, err := c.ints()
		if err != nil {
			return false, err
		}
		if err := m.Drop(ctx, ids...); err != nil {
			return false, err
		}
		l.sayOK(c.Name, "%d intentions left", m.Len())
	case "do_action":
		if err := c.arity(1); err != nil {
			return false, err
		}
		id, err := c.int(0)
		if err != nil {
			return false, err
		}
		st, err := m.DoAction(ctx, id, l.src)
		if err != nil {
			return false, err
		}
		l.sayOK(c.Name, "%s/%d: %s", m.Actions()[st.Action], st.Reaction, strings.Join(st.State, " "))
	case "is_realizable":
		text, k, err := c.goal()
		if err != nil {
			return false, err
		}
		chk, err := m.IsRealizable(ctx, text, k)
		if err != nil {
			return false, err
		}
		l.report(c.Name, chk, m.Len())
		return false, l.offer(c.Name, chk)
	case "is_realizable_and_weak_adopt", "is_realizable_and_strong_adopt":
		text, k, err := c.goal()
		if err != nil {
			return false, err
		}
		adopt := m.WeakAdopt
		if c.Name == "is_realizable_and_strong_adopt" {
			adopt = m.StrongAdopt
		}
		ok, err := adopt(ctx, text, k)
		if err != nil {
			return false, err
		}
		l.adopted(c.Name, ok)
	case "export_aiger":
		if err := c.arity(1); err != nil {
			return false, err
		}
		if err := l.exportAiger(c.Args[0]); err != nil {
			return false, err
		}
		l.sayOK(c.Name, "wrote %s", c.Args[0])
	default:
		return false, fmt.Errorf("%w: unknown command %q, type help", ErrUsage, c.Name)
	}
	return false, nil
}

func (l *Loop) report(cmd string, c *intent.Check, n int) {
	if !c.Realizable {
		l.say(cmd, "%s", l.bad.Sprint("unrealizable"))
		return
	}
	l.say(cmd, "realizable, compatible with %v of %d intentions", c.Compatible, n)
	l.say(cmd, "weak adoption possible: %t, strong adoption possible: %t", c.Weak(n), c.Strong())
}

func (l *Loop) adopted(cmd string, ok bool) {
	if ok {
		l.sayOK(cmd, "adopted")
		return
	}
	l.say(cmd, "%s", l.bad.Sprint("not adopted"))
}

// offer asks whether to adopt a checked goal.
func (l *Loop) offer(cmd string, c *intent.Check) error {
	if !c.Realizable {
		return nil
	}
	for {
		s, ok := l.ask(cmd, "adopt weakly (w), strongly (s) or not (n)?")
		if !ok {
			return io.ErrUnexpectedEOF
		}
		switch s {
		case "n", "":
			return nil
		case "w", "s":
			ok, err := l.mgr.Adopt(c, s == "s")
			if err != nil {
				return err
			}
			l.adopted(cmd, ok)
			return nil
		}
	}
}

func (l *Loop) exportAiger(path string) error {
	a, err := l.mgr.Arena()
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := dfa.WriteAiger(f, a, strings.HasSuffix(path, ".aig")); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
