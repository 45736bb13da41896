// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Command rims manages intentions interactively.
//
//	rims [flags] domain.yaml problem.yaml intentions.ltlf
//
// rims adopts the goals of the intentions file in order, then reads
// commands on standard input.  Type help for the list of commands.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/go-air/rims/bench"
	"github.com/go-air/rims/internal/cmdutil"
	"github.com/go-air/rims/internal/repl"
)

var (
	env   *cmdutil.Env
	flags *cmdutil.Flags
)

var rootCmd = &cobra.Command{
	Use:   "rims domain problem intentions",
	Short: "reactive intention management for LTLf goals",
	Args:  cobra.ExactArgs(3),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		env, err = flags.Setup(cmd)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		env.Close()
	},
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	flags = cmdutil.Register(rootCmd)
}

func run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	inst := bench.Instance{Domain: args[0], Problem: args[1], Goals: args[2]}
	m, err := bench.Intentions(ctx, inst, env.BenchOptions())
	if err != nil {
		return err
	}
	env.Log.Info("intentions adopted",
		zap.Int("adopted", m.Len()),
		zap.Durations("times", m.AdoptionTimes()))
	l := repl.New(m, os.Stdin, os.Stdout,
		repl.WithColor(env.Color(os.Stdout)),
		repl.WithLogger(env.Log))
	return l.Run(ctx)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
