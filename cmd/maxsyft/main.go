// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Command maxsyft computes the maximally permissive strategy of an LTLf
// goal over a planning domain.
//
//	maxsyft [flags] domain.yaml problem.yaml goal.ltlf
//
// Only the first goal of the goal file is solved.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/go-air/rims/bench"
	"github.com/go-air/rims/dfa"
	"github.com/go-air/rims/internal/cmdutil"
)

var (
	env   *cmdutil.Env
	flags *cmdutil.Flags

	csvPath   string
	aigerPath string
	outPath   string
)

var rootCmd = &cobra.Command{
	Use:   "maxsyft domain problem goal",
	Short: "maximally permissive LTLf synthesis",
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
	fs := rootCmd.Flags()
	fs.StringVar(&csvPath, "csv", "", "append timings to this CSV file")
	fs.StringVar(&aigerPath, "aiger", "", "write the game arena as aiger (binary if it ends in .aig)")
	fs.StringVarP(&outPath, "output", "o", "", "write the report here instead of stdout")
}

func run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	inst := bench.Instance{Domain: args[0], Problem: args[1], Goals: args[2]}
	os1, err := bench.Synthesize(ctx, inst, env.BenchOptions())
	if err != nil {
		return err
	}
	var w io.Writer = os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	report(w, os1)
	if aigerPath != "" {
		if err := writeAiger(aigerPath, os1.Arena); err != nil {
			return err
		}
	}
	if csvPath != "" {
		return bench.AppendCSV(csvPath, bench.SynthHeader, os1.Record.Row())
	}
	return nil
}

func report(w io.Writer, os1 *bench.OneShot) {
	r := os1.Record
	fmt.Fprintf(w, "goal: %s\n", os1.Goal)
	if os1.Result.Realizable {
		fmt.Fprintf(w, "realizable in %d iterations\n", os1.Result.Iterations)
	} else {
		fmt.Fprintf(w, "unrealizable after %d iterations\n", os1.Result.Iterations)
	}
	fmt.Fprintf(w, "arena: %d state bits\n", os1.Arena.NumBits())
	fmt.Fprintf(w, "compile %s translate %s synthesis %s total %s\n",
		r.Compile, r.Translate, r.Synthesis, r.Total)
}

func writeAiger(path string, a *dfa.T) error {
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

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
