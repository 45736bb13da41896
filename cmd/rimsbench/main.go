// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Command rimsbench times the initial adoption of intentions.
//
//	rimsbench [flags] --suite suite.yaml
//	rimsbench [flags] domain.yaml problem.yaml intentions.ltlf
//
// Each instance gives a row with one adoption time per intention.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/go-air/rims/bench"
	"github.com/go-air/rims/internal/cmdutil"
)

var (
	env   *cmdutil.Env
	flags *cmdutil.Flags

	suitePath   string
	csvPath     string
	timeout     time.Duration
	instTimeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "rimsbench [domain problem intentions]",
	Short: "benchmark intention adoption",
	Args: func(cmd *cobra.Command, args []string) error {
		switch {
		case suitePath != "" && len(args) != 0:
			return errors.New("--suite takes no arguments")
		case suitePath == "" && len(args) != 3:
			return errors.New("need --suite or domain, problem and intentions")
		}
		return nil
	},
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
	flags.JobsVar(rootCmd)
	fs := rootCmd.Flags()
	fs.StringVar(&suitePath, "suite", "", "YAML suite of instances")
	fs.StringVar(&csvPath, "csv", "", "append results to this CSV file")
	fs.DurationVar(&timeout, "timeout", 0, "timeout of the whole run, 0 for none")
	fs.DurationVar(&instTimeout, "inst-timeout", 0, "timeout per instance, 0 for none")
}

func suite(args []string) (*bench.Suite, error) {
	if suitePath != "" {
		return bench.ReadSuite(suitePath)
	}
	inst := bench.Instance{Domain: args[0], Problem: args[1], Goals: args[2]}
	return &bench.Suite{Name: inst.String(), Instances: []bench.Instance{inst}}, nil
}

func run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	s, err := suite(args)
	if err != nil {
		return err
	}
	r := bench.NewRun(s, env.Config.Jobs, env.BenchOptions())
	r.Timeout = timeout
	r.InstTimeout = instTimeout
	irs, err := r.Do(ctx)
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(irs))
	failed := 0
	for _, ir := range irs {
		if ir.Error != "" {
			failed++
			fmt.Printf("%s: %s\n", s.Instances[ir.Inst], ir.Error)
			continue
		}
		rec := ir.Record()
		rows = append(rows, rec.Row())
		fmt.Printf("%s: %d/%d adopted in %s\n", s.Instances[ir.Inst], ir.Adopted, len(ir.Adoption), ir.Dur)
	}
	env.Log.Info("run done",
		zap.String("run", r.ID.String()),
		zap.Int("instances", len(irs)),
		zap.Int("failed", failed),
		zap.Duration("elapsed", time.Since(r.Start)))
	if csvPath != "" && len(rows) > 0 {
		return bench.AppendCSV(csvPath, bench.IntentionHeader, rows...)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
