// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package bench

import (
	"encoding/csv"
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

var (
	// SynthHeader is the header of one-shot synthesis result files.
	SynthHeader = []string{"PDDL domain", "PDDL problem", "LTLf goal",
		"PDDL2DFA (s)", "LTLf2DFA (s)", "Synthesis (s)", "Runtime (s)"}
	// IntentionHeader is the header of intention benchmark result files.
	IntentionHeader = []string{"PDDL domain", "PDDL problem", "Intentions",
		"Number of Intentions (n)", "Intention Adoption Times (s)", "Time (s)"}
)

// SynthRecord is a row of a one-shot synthesis result file.
type SynthRecord struct {
	Domain, Problem, Goal string
	Compile               time.Duration
	Translate             time.Duration
	Synthesis             time.Duration
	Total                 time.Duration
}

// Row returns the fields of r.
func (r SynthRecord) Row() []string {
	return []string{r.Domain, r.Problem, r.Goal,
		seconds(r.Compile), seconds(r.Translate), seconds(r.Synthesis), seconds(r.Total)}
}

// IntentionRecord is a row of an intention benchmark result file.
type IntentionRecord struct {
	Domain, Problem, Intentions string
	Adoption                    []time.Duration
	Total                       time.Duration
}

// Row returns the fields of r.
func (r IntentionRecord) Row() []string {
	ts := make([]string, len(r.Adoption))
	for i, d := range r.Adoption {
		ts[i] = seconds(d)
	}
	return []string{r.Domain, r.Problem, r.Intentions,
		strconv.Itoa(len(r.Adoption)), "[" + strings.Join(ts, "-") + "]", seconds(r.Total)}
}

func seconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 6, 64)
}

// AppendCSV appends rows to the file at path, writing header first if
// the file does not exist yet.
func AppendCSV(path string, header []string, rows ...[]string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	fresh := err == nil
	if errors.Is(err, os.ErrExist) {
		f, err = os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	}
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if fresh {
		if err := w.Write(header); err != nil {
			f.Close()
			return err
		}
	}
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
