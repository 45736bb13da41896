// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package bench

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestReadSuite(t *testing.T) {
	s, err := ReadSuite("testdata/suite.yaml")
	require.NoError(t, err)
	assert.Equal(t, "corridor", s.Name)
	require.Len(t, s.Instances, 2)
	assert.Equal(t, filepath.Join("testdata", "corridor.yaml"), s.Instances[0].Domain)
	assert.Equal(t, "corridor.yaml/corridor_p1.yaml/corridor.ltlf", s.Instances[0].String())

	p := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(p, []byte("instances:\n  - domain: d.yaml\n"), 0o644))
	_, err = ReadSuite(p)
	assert.ErrorIs(t, err, ErrSuite)
}

func TestRecords(t *testing.T) {
	r := IntentionRecord{Domain: "d", Problem: "p", Intentions: "g",
		Adoption: []time.Duration{time.Second, 1500 * time.Millisecond}, Total: 3 * time.Second}
	assert.Equal(t, []string{"d", "p", "g", "2", "[1.000000-1.500000]", "3.000000"}, r.Row())
	s := SynthRecord{Domain: "d", Problem: "p", Goal: "F a", Total: time.Millisecond}
	assert.Equal(t, "0.001000", s.Row()[6])
}

func TestAppendCSV(t *testing.T) {
	p := filepath.Join(t.TempDir(), "res.csv")
	require.NoError(t, AppendCSV(p, IntentionHeader, []string{"a", "b", "c", "0", "[]", "0.1"}))
	require.NoError(t, AppendCSV(p, IntentionHeader, []string{"x", "y", "z", "0", "[]", "0.2"}))
	f, err := os.Open(p)
	require.NoError(t, err)
	defer f.Close()
	recs, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	want := [][]string{
		IntentionHeader,
		{"a", "b", "c", "0", "[]", "0.1"},
		{"x", "y", "z", "0", "[]", "0.2"},
	}
	assert.Empty(t, cmp.Diff(want, recs))
}

func TestRun(t *testing.T) {
	s, err := ReadSuite("testdata/suite.yaml")
	require.NoError(t, err)
	r := NewRun(s, 2, Options{Log: zaptest.NewLogger(t)})
	r.InstTimeout = time.Minute
	irs, err := r.Do(context.Background())
	require.NoError(t, err)
	require.Len(t, irs, 2)
	for _, ir := range irs {
		assert.Empty(t, ir.Error)
		assert.Len(t, ir.Adoption, 2)
		assert.Equal(t, 1, ir.Adopted)
		rec := ir.Record()
		assert.Equal(t, filepath.Join("testdata", "corridor.ltlf"), rec.Intentions)
		assert.Equal(t, filepath.Join("testdata", "corridor_p1.yaml"), rec.Problem)
		assert.Equal(t, "2", rec.Row()[3])
	}
}

func TestRunCanceled(t *testing.T) {
	s, err := ReadSuite("testdata/suite.yaml")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewRun(s, 1, Options{}).Do(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunBrokenInstance(t *testing.T) {
	s := &Suite{Name: "broken", Instances: []Instance{{
		Domain: "testdata/missing.yaml", Problem: "testdata/corridor_p1.yaml", Goals: "testdata/corridor.ltlf"}}}
	irs, err := NewRun(s, 1, Options{}).Do(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, irs[0].Error)
}

func TestSynthesize(t *testing.T) {
	inst := Instance{Domain: "testdata/corridor.yaml", Problem: "testdata/corridor_p1.yaml",
		Goals: "testdata/corridor.ltlf"}
	os1, err := Synthesize(context.Background(), inst, Options{})
	require.NoError(t, err)
	assert.Equal(t, "F goal", os1.Goal)
	assert.False(t, os1.Result.Realizable)
	m := os1.Arena.Mgr()
	assert.True(t, m.IsFalse(os1.MaxSet.Deferring))
	assert.Equal(t, "testdata/corridor.yaml", os1.Record.Domain)
	assert.Equal(t, "testdata/corridor_p1.yaml", os1.Record.Problem)

	p := filepath.Join(t.TempDir(), "safe.ltlf")
	require.NoError(t, os.WriteFile(p, []byte("G(!(at_a & at_b))\n"), 0o644))
	inst.Goals = p
	os2, err := Synthesize(context.Background(), inst, Options{})
	require.NoError(t, err)
	assert.True(t, os2.Result.Realizable)
	m2 := os2.Arena.Mgr()
	assert.True(t, m2.IsTrue(m2.Implies(os2.MaxSet.Nondeferring, os2.MaxSet.Deferring)))
	assert.False(t, m2.IsFalse(os2.MaxSet.Deferring))

	require.NoError(t, os.WriteFile(p, []byte("\n"), 0o644))
	_, err = Synthesize(context.Background(), inst, Options{})
	assert.ErrorIs(t, err, ErrNoGoal)
}
