// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package bench runs synthesis and intention management over suites of
// instances and records results in CSV files.
//
// A suite file lists instances, each a domain file, a problem file and a
// goal file:
//
//	name: corridor
//	instances:
//	  - domain: corridor.yaml
//	    problem: corridor_p1.yaml
//	    goals: corridor.ltlf
//
// Result rows are appended to CSV files whose header is written when the
// file is created.
package bench
