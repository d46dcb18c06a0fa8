package domain

import (
	"fmt"
	"time"

	"github.com/KHUSHWANTsRathore11/driftgate/pkg/cmp"
)

// ordered numeric observations for one feature of one unit, one time window.
//
// Immutable once captured: scanners read values, never append.
type FeatureSample struct {
	UnitId  string
	Feature string
	Start   time.Time
	End     time.Time
	Values  []float64
}

func (s FeatureSample) Equal(o FeatureSample) bool {
	return s.UnitId == o.UnitId &&
		s.Feature == o.Feature &&
		s.Start.Equal(o.Start) &&
		s.End.Equal(o.End) &&
		cmp.SliceEq(s.Values, o.Values)
}

// baseline and current windows compared in one scan cycle.
type ScanWindow struct {
	BaselineStart time.Time
	BaselineEnd   time.Time
	CurrentStart  time.Time
	CurrentEnd    time.Time
}

func (w ScanWindow) Equal(o ScanWindow) bool {
	return w.BaselineStart.Equal(o.BaselineStart) &&
		w.BaselineEnd.Equal(o.BaselineEnd) &&
		w.CurrentStart.Equal(o.CurrentStart) &&
		w.CurrentEnd.Equal(o.CurrentEnd)
}

func (w ScanWindow) String() string {
	return fmt.Sprintf(
		"baseline %s/%s vs current %s/%s",
		w.BaselineStart.Format(time.DateOnly), w.BaselineEnd.Format(time.DateOnly),
		w.CurrentStart.Format(time.DateOnly), w.CurrentEnd.Format(time.DateOnly),
	)
}

// outcome of a single statistical test.
type TestResult struct {
	// name of the test: "ks_test", "wasserstein" or "psi".
	Test string

	// the distance or p-value the test yielded.
	Statistic float64

	// threshold it was compared against.
	Threshold float64

	// whether the threshold was crossed in the drifting direction.
	Exceeded bool
}

// per-feature drift decision.
//
// Drifted is the OR over test results: missed drift is costlier than a
// false alarm, so any single test flagging is enough.
type DriftVerdict struct {
	Feature string
	Tests   []TestResult
	Drifted bool
}

func (v DriftVerdict) Equal(o DriftVerdict) bool {
	return v.Feature == o.Feature &&
		v.Drifted == o.Drifted &&
		cmp.SliceEq(v.Tests, o.Tests)
}

// a feature left out of a scan cycle, with the reason.
type SkippedFeature struct {
	Feature string
	Reason  string
}

// drift decision for one unit, one scan cycle.
//
// Created by the fleet scanner, consumed as a release trigger and by the
// notify sink, then archived.
type DriftReport struct {
	UnitId   string
	Window   ScanWindow
	Verdicts []DriftVerdict

	// features which could not be evaluated (e.g. too few observations).
	// A unit with zero evaluable features is not drifted and not an error.
	Skipped []SkippedFeature

	// true iff at least one verdict is drifted.
	OverallDrift bool
}

// names of the features whose verdict is drifted, in verdict order.
func (r DriftReport) DriftedFeatures() []string {
	drifted := []string{}
	for _, v := range r.Verdicts {
		if v.Drifted {
			drifted = append(drifted, v.Feature)
		}
	}
	return drifted
}

func (r DriftReport) Equal(o DriftReport) bool {
	return r.UnitId == o.UnitId &&
		r.OverallDrift == o.OverallDrift &&
		r.Window.Equal(o.Window) &&
		cmp.SliceEqWith(r.Verdicts, o.Verdicts, DriftVerdict.Equal) &&
		cmp.SliceEq(r.Skipped, o.Skipped)
}
