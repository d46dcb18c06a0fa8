package drift

import (
	"github.com/KHUSHWANTsRathore11/driftgate/pkg/domain"
	"github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/stats"
)

const (
	TestKS          = "ks_test"
	TestWasserstein = "wasserstein"
	TestPSI         = "psi"
)

// test thresholds for one scan cycle.
type Thresholds struct {
	// significance level the KS p-value is compared against.
	Alpha float64

	// Wasserstein distance above this flags drift.
	Wasserstein float64

	// PSI above this flags drift.
	PSI float64

	// histogram bucket count for PSI.
	Bins int
}

// Evaluator runs every statistical test on one feature's sample pair.
type Evaluator struct {
	th Thresholds
}

func NewEvaluator(th Thresholds) *Evaluator {
	return &Evaluator{th: th}
}

// Evaluate compares baseline and current and renders the verdict.
//
// The per-feature decision is the OR over the tests: a missed drift costs
// a stale model in production, a false alarm costs one review, so any
// single test flagging is enough.
//
// domain.ErrInsufficientData when either sample is too short to test.
func (e *Evaluator) Evaluate(feature string, baseline, current []float64) (domain.DriftVerdict, error) {
	_, pvalue, err := stats.KolmogorovSmirnov(baseline, current)
	if err != nil {
		return domain.DriftVerdict{}, err
	}
	ks := domain.TestResult{
		Test:      TestKS,
		Statistic: pvalue,
		Threshold: e.th.Alpha,
		Exceeded:  pvalue < e.th.Alpha,
	}

	dist, err := stats.Wasserstein(baseline, current)
	if err != nil {
		return domain.DriftVerdict{}, err
	}
	wd := domain.TestResult{
		Test:      TestWasserstein,
		Statistic: dist,
		Threshold: e.th.Wasserstein,
		Exceeded:  e.th.Wasserstein < dist,
	}

	psi, err := stats.PSI(baseline, current, e.th.Bins)
	if err != nil {
		return domain.DriftVerdict{}, err
	}
	ps := domain.TestResult{
		Test:      TestPSI,
		Statistic: psi,
		Threshold: e.th.PSI,
		Exceeded:  e.th.PSI < psi,
	}

	return domain.DriftVerdict{
		Feature: feature,
		Tests:   []domain.TestResult{ks, wd, ps},
		Drifted: ks.Exceeded || wd.Exceeded || ps.Exceeded,
	}, nil
}
