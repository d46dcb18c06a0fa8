// Package stats holds the statistical tests the drift evaluator runs.
//
// All functions are pure: two numeric samples in, a scalar out. Thresholding
// is the caller's business, except that each function documents the drifting
// direction of its scalar.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/KHUSHWANTsRathore11/driftgate/pkg/domain"
)

// minimum observations per sample for any test.
const MinSampleLen = 2

// KolmogorovSmirnov runs the two-sample KS test.
//
// Returns the KS statistic (sup distance between empirical CDFs) and its
// asymptotic p-value. Low p-value means drift: callers compare p < alpha.
// Identical samples yield statistic 0 and p-value 1.
func KolmogorovSmirnov(baseline, current []float64) (statistic, pvalue float64, err error) {
	if err := validate(baseline, current); err != nil {
		return 0, 1, err
	}

	b := sortedCopy(baseline)
	c := sortedCopy(current)
	d := stat.KolmogorovSmirnov(b, nil, c, nil)
	return d, ksPValue(d, len(b), len(c)), nil
}

// asymptotic two-sample KS p-value (Smirnov's limiting distribution, with
// the small-sample correction of Numerical Recipes).
func ksPValue(d float64, n1, n2 int) float64 {
	if d <= 0 {
		return 1
	}

	ne := float64(n1) * float64(n2) / float64(n1+n2)
	sqrtNe := math.Sqrt(ne)
	lambda := (sqrtNe + 0.12 + 0.11/sqrtNe) * d

	sum := 0.0
	sign := 1.0
	for k := 1; k <= 100; k++ {
		term := 2 * sign * math.Exp(-2*float64(k)*float64(k)*lambda*lambda)
		sum += term
		if math.Abs(term) < 1e-10 {
			break
		}
		sign = -sign
	}

	return math.Max(0, math.Min(1, sum))
}

// Wasserstein computes the 1-D earth-mover distance between the empirical
// distributions of the two samples: the area between their CDFs.
//
// Non-negative; larger means drift. 0 when the samples are identical.
func Wasserstein(baseline, current []float64) (float64, error) {
	if err := validate(baseline, current); err != nil {
		return 0, err
	}

	b := sortedCopy(baseline)
	c := sortedCopy(current)

	// merged support of both samples, ascending
	all := make([]float64, 0, len(b)+len(c))
	all = append(all, b...)
	all = append(all, c...)
	sort.Float64s(all)

	var dist float64
	i, j := 0, 0
	for k := 0; k+1 < len(all); k++ {
		x := all[k]
		for i < len(b) && b[i] <= x {
			i++
		}
		for j < len(c) && c[j] <= x {
			j++
		}
		fb := float64(i) / float64(len(b))
		fc := float64(j) / float64(len(c))
		dist += math.Abs(fb-fc) * (all[k+1] - x)
	}

	return dist, nil
}

// floor for zero-frequency buckets, avoiding log(0) and division by zero.
const psiEpsilon = 1e-4

// PSI computes the Population Stability Index of current against baseline.
//
// The baseline is bucketed into `bins` equal-frequency quantile edges (the
// top edge nudged up slightly so the baseline maximum falls inside), both
// samples are histogrammed over those edges, and
//
//	PSI = sum (cur% - base%) * ln(cur% / base%)
//
// Larger means drift. As a rule of thumb, below 0.1 is stable and above
// 0.25 is significant. Observations outside the baseline's range do not
// land in any bucket; their missing mass still moves the index.
func PSI(baseline, current []float64, bins int) (float64, error) {
	if err := validate(baseline, current); err != nil {
		return 0, err
	}
	if bins < 2 {
		bins = 2
	}

	b := sortedCopy(baseline)
	edges := make([]float64, bins+1)
	for i := 0; i <= bins; i++ {
		edges[i] = stat.Quantile(float64(i)/float64(bins), stat.Empirical, b, nil)
	}
	edges[bins] += 0.001

	basePct := bucketShares(baseline, edges)
	curPct := bucketShares(current, edges)

	psi := 0.0
	for k := 0; k < bins; k++ {
		bp := math.Max(basePct[k], psiEpsilon)
		cp := math.Max(curPct[k], psiEpsilon)
		psi += (cp - bp) * math.Log(cp/bp)
	}

	return psi, nil
}

// share of values per half-open bucket [edges[k], edges[k+1]).
// Values outside [edges[0], edges[len-1]) are dropped.
func bucketShares(values []float64, edges []float64) []float64 {
	counts := make([]float64, len(edges)-1)
	for _, v := range values {
		if v < edges[0] || v >= edges[len(edges)-1] {
			continue
		}
		// rightmost bucket whose lower edge is <= v. Zero-width buckets
		// (degenerate quantiles) never win.
		k := sort.SearchFloat64s(edges, v)
		if k == len(edges) || edges[k] != v {
			k--
		}
		for k+1 < len(edges) && edges[k] == edges[k+1] {
			k++
		}
		if k < len(counts) {
			counts[k]++
		}
	}

	n := float64(len(values))
	for k := range counts {
		counts[k] /= n
	}
	return counts
}

func validate(baseline, current []float64) error {
	if len(baseline) < MinSampleLen {
		return domain.InsufficientData{Got: len(baseline), Need: MinSampleLen}
	}
	if len(current) < MinSampleLen {
		return domain.InsufficientData{Got: len(current), Need: MinSampleLen}
	}
	return nil
}

func sortedCopy(values []float64) []float64 {
	s := make([]float64, len(values))
	copy(s, values)
	sort.Float64s(s)
	return s
}
