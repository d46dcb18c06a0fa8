package stats_test

import (
	"errors"
	"math"
	"testing"

	"github.com/KHUSHWANTsRathore11/driftgate/pkg/domain"
	"github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/stats"
)

func repeat(value float64, n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = value
	}
	return s
}

func TestKolmogorovSmirnov(t *testing.T) {
	t.Run("identical samples give statistic 0 and p-value 1", func(t *testing.T) {
		sample := []float64{1, 2, 3, 4, 5, 6, 7, 8}
		d, p, err := stats.KolmogorovSmirnov(sample, sample)
		if err != nil {
			t.Fatal(err)
		}
		if d != 0 {
			t.Errorf("statistic: actual=%f, expect=0", d)
		}
		if p != 1 {
			t.Errorf("p-value: actual=%f, expect=1", p)
		}
	})

	t.Run("constant equal samples do not panic and show no drift", func(t *testing.T) {
		d, p, err := stats.KolmogorovSmirnov(repeat(3, 50), repeat(3, 50))
		if err != nil {
			t.Fatal(err)
		}
		if d != 0 || p != 1 {
			t.Errorf("(statistic, p-value): actual=(%f, %f), expect=(0, 1)", d, p)
		}
	})

	t.Run("disjoint samples give statistic 1 and a vanishing p-value", func(t *testing.T) {
		baseline := []float64{0, 0.2, 0.4, 0.6, 0.8, 1, 1.2, 1.4, 1.6, 1.8}
		current := []float64{10, 10.2, 10.4, 10.6, 10.8, 11, 11.2, 11.4, 11.6, 11.8}
		d, p, err := stats.KolmogorovSmirnov(baseline, current)
		if err != nil {
			t.Fatal(err)
		}
		// gonum accumulates the statistic; allow for float rounding.
		if 1e-12 < math.Abs(d-1) {
			t.Errorf("statistic: actual=%v, expect=1", d)
		}
		if 0.001 < p {
			t.Errorf("p-value: actual=%f, expect < 0.001", p)
		}
	})

	t.Run("p-value decreases as the samples separate (no inversion)", func(t *testing.T) {
		baseline := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
		prev := 1.0
		for _, shift := range []float64{0, 2, 4, 8} {
			current := make([]float64, len(baseline))
			for i, v := range baseline {
				current[i] = v + shift
			}
			_, p, err := stats.KolmogorovSmirnov(baseline, current)
			if err != nil {
				t.Fatal(err)
			}
			if prev < p {
				t.Errorf("shift %f: p-value %f grew over %f", shift, p, prev)
			}
			prev = p
		}
	})

	t.Run("too short samples fail with ErrInsufficientData", func(t *testing.T) {
		_, _, err := stats.KolmogorovSmirnov([]float64{1}, []float64{1, 2, 3})
		if !errors.Is(err, domain.ErrInsufficientData) {
			t.Errorf("err: actual=%v, expect ErrInsufficientData", err)
		}
		_, _, err = stats.KolmogorovSmirnov([]float64{1, 2, 3}, []float64{})
		if !errors.Is(err, domain.ErrInsufficientData) {
			t.Errorf("err: actual=%v, expect ErrInsufficientData", err)
		}
	})
}

func TestWasserstein(t *testing.T) {
	t.Run("identical samples have distance 0", func(t *testing.T) {
		sample := []float64{1, 5, 2, 8, 3}
		d, err := stats.Wasserstein(sample, sample)
		if err != nil {
			t.Fatal(err)
		}
		if d != 0 {
			t.Errorf("distance: actual=%f, expect=0", d)
		}
	})

	t.Run("a unit shift moves the distance by exactly 1", func(t *testing.T) {
		d, err := stats.Wasserstein([]float64{1, 2, 3}, []float64{2, 3, 4})
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(d-1) > 1e-12 {
			t.Errorf("distance: actual=%f, expect=1", d)
		}
	})

	t.Run("outlier fraction crosses the 0.15 threshold at two in fifty", func(t *testing.T) {
		// m outliers moved from 1 to 5 out of n=50 give distance (m/50)*4.
		baseline := repeat(1, 50)

		oneOutlier := append(repeat(1, 49), 5)
		d1, err := stats.Wasserstein(baseline, oneOutlier)
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(d1-0.08) > 1e-12 {
			t.Errorf("distance /w 1 outlier: actual=%f, expect=0.08", d1)
		}
		if 0.15 < d1 {
			t.Errorf("1 outlier out of 50 should stay under 0.15, got %f", d1)
		}

		twoOutliers := append(repeat(1, 48), 5, 5)
		d2, err := stats.Wasserstein(baseline, twoOutliers)
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(d2-0.16) > 1e-12 {
			t.Errorf("distance /w 2 outliers: actual=%f, expect=0.16", d2)
		}
		if d2 <= 0.15 {
			t.Errorf("2 outliers out of 50 should cross 0.15, got %f", d2)
		}
	})

	t.Run("distance grows with the shift (no inversion)", func(t *testing.T) {
		baseline := []float64{1, 2, 3, 4, 5}
		prev := -1.0
		for _, shift := range []float64{0, 0.5, 1, 3} {
			current := make([]float64, len(baseline))
			for i, v := range baseline {
				current[i] = v + shift
			}
			d, err := stats.Wasserstein(baseline, current)
			if err != nil {
				t.Fatal(err)
			}
			if d < prev {
				t.Errorf("shift %f: distance %f fell under %f", shift, d, prev)
			}
			prev = d
		}
	})

	t.Run("too short samples fail with ErrInsufficientData", func(t *testing.T) {
		_, err := stats.Wasserstein([]float64{}, []float64{1, 2})
		if !errors.Is(err, domain.ErrInsufficientData) {
			t.Errorf("err: actual=%v, expect ErrInsufficientData", err)
		}
	})
}

func TestPSI(t *testing.T) {
	t.Run("PSI of a sample against itself is 0", func(t *testing.T) {
		sample := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20}
		psi, err := stats.PSI(sample, sample, 10)
		if err != nil {
			t.Fatal(err)
		}
		if psi != 0 {
			t.Errorf("psi: actual=%f, expect=0", psi)
		}
	})

	t.Run("one outlier in a constant sample moves PSI a little, not past 0.25", func(t *testing.T) {
		baseline := repeat(1, 50)
		current := append(repeat(1, 49), 5)
		psi, err := stats.PSI(baseline, current, 10)
		if err != nil {
			t.Fatal(err)
		}
		if psi <= 0 {
			t.Errorf("psi: actual=%f, expect > 0", psi)
		}
		if 0.01 < psi {
			t.Errorf("psi: actual=%f, expect < 0.01 for a single outlier", psi)
		}
	})

	t.Run("a full shift out of the baseline range drives PSI well past 0.25", func(t *testing.T) {
		baseline := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20}
		current := make([]float64, len(baseline))
		for i, v := range baseline {
			current[i] = v + 100
		}
		psi, err := stats.PSI(baseline, current, 10)
		if err != nil {
			t.Fatal(err)
		}
		if psi <= 0.25 {
			t.Errorf("psi: actual=%f, expect > 0.25", psi)
		}
	})

	t.Run("constant samples do not panic", func(t *testing.T) {
		psi, err := stats.PSI(repeat(7, 30), repeat(7, 30), 10)
		if err != nil {
			t.Fatal(err)
		}
		if psi != 0 {
			t.Errorf("psi: actual=%f, expect=0", psi)
		}
	})

	t.Run("too short samples fail with ErrInsufficientData", func(t *testing.T) {
		_, err := stats.PSI([]float64{1}, []float64{1, 2}, 10)
		if !errors.Is(err, domain.ErrInsufficientData) {
			t.Errorf("err: actual=%v, expect ErrInsufficientData", err)
		}
	})
}
