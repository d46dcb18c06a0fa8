package drift_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/KHUSHWANTsRathore11/driftgate/pkg/domain"
	"github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/drift"
	nmock "github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/notify/mock"
	smock "github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/sample/db/mock"
)

func window() domain.ScanWindow {
	day := 24 * time.Hour
	end := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	return domain.ScanWindow{
		BaselineStart: end.Add(-30 * day), BaselineEnd: end.Add(-7 * day),
		CurrentStart: end.Add(-7 * day), CurrentEnd: end,
	}
}

// sampleTable routes mocked reads by unit, feature and window side.
type sampleTable map[string]map[string][2][]float64

func (tab sampleTable) bind(m *smock.SampleInterface, w domain.ScanWindow) {
	m.Impl.Read = func(_ context.Context, unitId, feature string, start, _ time.Time) (domain.FeatureSample, error) {
		byFeature, ok := tab[unitId]
		if !ok {
			return domain.FeatureSample{}, errors.New("no such unit")
		}
		pair, ok := byFeature[feature]
		if !ok {
			return domain.FeatureSample{}, errors.New("no such feature")
		}
		values := pair[0]
		if start.Equal(w.CurrentStart) {
			values = pair[1]
		}
		return domain.FeatureSample{
			UnitId: unitId, Feature: feature, Start: start, Values: values,
		}, nil
	}
}

func TestScanner_ScanFleet(t *testing.T) {
	t.Run("when one unit drifts, only its report should flag and notify", func(t *testing.T) {
		w := window()
		steady := ramp(50, 0)
		shifted := ramp(50, 100)

		samples := smock.NewSampleInterface()
		sampleTable{
			"unit-001": {"temperature": {steady, steady}},
			"unit-002": {"temperature": {steady, shifted}},
		}.bind(samples, w)

		sink := nmock.New()
		testee := drift.NewScanner(
			samples,
			drift.NewEvaluator(defaultThresholds()),
			[]string{"temperature"},
			drift.WithNotify(sink),
			drift.WithConcurrency(2),
		)

		reports, err := testee.ScanFleet(
			context.Background(), []string{"unit-001", "unit-002"}, w,
		)
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}

		if len(reports) != 2 {
			t.Fatalf("expected 2 reports, got %d", len(reports))
		}
		if reports[0].UnitId != "unit-001" || reports[1].UnitId != "unit-002" {
			t.Fatalf("reports are not ordered by unit id: %+v", reports)
		}
		if reports[0].OverallDrift {
			t.Errorf("unit-001 should not drift: %+v", reports[0])
		}
		if !reports[1].OverallDrift {
			t.Errorf("unit-002 should drift: %+v", reports[1])
		}

		if sink.Calls.Notify.Times() != 1 {
			t.Fatalf("expected 1 notification, got %d", sink.Calls.Notify.Times())
		}
		if got := sink.Calls.Notify[0]; got.Kind != "drift_detected" || got.UnitId != "unit-002" {
			t.Errorf("unexpected notification: %+v", got)
		}
	})

	t.Run("when a feature cannot be read, it should be skipped, not abort", func(t *testing.T) {
		w := window()
		steady := ramp(50, 0)
		shifted := ramp(50, 100)

		samples := smock.NewSampleInterface()
		sampleTable{
			// pressure is missing for this unit; temperature still drifts.
			"unit-003": {"temperature": {steady, shifted}},
		}.bind(samples, w)

		testee := drift.NewScanner(
			samples,
			drift.NewEvaluator(defaultThresholds()),
			[]string{"pressure", "temperature"},
		)

		reports, err := testee.ScanFleet(context.Background(), []string{"unit-003"}, w)
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}

		if len(reports) != 1 {
			t.Fatalf("expected 1 report, got %d", len(reports))
		}
		report := reports[0]
		if len(report.Skipped) != 1 || report.Skipped[0].Feature != "pressure" {
			t.Errorf("pressure should be skipped: %+v", report.Skipped)
		}
		if len(report.Verdicts) != 1 || report.Verdicts[0].Feature != "temperature" {
			t.Errorf("temperature should still be evaluated: %+v", report.Verdicts)
		}
		if !report.OverallDrift {
			t.Errorf("drift on the readable feature should flag the unit")
		}
	})

	t.Run("when no feature is evaluable, the unit is not drifted and not an error", func(t *testing.T) {
		w := window()

		samples := smock.NewSampleInterface()
		sampleTable{
			"unit-004": {"temperature": {{1}, {1}}},
		}.bind(samples, w)

		sink := nmock.New()
		testee := drift.NewScanner(
			samples,
			drift.NewEvaluator(defaultThresholds()),
			[]string{"temperature"},
			drift.WithNotify(sink),
		)

		reports, err := testee.ScanFleet(context.Background(), []string{"unit-004"}, w)
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}

		report := reports[0]
		if report.OverallDrift {
			t.Errorf("a unit with zero evaluable features must not drift: %+v", report)
		}
		if len(report.Skipped) != 1 {
			t.Errorf("the too-short feature should be recorded as skipped: %+v", report.Skipped)
		}
		if sink.Calls.Notify.Times() != 0 {
			t.Errorf("nothing to notify, but got %d events", sink.Calls.Notify.Times())
		}
	})

	t.Run("units in flight should never exceed the configured concurrency", func(t *testing.T) {
		w := window()
		steady := ramp(50, 0)

		mu := sync.Mutex{}
		inflight, peak := 0, 0

		samples := smock.NewSampleInterface()
		samples.Impl.Read = func(_ context.Context, unitId, feature string, start, _ time.Time) (domain.FeatureSample, error) {
			mu.Lock()
			inflight += 1
			if peak < inflight {
				peak = inflight
			}
			mu.Unlock()

			time.Sleep(2 * time.Millisecond) // let workers overlap

			mu.Lock()
			inflight -= 1
			mu.Unlock()

			return domain.FeatureSample{
				UnitId: unitId, Feature: feature, Start: start, Values: steady,
			}, nil
		}

		testee := drift.NewScanner(
			samples,
			drift.NewEvaluator(defaultThresholds()),
			[]string{"temperature"},
			drift.WithConcurrency(2),
		)

		units := make([]string, 20)
		for i := range units {
			units[i] = fmt.Sprintf("unit-%03d", i)
		}

		reports, err := testee.ScanFleet(context.Background(), units, w)
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if len(reports) != len(units) {
			t.Fatalf("expected %d reports, got %d", len(units), len(reports))
		}
		if 2 < peak {
			t.Errorf("%d units read at once, expected at most 2", peak)
		}
		if peak < 2 {
			t.Errorf("peak parallelism %d; the pool should actually fan out", peak)
		}
	})

	t.Run("when the context is cancelled, it should stop with the context's error", func(t *testing.T) {
		w := window()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		samples := smock.NewSampleInterface()
		sampleTable{}.bind(samples, w)

		testee := drift.NewScanner(
			samples,
			drift.NewEvaluator(defaultThresholds()),
			[]string{"temperature"},
			drift.WithConcurrency(1),
		)

		units := make([]string, 100)
		for i := range units {
			units[i] = "unit"
		}
		if _, err := testee.ScanFleet(ctx, units, w); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}
