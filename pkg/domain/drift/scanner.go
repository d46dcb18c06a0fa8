package drift

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/KHUSHWANTsRathore11/driftgate/pkg/domain"
	"github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/notify"
	sampledb "github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/sample/db"
)

const DefaultConcurrency = 5

// Scanner sweeps the fleet for drifted units.
type Scanner struct {
	samples     sampledb.SampleInterface
	evaluator   *Evaluator
	features    []string
	concurrency int
	notify      notify.Interface
}

type Option func(*Scanner) *Scanner

// WithConcurrency bounds the number of units scanned in parallel.
func WithConcurrency(n int) Option {
	return func(s *Scanner) *Scanner {
		if 0 < n {
			s.concurrency = n
		}
		return s
	}
}

func WithNotify(n notify.Interface) Option {
	return func(s *Scanner) *Scanner {
		s.notify = n
		return s
	}
}

func NewScanner(
	samples sampledb.SampleInterface,
	evaluator *Evaluator,
	features []string,
	options ...Option,
) *Scanner {
	s := &Scanner{
		samples:     samples,
		evaluator:   evaluator,
		features:    features,
		concurrency: DefaultConcurrency,
	}
	for _, option := range options {
		s = option(s)
	}
	return s
}

// ScanFleet evaluates every (unit, feature) pair for one scan cycle and
// returns one report per unit, ordered by unit id.
//
// Units fan out over a bounded worker pool. Trouble with one unit or one
// feature never aborts the cycle: an unreadable or too-short feature is
// recorded on the report as skipped, and a unit with zero evaluable
// features is simply not drifted. Drifted units are raised through the
// notify sink as retraining candidates.
//
// The returned error is only ever the context's, when the scan is cut short.
func (s *Scanner) ScanFleet(ctx context.Context, units []string, window domain.ScanWindow) ([]domain.DriftReport, error) {
	jobs := make(chan string)
	reports := make([]domain.DriftReport, 0, len(units))

	mu := sync.Mutex{}
	wg := sync.WaitGroup{}
	for i := 0; i < s.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for unitId := range jobs {
				report := s.scanUnit(ctx, unitId, window)
				mu.Lock()
				reports = append(reports, report)
				mu.Unlock()
			}
		}()
	}

loop:
	for _, unitId := range units {
		select {
		case jobs <- unitId:
		case <-ctx.Done():
			break loop
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(reports, func(i, j int) bool {
		return reports[i].UnitId < reports[j].UnitId
	})

	if s.notify != nil {
		for _, r := range reports {
			if !r.OverallDrift {
				continue
			}
			s.notify.Notify(notify.Event{
				Kind:   notify.DriftDetected,
				UnitId: r.UnitId,
				Detail: fmt.Sprintf(
					"drift on %v (%s): retraining candidate",
					r.DriftedFeatures(), r.Window,
				),
			})
		}
	}

	return reports, nil
}

func (s *Scanner) scanUnit(ctx context.Context, unitId string, window domain.ScanWindow) domain.DriftReport {
	report := domain.DriftReport{
		UnitId:   unitId,
		Window:   window,
		Verdicts: []domain.DriftVerdict{},
		Skipped:  []domain.SkippedFeature{},
	}

	for _, feature := range s.features {
		baseline, err := s.samples.Read(ctx, unitId, feature, window.BaselineStart, window.BaselineEnd)
		if err != nil {
			report.Skipped = append(report.Skipped, domain.SkippedFeature{
				Feature: feature,
				Reason:  fmt.Sprintf("reading baseline: %s", err),
			})
			continue
		}
		current, err := s.samples.Read(ctx, unitId, feature, window.CurrentStart, window.CurrentEnd)
		if err != nil {
			report.Skipped = append(report.Skipped, domain.SkippedFeature{
				Feature: feature,
				Reason:  fmt.Sprintf("reading current: %s", err),
			})
			continue
		}

		verdict, err := s.evaluator.Evaluate(feature, baseline.Values, current.Values)
		if err != nil {
			report.Skipped = append(report.Skipped, domain.SkippedFeature{
				Feature: feature,
				Reason:  err.Error(),
			})
			continue
		}

		report.Verdicts = append(report.Verdicts, verdict)
		if verdict.Drifted {
			report.OverallDrift = true
		}
	}

	return report
}
