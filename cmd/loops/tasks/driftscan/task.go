package driftscan

import (
	"context"
	"time"

	"github.com/KHUSHWANTsRathore11/driftgate/cmd/loops/recurring"
	"github.com/KHUSHWANTsRathore11/driftgate/pkg/domain"
	ksample "github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/sample/db"
)

// progress of the drift scan loop, carried between cycles.
type Cursor struct {
	// end of the last completed cycle.
	LastScan time.Time

	// units examined / flagged over the process lifetime.
	Scanned int
	Drifted int
}

// initial value for task
func Seed() Cursor {
	return Cursor{}
}

type FleetScanner interface {
	ScanFleet(ctx context.Context, units []string, window domain.ScanWindow) ([]domain.DriftReport, error)
}

// Window lays out the baseline and current windows ending at now.
func Window(now time.Time, baselineDays, currentDays int) domain.ScanWindow {
	split := now.AddDate(0, 0, -currentDays)
	return domain.ScanWindow{
		BaselineStart: split.AddDate(0, 0, -baselineDays),
		BaselineEnd:   split,
		CurrentStart:  split,
		CurrentEnd:    now,
	}
}

// return:
//
// - task: scan the fleet once for drifted feature distributions.
//
// units is the fixed fleet from config; when empty, every unit with
// observations is scanned.
func Task(
	samples ksample.SampleInterface,
	scanner FleetScanner,
	units []string,
	baselineDays, currentDays int,
) recurring.Task[Cursor] {
	return func(ctx context.Context, cursor Cursor) (Cursor, bool, error) {
		target := units
		if len(target) == 0 {
			known, err := samples.Units(ctx)
			if err != nil {
				return cursor, false, err
			}
			target = known
		}

		now := time.Now()
		reports, err := scanner.ScanFleet(ctx, target, Window(now, baselineDays, currentDays))
		if err != nil {
			return cursor, false, err
		}

		cursor.LastScan = now
		cursor.Scanned += len(reports)
		for _, r := range reports {
			if r.OverallDrift {
				cursor.Drifted += 1
			}
		}

		// a cycle covers the whole fleet; there is never more backlog.
		return cursor, false, nil
	}
}
