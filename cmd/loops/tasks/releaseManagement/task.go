package releaseManagement

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/KHUSHWANTsRathore11/driftgate/cmd/loops/recurring"
	"github.com/KHUSHWANTsRathore11/driftgate/pkg/domain"
	krelease "github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/release/db"
)

// progress of the release management loop.
type Cursor struct {
	// attempts handed to a runner over the process lifetime.
	Dispatched int
}

// initial value for task
func Seed() Cursor {
	return Cursor{}
}

type Runner interface {
	Run(ctx context.Context, attemptId string) error
}

// states a runner can make progress from.
func activeStates() []domain.ReleaseState {
	return []domain.ReleaseState{
		domain.Trained,
		domain.RegistryPendingApproval,
		domain.Registry,
		domain.TestDeployed,
		domain.TestValidated,
		domain.ProdPendingApproval,
	}
}

// return:
//
// - task: pick up release attempts parked in non-terminal states and
// drive each with its own runner goroutine.
//
// An attempt stays claimed while its runner lives, so a record parked on an
// approval gate is not picked up twice. Runner goroutines inherit the task
// ctx; do not wrap this loop with a per-cycle timeout.
func Task(
	logger *log.Logger,
	releases krelease.ReleaseInterface,
	runner Runner,
) recurring.Task[Cursor] {
	mu := sync.Mutex{}
	inflight := map[string]struct{}{}

	claim := func(attemptId string) bool {
		mu.Lock()
		defer mu.Unlock()
		if _, ok := inflight[attemptId]; ok {
			return false
		}
		inflight[attemptId] = struct{}{}
		return true
	}
	unclaim := func(attemptId string) {
		mu.Lock()
		defer mu.Unlock()
		delete(inflight, attemptId)
	}

	return func(ctx context.Context, cursor Cursor) (Cursor, bool, error) {
		attemptIds, err := releases.Find(ctx, domain.ReleaseFindQuery{State: activeStates()})
		if err != nil {
			return cursor, false, err
		}
		if len(attemptIds) == 0 {
			return cursor, false, nil
		}

		rels, err := releases.Get(ctx, attemptIds)
		if err != nil {
			return cursor, false, err
		}

		launched := 0
		for _, attemptId := range attemptIds {
			rel, ok := rels[attemptId]
			if !ok {
				continue
			}
			if rel.BatchId != "" {
				// the batch driver owns its members end to end; picking
				// one up here would race it for the same approval key.
				continue
			}
			if !claim(attemptId) {
				continue
			}

			launched += 1
			go func(attemptId string) {
				defer unclaim(attemptId)
				if err := runner.Run(ctx, attemptId); err != nil && !errors.Is(err, context.Canceled) {
					logger.Printf("release attempt %s: runner stopped: %v", attemptId, err)
				}
			}(attemptId)
		}

		cursor.Dispatched += launched
		return cursor, 0 < launched, nil
	}
}
