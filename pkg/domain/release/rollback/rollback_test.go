package rollback_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/KHUSHWANTsRathore11/driftgate/pkg/domain"
	cpmock "github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/checkpoint/db/mock"
	nmock "github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/notify/mock"
	regmock "github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/registry/mock"
	relmock "github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/release/db/mock"
	"github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/release/rollback"
)

type cancelRecorder struct {
	cancelled []string
}

func (c *cancelRecorder) Cancel(attemptId string) {
	c.cancelled = append(c.cancelled, attemptId)
}

func fixedCheckpoints(cps map[string]domain.RollbackCheckpoint) *cpmock.CheckpointInterface {
	m := cpmock.NewCheckpointInterface()
	m.Impl.Current = func(_ context.Context, unitId string) (domain.RollbackCheckpoint, error) {
		cp, ok := cps[unitId]
		if !ok {
			return domain.RollbackCheckpoint{}, domain.NoCheckpoint{UnitId: unitId}
		}
		return cp, nil
	}
	m.Impl.CurrentAll = func(context.Context) (map[string]domain.RollbackCheckpoint, error) {
		return cps, nil
	}
	return m
}

func fixedReleases(rels map[string]domain.Release) *relmock.ReleaseInterface {
	m := relmock.NewReleaseInterface()
	m.Impl.Find = func(_ context.Context, query domain.ReleaseFindQuery) ([]string, error) {
		found := []string{}
		for attemptId, rel := range rels {
			for _, unitId := range query.UnitId {
				if rel.UnitId == unitId {
					found = append(found, attemptId)
				}
			}
		}
		return found, nil
	}
	m.Impl.Get = func(_ context.Context, attemptIds []string) (map[string]domain.Release, error) {
		got := map[string]domain.Release{}
		for _, attemptId := range attemptIds {
			if rel, ok := rels[attemptId]; ok {
				got[attemptId] = rel
			}
		}
		return got, nil
	}
	m.Impl.Transit = func(_ context.Context, attemptId string, to domain.ReleaseState, entry domain.HistoryEntry) (domain.Release, error) {
		rel, ok := rels[attemptId]
		if !ok {
			return domain.Release{}, fmt.Errorf("%w: release %s", domain.ErrMissing, attemptId)
		}
		if !rel.State.CanTransit(to) {
			return domain.Release{}, domain.NewErrInvalidReleaseStateChanging(rel.State, to)
		}
		rel.State = to
		entry.State = to
		rel.History = append(rel.History, entry)
		rels[attemptId] = rel
		return rel, nil
	}
	return m
}

func release(attemptId, unitId string, state domain.ReleaseState, updatedAt time.Time) domain.Release {
	return domain.Release{ReleaseBody: domain.ReleaseBody{
		UnitId: unitId, AttemptId: attemptId,
		ArtifactVersion: "1.1.0", EnvironmentVersion: "2.0.0",
		State: state, UpdatedAt: updatedAt,
	}}
}

func TestManager_Rollback(t *testing.T) {
	t.Run("when a unit has a checkpoint, serving and records should be reverted", func(t *testing.T) {
		now := time.Now()
		rels := map[string]domain.Release{
			// superseded long ago; stays untouched.
			"attempt-1": release("attempt-1", "unit-001", domain.Production, now.Add(-48*time.Hour)),
			// the currently serving release.
			"attempt-2": release("attempt-2", "unit-001", domain.Production, now),
			// an in-flight successor.
			"attempt-3": release("attempt-3", "unit-001", domain.TestDeployed, now),
		}
		store := fixedReleases(rels)
		cps := fixedCheckpoints(map[string]domain.RollbackCheckpoint{
			"unit-001": {
				UnitId: "unit-001", ArtifactVersion: "1.0.0", EnvironmentVersion: "2.0.0",
			},
		})
		reg := regmock.New()
		reg.Impl.Restore = func(context.Context, string, string, string) error { return nil }
		canceller := &cancelRecorder{}
		sink := nmock.New()

		testee := rollback.New(store, cps, reg, canceller, rollback.WithNotify(sink))

		if err := testee.Rollback(
			context.Background(), "unit-001", "dave", "forecast error spike",
		); err != nil {
			t.Fatalf("unexpected error: %s", err)
		}

		// serving restored to the checkpointed pair.
		if reg.Calls.Restore.Times() != 1 {
			t.Fatalf("expected 1 restore, got %d", reg.Calls.Restore.Times())
		}
		restored := reg.Calls.Restore[0]
		if restored.UnitId != "unit-001" || restored.ArtifactVersion != "1.0.0" {
			t.Errorf("restore should use the checkpointed pair: %+v", restored)
		}

		// current production and the in-flight attempt rolled back; history stays.
		expected := map[string]domain.ReleaseState{
			"attempt-1": domain.Production,
			"attempt-2": domain.RolledBack,
			"attempt-3": domain.RolledBack,
		}
		for attemptId, state := range expected {
			if got := rels[attemptId].State; got != state {
				t.Errorf("release %s: got %s, expected %s", attemptId, got, state)
			}
		}

		// the reason lands in the audit history.
		history := rels["attempt-2"].History
		if len(history) == 0 || history[len(history)-1].Reason != "forecast error spike" {
			t.Errorf("the rollback reason should be on record: %+v", history)
		}

		// in-flight runs are cancelled.
		cancelled := map[string]bool{}
		for _, attemptId := range canceller.cancelled {
			cancelled[attemptId] = true
		}
		if !cancelled["attempt-3"] {
			t.Errorf("the in-flight attempt should be cancelled: %+v", canceller.cancelled)
		}

		if sink.Calls.Notify.Times() != 1 {
			t.Errorf("expected 1 notification, got %d", sink.Calls.Notify.Times())
		}
	})

	t.Run("when a unit never reached production, it should fail with ErrNoCheckpoint", func(t *testing.T) {
		store := fixedReleases(map[string]domain.Release{})
		cps := fixedCheckpoints(map[string]domain.RollbackCheckpoint{})
		reg := regmock.New()

		testee := rollback.New(store, cps, reg, &cancelRecorder{})

		err := testee.Rollback(context.Background(), "unit-404", "dave", "mistake")
		if !errors.Is(err, domain.ErrNoCheckpoint) {
			t.Errorf("expected ErrNoCheckpoint, got %v", err)
		}
		if reg.Calls.Restore.Times() != 0 {
			t.Errorf("nothing should be restored without a checkpoint")
		}
	})

	t.Run("when the target is ALL, every checkpointed unit should be reverted", func(t *testing.T) {
		now := time.Now()
		rels := map[string]domain.Release{
			"attempt-1": release("attempt-1", "unit-001", domain.Production, now),
			"attempt-2": release("attempt-2", "unit-002", domain.Production, now),
		}
		store := fixedReleases(rels)
		cps := fixedCheckpoints(map[string]domain.RollbackCheckpoint{
			"unit-001": {UnitId: "unit-001", ArtifactVersion: "1.0.0", EnvironmentVersion: "2.0.0"},
			"unit-002": {UnitId: "unit-002", ArtifactVersion: "1.1.0", EnvironmentVersion: "2.0.0"},
		})
		reg := regmock.New()
		reg.Impl.Restore = func(context.Context, string, string, string) error { return nil }

		testee := rollback.New(store, cps, reg, &cancelRecorder{})

		if err := testee.Rollback(
			context.Background(), domain.AllUnits, "dave", "bad environment rollout",
		); err != nil {
			t.Fatalf("unexpected error: %s", err)
		}

		if reg.Calls.Restore.Times() != 2 {
			t.Errorf("expected 2 restores, got %d", reg.Calls.Restore.Times())
		}
		for attemptId, rel := range rels {
			if rel.State != domain.RolledBack {
				t.Errorf("release %s: got %s, expected %s", attemptId, rel.State, domain.RolledBack)
			}
		}
	})

	t.Run("when the registry restore fails, the record should keep its state", func(t *testing.T) {
		now := time.Now()
		rels := map[string]domain.Release{
			"attempt-1": release("attempt-1", "unit-001", domain.Production, now),
		}
		store := fixedReleases(rels)
		cps := fixedCheckpoints(map[string]domain.RollbackCheckpoint{
			"unit-001": {UnitId: "unit-001", ArtifactVersion: "1.0.0", EnvironmentVersion: "2.0.0"},
		})
		reg := regmock.New()
		registryDown := domain.RegistryError{Operation: "restore", Cause: errors.New("registry unreachable")}
		reg.Impl.Restore = func(context.Context, string, string, string) error { return registryDown }

		testee := rollback.New(store, cps, reg, &cancelRecorder{})

		err := testee.Rollback(context.Background(), "unit-001", "dave", "spike")
		if !errors.Is(err, domain.ErrRegistry) {
			t.Errorf("expected the registry error verbatim, got %v", err)
		}
		if got := rels["attempt-1"].State; got != domain.Production {
			t.Errorf("the record must not move when serving was not restored: %s", got)
		}
	})
}
