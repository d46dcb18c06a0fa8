package rollback

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/KHUSHWANTsRathore11/driftgate/pkg/domain"
	checkpointdb "github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/checkpoint/db"
	"github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/notify"
	"github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/registry"
	releasedb "github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/release/db"
)

// Canceller stops in-flight release runs.
//
// Satisfied by the release controller: a rolled-back attempt must not keep
// waiting on approval gates or test probes.
type Canceller interface {
	Cancel(attemptId string)
}

// Manager reverts units to their rollback checkpoint.
type Manager struct {
	releases    releasedb.ReleaseInterface
	checkpoints checkpointdb.CheckpointInterface
	registry    registry.Registry
	canceller   Canceller
	notify      notify.Interface
	logger      *log.Logger
}

type Option func(*Manager) *Manager

func WithNotify(n notify.Interface) Option {
	return func(m *Manager) *Manager {
		m.notify = n
		return m
	}
}

func WithLogger(l *log.Logger) Option {
	return func(m *Manager) *Manager {
		m.logger = l
		return m
	}
}

func New(
	releases releasedb.ReleaseInterface,
	checkpoints checkpointdb.CheckpointInterface,
	reg registry.Registry,
	canceller Canceller,
	options ...Option,
) *Manager {
	m := &Manager{
		releases:    releases,
		checkpoints: checkpoints,
		registry:    reg,
		canceller:   canceller,
		logger:      log.New(log.Writer(), "[rollback] ", log.Flags()),
	}
	for _, option := range options {
		m = option(m)
	}
	return m
}

// Rollback reverts target (a unit id, or domain.AllUnits) to its current
// checkpoint: serving is restored to the checkpointed pair, affected
// release records transit to RolledBack with the reason on record.
//
// A named unit which never reached production fails with
// domain.ErrNoCheckpoint; nothing is skipped silently. AllUnits covers
// every unit holding a checkpoint, which is exactly the set with a
// production history.
func (m *Manager) Rollback(ctx context.Context, target string, actor, reason string) error {
	units := []string{target}
	if target == domain.AllUnits {
		cps, err := m.checkpoints.CurrentAll(ctx)
		if err != nil {
			return err
		}
		units = units[:0]
		for unitId := range cps {
			units = append(units, unitId)
		}
		sort.Strings(units)
	}

	for _, unitId := range units {
		if err := m.rollbackUnit(ctx, unitId, actor, reason); err != nil {
			return fmt.Errorf("unit %s: %w", unitId, err)
		}
	}
	return nil
}

func (m *Manager) rollbackUnit(ctx context.Context, unitId string, actor, reason string) error {
	cp, err := m.checkpoints.Current(ctx, unitId)
	if err != nil {
		return err
	}

	if err := m.registry.Restore(ctx, unitId, cp.ArtifactVersion, cp.EnvironmentVersion); err != nil {
		return err
	}

	affected, err := m.affectedAttempts(ctx, unitId)
	if err != nil {
		return err
	}

	for _, rel := range affected {
		m.canceller.Cancel(rel.AttemptId)
		to, err := rel.State.Advance(domain.ReleaseEvent{
			Type: domain.RollbackRequested, Actor: actor, Detail: reason,
		})
		if err != nil {
			return err
		}
		if _, err := m.releases.Transit(
			ctx, rel.AttemptId, to,
			domain.HistoryEntry{Actor: actor, Reason: reason},
		); err != nil {
			return err
		}
		m.logger.Printf(
			"unit %s: release %s (%s) rolled back to %s/%s",
			unitId, rel.AttemptId, rel.State, cp.ArtifactVersion, cp.EnvironmentVersion,
		)
	}

	if m.notify != nil {
		m.notify.Notify(notify.Event{
			Kind:   notify.RolledBack,
			UnitId: unitId,
			Detail: fmt.Sprintf("restored to %s/%s: %s", cp.ArtifactVersion, cp.EnvironmentVersion, reason),
		})
	}
	return nil
}

// affectedAttempts picks the records a rollback touches: every in-flight
// post-registry attempt, plus the latest Production one (older Production
// records were already superseded and stay as history).
func (m *Manager) affectedAttempts(ctx context.Context, unitId string) ([]domain.Release, error) {
	attemptIds, err := m.releases.Find(ctx, domain.ReleaseFindQuery{UnitId: []string{unitId}})
	if err != nil {
		return nil, err
	}
	rels, err := m.releases.Get(ctx, attemptIds)
	if err != nil {
		return nil, err
	}

	affected := []domain.Release{}
	latestProduction := domain.Release{}
	for _, attemptId := range attemptIds {
		rel := rels[attemptId]
		if rel.State == domain.Production {
			if latestProduction.AttemptId == "" || latestProduction.UpdatedAt.Before(rel.UpdatedAt) {
				latestProduction = rel
			}
			continue
		}
		if rel.State.Terminal() || !rel.State.Rollbackable() {
			continue
		}
		affected = append(affected, rel)
	}
	if latestProduction.AttemptId != "" {
		affected = append(affected, latestProduction)
	}
	return affected, nil
}
