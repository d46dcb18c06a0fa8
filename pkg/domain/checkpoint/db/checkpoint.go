package db

import (
	"context"

	"github.com/KHUSHWANTsRathore11/driftgate/pkg/domain"
)

type CheckpointInterface interface {
	// Current returns the unit's active rollback checkpoint.
	//
	// Returns domain.NoCheckpoint when the unit has never reached production.
	Current(ctx context.Context, unitId string) (domain.RollbackCheckpoint, error)

	// CurrentAll returns the active checkpoint of every unit that has one,
	// keyed by unit id.
	CurrentAll(ctx context.Context) (map[string]domain.RollbackCheckpoint, error)

	// Supersede makes cp the unit's active checkpoint, demoting the
	// previous one.
	//
	// Atomic per unit. A concurrent Supersede for the same unit fails
	// with dberrors ErrConflict; the caller retries on a fresh call.
	Supersede(ctx context.Context, cp domain.RollbackCheckpoint) error
}

type Interface interface {
	Checkpoints() CheckpointInterface
}
