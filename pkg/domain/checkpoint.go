package domain

import (
	"fmt"
	"time"
)

// pseudo unit id addressing every unit at once (fleet-wide rollback).
const AllUnits = "ALL"

// last known-good production pair for a unit.
//
// Written when a release reaches production, recording the pair that was
// serving *before* the promotion. Exactly one checkpoint is current per
// unit; a new one supersedes, and the superseded ones are kept for audit.
type RollbackCheckpoint struct {
	UnitId string

	ArtifactVersion    string
	EnvironmentVersion string

	// why this checkpoint was written (release attempt, rollback, ...).
	Reason string

	CreatedAt time.Time
}

func (c RollbackCheckpoint) Equal(o RollbackCheckpoint) bool {
	return c.UnitId == o.UnitId &&
		c.ArtifactVersion == o.ArtifactVersion &&
		c.EnvironmentVersion == o.EnvironmentVersion &&
		c.Reason == o.Reason &&
		c.CreatedAt.Equal(o.CreatedAt)
}

func (c RollbackCheckpoint) String() string {
	return fmt.Sprintf(
		"checkpoint{unit %s: artifact %s / environment %s}",
		c.UnitId, c.ArtifactVersion, c.EnvironmentVersion,
	)
}
