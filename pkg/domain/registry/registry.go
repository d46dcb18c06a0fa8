package registry

import (
	"context"
	"errors"
)

// promotion target within the model registry.
type Stage string

const (
	StageRegistry   Stage = "registry"
	StageProduction Stage = "production"
)

// a (unit, artifact, environment) coordinate in the registry.
type Ref struct {
	UnitId             string
	ArtifactVersion    string
	EnvironmentVersion string
}

func (r Ref) Equal(o Ref) bool {
	return r == o
}

// the ref is already promoted at the requested stage.
//
// Promotions are idempotent: callers treat this as success so a crashed
// cycle can be re-driven without manual cleanup.
var ErrAlreadyPromoted = errors.New("already promoted")

// the model registry the fleet publishes to.
//
// Implementations wrap platform errors as domain.RegistryError so operators see
// the platform's message verbatim.
type Registry interface {
	// Promote publishes the ref at the given stage.
	Promote(ctx context.Context, ref Ref, stage Stage) error

	// GetCurrent returns the ref currently serving production for the unit.
	//
	// domain.ErrMissing when the unit has no production model.
	GetCurrent(ctx context.Context, unitId string) (Ref, error)

	// Restore re-points the unit's production serving at the given
	// artifact and environment versions.
	Restore(ctx context.Context, unitId string, artifactVersion, environmentVersion string) error
}
