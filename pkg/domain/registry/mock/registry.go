package mock

import (
	"context"
	"errors"

	dbmock "github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/internal/db/mock"
	kreg "github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/registry"
)

type Registry struct {
	rec dbmock.Recorder

	Impl struct {
		Promote    func(ctx context.Context, ref kreg.Ref, stage kreg.Stage) error
		GetCurrent func(ctx context.Context, unitId string) (kreg.Ref, error)
		Restore    func(ctx context.Context, unitId string, artifactVersion, environmentVersion string) error
	}

	Calls struct {
		Promote dbmock.CallLog[struct {
			Ref   kreg.Ref
			Stage kreg.Stage
		}]
		GetCurrent dbmock.CallLog[string]
		Restore    dbmock.CallLog[struct {
			UnitId             string
			ArtifactVersion    string
			EnvironmentVersion string
		}]
	}
}

func New() *Registry {
	return &Registry{}
}

var _ kreg.Registry = &Registry{}

func (m *Registry) Promote(ctx context.Context, ref kreg.Ref, stage kreg.Stage) error {
	dbmock.Record(&m.rec, &m.Calls.Promote, struct {
		Ref   kreg.Ref
		Stage kreg.Stage
	}{Ref: ref, Stage: stage})
	if m.Impl.Promote != nil {
		return m.Impl.Promote(ctx, ref, stage)
	}

	panic(errors.New("it should not be called"))
}

func (m *Registry) GetCurrent(ctx context.Context, unitId string) (kreg.Ref, error) {
	dbmock.Record(&m.rec, &m.Calls.GetCurrent, unitId)
	if m.Impl.GetCurrent != nil {
		return m.Impl.GetCurrent(ctx, unitId)
	}

	panic(errors.New("it should not be called"))
}

func (m *Registry) Restore(ctx context.Context, unitId string, artifactVersion, environmentVersion string) error {
	dbmock.Record(&m.rec, &m.Calls.Restore, struct {
		UnitId             string
		ArtifactVersion    string
		EnvironmentVersion string
	}{UnitId: unitId, ArtifactVersion: artifactVersion, EnvironmentVersion: environmentVersion})
	if m.Impl.Restore != nil {
		return m.Impl.Restore(ctx, unitId, artifactVersion, environmentVersion)
	}

	panic(errors.New("it should not be called"))
}
