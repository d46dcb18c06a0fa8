package mock

import (
	"context"
	"errors"

	dbmock "github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/internal/db/mock"
	"github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/testexec"
)

type Interface struct {
	rec dbmock.Recorder

	Impl struct {
		Run func(ctx context.Context, unitId string, artifactVersion, environmentVersion string) error
	}

	Calls struct {
		Run dbmock.CallLog[struct {
			UnitId             string
			ArtifactVersion    string
			EnvironmentVersion string
		}]
	}
}

func New() *Interface {
	return &Interface{}
}

var _ testexec.Interface = &Interface{}

func (m *Interface) Run(ctx context.Context, unitId string, artifactVersion, environmentVersion string) error {
	dbmock.Record(&m.rec, &m.Calls.Run, struct {
		UnitId             string
		ArtifactVersion    string
		EnvironmentVersion string
	}{UnitId: unitId, ArtifactVersion: artifactVersion, EnvironmentVersion: environmentVersion})
	if m.Impl.Run != nil {
		return m.Impl.Run(ctx, unitId, artifactVersion, environmentVersion)
	}

	panic(errors.New("it should not be called"))
}
