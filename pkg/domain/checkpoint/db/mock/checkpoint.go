package mock

import (
	"context"
	"errors"

	"github.com/KHUSHWANTsRathore11/driftgate/pkg/domain"
	kdb "github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/checkpoint/db"
	dbmock "github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/internal/db/mock"
)

type CheckpointInterface struct {
	rec dbmock.Recorder

	Impl struct {
		Current    func(ctx context.Context, unitId string) (domain.RollbackCheckpoint, error)
		CurrentAll func(ctx context.Context) (map[string]domain.RollbackCheckpoint, error)
		Supersede  func(ctx context.Context, cp domain.RollbackCheckpoint) error
	}

	Calls struct {
		Current    dbmock.CallLog[string]
		CurrentAll dbmock.CallLog[struct{}]
		Supersede  dbmock.CallLog[domain.RollbackCheckpoint]
	}
}

func NewCheckpointInterface() *CheckpointInterface {
	return &CheckpointInterface{}
}

var _ kdb.CheckpointInterface = &CheckpointInterface{}

func (m *CheckpointInterface) Current(ctx context.Context, unitId string) (domain.RollbackCheckpoint, error) {
	dbmock.Record(&m.rec, &m.Calls.Current, unitId)
	if m.Impl.Current != nil {
		return m.Impl.Current(ctx, unitId)
	}

	panic(errors.New("it should not be called"))
}

func (m *CheckpointInterface) CurrentAll(ctx context.Context) (map[string]domain.RollbackCheckpoint, error) {
	dbmock.Record(&m.rec, &m.Calls.CurrentAll, struct{}{})
	if m.Impl.CurrentAll != nil {
		return m.Impl.CurrentAll(ctx)
	}

	panic(errors.New("it should not be called"))
}

func (m *CheckpointInterface) Supersede(ctx context.Context, cp domain.RollbackCheckpoint) error {
	dbmock.Record(&m.rec, &m.Calls.Supersede, cp)
	if m.Impl.Supersede != nil {
		return m.Impl.Supersede(ctx, cp)
	}

	panic(errors.New("it should not be called"))
}
