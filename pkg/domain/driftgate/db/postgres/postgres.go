package postgres

import (
	"context"

	kpool "github.com/KHUSHWANTsRathore11/driftgate/pkg/conn/db/postgres/pool"
	kcheckpoint "github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/checkpoint/db"
	kpgcheckpoint "github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/checkpoint/db/postgres"
	dbInterface "github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/driftgate/db"
	krelease "github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/release/db"
	kpgrelease "github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/release/db/postgres"
	ksample "github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/sample/db"
	kpgsample "github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/sample/db/postgres"
	"github.com/jackc/pgx/v4/pgxpool"
)

type monitorDBPostgres struct {
	pool       *pgxpool.Pool
	release    krelease.ReleaseInterface
	checkpoint kcheckpoint.CheckpointInterface
	sample     ksample.SampleInterface
}

func New(ctx context.Context, url string) (dbInterface.MonitorDatabase, error) {
	pool, err := pgxpool.Connect(ctx, url)
	if err != nil {
		return nil, err
	}

	p := kpool.Wrap(pool)
	return &monitorDBPostgres{
		pool:       pool,
		release:    kpgrelease.New(p),
		checkpoint: kpgcheckpoint.New(p),
		sample:     kpgsample.New(p),
	}, nil
}

func (m *monitorDBPostgres) Release() krelease.ReleaseInterface {
	return m.release
}

func (m *monitorDBPostgres) Checkpoint() kcheckpoint.CheckpointInterface {
	return m.checkpoint
}

func (m *monitorDBPostgres) Sample() ksample.SampleInterface {
	return m.sample
}

func (m *monitorDBPostgres) Close() error {
	m.pool.Close()
	return nil
}
