package db

import (
	kcheckpoint "github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/checkpoint/db"
	krelease "github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/release/db"
	ksample "github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/sample/db"
)

type MonitorDatabase interface {
	Release() krelease.ReleaseInterface
	Checkpoint() kcheckpoint.CheckpointInterface
	Sample() ksample.SampleInterface
	Close() error
}
