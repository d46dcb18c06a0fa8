package mock

import (
	"context"
	"errors"

	"github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/gate"
	dbmock "github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/internal/db/mock"
)

type Gate struct {
	rec dbmock.Recorder

	Impl struct {
		Request func(ctx context.Context, req gate.Request) (<-chan gate.Decision, func(), error)
	}

	Calls struct {
		Request dbmock.CallLog[gate.Request]
	}
}

func New() *Gate {
	return &Gate{}
}

var _ gate.Gate = &Gate{}

func (m *Gate) Request(ctx context.Context, req gate.Request) (<-chan gate.Decision, func(), error) {
	dbmock.Record(&m.rec, &m.Calls.Request, req)
	if m.Impl.Request != nil {
		return m.Impl.Request(ctx, req)
	}

	panic(errors.New("it should not be called"))
}
