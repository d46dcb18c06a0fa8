package mock

import (
	"context"
	"errors"

	"github.com/KHUSHWANTsRathore11/driftgate/pkg/domain"
	dbmock "github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/internal/db/mock"
	kdb "github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/release/db"
)

type ReleaseInterface struct {
	rec dbmock.Recorder

	Impl struct {
		New     func(ctx context.Context, body domain.ReleaseBody) (string, error)
		Get     func(ctx context.Context, attemptIds []string) (map[string]domain.Release, error)
		Find    func(ctx context.Context, query domain.ReleaseFindQuery) ([]string, error)
		Transit func(ctx context.Context, attemptId string, to domain.ReleaseState, entry domain.HistoryEntry) (domain.Release, error)
	}

	Calls struct {
		New  dbmock.CallLog[domain.ReleaseBody]
		Get  dbmock.CallLog[[]string]
		Find dbmock.CallLog[domain.ReleaseFindQuery]
		Transit dbmock.CallLog[struct {
			AttemptId string
			To        domain.ReleaseState
			Entry     domain.HistoryEntry
		}]
	}
}

func NewReleaseInterface() *ReleaseInterface {
	return &ReleaseInterface{}
}

var _ kdb.ReleaseInterface = &ReleaseInterface{}

func (m *ReleaseInterface) New(ctx context.Context, body domain.ReleaseBody) (string, error) {
	dbmock.Record(&m.rec, &m.Calls.New, body)
	if m.Impl.New != nil {
		return m.Impl.New(ctx, body)
	}

	panic(errors.New("it should not be called"))
}

func (m *ReleaseInterface) Get(ctx context.Context, attemptIds []string) (map[string]domain.Release, error) {
	dbmock.Record(&m.rec, &m.Calls.Get, attemptIds)
	if m.Impl.Get != nil {
		return m.Impl.Get(ctx, attemptIds)
	}

	panic(errors.New("it should not be called"))
}

func (m *ReleaseInterface) Find(ctx context.Context, query domain.ReleaseFindQuery) ([]string, error) {
	dbmock.Record(&m.rec, &m.Calls.Find, query)
	if m.Impl.Find != nil {
		return m.Impl.Find(ctx, query)
	}

	panic(errors.New("it should not be called"))
}

func (m *ReleaseInterface) Transit(
	ctx context.Context, attemptId string,
	to domain.ReleaseState, entry domain.HistoryEntry,
) (domain.Release, error) {
	dbmock.Record(&m.rec, &m.Calls.Transit, struct {
		AttemptId string
		To        domain.ReleaseState
		Entry     domain.HistoryEntry
	}{AttemptId: attemptId, To: to, Entry: entry})
	if m.Impl.Transit != nil {
		return m.Impl.Transit(ctx, attemptId, to, entry)
	}

	panic(errors.New("it should not be called"))
}
