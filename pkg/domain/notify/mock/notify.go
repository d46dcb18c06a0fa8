package mock

import (
	dbmock "github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/internal/db/mock"
	"github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/notify"
)

// recording sink. Notify never panics even with Impl unset: production
// code fires events on paths tests do not always care about.
type Interface struct {
	rec dbmock.Recorder

	Impl struct {
		Notify func(e notify.Event)
	}

	Calls struct {
		Notify dbmock.CallLog[notify.Event]
	}
}

func New() *Interface {
	return &Interface{}
}

var _ notify.Interface = &Interface{}

func (m *Interface) Notify(e notify.Event) {
	dbmock.Record(&m.rec, &m.Calls.Notify, e)
	if m.Impl.Notify != nil {
		m.Impl.Notify(e)
	}
}
