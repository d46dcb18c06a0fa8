package notify

import (
	"fmt"
	"log"
)

type Kind string

const (
	DriftDetected     Kind = "drift_detected"
	ApprovalRequested Kind = "approval_requested"
	ReleaseTransition Kind = "release_transition"
	RolledBack        Kind = "rolled_back"
	BatchBlocked      Kind = "batch_blocked"
	BatchAborted      Kind = "batch_aborted"
)

// a fleet event someone on call may want to hear about.
type Event struct {
	Kind   Kind
	UnitId string
	Detail string
}

func (e Event) String() string {
	return fmt.Sprintf("[%s] unit=%s: %s", e.Kind, e.UnitId, e.Detail)
}

// Interface delivers events, fire and forget.
//
// Implementations never block the caller and never fail it: delivery
// trouble is the sink's problem.
type Interface interface {
	Notify(e Event)
}

type logger struct {
	l *log.Logger
}

// NewLogger returns a sink writing events to l.
func NewLogger(l *log.Logger) Interface {
	return &logger{l: l}
}

func (s *logger) Notify(e Event) {
	s.l.Println(e.String())
}
