package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/KHUSHWANTsRathore11/driftgate/pkg/cmp"
)

type ReleaseState string

const (
	// a training cycle produced an artifact; the release is opened.
	Trained ReleaseState = "trained"

	// waiting for an operator to approve promotion into the registry.
	RegistryPendingApproval ReleaseState = "registry_pending_approval"

	// artifact and environment are promoted to the registry.
	Registry ReleaseState = "registry"

	// deployed to the test stage.
	TestDeployed ReleaseState = "test_deployed"

	// synthetic inference against the test deployment succeeded.
	TestValidated ReleaseState = "test_validated"

	// synthetic inference failed after retries. Terminal; a new trained
	// cycle is required, the attempt is not re-run.
	TestFailed ReleaseState = "test_failed"

	// waiting for an operator to approve promotion into production.
	ProdPendingApproval ReleaseState = "prod_pending_approval"

	// serving in production. Terminal success.
	Production ReleaseState = "production"

	// an approval was neither granted nor denied within its timeout.
	// Terminal for the attempt; the unit keeps its prior production version.
	PendingExpired ReleaseState = "pending_expired"

	// reverted to the rollback checkpoint. Terminal.
	RolledBack ReleaseState = "rolled_back"
)

func (rs ReleaseState) String() string {
	return string(rs)
}

func AsReleaseState(state string) (ReleaseState, error) {
	switch state {
	case string(Trained):
		return Trained, nil
	case string(RegistryPendingApproval):
		return RegistryPendingApproval, nil
	case string(Registry):
		return Registry, nil
	case string(TestDeployed):
		return TestDeployed, nil
	case string(TestValidated):
		return TestValidated, nil
	case string(TestFailed):
		return TestFailed, nil
	case string(ProdPendingApproval):
		return ProdPendingApproval, nil
	case string(Production):
		return Production, nil
	case string(PendingExpired):
		return PendingExpired, nil
	case string(RolledBack):
		return RolledBack, nil
	default:
		return "", fmt.Errorf("'%s' is not ReleaseState", state)
	}
}

// Terminal states never transit again.
func (rs ReleaseState) Terminal() bool {
	switch rs {
	case Production, TestFailed, PendingExpired, RolledBack:
		return true
	default:
		return false
	}
}

// states suspended on an approval gate.
func (rs ReleaseState) PendingApproval() bool {
	switch rs {
	case RegistryPendingApproval, ProdPendingApproval:
		return true
	default:
		return false
	}
}

// states at or beyond registry promotion. Only these may be rolled back:
// before the registry, nothing has left the development store yet.
func (rs ReleaseState) Rollbackable() bool {
	switch rs {
	case Registry, TestDeployed, TestValidated, TestFailed, ProdPendingApproval, Production:
		return true
	default:
		return false
	}
}

// CanTransit reports whether to is a legal next state of rs.
//
// The machine is monotonic: no state is ever revisited within one attempt.
// RolledBack is the one lateral move, allowed from every post-registry state.
func (rs ReleaseState) CanTransit(to ReleaseState) bool {
	if to == RolledBack {
		return rs.Rollbackable()
	}

	switch rs {
	case Trained:
		return to == RegistryPendingApproval
	case RegistryPendingApproval:
		return to == Registry || to == PendingExpired
	case Registry:
		return to == TestDeployed
	case TestDeployed:
		return to == TestValidated || to == TestFailed
	case TestValidated:
		return to == ProdPendingApproval
	case ProdPendingApproval:
		return to == Production || to == PendingExpired
	default:
		return false
	}
}

var ErrInvalidReleaseStateChanging = errors.New("cannot change release state")

func NewErrInvalidReleaseStateChanging(from, to ReleaseState) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidReleaseStateChanging, from, to)
}

// events advancing a release.
type ReleaseEventType string

const (
	ApprovalGranted   ReleaseEventType = "approval_granted"
	ApprovalDenied    ReleaseEventType = "approval_denied"
	ApprovalTimeout   ReleaseEventType = "approval_timeout"
	TestResultArrived ReleaseEventType = "test_result"
	RollbackRequested ReleaseEventType = "rollback_requested"
)

// a single occurrence advancing (or failing) a release.
type ReleaseEvent struct {
	Type ReleaseEventType

	// who caused it: an operator id, or "system".
	Actor string

	// opaque reference to whatever evidence backed the decision
	// (review notebook, ticket, ...). Never inspected by the core.
	EvidenceRef string

	// valid when Type == TestResultArrived.
	TestPassed bool

	// human-readable detail: failure cause, rollback reason, ...
	Detail string
}

// Advance maps an occurred event onto the state machine.
//
// Pure; persisting the transition is the store's business. An event invalid
// for the current state fails with ErrInvalidReleaseStateChanging rather
// than guess at a next state.
func (rs ReleaseState) Advance(ev ReleaseEvent) (ReleaseState, error) {
	switch ev.Type {
	case ApprovalGranted:
		switch rs {
		case RegistryPendingApproval:
			return Registry, nil
		case ProdPendingApproval:
			return Production, nil
		}
	case ApprovalDenied, ApprovalTimeout:
		if rs.PendingApproval() {
			return PendingExpired, nil
		}
	case TestResultArrived:
		if rs == TestDeployed {
			if ev.TestPassed {
				return TestValidated, nil
			}
			return TestFailed, nil
		}
	case RollbackRequested:
		if rs.Rollbackable() {
			return RolledBack, nil
		}
	}
	return rs, fmt.Errorf("%w: %s on %s", ErrInvalidReleaseStateChanging, ev.Type, rs)
}

// one line of a release's audit history.
//
// Written on every transition, including failing ones. Nothing fails silently.
type HistoryEntry struct {
	State       ReleaseState
	Timestamp   time.Time
	Actor       string
	EvidenceRef string
	Reason      string
}

func (h HistoryEntry) Equal(o HistoryEntry) bool {
	return h.State == o.State &&
		h.Timestamp.Equal(o.Timestamp) &&
		h.Actor == o.Actor &&
		h.EvidenceRef == o.EvidenceRef &&
		h.Reason == o.Reason
}

// Core part of a release attempt.
type ReleaseBody struct {
	// unit this release serves.
	UnitId string

	// identity of this attempt. A unit can have many attempts over time,
	// at most one of them non-terminal.
	AttemptId string

	ArtifactVersion    string
	EnvironmentVersion string

	State ReleaseState

	// non-empty when this record belongs to a fleet-wide batch release.
	BatchId string

	// last update timestamp.
	UpdatedAt time.Time
}

func (rb ReleaseBody) Equal(o ReleaseBody) bool {
	return rb.UnitId == o.UnitId &&
		rb.AttemptId == o.AttemptId &&
		rb.ArtifactVersion == o.ArtifactVersion &&
		rb.EnvironmentVersion == o.EnvironmentVersion &&
		rb.State == o.State &&
		rb.BatchId == o.BatchId &&
		rb.UpdatedAt.Equal(o.UpdatedAt)
}

type Release struct {
	ReleaseBody

	// ordered transitions, oldest first.
	History []HistoryEntry
}

func (r Release) Equal(o Release) bool {
	return r.ReleaseBody.Equal(o.ReleaseBody) &&
		cmp.SliceEqWith(r.History, o.History, HistoryEntry.Equal)
}

// parameter to query releases.
//
// Empty dimensions match any.
type ReleaseFindQuery struct {
	UnitId  []string
	State   []ReleaseState
	BatchId string
}

func (q ReleaseFindQuery) Equal(o ReleaseFindQuery) bool {
	return cmp.SliceContentEq(q.UnitId, o.UnitId) &&
		cmp.SliceContentEq(q.State, o.State) &&
		q.BatchId == o.BatchId
}
