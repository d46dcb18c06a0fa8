package gate

import (
	"context"
	"errors"
	"strings"
)

// which promotion the approval guards.
type Stage string

const (
	StageRegistry   Stage = "registry"
	StageProduction Stage = "production"
)

// an approval request raised by the release controller.
type Request struct {
	UnitId             string
	ArtifactVersion    string
	EnvironmentVersion string
	Stage              Stage

	// what the operator is deciding on, human-readable.
	Detail string
}

// Key identifies a request towards operators.
//
// At most one stage of one attempt is pending at a time, so versions
// alone disambiguate.
func (r Request) Key() string {
	return strings.Join(
		[]string{r.UnitId, r.ArtifactVersion, r.EnvironmentVersion}, ":",
	)
}

func (r Request) Equal(o Request) bool {
	return r == o
}

// an operator's answer.
type Decision struct {
	Approved    bool
	Actor       string
	EvidenceRef string
	Reason      string
}

// Gate is the controller's side of the approval flow.
type Gate interface {
	// Request raises req and returns a channel yielding the decision.
	//
	// The channel yields at most once. The returned cancel withdraws the
	// request; after cancel, the channel never yields. The controller owns
	// the timeout: the gate waits forever.
	Request(ctx context.Context, req Request) (<-chan Decision, func(), error)
}

// Resolver is the operator's side, fed by the HTTP daemon.
type Resolver interface {
	// Pending lists requests not yet decided.
	Pending(ctx context.Context) ([]Request, error)

	// Resolve answers the pending request with the given key.
	//
	// domain.ErrMissing when no such request is pending; a request
	// already decided or withdrawn is missing, not re-decidable.
	Resolve(ctx context.Context, key string, d Decision) error
}

var ErrDuplicateRequest = errors.New("approval already pending")
