package db

import (
	"context"

	"github.com/KHUSHWANTsRathore11/driftgate/pkg/domain"
)

type ReleaseInterface interface {
	// open a new release attempt.
	//
	// The body carries unit, artifact version, environment version and
	// (optionally) batch id; the store assigns the attempt id, sets the
	// state to Trained and writes the opening history entry.
	//
	// Returns the assigned attempt id.
	New(ctx context.Context, body domain.ReleaseBody) (string, error)

	// retrieve releases with their history.
	//
	// Returns a mapping attemptId -> Release. Unknown ids are absent,
	// not an error.
	Get(ctx context.Context, attemptIds []string) (map[string]domain.Release, error)

	// find attempt ids matching the query.
	Find(ctx context.Context, query domain.ReleaseFindQuery) ([]string, error)

	// Transit moves an attempt to state `to` and appends a history entry.
	//
	// The transition is validated against the state machine inside the
	// transaction, with the release row locked: an illegal move fails with
	// ErrInvalidReleaseStateChanging and mutates nothing.
	// The entry's timestamp is assigned by the store.
	//
	// Returns the release after the transition.
	Transit(ctx context.Context, attemptId string, to domain.ReleaseState, entry domain.HistoryEntry) (domain.Release, error)
}

type Interface interface {
	Releases() ReleaseInterface
}
