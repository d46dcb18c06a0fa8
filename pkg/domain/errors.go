package domain

import (
	"errors"
	"fmt"
)

var (
	// requested entity is not found.
	ErrMissing = errors.New("missing")

	// a sample is too short to run statistical tests on.
	//
	// Callers should skip the feature, not abort the scan.
	ErrInsufficientData = errors.New("insufficient data")

	// an EnvironmentChange declares itself backward compatible and
	// retrain-requiring at once, while its versions show a major bump.
	ErrClassificationConflict = errors.New("conflicting environment change declaration")

	// an approval request was not acknowledged within its timeout.
	ErrPendingExpired = errors.New("approval pending expired")

	// synthetic inference invocation failed.
	ErrTestExecution = errors.New("test execution failed")

	// the artifact registry reported an error. Not retried; usually a
	// configuration problem requiring human fix.
	ErrRegistry = errors.New("registry error")

	// rollback was requested for a unit which never reached production.
	ErrNoCheckpoint = errors.New("no rollback checkpoint")
)

// sample has too few observations for a statistical test.
type InsufficientData struct {
	Feature string
	Got     int
	Need    int
}

var _ error = InsufficientData{}

func (i InsufficientData) Error() string {
	return fmt.Sprintf(
		"feature %s: %d observation(s), need %d or more", i.Feature, i.Got, i.Need,
	)
}

func (i InsufficientData) Unwrap() error {
	return ErrInsufficientData
}

// test executor failure detail.
//
// Transient failures are retried up to the configured bound before the
// release is declared test-failed.
type TestExecution struct {
	UnitId    string
	Detail    string
	Transient bool
	Cause     error
}

var _ error = TestExecution{}

func (t TestExecution) Error() string {
	kind := "fatal"
	if t.Transient {
		kind = "transient"
	}
	return fmt.Sprintf("unit %s: %s (%s)", t.UnitId, t.Detail, kind)
}

func (t TestExecution) Unwrap() error {
	return ErrTestExecution
}

// wrapper for errors coming back from the registry collaborator.
//
// The cause is carried as-is so operators see the platform's message verbatim.
type RegistryError struct {
	Operation string
	Cause     error
}

var _ error = RegistryError{}

func (r RegistryError) Error() string {
	return fmt.Sprintf("registry: %s: %v", r.Operation, r.Cause)
}

func (r RegistryError) Unwrap() error {
	return ErrRegistry
}

// rollback requested with no production history for the unit.
type NoCheckpoint struct {
	UnitId string
}

var _ error = NoCheckpoint{}

func (n NoCheckpoint) Error() string {
	return fmt.Sprintf("unit %s has never reached production: nothing to roll back to", n.UnitId)
}

func (n NoCheckpoint) Unwrap() error {
	return ErrNoCheckpoint
}
