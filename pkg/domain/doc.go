package domain

// domain package contains the Domain Models and Interfaces for driftgate.
//
// `domain/driftgate` package exposes the root object for the application.
// Entrypoints should instantiate the Driftgate object and interact with the
// domain through it.
//
// `domain/ENTITY.go` has high-level entities (Domain Model types) and functions.
// For example, `domain/release.go` contains the `Release` entity.
//
// `domain/ENTITY` directories contain the "physical" representation of the
// entities (RDB) and the interfaces to external collaborators.
// `domain/ENTITY/db/postgres` is the database expression,
// `domain/ENTITY/db/mock` the hand-written test double.
//
// # Entities
//
// - `release`: the promotion path of one (artifact, environment) pair for one
// unit, from trained to serving in production. Releases walk an explicit
// state machine; every transition is recorded as a history entry.
// The "release management loop" drives automatic transitions and suspends on
// approval gates.
//
// - `checkpoint`: the last known-good (artifact, environment) pair per unit,
// written when a release reaches production and consumed on rollback.
// Superseded checkpoints are retained for audit.
//
// - `sample`: feature observations for one unit and one time window, read
// from the feature table. The "drift scan loop" compares baseline and current
// windows per feature to decide whether a unit is a retraining candidate.
//
// And external collaborators, modeled as interfaces with mocks:
//
// - `registry`: the managed ML platform's artifact registry. Promotes and
// restores (artifact, environment) pairs. Its errors are surfaced verbatim.
//
// - `gate`: manual approval. A request suspends until an operator decision
// arrives or the configured timeout expires, whichever comes first.
//
// - `testexec`: synthetic inference invocation against a test deployment.
//
// - `notify`: fire-and-forget alert sink.
