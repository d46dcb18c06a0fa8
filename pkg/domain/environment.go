package domain

import (
	"fmt"
	"strconv"
	"strings"
)

type CompatibilityClass string

const (
	// the environment update invalidates previously trained artifacts.
	// Every unit must be retrained before serving on the new environment.
	Breaking CompatibilityClass = "breaking"

	// previously trained artifacts keep working. The fleet can move to the
	// new environment without retraining, via a batch release.
	NonBreaking CompatibilityClass = "non_breaking"
)

func (c CompatibilityClass) String() string {
	return string(c)
}

// whether every production unit must go through a new training cycle
// before this class of change can roll out.
func (c CompatibilityClass) RequiresFleetRetrain() bool {
	return c == Breaking
}

// a proposed update of the serving environment. Immutable.
//
// The declared flags are authoritative; version numbering is a convention
// used only to detect declarations which contradict themselves.
type EnvironmentChange struct {
	FromVersion string
	ToVersion   string

	// declared by the proposer, not inferred from any diff.
	BackwardCompatible bool
	RequiresRetrain    bool

	Summary string

	// derived by Classify. Never set directly.
	Class CompatibilityClass
}

func (c EnvironmentChange) Equal(o EnvironmentChange) bool {
	return c == o
}

func (c EnvironmentChange) String() string {
	return fmt.Sprintf("environment %s -> %s", c.FromVersion, c.ToVersion)
}

// an EnvironmentChange whose declarations contradict each other.
type ClassificationConflict struct {
	Change EnvironmentChange
}

var _ error = ClassificationConflict{}

func (c ClassificationConflict) Error() string {
	return fmt.Sprintf(
		"%s: declared backward compatible and retrain-requiring across a major bump; needs human review",
		c.Change,
	)
}

func (c ClassificationConflict) Unwrap() error {
	return ErrClassificationConflict
}

// Classify derives the CompatibilityClass of a proposed change.
//
// Policy is declarative: requires-retrain or not-backward-compatible means
// Breaking; everything else is NonBreaking. Pure: equal inputs always yield
// the equal class, or always the same error.
//
// When a change declares itself backward compatible AND retrain-requiring
// while its version tokens show a major bump, the declaration is
// inconsistent. Classify refuses to guess and returns
// ClassificationConflict for human review.
func Classify(change EnvironmentChange) (EnvironmentChange, error) {
	if change.BackwardCompatible && change.RequiresRetrain && majorBump(change.FromVersion, change.ToVersion) {
		return change, ClassificationConflict{Change: change}
	}

	if change.RequiresRetrain || !change.BackwardCompatible {
		change.Class = Breaking
	} else {
		change.Class = NonBreaking
	}
	return change, nil
}

// majorBump reports whether the leading integer of the version tokens grew.
//
// Version tokens are opaque; this reads only a leading integer (an optional
// "v" prefix is tolerated) and treats anything unparsable as no evidence of
// a bump.
func majorBump(from, to string) bool {
	f, okf := leadingInt(from)
	t, okt := leadingInt(to)
	return okf && okt && t > f
}

func leadingInt(version string) (int, bool) {
	version = strings.TrimPrefix(version, "v")
	head, _, _ := strings.Cut(version, ".")
	n, err := strconv.Atoi(head)
	if err != nil {
		return 0, false
	}
	return n, true
}
