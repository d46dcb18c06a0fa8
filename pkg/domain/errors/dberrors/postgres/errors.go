package postgres

import (
	"errors"
	"fmt"

	"github.com/KHUSHWANTsRathore11/driftgate/pkg/domain"
)

// requested record is missing.
type Missing struct {
	Table    string
	Identity string
}

var _ error = Missing{}

func (m Missing) Error() string {
	return fmt.Sprintf("%s is not found in %s", m.Identity, m.Table)
}

func (m Missing) Unwrap() error {
	return domain.ErrMissing
}

// a write raced with another and lost.
//
// The losing side can retry on a fresh transaction.
var ErrConflict = errors.New("conflicting write")

type Conflict struct {
	Table    string
	Identity string
}

var _ error = Conflict{}

func (c Conflict) Error() string {
	return fmt.Sprintf("%s in %s was written concurrently", c.Identity, c.Table)
}

func (c Conflict) Unwrap() error {
	return ErrConflict
}
