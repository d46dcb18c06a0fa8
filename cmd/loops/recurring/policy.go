package recurring

import (
	"fmt"
	"strings"
	"time"

	"github.com/KHUSHWANTsRathore11/driftgate/pkg/loop"
)

// Policy decides when a recurring task runs again.
//
// Next receives what the last cycle reported: whether it made progress and
// whether it failed.
type Policy interface {
	Next(updated bool, err error) loop.Next
	String() string
}

// ParsePolicy reads a policy expression from the command line.
//
// Grammar: "forever", "forever:COOLDOWN" (COOLDOWN is a time.Duration) or
// "backlog".
func ParsePolicy(s string) (Policy, error) {
	name, param, hasParam := strings.Cut(s, ":")
	switch name {
	case "forever":
		if !hasParam || param == "" {
			return Forever(0), nil
		}
		cooldown, err := time.ParseDuration(param)
		if err != nil {
			return nil, fmt.Errorf(`failed to parse: %s as "forever:COOLDOWN": %w`, s, err)
		}
		return Forever(cooldown), nil
	case "backlog":
		if hasParam {
			return nil, fmt.Errorf("backlog policy takes no parameter: %s", s)
		}
		return Backlog(), nil
	}
	return nil, fmt.Errorf("unknown policy name: %s (should be one of -- forever|backlog)", name)
}

// Forever never stops the loop: cycles with progress repeat at once,
// idle cycles wait out the cooldown first.
func Forever(cooldown time.Duration) Policy {
	return forever(cooldown)
}

type forever time.Duration

func (f forever) String() string {
	return fmt.Sprintf("forever:%s", time.Duration(f).String())
}

func (f forever) Next(updated bool, err error) loop.Next {
	if updated {
		return loop.Continue(0)
	}
	return loop.Continue(time.Duration(f))
}

// Backlog drains: cycles with progress repeat at once, and the first idle
// cycle ends the loop.
func Backlog() Policy {
	return drainBacklog
}

type backlog struct{}

var drainBacklog = backlog{}

func (backlog) String() string {
	return "backlog"
}

func (backlog) Next(updated bool, err error) loop.Next {
	if updated {
		return loop.Continue(0)
	}
	return loop.Break(nil)
}

// UntilError stops the loop at the first failed cycle, carrying the error
// out; otherwise the base policy decides.
func UntilError(base Policy) Policy {
	return untilError{base: base}
}

type untilError struct {
	base Policy
}

func (u untilError) String() string {
	return fmt.Sprintf("%s (until error)", u.base.String())
}

func (u untilError) Next(updated bool, err error) loop.Next {
	if err != nil {
		return loop.Break(err)
	}
	return u.base.Next(updated, err)
}
