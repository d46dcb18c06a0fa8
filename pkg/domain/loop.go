package domain

import (
	"errors"
	"fmt"
)

type LoopType string

const (
	DriftScan         LoopType = "drift_scan"
	ReleaseManagement LoopType = "release_management"
)

func (lt LoopType) String() string {
	return string(lt)
}

func (lt LoopType) IsKnown() bool {
	switch lt {
	case DriftScan, ReleaseManagement:
		return true
	default:
		return false
	}
}

func AsLoopType(s string) (LoopType, error) {
	l := LoopType(s)
	if l.IsKnown() {
		return l, nil
	}
	return l, fmt.Errorf(`%w: "%s"`, ErrUnknownLoopType, s)
}

var ErrUnknownLoopType = errors.New("unknown loop type")
