package db

import (
	"context"
	"time"

	"github.com/KHUSHWANTsRathore11/driftgate/pkg/domain"
)

// read-only view on the fleet's feature observations.
//
// Ingestion is owned by the data platform; this side only ever reads.
type SampleInterface interface {
	// Read collects one unit's observations of one feature in
	// [start, end), ordered by time.
	//
	// An empty window yields a sample with no values, not an error.
	Read(ctx context.Context, unitId string, feature string, start, end time.Time) (domain.FeatureSample, error)

	// Units lists every unit id with at least one observation.
	Units(ctx context.Context) ([]string, error)
}

type Interface interface {
	Samples() SampleInterface
}
