package batches

import (
	"github.com/KHUSHWANTsRathore11/driftgate/pkg/domain"
)

// request body proposing an environment rollout across the fleet.
type OpenRequest struct {
	FromVersion        string `json:"fromVersion"`
	ToVersion          string `json:"toVersion"`
	BackwardCompatible bool   `json:"backwardCompatible"`
	RequiresRetrain    bool   `json:"requiresRetrain"`
	Summary            string `json:"summary,omitempty"`
}

func (r OpenRequest) Change() domain.EnvironmentChange {
	return domain.EnvironmentChange{
		FromVersion:        r.FromVersion,
		ToVersion:          r.ToVersion,
		BackwardCompatible: r.BackwardCompatible,
		RequiresRetrain:    r.RequiresRetrain,
		Summary:            r.Summary,
	}
}

type Opened struct {
	BatchId    string   `json:"batchId"`
	AttemptIds []string `json:"attemptIds"`
}

// request body deciding a blocked batch. The actor is taken from the
// caller's credential.
type Resolution struct {
	// promote the passed subset (true), or abort the whole batch (false).
	Proceed     bool   `json:"proceed"`
	EvidenceRef string `json:"evidenceRef,omitempty"`
}
