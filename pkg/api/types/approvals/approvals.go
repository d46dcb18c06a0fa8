package approvals

import (
	"github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/gate"
)

type Pending struct {
	Key                string `json:"key"`
	UnitId             string `json:"unitId"`
	ArtifactVersion    string `json:"artifactVersion"`
	EnvironmentVersion string `json:"environmentVersion"`
	Stage              string `json:"stage"`
	Detail             string `json:"detail,omitempty"`
}

func ComposePending(r gate.Request) Pending {
	return Pending{
		Key:                r.Key(),
		UnitId:             r.UnitId,
		ArtifactVersion:    r.ArtifactVersion,
		EnvironmentVersion: r.EnvironmentVersion,
		Stage:              string(r.Stage),
		Detail:             r.Detail,
	}
}

func (p Pending) Equal(o Pending) bool {
	return p == o
}

// request body answering a pending approval. The actor is taken from the
// caller's credential, not from the body.
type Resolution struct {
	Approved    bool   `json:"approved"`
	EvidenceRef string `json:"evidenceRef,omitempty"`
	Reason      string `json:"reason,omitempty"`
}
