package releases

import (
	"time"

	"github.com/KHUSHWANTsRathore11/driftgate/pkg/cmp"
	"github.com/KHUSHWANTsRathore11/driftgate/pkg/domain"
)

type Summary struct {
	AttemptId          string    `json:"attemptId"`
	UnitId             string    `json:"unitId"`
	ArtifactVersion    string    `json:"artifactVersion"`
	EnvironmentVersion string    `json:"environmentVersion"`
	State              string    `json:"state"`
	BatchId            string    `json:"batchId,omitempty"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

func ComposeSummary(r domain.ReleaseBody) Summary {
	return Summary{
		AttemptId:          r.AttemptId,
		UnitId:             r.UnitId,
		ArtifactVersion:    r.ArtifactVersion,
		EnvironmentVersion: r.EnvironmentVersion,
		State:              r.State.String(),
		BatchId:            r.BatchId,
		UpdatedAt:          r.UpdatedAt,
	}
}

func (s Summary) Equal(o Summary) bool {
	return s.AttemptId == o.AttemptId &&
		s.UnitId == o.UnitId &&
		s.ArtifactVersion == o.ArtifactVersion &&
		s.EnvironmentVersion == o.EnvironmentVersion &&
		s.State == o.State &&
		s.BatchId == o.BatchId &&
		s.UpdatedAt.Equal(o.UpdatedAt)
}

type HistoryEntry struct {
	State       string    `json:"state"`
	Timestamp   time.Time `json:"timestamp"`
	Actor       string    `json:"actor"`
	EvidenceRef string    `json:"evidenceRef,omitempty"`
	Reason      string    `json:"reason,omitempty"`
}

func (h HistoryEntry) Equal(o HistoryEntry) bool {
	return h.State == o.State &&
		h.Timestamp.Equal(o.Timestamp) &&
		h.Actor == o.Actor &&
		h.EvidenceRef == o.EvidenceRef &&
		h.Reason == o.Reason
}

type Detail struct {
	Summary
	History []HistoryEntry `json:"history"`
}

func ComposeDetail(r domain.Release) Detail {
	history := make([]HistoryEntry, 0, len(r.History))
	for _, h := range r.History {
		history = append(history, HistoryEntry{
			State:       h.State.String(),
			Timestamp:   h.Timestamp,
			Actor:       h.Actor,
			EvidenceRef: h.EvidenceRef,
			Reason:      h.Reason,
		})
	}
	return Detail{
		Summary: ComposeSummary(r.ReleaseBody),
		History: history,
	}
}

func (d Detail) Equal(o Detail) bool {
	return d.Summary.Equal(o.Summary) &&
		cmp.SliceEqWith(d.History, o.History, HistoryEntry.Equal)
}

// request body to open a release attempt for a freshly trained artifact.
type OpenRequest struct {
	UnitId             string `json:"unitId"`
	ArtifactVersion    string `json:"artifactVersion"`
	EnvironmentVersion string `json:"environmentVersion"`
}

type Opened struct {
	AttemptId string `json:"attemptId"`
}
