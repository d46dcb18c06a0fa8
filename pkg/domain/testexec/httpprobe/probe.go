package httpprobe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/KHUSHWANTsRathore11/driftgate/pkg/domain"
	"github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/testexec"
)

// probe payload sent to the scoring endpoint. One plausible reading per
// feature; the point is a successful round trip, not forecast quality.
type probeRequest struct {
	UnitId             string             `json:"unitId"`
	ArtifactVersion    string             `json:"artifactVersion"`
	EnvironmentVersion string             `json:"environmentVersion"`
	Features           map[string]float64 `json:"features"`
}

type probeResponse struct {
	Prediction *float64 `json:"prediction"`
}

type probe struct {
	// scoring endpoint root; unit id is appended as a path segment.
	base     string
	features map[string]float64
	client   *http.Client
}

type Option func(*probe) *probe

func WithClient(c *http.Client) Option {
	return func(p *probe) *probe {
		p.client = c
		return p
	}
}

// New returns an Interface probing "{base}/{unit}/score" with the given
// synthetic feature readings.
func New(base string, features map[string]float64, options ...Option) testexec.Interface {
	p := &probe{
		base:     base,
		features: features,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
	for _, option := range options {
		p = option(p)
	}
	return p
}

func (p *probe) Run(ctx context.Context, unitId string, artifactVersion, environmentVersion string) error {
	body, err := json.Marshal(probeRequest{
		UnitId:             unitId,
		ArtifactVersion:    artifactVersion,
		EnvironmentVersion: environmentVersion,
		Features:           p.features,
	})
	if err != nil {
		return domain.TestExecution{
			UnitId: unitId, Detail: "encoding probe payload", Transient: false, Cause: err,
		}
	}

	url := fmt.Sprintf("%s/%s/score", p.base, unitId)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return domain.TestExecution{
			UnitId: unitId, Detail: "building probe request", Transient: false, Cause: err,
		}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		// network trouble. The deployment may just not be ready yet.
		return domain.TestExecution{
			UnitId: unitId, Detail: err.Error(), Transient: true, Cause: err,
		}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fallthrough to payload check
	case 500 <= resp.StatusCode:
		return domain.TestExecution{
			UnitId:    unitId,
			Detail:    fmt.Sprintf("scoring endpoint answered %s", resp.Status),
			Transient: true,
		}
	default:
		return domain.TestExecution{
			UnitId:    unitId,
			Detail:    fmt.Sprintf("scoring endpoint answered %s", resp.Status),
			Transient: false,
		}
	}

	var pr probeResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil || pr.Prediction == nil {
		return domain.TestExecution{
			UnitId: unitId, Detail: "response carries no prediction", Transient: false, Cause: err,
		}
	}
	return nil
}
