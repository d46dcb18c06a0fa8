package testexec

import (
	"context"
)

// runs synthetic inference against a test deployment.
type Interface interface {
	// Run sends the probe payload to the unit's test deployment of the
	// given artifact and environment and verifies the response.
	//
	// Failures come back as domain.TestExecution; its Transient flag
	// tells the caller whether retrying can help.
	Run(ctx context.Context, unitId string, artifactVersion, environmentVersion string) error
}
