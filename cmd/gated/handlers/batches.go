package handlers

import (
	"context"
	"errors"
	"net/http"
	"sort"

	"github.com/KHUSHWANTsRathore11/driftgate/cmd/gated/auth"
	apibatch "github.com/KHUSHWANTsRathore11/driftgate/pkg/api/types/batches"
	apierr "github.com/KHUSHWANTsRathore11/driftgate/pkg/api/types/errors"
	"github.com/KHUSHWANTsRathore11/driftgate/pkg/domain"
	kcheckpoint "github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/checkpoint/db"
	"github.com/labstack/echo/v4"
)

type BatchOpener interface {
	OpenBatch(ctx context.Context, change domain.EnvironmentChange, productionUnits []string) (string, []string, error)
}

// OpenBatchHandler classifies the proposed environment change and, when it
// is non-breaking, opens one release attempt per production unit.
//
// start is called with the new batch id once the records exist; the caller
// decides how the batch is driven to its test barrier.
func OpenBatchHandler(
	opener BatchOpener,
	dbCheckpoint kcheckpoint.CheckpointInterface,
	start func(batchId string),
) echo.HandlerFunc {

	return func(c echo.Context) error {
		c.Response().Header().Add("Content-Type", "application/json")

		req := apibatch.OpenRequest{}
		if err := c.Bind(&req); err != nil {
			return apierr.BadRequest("malformed request body", err)
		}
		if req.FromVersion == "" || req.ToVersion == "" {
			return apierr.BadRequest(`"fromVersion" and "toVersion" are required`, nil)
		}

		change, err := domain.Classify(req.Change())
		if errors.Is(err, domain.ErrClassificationConflict) {
			return apierr.BadRequest(
				"the change declaration contradicts itself; fix the declaration or review the change",
				err,
			)
		}
		if err != nil {
			return apierr.InternalServerError(err)
		}
		if change.Class.RequiresFleetRetrain() {
			return apierr.Conflict(
				"breaking environment change",
				apierr.WithAdvice("retrain the fleet; each unit releases on its own when its artifact is ready"),
			)
		}

		ctx := c.Request().Context()

		checkpoints, err := dbCheckpoint.CurrentAll(ctx)
		if err != nil {
			return apierr.InternalServerError(err)
		}
		units := make([]string, 0, len(checkpoints))
		for unitId := range checkpoints {
			units = append(units, unitId)
		}
		sort.Strings(units)

		batchId, attemptIds, err := opener.OpenBatch(ctx, change, units)
		if err != nil {
			return apierr.InternalServerError(err)
		}

		start(batchId)

		return c.JSON(http.StatusOK, apibatch.Opened{
			BatchId:    batchId,
			AttemptIds: attemptIds,
		})
	}
}

type BatchResolver interface {
	ResolveBatch(ctx context.Context, batchId string, proceed bool, actor, evidenceRef string) error
}

func ResolveBatchHandler(resolver BatchResolver, paramBatchId string) echo.HandlerFunc {

	return func(c echo.Context) error {
		c.Response().Header().Add("Content-Type", "application/json")
		batchId := c.Param(paramBatchId)

		req := apibatch.Resolution{}
		if err := c.Bind(&req); err != nil {
			return apierr.BadRequest("malformed request body", err)
		}

		err := resolver.ResolveBatch(
			c.Request().Context(), batchId, req.Proceed, auth.Actor(c), req.EvidenceRef,
		)
		if errors.Is(err, domain.ErrMissing) {
			return apierr.NotFound()
		}
		if err != nil {
			return apierr.InternalServerError(err)
		}

		return c.NoContent(http.StatusNoContent)
	}
}
