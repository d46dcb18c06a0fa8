package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/KHUSHWANTsRathore11/driftgate/cmd/gated/auth"
	apierr "github.com/KHUSHWANTsRathore11/driftgate/pkg/api/types/errors"
	apirollback "github.com/KHUSHWANTsRathore11/driftgate/pkg/api/types/rollbacks"
	"github.com/KHUSHWANTsRathore11/driftgate/pkg/domain"
	"github.com/labstack/echo/v4"
)

type Rollbacker interface {
	Rollback(ctx context.Context, target string, actor, reason string) error
}

func RollbackHandler(rollbacker Rollbacker) echo.HandlerFunc {

	return func(c echo.Context) error {
		c.Response().Header().Add("Content-Type", "application/json")

		req := apirollback.Request{}
		if err := c.Bind(&req); err != nil {
			return apierr.BadRequest("malformed request body", err)
		}
		if req.Target == "" || req.Reason == "" {
			return apierr.BadRequest(`"target" and "reason" are required`, nil)
		}

		err := rollbacker.Rollback(c.Request().Context(), req.Target, auth.Actor(c), req.Reason)
		if errors.Is(err, domain.ErrNoCheckpoint) {
			return apierr.Conflict(
				"no rollback checkpoint",
				apierr.WithAdvice("the unit never reached production; there is nothing to revert to"),
				apierr.WithError(err),
			)
		}
		if err != nil {
			return apierr.InternalServerError(err)
		}

		return c.NoContent(http.StatusNoContent)
	}
}
