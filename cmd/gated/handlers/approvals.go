package handlers

import (
	"errors"
	"net/http"

	"github.com/KHUSHWANTsRathore11/driftgate/cmd/gated/auth"
	apiapproval "github.com/KHUSHWANTsRathore11/driftgate/pkg/api/types/approvals"
	apierr "github.com/KHUSHWANTsRathore11/driftgate/pkg/api/types/errors"
	"github.com/KHUSHWANTsRathore11/driftgate/pkg/domain"
	"github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/gate"
	"github.com/labstack/echo/v4"
)

func ListApprovalsHandler(resolver gate.Resolver) echo.HandlerFunc {

	return func(c echo.Context) error {
		c.Response().Header().Add("Content-Type", "application/json")

		pending, err := resolver.Pending(c.Request().Context())
		if err != nil {
			return apierr.InternalServerError(err)
		}

		resp := make([]apiapproval.Pending, 0, len(pending))
		for _, p := range pending {
			resp = append(resp, apiapproval.ComposePending(p))
		}

		return c.JSON(http.StatusOK, resp)
	}
}

func ResolveApprovalHandler(resolver gate.Resolver, paramKey string) echo.HandlerFunc {

	return func(c echo.Context) error {
		c.Response().Header().Add("Content-Type", "application/json")
		key := c.Param(paramKey)

		req := apiapproval.Resolution{}
		if err := c.Bind(&req); err != nil {
			return apierr.BadRequest("malformed request body", err)
		}
		if !req.Approved && req.Reason == "" {
			return apierr.BadRequest(`a denial needs a "reason"`, nil)
		}

		err := resolver.Resolve(c.Request().Context(), key, gate.Decision{
			Approved:    req.Approved,
			Actor:       auth.Actor(c),
			EvidenceRef: req.EvidenceRef,
			Reason:      req.Reason,
		})
		if errors.Is(err, domain.ErrMissing) {
			// already decided, withdrawn, or never requested.
			return apierr.NotFound()
		}
		if err != nil {
			return apierr.InternalServerError(err)
		}

		return c.NoContent(http.StatusNoContent)
	}
}
