package handlers

import (
	"context"
	"net/http"

	apierr "github.com/KHUSHWANTsRathore11/driftgate/pkg/api/types/errors"
	apirelease "github.com/KHUSHWANTsRathore11/driftgate/pkg/api/types/releases"
	"github.com/KHUSHWANTsRathore11/driftgate/pkg/domain"
	krelease "github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/release/db"
	kstrings "github.com/KHUSHWANTsRathore11/driftgate/pkg/utils/strings"
	"github.com/labstack/echo/v4"
)

func FindReleaseHandler(dbRelease krelease.ReleaseInterface) echo.HandlerFunc {

	return func(c echo.Context) error {
		c.Response().Header().Add("Content-Type", "application/json")

		query := domain.ReleaseFindQuery{
			UnitId:  kstrings.SplitIfNotEmpty(c.QueryParam("unit"), ","),
			State:   []domain.ReleaseState{},
			BatchId: c.QueryParam("batch"),
		}
		for _, p := range kstrings.SplitIfNotEmpty(c.QueryParam("state"), ",") {
			s, err := domain.AsReleaseState(p)
			if err != nil {
				return apierr.BadRequest(
					`"state" should be a comma-separated list of release states`,
					err,
				)
			}
			query.State = append(query.State, s)
		}

		ctx := c.Request().Context()

		attemptIds, err := dbRelease.Find(ctx, query)
		if err != nil {
			return apierr.InternalServerError(err)
		}

		result, err := dbRelease.Get(ctx, attemptIds)
		if err != nil {
			return apierr.InternalServerError(err)
		}

		resp := make([]apirelease.Detail, 0, len(result))
		for _, attemptId := range attemptIds {
			resp = append(resp, apirelease.ComposeDetail(result[attemptId]))
		}

		return c.JSON(http.StatusOK, resp)
	}
}

func GetReleaseHandler(dbRelease krelease.ReleaseInterface, paramAttemptId string) echo.HandlerFunc {

	return func(c echo.Context) error {
		c.Response().Header().Add("Content-Type", "application/json")
		attemptId := c.Param(paramAttemptId)
		ctx := c.Request().Context()

		rels, err := dbRelease.Get(ctx, []string{attemptId})
		if err != nil {
			return apierr.InternalServerError(err)
		}

		rel, ok := rels[attemptId]
		if !ok {
			return apierr.NotFound()
		}

		return c.JSON(http.StatusOK, apirelease.ComposeDetail(rel))
	}
}

type ReleaseOpener interface {
	Open(ctx context.Context, unitId, artifactVersion, environmentVersion string) (string, error)
}

func OpenReleaseHandler(opener ReleaseOpener) echo.HandlerFunc {

	return func(c echo.Context) error {
		c.Response().Header().Add("Content-Type", "application/json")

		req := apirelease.OpenRequest{}
		if err := c.Bind(&req); err != nil {
			return apierr.BadRequest("malformed request body", err)
		}
		if req.UnitId == "" || req.ArtifactVersion == "" || req.EnvironmentVersion == "" {
			return apierr.BadRequest(
				`"unitId", "artifactVersion" and "environmentVersion" are all required`,
				nil,
			)
		}

		attemptId, err := opener.Open(
			c.Request().Context(),
			req.UnitId, req.ArtifactVersion, req.EnvironmentVersion,
		)
		if err != nil {
			return apierr.InternalServerError(err)
		}

		return c.JSON(http.StatusOK, apirelease.Opened{AttemptId: attemptId})
	}
}
