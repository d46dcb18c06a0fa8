package auth

import (
	"strings"

	apierr "github.com/KHUSHWANTsRathore11/driftgate/pkg/api/types/errors"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const actorKey = "driftgate.actor"

// actor recorded when token auth is not configured.
const ActorAnonymous = "anonymous"

// ByToken authenticates requests with an HS256-signed bearer token and
// stores the token's subject as the acting operator.
//
// With an empty key, auth is off: every caller acts as ActorAnonymous.
func ByToken(key []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if len(key) == 0 {
				c.Set(actorKey, ActorAnonymous)
				return next(c)
			}

			header := c.Request().Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				return apierr.Unauthorized("send a bearer token", nil)
			}

			claims := &jwt.RegisteredClaims{}
			parsed, err := jwt.ParseWithClaims(
				token, claims,
				func(t *jwt.Token) (interface{}, error) { return key, nil },
				jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			)
			if err != nil || !parsed.Valid {
				return apierr.Unauthorized("invalid token", err)
			}
			if claims.Subject == "" {
				return apierr.Unauthorized("token carries no subject", nil)
			}

			c.Set(actorKey, claims.Subject)
			return next(c)
		}
	}
}

// Actor is the operator authenticated by ByToken, or "" outside of it.
func Actor(c echo.Context) string {
	if a, ok := c.Get(actorKey).(string); ok {
		return a
	}
	return ""
}
