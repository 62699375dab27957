package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// contextObjectKey holds the object a detail middleware resolved for the
// request (the target account, student, ...).
const contextObjectKey = "object"

var errObjNotFoundInCtx = errors.New("object not found in echo.Context")

// roleMiddleware gates a route on a capability set: the authenticated
// caller must hold at least one of the given roles.
func roleMiddleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			for _, role := range roles {
				if claims.hasRole(role) {
					return next(ctx)
				}
			}
			return errHttpForbidden
		}
	}
}
