package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/Vasu3050/schoolsite/core"
	"github.com/Vasu3050/schoolsite/core/account"
	"github.com/Vasu3050/schoolsite/core/attendance"
	"github.com/Vasu3050/schoolsite/core/class"
	"github.com/Vasu3050/schoolsite/core/diary"
	"github.com/Vasu3050/schoolsite/core/gallery"
	"github.com/Vasu3050/schoolsite/core/notice"
	"github.com/Vasu3050/schoolsite/core/student"
)

var (
	errUnauthorized         = echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	errAuthenticationFailed = echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	errAccountBlocked       = echo.NewHTTPError(http.StatusForbidden, "account is blocked")
	errAccountPending       = echo.NewHTTPError(http.StatusForbidden, "account is pending approval")
	errRefreshInvalid       = echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired refresh token")
	errHttpForbidden        = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound         = echo.NewHTTPError(http.StatusNotFound, "not found")
)

// sentinelStatus maps domain errors onto HTTP statuses.
func sentinelStatus(err error) (int, bool) {
	switch err {
	case account.ErrNotFound, account.ErrNoSuchChild,
		student.ErrNotFound, class.ErrNotFound, attendance.ErrNotFound,
		diary.ErrNotFound, notice.ErrNotFound, gallery.ErrNotFound:
		return http.StatusNotFound, true
	case account.ErrEmailTaken, account.ErrRoleExists, account.ErrNotPending,
		student.ErrCodeTaken, class.ErrExists:
		return http.StatusConflict, true
	case account.ErrBlocked, attendance.ErrOutsideGeofence, attendance.ErrMarkerAbsent:
		return http.StatusForbidden, true
	case gallery.ErrNoFiles, gallery.ErrTooManyFiles:
		return http.StatusBadRequest, true
	}
	return 0, false
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that maps
// domain and validation errors onto the response envelope. signalShutdown
// is called whenever a core shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		cause := errors.Cause(err)
		if status, ok := sentinelStatus(cause); ok {
			code = status
			message = cause.Error()
		} else {
			switch origErr := cause.(type) {
			case *echo.HTTPError:
				if origErr == middleware.ErrJWTMissing {
					code = http.StatusUnauthorized
					message = origErr.Message
					break
				}
				if origErr.Internal != nil {
					if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
						origErr = herr
					}
				}
				code = origErr.Code
				message = origErr.Message
			case validator.ValidationErrors:
				fldErrs := make(map[string]string, len(origErr))
				for _, vErr := range origErr {
					fldErrs[vErr.Field()] = vErr.Translate(translator)
				}
				code = http.StatusBadRequest
				message = fldErrs
			case *core.ValidationError:
				if origErr.Fields != nil {
					fldErrs := make(map[string]string, len(origErr.Fields))
					for _, fErr := range origErr.Fields {
						fldErrs[fErr.Field] = fErr.Error
					}
					message = fldErrs
				} else {
					message = origErr.Error()
				}
				code = http.StatusBadRequest
			default: // any other error is a server error
				code = http.StatusInternalServerError
				msg := http.StatusText(http.StatusInternalServerError)
				message = msg

				var acc account.Account
				if claims, cErr := getContextClaims(ctx); cErr == nil {
					acc.ID = claims.Subject
					acc.Name = claims.Name
					acc.Email = claims.Email
				}
				logger.Error(msg, errors.Wrap(err, msg), acc)

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		if ctx.Echo().Debug {
			message = err.Error()
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, echo.Map{"statusCode": code, "message": message})
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
