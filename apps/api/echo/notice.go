package echoapi

import (
	"mime/multipart"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Vasu3050/schoolsite/core"
	"github.com/Vasu3050/schoolsite/core/account"
	"github.com/Vasu3050/schoolsite/core/notice"
)

type noticeApi struct {
	svc      notice.Service
	validate *validator.Validate
}

func registerNoticeAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := noticeApi{
		svc:      opts.NoticeSvc,
		validate: opts.Validate,
	}

	ng := g.Group("/notices", jwt)

	ng.POST("", api.publish, roleMiddleware(account.RoleAdmin, account.RoleTeacher))
	ng.GET("", api.queryAll, roleMiddleware(account.AllRoles...))
	ng.PATCH("/:id", api.update, roleMiddleware(account.RoleAdmin, account.RoleTeacher))
	ng.DELETE("/:id", api.destroy, roleMiddleware(account.RoleAdmin, account.RoleTeacher))
}

// publish accepts multipart form data: title, description, an optional
// expiry and an optional media file.
func (api *noticeApi) publish(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	data := notice.NewNotice{
		Title:       ctx.FormValue("title"),
		Description: ctx.FormValue("description"),
	}
	if exp := ctx.FormValue("expiry"); exp != "" {
		t, err := time.Parse(time.RFC3339, exp)
		if err != nil {
			return core.NewValidationError(nil, core.FieldError{Field: "expiry", Error: "must be an RFC3339 timestamp"})
		}
		data.ExpiresAt = &t
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	var attachment *core.MediaFile
	if fh, err := ctx.FormFile("media"); err == nil {
		f, cleanup, err := openFormFile(fh)
		if err != nil {
			return err
		}
		defer cleanup()
		attachment = f
	}

	n, err := api.svc.Publish(ctx.Request().Context(), claims.Subject, data, attachment)
	if err != nil {
		return errors.Wrap(err, "publishing notice")
	}
	return respond(ctx, http.StatusCreated, n, "notice published")
}

func (api *noticeApi) queryAll(ctx echo.Context) error {
	notices, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying notices")
	}
	return respond(ctx, http.StatusOK, notices, "")
}

func (api *noticeApi) update(ctx echo.Context) error {
	var data notice.UpdateNotice
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateNotice")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	n, err := api.svc.Edit(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating notice")
	}
	return respond(ctx, http.StatusOK, n, "notice updated")
}

func (api *noticeApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting notice")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// openFormFile adapts a multipart file header into a core.MediaFile.
// cleanup must be called once the file has been consumed.
func openFormFile(fh *multipart.FileHeader) (*core.MediaFile, func(), error) {
	f, err := fh.Open()
	if err != nil {
		return nil, nil, errors.Wrap(err, "opening uploaded file")
	}
	mf := &core.MediaFile{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Body:        f,
	}
	return mf, func() { _ = f.Close() }, nil
}
