package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Vasu3050/schoolsite/core"
	"github.com/Vasu3050/schoolsite/core/account"
	"github.com/Vasu3050/schoolsite/core/gallery"
)

type galleryApi struct {
	svc gallery.Service
}

func registerGalleryAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := galleryApi{svc: opts.GallerySvc}

	gg := g.Group("/gallery", jwt)
	staff := roleMiddleware(account.RoleAdmin, account.RoleTeacher)

	gg.POST("/upload", api.upload(false), staff)
	gg.POST("/upload-event", api.upload(true), staff)
	gg.GET("", api.queryAll, roleMiddleware(account.AllRoles...))
	gg.GET("/manage", api.manage, staff)
	gg.DELETE("", api.destroyMultiple, staff)

	gg.GET("/:id", api.retrieve, staff)
	gg.PATCH("/:id", api.edit, staff)
	gg.DELETE("/:id", api.destroy, staff)
}

// upload accepts a multipart batch: "files" parts paired positionally
// with "titles" values.
func (api *galleryApi) upload(event bool) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		claims, err := getContextClaims(ctx)
		if err != nil {
			return err
		}

		form, err := ctx.MultipartForm()
		if err != nil {
			return core.NewValidationError(errors.New("multipart form data expected"))
		}
		files := form.File["files"]
		titles := form.Value["titles"]
		if len(files) == 0 {
			return gallery.ErrNoFiles
		}

		uploads := make([]gallery.Upload, 0, len(files))
		cleanups := make([]func(), 0, len(files))
		defer func() {
			for _, c := range cleanups {
				c()
			}
		}()
		for i, fh := range files {
			mf, cleanup, err := openFormFile(fh)
			if err != nil {
				return err
			}
			cleanups = append(cleanups, cleanup)
			up := gallery.Upload{File: *mf}
			if i < len(titles) {
				up.Title = titles[i]
			}
			uploads = append(uploads, up)
		}

		items, err := api.svc.Upload(ctx.Request().Context(), claims.Subject, event, uploads)
		if err != nil {
			return errors.Wrap(err, "uploading media")
		}
		return respond(ctx, http.StatusCreated, items, "media uploaded")
	}
}

func (api *galleryApi) queryAll(ctx echo.Context) error {
	res, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying gallery")
	}
	return respond(ctx, http.StatusOK, res, "")
}

func (api *galleryApi) manage(ctx echo.Context) error {
	var filter gallery.ManageFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to ManageFilter")
	}
	filter.Clean()

	infos, total, err := api.svc.Manage(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying gallery for management")
	}
	return respond(ctx, http.StatusOK, PagedData{
		Items:      infos,
		Pagination: core.NewPagination(filter.PageQuery, total),
	}, "")
}

func (api *galleryApi) retrieve(ctx echo.Context) error {
	it, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding gallery item")
	}
	return respond(ctx, http.StatusOK, it, "")
}

// edit replaces the title and/or the media file.
func (api *galleryApi) edit(ctx echo.Context) error {
	title := ctx.FormValue("title")

	var replacement *core.MediaFile
	if fh, err := ctx.FormFile("file"); err == nil {
		mf, cleanup, err := openFormFile(fh)
		if err != nil {
			return err
		}
		defer cleanup()
		replacement = mf
	}
	if title == "" && replacement == nil {
		return core.NewValidationError(errors.New("nothing to update"))
	}

	it, err := api.svc.Edit(ctx.Request().Context(), ctx.Param("id"), title, replacement)
	if err != nil {
		return errors.Wrap(err, "editing gallery item")
	}
	return respond(ctx, http.StatusOK, it, "gallery item updated")
}

func (api *galleryApi) destroy(ctx echo.Context) error {
	if _, err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting gallery item")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *galleryApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}
	if _, err := api.svc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting gallery items")
	}
	return ctx.NoContent(http.StatusNoContent)
}
