package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Vasu3050/schoolsite/core"
	"github.com/Vasu3050/schoolsite/core/account"
	"github.com/Vasu3050/schoolsite/core/diary"
)

type diaryApi struct {
	svc      diary.Service
	validate *validator.Validate
}

func registerDiaryAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := diaryApi{
		svc:      opts.DiarySvc,
		validate: opts.Validate,
	}

	dg := g.Group("/diary", jwt)

	dg.POST("", api.write, roleMiddleware(account.RoleTeacher, account.RoleParent))
	dg.GET("", api.query, roleMiddleware(account.AllRoles...))
	dg.PUT("/:id", api.update, roleMiddleware(account.AllRoles...))
	dg.DELETE("/:id", api.destroy, roleMiddleware(account.AllRoles...))
}

func (api *diaryApi) write(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data diary.NewEntry
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEntry")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	role := account.RoleTeacher
	if !claims.hasRole(account.RoleTeacher) {
		role = account.RoleParent
	}
	e, err := api.svc.Write(ctx.Request().Context(), claims.Subject, role, data)
	if err != nil {
		return errors.Wrap(err, "writing diary entry")
	}
	return respond(ctx, http.StatusCreated, e, "diary entry written")
}

func (api *diaryApi) query(ctx echo.Context) error {
	var filter diary.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	filter.Clean()

	entries, total, err := api.svc.Filter(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying diary entries")
	}
	return respond(ctx, http.StatusOK, PagedData{
		Items:      entries,
		Pagination: core.NewPagination(filter.PageQuery, total),
	}, "")
}

func (api *diaryApi) update(ctx echo.Context) error {
	e, err := api.authorOrAdmin(ctx)
	if err != nil {
		return err
	}

	var data diary.UpdateEntry
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateEntry")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	e, err = api.svc.Edit(ctx.Request().Context(), e.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating diary entry")
	}
	return respond(ctx, http.StatusOK, e, "diary entry updated")
}

func (api *diaryApi) destroy(ctx echo.Context) error {
	e, err := api.authorOrAdmin(ctx)
	if err != nil {
		return err
	}
	if _, err := api.svc.Delete(ctx.Request().Context(), e.ID); err != nil {
		return errors.Wrap(err, "deleting diary entry")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// authorOrAdmin loads the target entry; only its author or an admin may
// pass.
func (api *diaryApi) authorOrAdmin(ctx echo.Context) (diary.Entry, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return diary.Entry{}, err
	}
	e, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return diary.Entry{}, errors.Wrap(err, "finding diary entry")
	}
	if e.AuthorID != claims.Subject && !claims.isAdmin() {
		return diary.Entry{}, errHttpForbidden
	}
	return e, nil
}
