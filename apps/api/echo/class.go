package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Vasu3050/schoolsite/core/account"
	"github.com/Vasu3050/schoolsite/core/class"
)

type classApi struct {
	svc      class.Service
	validate *validator.Validate
}

func registerClassAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := classApi{
		svc:      opts.ClassSvc,
		validate: opts.Validate,
	}

	cg := g.Group("/classes", jwt)

	cg.POST("", api.create, roleMiddleware(account.RoleAdmin))
	cg.GET("", api.queryAll, roleMiddleware(account.AllRoles...))
	cg.DELETE("", api.destroyMultiple, roleMiddleware(account.RoleAdmin))
	cg.GET("/mine", api.myClasses, roleMiddleware(account.RoleTeacher))

	cg.GET("/:id", api.retrieve, roleMiddleware(account.AllRoles...))
	cg.PUT("/:id", api.update, roleMiddleware(account.RoleAdmin))
	cg.POST("/:id/status", api.toggleStatus, roleMiddleware(account.RoleAdmin))
}

func (api *classApi) create(ctx echo.Context) error {
	var data class.NewClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClass")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	c, err := api.svc.Create(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "creating class")
	}
	return respond(ctx, http.StatusCreated, c, "class created")
}

func (api *classApi) queryAll(ctx echo.Context) error {
	infos, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying classes")
	}
	return respond(ctx, http.StatusOK, infos, "")
}

func (api *classApi) myClasses(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	classes, err := api.svc.MyClasses(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "querying teacher classes")
	}
	return respond(ctx, http.StatusOK, classes, "")
}

func (api *classApi) retrieve(ctx echo.Context) error {
	info, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding class")
	}
	return respond(ctx, http.StatusOK, info, "")
}

func (api *classApi) update(ctx echo.Context) error {
	var data class.UpdateClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateClass")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	c, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating class")
	}
	return respond(ctx, http.StatusOK, c, "class updated")
}

func (api *classApi) toggleStatus(ctx echo.Context) error {
	c, err := api.svc.ToggleStatus(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "toggling class status")
	}
	return respond(ctx, http.StatusOK, c, "class status changed")
}

func (api *classApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.svc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting classes")
	}
	return ctx.NoContent(http.StatusNoContent)
}
