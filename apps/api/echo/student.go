package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Vasu3050/schoolsite/core"
	"github.com/Vasu3050/schoolsite/core/account"
	"github.com/Vasu3050/schoolsite/core/student"
)

type studentApi struct {
	svc        student.Service
	accountSvc account.Service
	validate   *validator.Validate
	translator ut.Translator
}

func registerStudentAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := studentApi{
		svc:        opts.StudentSvc,
		accountSvc: opts.AccountSvc,
		validate:   opts.Validate,
		translator: opts.Translator,
	}

	sg := g.Group("/students", jwt)

	sg.POST("", api.create, roleMiddleware(account.RoleAdmin))
	sg.GET("", api.query, roleMiddleware(account.RoleAdmin, account.RoleTeacher))
	sg.DELETE("", api.destroyMultiple, roleMiddleware(account.RoleAdmin))
	sg.GET("/children", api.children, roleMiddleware(account.RoleParent))

	sg.GET("/:id", api.retrieve)
	sg.PUT("/:id", api.update, roleMiddleware(account.RoleAdmin, account.RoleParent))
	sg.GET("/:id/guardians", api.guardians, roleMiddleware(account.RoleAdmin, account.RoleTeacher))
}

func (api *studentApi) create(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	st, err := api.svc.Add(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "adding student")
	}
	return respond(ctx, http.StatusCreated, st, "student registered")
}

func (api *studentApi) query(ctx echo.Context) error {
	var filter student.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	filter.Clean()

	sts, total, err := api.svc.Filter(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	return respond(ctx, http.StatusOK, PagedData{
		Items:      sts,
		Pagination: core.NewPagination(filter.PageQuery, total),
	}, "")
}

func (api *studentApi) children(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var filter student.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	filter.Clean()

	sts, total, err := api.svc.Children(ctx.Request().Context(), claims.Subject, filter)
	if err != nil {
		return errors.Wrap(err, "querying children")
	}
	return respond(ctx, http.StatusOK, PagedData{
		Items:      sts,
		Pagination: core.NewPagination(filter.PageQuery, total),
	}, "")
}

// retrieve serves admin and teachers unconditionally; parents only for
// their own linked children.
func (api *studentApi) retrieve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	st, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding student")
	}
	if !claims.isAdmin() && !claims.hasRole(account.RoleTeacher) {
		if !st.HasGuardian(claims.Subject) {
			return errHttpNotFound
		}
	}
	return respond(ctx, http.StatusOK, st, "")
}

func (api *studentApi) update(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data student.UpdateStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}
	if data.IsEmpty() {
		return core.NewValidationError(errors.New("nothing to update"))
	}

	if !claims.isAdmin() {
		// parents may only rename and fix the birth date, and only for
		// their own children
		if data.Grade != "" || data.Division != "" || data.Code != "" {
			return errHttpForbidden
		}
		st, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
		if err != nil {
			return errors.Wrap(err, "finding student")
		}
		if !st.HasGuardian(claims.Subject) {
			return errHttpNotFound
		}
	}

	if err := data.Validate(api.validate); err != nil {
		return err
	}
	st, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating student")
	}
	return respond(ctx, http.StatusOK, st, "student updated")
}

func (api *studentApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.svc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting students")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *studentApi) guardians(ctx echo.Context) error {
	st, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding student")
	}
	accs, err := api.accountSvc.GetByIDs(ctx.Request().Context(), st.GuardianIDs...)
	if err != nil {
		return errors.Wrap(err, "finding guardian accounts")
	}

	refs := make([]GuardianRef, 0, len(accs))
	for _, acc := range accs {
		refs = append(refs, GuardianRef{ID: acc.ID, Name: acc.Name, Email: acc.Email, Phone: acc.Phone})
	}
	return respond(ctx, http.StatusOK, refs, "")
}

// GuardianRef is the subset of a guardian account exposed to staff.
type GuardianRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}
