package echoapi

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Vasu3050/schoolsite/core"
	"github.com/Vasu3050/schoolsite/core/account"
	"github.com/Vasu3050/schoolsite/core/attendance"
)

const dateLayout = "2006-01-02"

type attendanceApi struct {
	svc      attendance.Service
	validate *validator.Validate
}

func registerAttendanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := attendanceApi{
		svc:      opts.AttendanceSvc,
		validate: opts.Validate,
	}

	ag := g.Group("/attendance", jwt)

	ag.POST("/students/:id", api.markStudent, roleMiddleware(account.RoleAdmin, account.RoleTeacher))
	ag.POST("/staff", api.markStaff, roleMiddleware(account.RoleTeacher))
	ag.POST("/absent", api.markAbsent, roleMiddleware(account.RoleAdmin, account.RoleTeacher))
	ag.DELETE("/:id", api.unmark, roleMiddleware(account.RoleAdmin, account.RoleTeacher))

	ag.GET("/:kind/:id", api.retrieve, roleMiddleware(account.AllRoles...))
	ag.GET("/:kind/by-date/:date", api.byDate, roleMiddleware(account.RoleAdmin, account.RoleTeacher))
}

// markStudent records a present mark. Teachers must themselves be marked
// non-absent today; admin marks unconditionally.
func (api *attendanceApi) markStudent(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	rec, err := api.svc.MarkStudent(ctx.Request().Context(), claims.Subject, ctx.Param("id"), !claims.isAdmin())
	if err != nil {
		return errors.Wrap(err, "marking student attendance")
	}
	return respond(ctx, http.StatusCreated, rec, "attendance marked")
}

func (api *attendanceApi) markStaff(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data StaffCheckinRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StaffCheckinRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	rec, err := api.svc.MarkStaff(ctx.Request().Context(), claims.Subject, data.Status, data.Location)
	if err != nil {
		return errors.Wrap(err, "marking staff attendance")
	}
	return respond(ctx, http.StatusCreated, rec, "checked in")
}

func (api *attendanceApi) markAbsent(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data MarkAbsentRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to MarkAbsentRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	rec, err := api.svc.MarkAbsent(ctx.Request().Context(), claims.Subject, data.Kind, data.SubjectID)
	if err != nil {
		return errors.Wrap(err, "marking absent")
	}
	return respond(ctx, http.StatusCreated, rec, "marked absent")
}

func (api *attendanceApi) unmark(ctx echo.Context) error {
	rec, err := api.svc.Unmark(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "unmarking attendance")
	}
	return respond(ctx, http.StatusOK, rec, "attendance record removed")
}

func (api *attendanceApi) retrieve(ctx echo.Context) error {
	kind, err := bindKind(ctx)
	if err != nil {
		return err
	}
	rec, err := api.svc.GetBySubject(ctx.Request().Context(), kind, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding attendance record")
	}
	return respond(ctx, http.StatusOK, rec, "")
}

func (api *attendanceApi) byDate(ctx echo.Context) error {
	kind, err := bindKind(ctx)
	if err != nil {
		return err
	}
	day, err := time.Parse(dateLayout, ctx.Param("date"))
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "date", Error: "must be a date of the form YYYY-MM-DD"})
	}

	recs, err := api.svc.GetByDate(ctx.Request().Context(), kind, day)
	if err != nil {
		return errors.Wrap(err, "querying attendance by date")
	}
	return respond(ctx, http.StatusOK, recs, "")
}

func bindKind(ctx echo.Context) (string, error) {
	kind := ctx.Param("kind")
	if kind != attendance.KindStudent && kind != attendance.KindStaff {
		return "", core.NewValidationError(nil, core.FieldError{Field: "kind", Error: "must be student or staff"})
	}
	return kind, nil
}

type (
	StaffCheckinRequest struct {
		attendance.Location
		Status string `json:"status"`
	}

	MarkAbsentRequest struct {
		Kind      string `json:"kind" validate:"required"`
		SubjectID string `json:"subjectId" validate:"required"`
	}
)

func (sr *StaffCheckinRequest) Validate(validate *validator.Validate) error {
	sr.Status = core.CleanString(sr.Status, true /* lower */)
	return validate.Struct(sr)
}

func (mr *MarkAbsentRequest) Validate(validate *validator.Validate) error {
	mr.Kind = core.CleanString(mr.Kind, true /* lower */)
	if err := validate.Struct(mr); err != nil {
		return err
	}
	if mr.Kind != attendance.KindStudent && mr.Kind != attendance.KindStaff {
		return core.NewValidationError(nil, core.FieldError{Field: "kind", Error: "must be student or staff"})
	}
	return nil
}
