package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Vasu3050/schoolsite/core"
	"github.com/Vasu3050/schoolsite/core/account"
)

type accountApi struct {
	svc        account.Service
	authn      *authenticator
	validate   *validator.Validate
	translator ut.Translator
}

func registerAccountAPI(g *echo.Group, jwt echo.MiddlewareFunc, authn *authenticator, opts *Options) {
	api := accountApi{
		svc:        opts.AccountSvc,
		authn:      authn,
		validate:   opts.Validate,
		translator: opts.Translator,
	}

	ug := g.Group("/users")

	// un-authed endpoints
	ug.POST("/register", api.register)
	ug.POST("/login", api.login)
	ug.POST("/token-refresh", api.refreshToken)

	// authed endpoints
	ag := ug.Group("", jwt)
	ag.POST("/logout", api.logout)
	ag.POST("/admin-register", api.registerAdmin, roleMiddleware(account.RoleAdmin))
	ag.POST("/approve/:id", api.approve, roleMiddleware(account.RoleAdmin))
	ag.POST("/reject/:id", api.reject, roleMiddleware(account.RoleAdmin))
	ag.GET("", api.query, roleMiddleware(account.RoleAdmin))
	ag.DELETE("", api.destroyMultiple, roleMiddleware(account.RoleAdmin))
	ag.GET("/roles", api.queryRoles, roleMiddleware(account.RoleAdmin))

	// detail endpoints: self or admin
	dg := ag.Group("/:id", selfOrAdminMiddleware(api.svc))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy, roleMiddleware(account.RoleAdmin))
}

// Handlers

func (api *accountApi) registerAdmin(ctx echo.Context) error {
	var data account.NewAdmin
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAdmin")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	acc, err := api.svc.RegisterAdmin(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "registering admin")
	}
	return respond(ctx, http.StatusCreated, acc, "admin account registered")
}

func (api *accountApi) register(ctx echo.Context) error {
	var data account.NewAccount
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAccount")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	acc, err := api.svc.Register(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "registering account")
	}
	return respond(ctx, http.StatusCreated, acc, "registration received; awaiting approval")
}

func (api *accountApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	acc, err := api.authn.authenticate(ctx, data.Name, data.Password, data.Role)
	if err != nil {
		return err
	}
	pair, err := api.authn.issuePair(ctx, acc)
	if err != nil {
		return errors.Wrap(err, "issuing tokens")
	}
	api.authn.setAuthCookies(ctx, pair)
	return respond(ctx, http.StatusOK, LoginResponse{Account: acc, TokenPair: pair}, "login successful")
}

func (api *accountApi) refreshToken(ctx echo.Context) error {
	var data RefreshRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RefreshRequest")
	}
	if data.RefreshToken == "" {
		// fall back to the cookie
		if c, err := ctx.Cookie(refreshCookieName); err == nil {
			data.RefreshToken = c.Value
		}
	}
	if data.RefreshToken == "" {
		return errRefreshInvalid
	}

	acc, pair, err := api.authn.refresh(ctx, data.RefreshToken)
	if err != nil {
		return err
	}
	api.authn.setAuthCookies(ctx, pair)
	return respond(ctx, http.StatusOK, LoginResponse{Account: acc, TokenPair: pair}, "token refreshed")
}

func (api *accountApi) logout(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.ClearRefreshToken(ctx.Request().Context(), claims.Subject); err != nil {
		return errors.Wrap(err, "clearing refresh token")
	}
	api.authn.clearAuthCookies(ctx)
	return respond(ctx, http.StatusOK, nil, "logged out")
}

func (api *accountApi) approve(ctx echo.Context) error {
	acc, err := api.svc.Approve(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "approving account")
	}
	return respond(ctx, http.StatusOK, acc, "account approved")
}

func (api *accountApi) reject(ctx echo.Context) error {
	if err := api.svc.Reject(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "rejecting account")
	}
	return respond(ctx, http.StatusOK, nil, "account rejected")
}

func (api *accountApi) query(ctx echo.Context) error {
	var filter account.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	filter.Clean()

	accs, total, err := api.svc.Filter(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying accounts")
	}
	return respond(ctx, http.StatusOK, PagedData{
		Items:      accs,
		Pagination: core.NewPagination(filter.PageQuery, total),
	}, "")
}

func (api *accountApi) retrieve(ctx echo.Context) error {
	acc, ok := ctx.Get(contextObjectKey).(account.Account)
	if !ok {
		return errors.Wrap(errObjNotFoundInCtx, "retrieving object from context")
	}
	return respond(ctx, http.StatusOK, acc, "")
}

func (api *accountApi) update(ctx echo.Context) error {
	acc, ok := ctx.Get(contextObjectKey).(account.Account)
	if !ok {
		return errors.Wrap(errObjNotFoundInCtx, "retrieving object from context")
	}

	var data account.UpdateAccount
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateAccount")
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	if !claims.isAdmin() {
		// roles and status are admin-only fields
		if data.Roles != nil || data.Status != "" {
			return errHttpForbidden
		}
	}
	if err := data.Validate(acc, api.validate); err != nil {
		return err
	}

	acc, err = api.svc.Update(ctx.Request().Context(), acc.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating account")
	}
	return respond(ctx, http.StatusOK, acc, "account updated")
}

func (api *accountApi) destroy(ctx echo.Context) error {
	acc, ok := ctx.Get(contextObjectKey).(account.Account)
	if !ok {
		return errors.Wrap(errObjNotFoundInCtx, "retrieving object from context")
	}

	// callers cannot delete themselves
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	if acc.ID == claims.Subject {
		return errHttpForbidden
	}

	if err := api.svc.Delete(ctx.Request().Context(), acc.ID); err != nil {
		return errors.Wrap(err, "deleting account")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *accountApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	for _, id := range query.IDs {
		if id == claims.Subject {
			return errHttpForbidden
		}
	}

	if err := api.svc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting accounts")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *accountApi) queryRoles(ctx echo.Context) error {
	return respond(ctx, http.StatusOK, account.AllRoles, "")
}

// selfOrAdminMiddleware loads the target account into the context when
// the caller is the target or an admin; 404 otherwise.
func selfOrAdminMiddleware(svc account.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}

			if ctx.Param("id") == claims.Subject || claims.isAdmin() {
				if acc, err := svc.GetByID(ctx.Request().Context(), ctx.Param("id")); err == nil {
					ctx.Set(contextObjectKey, acc)
					return next(ctx)
				} else if errors.Cause(err) != account.ErrNotFound {
					return errors.Wrap(err, "finding account by ID")
				}
			}
			return errHttpNotFound
		}
	}
}

type (
	LoginRequest struct {
		Name     string `json:"name" validate:"required"`
		Password string `json:"password" validate:"required"`
		Role     string `json:"role" validate:"required,userrole"`
	}

	LoginResponse struct {
		Account account.Account `json:"user"`
		TokenPair
	}

	RefreshRequest struct {
		RefreshToken string `json:"refreshToken"`
	}

	DestroyMultipleRequest struct {
		IDs []string `query:"id"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Name = core.CleanString(lr.Name)
	lr.Role = core.CleanString(lr.Role, true /* lower */)
	return validate.Struct(lr)
}
