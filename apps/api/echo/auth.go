package echoapi

import (
	"net/http"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/Vasu3050/schoolsite/core"
	"github.com/Vasu3050/schoolsite/core/account"
)

// Token kinds carried in Claims; a refresh token is never accepted where
// an access token is expected and vice versa.
const (
	tokenAccess  = "access"
	tokenRefresh = "refresh"
)

const (
	contextTokenKey   = "accountToken"
	contextAccountKey = "account"

	accessCookieName  = "token"
	refreshCookieName = "refreshToken"
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	Kind  string   `json:"kind"`
	Name  string   `json:"name,omitempty"`
	Email string   `json:"email,omitempty"`
	Roles []string `json:"roles,omitempty"`
}

func (c *Claims) hasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (c *Claims) isAdmin() bool { return c.hasRole(account.RoleAdmin) }

// TokenPair is one issued access + refresh token set.
type TokenPair struct {
	Access  string `json:"token"`
	Refresh string `json:"refreshToken"`
}

type authenticator struct {
	conf *core.Config
	svc  account.Service
}

func newAuthenticator(conf *core.Config, svc account.Service) *authenticator {
	return &authenticator{conf: conf, svc: svc}
}

func (a *authenticator) jwtConfig() middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    a.conf.SecretKey,
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    contextTokenKey,
		Claims:        new(Claims),
		// refresh tokens are not a free pass into authed endpoints
		SuccessHandler: func(ctx echo.Context) {
			if claims, err := getContextClaims(ctx); err == nil && claims.Kind != tokenAccess {
				ctx.Set(contextTokenKey, nil)
			}
		},
	}
}

func (a *authenticator) claims(acc account.Account, kind string, expiry time.Duration) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    a.conf.AppName,
			Subject:   acc.ID,
			ExpiresAt: now.Add(expiry).Unix(),
			IssuedAt:  now.Unix(),
		},
		Kind:  kind,
		Name:  acc.Name,
		Email: acc.Email,
		Roles: acc.Roles,
	}
}

// generateToken signs claims into a compact JWT.
func (a *authenticator) generateToken(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString(a.conf.SecretKey)
	return ss, errors.Wrap(err, "signing token")
}

// issuePair generates both tokens and persists the refresh token on the
// account: at most one refresh token is active per account.
func (a *authenticator) issuePair(ctx echo.Context, acc account.Account) (TokenPair, error) {
	access, err := a.generateToken(a.claims(acc, tokenAccess, a.conf.Server.AccessTokenExpiry))
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := a.generateToken(a.claims(acc, tokenRefresh, a.conf.Server.RefreshTokenExpiry))
	if err != nil {
		return TokenPair{}, err
	}
	if err = a.svc.StoreRefreshToken(ctx.Request().Context(), acc.ID, refresh); err != nil {
		return TokenPair{}, errors.Wrap(err, "storing refresh token")
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

// authenticate verifies credentials: lookup by name or email, the
// requested role must be on the account and the password must match.
func (a *authenticator) authenticate(ctx echo.Context, nameOrEmail, password, role string) (account.Account, error) {
	acc, err := a.svc.GetByNameOrEmail(ctx.Request().Context(), nameOrEmail)
	if err != nil {
		if errors.Cause(err) == account.ErrNotFound {
			return account.Account{}, errAuthenticationFailed
		}
		return account.Account{}, errors.Wrap(err, "finding account by name or email")
	}
	if !acc.HasRole(role) {
		return account.Account{}, errAuthenticationFailed
	}
	if acc.IsBlocked() {
		return account.Account{}, errAccountBlocked
	}
	if !acc.IsActive() {
		return account.Account{}, errAccountPending
	}
	if err = acc.CheckPassword(password); err != nil {
		return account.Account{}, errAuthenticationFailed
	}
	return acc, nil
}

// refresh validates a refresh token (signature, kind, and equality with
// the stored token) and rotates the pair.
func (a *authenticator) refresh(ctx echo.Context, tokenStr string) (account.Account, TokenPair, error) {
	claims := new(Claims)
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.conf.SecretKey, nil
	})
	if err != nil || !token.Valid || claims.Kind != tokenRefresh {
		return account.Account{}, TokenPair{}, errRefreshInvalid
	}

	acc, err := a.svc.GetByID(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return account.Account{}, TokenPair{}, errRefreshInvalid
	}
	if acc.RefreshToken != tokenStr {
		return account.Account{}, TokenPair{}, errRefreshInvalid
	}
	if acc.IsBlocked() {
		return account.Account{}, TokenPair{}, errAccountBlocked
	}

	pair, err := a.issuePair(ctx, acc)
	return acc, pair, err
}

// setAuthCookies attaches both tokens as hardened cookies.
func (a *authenticator) setAuthCookies(ctx echo.Context, pair TokenPair) {
	ctx.SetCookie(authCookie(accessCookieName, pair.Access, a.conf.Server.AccessTokenExpiry))
	ctx.SetCookie(authCookie(refreshCookieName, pair.Refresh, a.conf.Server.RefreshTokenExpiry))
}

func (a *authenticator) clearAuthCookies(ctx echo.Context) {
	ctx.SetCookie(authCookie(accessCookieName, "", -time.Hour))
	ctx.SetCookie(authCookie(refreshCookieName, "", -time.Hour))
}

func authCookie(name, value string, maxAge time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  time.Now().Add(maxAge),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
}

// GetAccountClaims builds access claims for acc; exported for tests.
func GetAccountClaims(conf *core.Config, acc account.Account) *Claims {
	a := &authenticator{conf: conf}
	return a.claims(acc, tokenAccess, conf.Server.AccessTokenExpiry)
}

// GenerateToken signs claims with conf's secret key; exported for tests.
func GenerateToken(conf *core.Config, claims *Claims) (string, error) {
	a := &authenticator{conf: conf}
	return a.generateToken(claims)
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// getContextAccount resolves and caches the acting account.
func getContextAccount(ctx echo.Context, svc account.Service) (account.Account, error) {
	if acc, ok := ctx.Get(contextAccountKey).(account.Account); ok {
		return acc, nil
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return account.Account{}, err
	}
	acc, err := svc.GetByID(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return account.Account{}, errors.Wrap(err, "finding account by ID")
	}
	ctx.Set(contextAccountKey, acc)
	return acc, nil
}
