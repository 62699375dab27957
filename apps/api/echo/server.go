package echoapi

import (
	"context"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/Vasu3050/schoolsite/core"
	"github.com/Vasu3050/schoolsite/core/account"
	"github.com/Vasu3050/schoolsite/core/attendance"
	"github.com/Vasu3050/schoolsite/core/class"
	"github.com/Vasu3050/schoolsite/core/diary"
	"github.com/Vasu3050/schoolsite/core/gallery"
	"github.com/Vasu3050/schoolsite/core/notice"
	"github.com/Vasu3050/schoolsite/core/student"
)

type (
	Options struct {
		Conf           *core.Config
		Logger         core.Logger
		DisableReqLogs bool

		AccountSvc    account.Service
		StudentSvc    student.Service
		ClassSvc      class.Service
		AttendanceSvc attendance.Service
		DiarySvc      diary.Service
		NoticeSvc     notice.Service
		GallerySvc    gallery.Service

		Validate   *validator.Validate
		Translator ut.Translator

		// SignalShutdown is called when a request surfaces an integrity
		// error the server cannot serve past.
		SignalShutdown func()
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts: opts,
		app:  echo.New(),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.opts.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	if len(conf.AllowedOrigins) > 0 {
		s.app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     conf.AllowedOrigins,
			AllowCredentials: true,
		}))
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.opts.Translator, s.opts.SignalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)

	authn := newAuthenticator(conf, s.opts.AccountSvc)
	v1 := s.app.Group("/api/v1")
	jwt := middleware.JWTWithConfig(authn.jwtConfig())

	registerAccountAPI(v1, jwt, authn, s.opts)
	registerStudentAPI(v1, jwt, s.opts)
	registerClassAPI(v1, jwt, s.opts)
	registerAttendanceAPI(v1, jwt, s.opts)
	registerDiaryAPI(v1, jwt, s.opts)
	registerNoticeAPI(v1, jwt, s.opts)
	registerGalleryAPI(v1, jwt, s.opts)
}

func (s *server) Start() {
	s.app.Logger.Fatal(s.app.Start(s.opts.Conf.Server.Addr))
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return respond(ctx, http.StatusOK, nil, "Welcome to SchoolSite API!")
}
