package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"

	echoapi "github.com/Vasu3050/schoolsite/apps/api/echo"
	"github.com/Vasu3050/schoolsite/core"
	"github.com/Vasu3050/schoolsite/core/account"
	"github.com/Vasu3050/schoolsite/core/attendance"
	"github.com/Vasu3050/schoolsite/core/class"
	"github.com/Vasu3050/schoolsite/core/diary"
	"github.com/Vasu3050/schoolsite/core/gallery"
	"github.com/Vasu3050/schoolsite/core/notice"
	"github.com/Vasu3050/schoolsite/core/student"
	emailsvc "github.com/Vasu3050/schoolsite/services/email"
	logsvc "github.com/Vasu3050/schoolsite/services/logger"
	mediasvc "github.com/Vasu3050/schoolsite/services/media"
	"github.com/Vasu3050/schoolsite/storage/mongo"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up DB
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	db, err := mongo.Open(ctx, conf.Mongo)
	if err != nil {
		cancel()
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	if err = db.EnsureIndexes(ctx); err != nil {
		cancel()
		logger.Fatal(fmt.Sprintf("ensuring indexes: %v", err), err)
	}
	cancel()
	defer func() {
		if err = db.Close(context.Background()); err != nil {
			logger.Error(fmt.Sprintf("closing database: %v", err), err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	mediaSvc, err := mediasvc.NewOSSService(conf.OSS)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up media storage: %v", err), err)
	}

	accountRepo := mongo.NewAccountRepository(db)
	studentRepo := mongo.NewStudentRepository(db)

	accountSvc := account.NewService(accountRepo, studentRepo, mailSvc, conf)
	studentSvc := student.NewService(studentRepo)
	classSvc := class.NewService(mongo.NewClassRepository(db), accountSvc, studentSvc)
	attendanceSvc := attendance.NewService(mongo.NewAttendanceRepository(db), conf)
	diarySvc := diary.NewService(mongo.NewDiaryRepository(db))
	noticeSvc := notice.NewService(mongo.NewNoticeRepository(db), mediaSvc, logger)
	gallerySvc := gallery.NewService(mongo.NewGalleryRepository(db), accountSvc, mediaSvc, logger)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	account.InitValidators(validate, translator)
	student.InitValidators(validate, translator)
	class.InitValidators(validate, translator)
	diary.InitValidators(validate, translator)

	// =========================================================================
	// Start Expired Notice Sweep
	//
	// Attachments live outside the database so TTL indexes alone cannot
	// reclaim them.

	sweeper := cron.New()
	if _, err = sweeper.AddFunc("0 23 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		n, err := noticeSvc.PurgeExpired(ctx, time.Now())
		if err != nil {
			logger.Error(fmt.Sprintf("purging expired notices: %v", err), err)
			return
		}
		if n > 0 {
			logger.Info(fmt.Sprintf("purged %d expired notices", n))
		}
	}); err != nil {
		logger.Fatal(fmt.Sprintf("scheduling notice sweep: %v", err), err)
	}
	sweeper.Start()
	defer sweeper.Stop()

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugAddr, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	server := echoapi.NewServer(&echoapi.Options{
		Conf:          conf,
		Logger:        logger,
		AccountSvc:    accountSvc,
		StudentSvc:    studentSvc,
		ClassSvc:      classSvc,
		AttendanceSvc: attendanceSvc,
		DiarySvc:      diarySvc,
		NoticeSvc:     noticeSvc,
		GallerySvc:    gallerySvc,
		Validate:      validate,
		Translator:    translator,
		SignalShutdown: func() {
			shutdown <- syscall.SIGTERM
		},
	})

	go server.Start()

	// =========================================================================
	// Shutdown

	sig := <-shutdown
	logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

	// give outstanding requests a deadline for completion
	ctx, cancel = context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
	defer cancel()

	if err = server.Stop(ctx); err != nil {
		logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
	}
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
