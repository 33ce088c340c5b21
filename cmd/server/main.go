package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/candelento/balanza/internal/config"
	"github.com/candelento/balanza/internal/ledger"
	"github.com/candelento/balanza/internal/pdf"
	"github.com/candelento/balanza/internal/repository/drive"
	"github.com/candelento/balanza/internal/repository/mongodb"
	"github.com/candelento/balanza/internal/scheduler"
	"github.com/candelento/balanza/internal/server/handlers"
	"github.com/candelento/balanza/internal/server/router"
	pesadassvc "github.com/candelento/balanza/internal/service/pesadas"
	reportingsvc "github.com/candelento/balanza/internal/service/reporting"
	"github.com/candelento/balanza/pkg/clients/notify"
	"github.com/candelento/balanza/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Server.LogLevel))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	loc, err := time.LoadLocation(cfg.Ledger.Timezone)
	if err != nil {
		baseLogger.Fatal("failed to load timezone", zap.String("timezone", cfg.Ledger.Timezone), zap.Error(err))
	}

	store := ledger.NewStore(cfg.Ledger.Path, baseLogger.Named("ledger"),
		ledger.WithClock(func() time.Time { return time.Now().In(loc) }))

	var archiveRepo mongodb.Repository
	if cfg.Mongo.Enabled() {
		mongoRepo, err := mongodb.NewMongoDBRepository(context.Background(), cfg.Mongo.URI, cfg.Mongo.DBName)
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		archiveRepo = mongoRepo
		baseLogger.Info("daily summary archive enabled")
	} else {
		baseLogger.Warn("MONGODB_URI missing, daily summary archive disabled")
	}

	var backupRepo drive.Repository
	if cfg.Drive.Enabled() {
		backupRepo, err = drive.NewGoogleDriveRepository(context.Background(), cfg.Drive, baseLogger.Named("repo.drive"))
		if err != nil {
			baseLogger.Fatal("failed to init drive repository", zap.Error(err))
		}
		baseLogger.Info("drive backup enabled")
	} else {
		baseLogger.Warn("drive credentials missing, workbook backup disabled")
	}

	var notifier notify.Client = notify.NopClient{}
	if cfg.Notify.Enabled() {
		notifier = notify.NewClient(cfg.Notify)
		baseLogger.Info("change notifications enabled")
	}

	pesadasSvc := pesadassvc.NewService(store, loc, baseLogger.Named("svc.pesadas"))
	reportingSvc := reportingsvc.NewService(store, baseLogger.Named("svc.reporting"))
	pdfGen := pdf.NewGenerator(baseLogger)

	pesadasHandler := handlers.NewPesadasHandler(pesadasSvc, pdfGen, notifier, baseLogger.Named("handlers.pesadas"))
	engine := router.New(pesadasHandler, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(*cfg, reportingSvc, archiveRepo, backupRepo, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
