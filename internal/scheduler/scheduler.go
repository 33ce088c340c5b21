package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/candelento/balanza/internal/config"
	"github.com/candelento/balanza/internal/repository/drive"
	"github.com/candelento/balanza/internal/repository/mongodb"
	"github.com/candelento/balanza/internal/service/reporting"
)

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron         *cron.Cron
	reportingSvc *reporting.Service
	archive      mongodb.Repository
	backup       drive.Repository
	workbookPath string
	cfg          config.Config
	logger       *zap.Logger
}

// NewScheduler creates a new scheduler instance. The archive and backup
// repositories are optional; a nil repository disables that step of the
// nightly close.
func NewScheduler(cfg config.Config, reportingSvc *reporting.Service, archive mongodb.Repository, backup drive.Repository, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	// robfig/cron/v3 default parser is standard cron (5 fields: min, hour, dom, month, dow).
	c := cron.New()

	return &Scheduler{
		cron:         c,
		reportingSvc: reportingSvc,
		archive:      archive,
		backup:       backup,
		workbookPath: cfg.Ledger.Path,
		cfg:          cfg,
		logger:       logger,
	}
}

// Start starts the scheduler.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.Backup.CronSchedule))

	_, err := s.cron.AddFunc(s.cfg.Backup.CronSchedule, s.runNightlyClose)
	if err != nil {
		s.logger.Error("failed to schedule nightly close", zap.Error(err))
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

// runNightlyClose builds the day's summary, archives it and backs up the
// workbook. Each step is independent: a failed archive does not block the
// backup.
func (s *Scheduler) runNightlyClose() {
	s.logger.Info("running nightly close")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	summary, err := s.reportingSvc.BuildDailySummary("")
	if err != nil {
		s.logger.Error("failed to build daily summary", zap.Error(err))
		return
	}
	s.logger.Info("nightly close summary", zap.String("detail", s.reportingSvc.FormatSummary(summary)))

	if s.archive != nil {
		if err := s.archive.SaveDailySummary(ctx, summary); err != nil {
			s.logger.Error("failed to archive daily summary", zap.Error(err))
		} else {
			s.logger.Info("daily summary archived", zap.String("date", summary.Date))
		}
	}

	if s.backup != nil {
		name := fmt.Sprintf("daily_log-%s.xlsx", summary.Date)
		fileID, err := s.backup.UploadWorkbook(ctx, s.workbookPath, name)
		if err != nil {
			s.logger.Error("failed to back up workbook", zap.Error(err))
		} else {
			s.logger.Info("workbook backed up", zap.String("name", name), zap.String("file_id", fileID))
		}
	}
}
