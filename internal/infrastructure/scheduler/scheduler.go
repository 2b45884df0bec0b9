package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/bibbank/mortgage-advisor/internal/application/dto"
)

// Trigger values recorded on catalog syncs.
const (
	TriggerSchedule = "schedule"
	TriggerStartup  = "startup"
)

// CatalogSyncer is satisfied by usecase.SyncCatalogUseCase.
type CatalogSyncer interface {
	Execute(ctx context.Context, req dto.SyncCatalogRequest) (dto.SyncCatalogResponse, error)
}

// OutboxRelayer is satisfied by usecase.RelayOutboxUseCase.
type OutboxRelayer interface {
	Execute(ctx context.Context) (int, error)
}

// Scheduler runs the periodic background jobs. A job still running when its
// next tick fires is skipped.
type Scheduler struct {
	cron    *cron.Cron
	ctx     context.Context
	syncer  CatalogSyncer
	relayer OutboxRelayer
	timeout time.Duration
	logger  *slog.Logger
}

// New creates a scheduler whose jobs run under ctx. Specs accept an optional
// leading seconds field and descriptors such as "@every 5m".
func New(ctx context.Context, syncer CatalogSyncer, relayer OutboxRelayer, logger *slog.Logger) *Scheduler {
	cronLogger := slogAdapter{logger: logger}
	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	return &Scheduler{
		cron: cron.New(
			cron.WithParser(parser),
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
			cron.WithLogger(cronLogger),
		),
		ctx:     ctx,
		syncer:  syncer,
		relayer: relayer,
		timeout: 2 * time.Minute,
		logger:  logger,
	}
}

// RegisterAll registers the catalog sync and outbox relay jobs. An empty spec
// leaves that job disabled.
func (s *Scheduler) RegisterAll(catalogSpec, outboxSpec string) error {
	if catalogSpec != "" {
		if _, err := s.cron.AddFunc(catalogSpec, func() { s.syncCatalog(TriggerSchedule) }); err != nil {
			return fmt.Errorf("register catalog sync: %w", err)
		}
	}
	if outboxSpec != "" {
		if _, err := s.cron.AddFunc(outboxSpec, s.relayOutbox); err != nil {
			return fmt.Errorf("register outbox relay: %w", err)
		}
	}
	return nil
}

// Jobs returns the number of registered jobs.
func (s *Scheduler) Jobs() int { return len(s.cron.Entries()) }

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", s.Jobs())
}

// Stop stops scheduling and waits for running jobs or ctx, whichever ends first.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
	s.logger.Info("scheduler stopped")
}

// RunCatalogSyncNow runs one catalog sync synchronously.
func (s *Scheduler) RunCatalogSyncNow(trigger string) error {
	return s.syncCatalog(trigger)
}

func (s *Scheduler) syncCatalog(trigger string) error {
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	resp, err := s.syncer.Execute(ctx, dto.SyncCatalogRequest{Trigger: trigger})
	if err != nil {
		s.logger.Error("catalog sync failed", "trigger", trigger, "error", err)
		return err
	}
	s.logger.Info("catalog synced",
		"trigger", trigger,
		"sync_id", resp.SyncID,
		"products", resp.ProductCount,
		"skipped", resp.Skipped,
	)
	return nil
}

func (s *Scheduler) relayOutbox() {
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	if _, err := s.relayer.Execute(ctx); err != nil {
		s.logger.Error("outbox relay failed", "error", err)
	}
}

// slogAdapter satisfies cron.Logger.
type slogAdapter struct {
	logger *slog.Logger
}

func (a slogAdapter) Info(msg string, keysAndValues ...any) {
	a.logger.Debug("cron: "+msg, keysAndValues...)
}

func (a slogAdapter) Error(err error, msg string, keysAndValues ...any) {
	a.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
