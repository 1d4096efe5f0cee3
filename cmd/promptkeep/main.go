package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/promptkeep/promptkeep/internal/adapter"
	"github.com/promptkeep/promptkeep/internal/config"
	"github.com/promptkeep/promptkeep/internal/logger"
	"github.com/promptkeep/promptkeep/internal/service"
	"github.com/promptkeep/promptkeep/internal/store"
	"github.com/promptkeep/promptkeep/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewClientLogger("promptkeep")
	cfg, err := config.GetClientConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	transport, err := adapter.NewHTTPTransport(adapter.HTTPConfig{
		BaseURL: cfg.Adapter.BaseURL,
		Timeout: cfg.Adapter.RequestTimeout,
		TeamID:  cfg.Team.ID,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("create transport")
	}

	token := cfg.Adapter.Token
	if token == "" {
		token = os.Getenv("PROMPTKEEP_TOKEN")
	}
	transport.SetToken(token)

	userID, err := transport.UserID()
	if err != nil {
		log.Fatal().Err(err).Msg("no usable credentials, set ADAPTER_TOKEN")
	}

	device, err := store.LoadOrCreateDeviceIdentity(cfg.Storage.StateDir, cfg.Sync.DeviceName)
	if err != nil {
		log.Fatal().Err(err).Msg("load device identity")
	}

	prompts, err := store.NewFilePromptStore(cfg.Storage.LibraryPath, log)
	if err != nil {
		log.Fatal().Err(err).Msg("open prompt library")
	}

	states := store.NewFileSyncStateStore(cfg.Storage.StateDir, store.SyncScope{
		UserID:     userID,
		DeviceID:   device.ID,
		DeviceName: device.Name,
		TeamID:     cfg.Team.ID,
	}, log)

	var syncService service.SyncService
	if cfg.Team.ID != "" {
		syncService = service.NewTeamSyncService(
			prompts, states, transport,
			models.Role(cfg.Team.Role), log, cfg.Sync.Concurrency,
		)
	} else {
		syncService = service.NewSyncService(prompts, states, transport, log, service.Options{
			Concurrency:   cfg.Sync.Concurrency,
			WorkspaceName: cfg.Sync.WorkspaceName,
			Permission:    models.FullAccess(),
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Sync.Reset {
		if err = syncService.Reset(ctx); err != nil {
			log.Fatal().Err(err).Msg("reset sync baseline")
		}
		log.Info().Msg("sync baseline wiped, next sync treats every prompt as new")
		return
	}

	report, err := syncService.FullSync(ctx)
	if err != nil && !errors.Is(err, service.ErrPlanStale) {
		log.Fatal().Err(err).Msg("sync failed")
	}
	if errors.Is(err, service.ErrPlanStale) {
		log.Warn().Msg("another device won a race mid-sync, run again to converge")
	}
	reportSummary(log, report)

	if !cfg.Sync.Watch {
		return
	}

	job := service.NewSyncJob(syncService, log)
	job.Start(ctx, cfg.Sync.Interval)
	log.Info().Dur("interval", cfg.Sync.Interval).Msg("watching for changes")

	<-ctx.Done()
	job.Stop()
	log.Info().Msg("stopped")
}

func reportSummary(log *logger.Logger, report models.SyncReport) {
	event := log.Info().
		Int("uploaded", report.Uploaded).
		Int("downloaded", report.Downloaded).
		Int("deleted_local", report.DeletedLocal).
		Int("deleted_remote", report.DeletedRemote).
		Int("forked", report.Forked)
	if report.QuotaWarning != nil {
		event = event.Str("quota_warning", report.QuotaWarning.Kind).
			Float64("quota_usage_percent", report.QuotaWarning.UsagePercent)
	}
	event.Msg("sync finished")
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}
	if buildDate == "" {
		buildDate = "N/A"
	}
	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
