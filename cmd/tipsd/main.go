package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Custodio30/tennis-bot-tipster/internal/config"
	"github.com/Custodio30/tennis-bot-tipster/internal/database"
	"github.com/Custodio30/tennis-bot-tipster/internal/datasource"
	"github.com/Custodio30/tennis-bot-tipster/internal/health"
	applogger "github.com/Custodio30/tennis-bot-tipster/internal/logger"
	"github.com/Custodio30/tennis-bot-tipster/internal/metrics"
	"github.com/Custodio30/tennis-bot-tipster/internal/ml"
	"github.com/Custodio30/tennis-bot-tipster/internal/models"
	"github.com/Custodio30/tennis-bot-tipster/internal/repository"
	"github.com/Custodio30/tennis-bot-tipster/internal/scheduler"
	"github.com/Custodio30/tennis-bot-tipster/internal/service"
)

// Build information - set via ldflags
var (
	Version = "dev"
)

// daemon owns the long-running pipeline: scheduled source refreshes,
// retraining and slate regeneration.
type daemon struct {
	cfg        *config.Config
	logger     *logrus.Logger
	db         *database.DB
	downloader *datasource.Downloader
	trainSvc   *service.TrainService
	tipsSvc    *service.TipsService
	tipRepo    repository.TipRepository
	modelRepo  repository.ModelRepository
	health     *health.Server
}

func main() {
	configFile := flag.String("config", "./config/config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadWithDefaults(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	logger := applogger.NewLogger(cfg.App.LogLevel)

	// Secrets overlay is opt-in via environment.
	if secretName := os.Getenv("TENNIS_TIPSTER_SECRET_NAME"); secretName != "" {
		region := os.Getenv("AWS_REGION")
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			logger.WithError(err).Fatal("Failed to load secrets")
		}
		logger.Info("Secrets loaded from AWS Secrets Manager")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d := &daemon{
		cfg:        cfg,
		logger:     logger,
		downloader: datasource.NewDownloader(cfg.Datasource, logger),
		trainSvc:   service.NewTrainService(cfg, logger),
		tipsSvc:    service.NewTipsService(cfg, logger),
	}
	defer d.downloader.Close()

	if cfg.Database.Enabled {
		db, err := database.NewDB(ctx, &cfg.Database)
		if err != nil {
			logger.WithError(err).Fatal("Failed to connect to database")
		}
		defer db.Close()
		d.db = db
		d.tipRepo = repository.NewPostgresTipRepository(db)
		d.modelRepo = repository.NewPostgresModelRepository(db)
	}

	healthCfg := health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Logger:      logger,
	}
	if d.db != nil {
		// A nil *database.DB must not become a non-nil interface.
		healthCfg.DB = d.db
	}
	d.health = health.NewServer(healthCfg)
	if err := d.health.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to start health server")
	}

	if cfg.Metrics.Enabled {
		startMetricsServer(ctx, cfg, logger)
	}

	sched := scheduler.NewScheduler(logger)
	if err := sched.Schedule("refresh-and-retip", cfg.Datasource.RefreshCron, d.refreshAndRetip); err != nil {
		logger.WithError(err).Fatal("Failed to schedule refresh job")
	}
	if err := sched.Start(); err != nil {
		logger.WithError(err).Fatal("Failed to start scheduler")
	}
	defer sched.Stop()

	// One pass up front so the daemon is useful before the first tick.
	if err := d.refreshAndRetip(ctx); err != nil {
		logger.WithError(err).Warn("Initial pipeline pass failed, waiting for next scheduled run")
	} else {
		d.health.SetReady(true)
	}

	logger.WithFields(logrus.Fields{
		"next_run": sched.GetNextRun().Format(time.RFC3339),
		"version":  Version,
	}).Info("Daemon running")

	<-ctx.Done()
	logger.Info("Shutting down")
}

// refreshAndRetip is the full scheduled pass: refresh sources, retrain
// on the newest history and regenerate the slate.
func (d *daemon) refreshAndRetip(ctx context.Context) error {
	refreshed := d.downloader.FetchAll(ctx)
	metrics.SourceRefreshesTotal.Add(float64(refreshed))

	history, fixtures, err := d.loadSnapshots()
	if err != nil {
		return err
	}

	artifact, err := d.trainSvc.TrainAndSave(history)
	if err != nil {
		return fmt.Errorf("training failed: %w", err)
	}
	d.health.SetModelVersion(artifact.Version)

	if d.modelRepo != nil {
		if err := d.recordModel(ctx, artifact); err != nil {
			d.logger.WithError(err).Error("Failed to persist model record")
		}
	}

	tips := d.tipsSvc.GenerateTips(history, fixtures, artifact)

	if d.tipRepo != nil && len(tips) > 0 {
		if err := d.tipRepo.CreateBatch(ctx, tips); err != nil {
			d.logger.WithError(err).Error("Failed to persist tip slate")
		}
	}

	d.health.SetReady(true)
	return nil
}

// loadSnapshots reads the downloaded history and fixture files. Sources
// named "fixtures*" hold upcoming matches; everything else is history.
func (d *daemon) loadSnapshots() ([]models.Match, []models.Fixture, error) {
	var history []models.Match
	var fixtures []models.Fixture

	for _, source := range d.cfg.Datasource.Sources {
		if !source.Enabled {
			continue
		}
		path := d.downloader.TargetPath(source.Name)
		if _, err := os.Stat(path); err != nil {
			d.logger.WithField("source", source.Name).Warn("Snapshot missing, skipping source")
			continue
		}

		if isFixtureSource(source.Name) {
			loaded, err := datasource.LoadFixturesFile(path, d.logger)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to load fixtures from %s: %w", source.Name, err)
			}
			fixtures = append(fixtures, loaded...)
			continue
		}

		loaded, err := datasource.LoadMatchesFile(path, d.logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load history from %s: %w", source.Name, err)
		}
		history = append(history, loaded...)
	}

	if len(history) == 0 {
		return nil, nil, models.ErrNoTrainingData
	}
	return history, fixtures, nil
}

func isFixtureSource(name string) bool {
	return strings.HasPrefix(name, "fixtures")
}

func (d *daemon) recordModel(ctx context.Context, artifact *ml.Artifact) error {
	metricsJSON, err := json.Marshal(artifact.Metrics)
	if err != nil {
		return fmt.Errorf("failed to encode metrics: %w", err)
	}

	record := &models.ModelRecord{
		ID:        uuid.New(),
		Name:      d.cfg.App.Name,
		Version:   artifact.Version,
		Kind:      artifact.Kind,
		Path:      d.cfg.Model.ArtifactPath,
		Metrics:   metricsJSON,
		TrainedAt: artifact.TrainedAt,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}

	if err := d.modelRepo.Create(ctx, record); err != nil {
		return err
	}
	return d.modelRepo.SetActive(ctx, record.ID)
}

// startMetricsServer exposes the Prometheus registry.
func startMetricsServer(ctx context.Context, cfg *config.Config, logger *logrus.Logger) {
	mux := http.NewServeMux()
	mux.Handle(cfg.Metrics.Path, metrics.Handler())

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.WithField("port", cfg.Metrics.Port).Info("Metrics server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("Metrics server error")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()
}
