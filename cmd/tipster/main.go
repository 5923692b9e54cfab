package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Custodio30/tennis-bot-tipster/internal/config"
	"github.com/Custodio30/tennis-bot-tipster/internal/database"
	"github.com/Custodio30/tennis-bot-tipster/internal/datasource"
	applogger "github.com/Custodio30/tennis-bot-tipster/internal/logger"
	"github.com/Custodio30/tennis-bot-tipster/internal/ml"
	"github.com/Custodio30/tennis-bot-tipster/internal/models"
	"github.com/Custodio30/tennis-bot-tipster/internal/repository"
	"github.com/Custodio30/tennis-bot-tipster/internal/service"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var (
	configFile   string
	historyFile  string
	fixturesFile string
	outputFile   string
	logger       *logrus.Logger
	cfg          *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&historyFile, "history", "data/matches.csv", "Path to match history CSV")

	tipsCmd.Flags().StringVar(&fixturesFile, "fixtures", "data/fixtures.csv", "Path to fixtures CSV")
	tipsCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write the slate to a CSV file instead of stdout")
}

var rootCmd = &cobra.Command{
	Use:   "tipster",
	Short: "Tennis match prediction and staking engine",
	Long:  `Replays match history into Elo state, trains a calibrated outcome model and turns fixture odds into a ranked tip slate.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadWithDefaults(configFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := config.Validate(cfg); err != nil {
			return err
		}
		logger = applogger.NewLogger(cfg.App.LogLevel)
		return nil
	},
}

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the outcome model and save the artifact",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTrain(cmd.Context())
	},
}

var tipsCmd = &cobra.Command{
	Use:   "tips",
	Short: "Generate the ranked tip slate for upcoming fixtures",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTips()
	},
}

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Report temporal cross-validation metrics without saving a model",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEval()
	},
}

func main() {
	rootCmd.AddCommand(trainCmd, tipsCmd, evalCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadHistory() ([]models.Match, error) {
	history, err := datasource.LoadMatchesFile(historyFile, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	logger.WithField("matches", len(history)).Info("History loaded")
	return history, nil
}

func runTrain(ctx context.Context) error {
	history, err := loadHistory()
	if err != nil {
		return err
	}

	svc := service.NewTrainService(cfg, logger)
	artifact, err := svc.TrainAndSave(history)
	if err != nil {
		return err
	}

	printMetrics(artifact.Metrics)

	if cfg.Database.Enabled {
		if err := recordModel(ctx, artifact); err != nil {
			return err
		}
	}

	return nil
}

func runTips() error {
	history, err := loadHistory()
	if err != nil {
		return err
	}

	fixtures, err := datasource.LoadFixturesFile(fixturesFile, logger)
	if err != nil {
		return fmt.Errorf("failed to load fixtures: %w", err)
	}

	artifact, err := ml.LoadArtifact(cfg.Model.ArtifactPath)
	if err != nil {
		return fmt.Errorf("failed to load model artifact (run train first): %w", err)
	}

	svc := service.NewTipsService(cfg, logger)
	tips := svc.GenerateTips(history, fixtures, artifact)

	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		if err := service.WriteTipsCSV(f, tips); err != nil {
			return err
		}
		fmt.Printf("Wrote %d tips to %s\n", len(tips), outputFile)
		return nil
	}

	return service.WriteTipsCSV(os.Stdout, tips)
}

func runEval() error {
	history, err := loadHistory()
	if err != nil {
		return err
	}

	svc := service.NewTrainService(cfg, logger)
	metrics, err := svc.Evaluate(history)
	if err != nil {
		return err
	}

	printMetrics(metrics)
	return nil
}

func printMetrics(m ml.Metrics) {
	if !m.Available {
		fmt.Println("Validation metrics not available (no usable folds)")
		return
	}
	fmt.Printf("AUC:      %.4f\n", m.AUC)
	fmt.Printf("Log loss: %.4f\n", m.LogLoss)
	fmt.Printf("Folds:    %d/%d usable\n", m.FoldsUsed, m.FoldsTotal)
}

// recordModel stores training provenance when persistence is enabled.
func recordModel(ctx context.Context, artifact *ml.Artifact) error {
	db, err := database.NewDB(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	metricsJSON, err := json.Marshal(artifact.Metrics)
	if err != nil {
		return fmt.Errorf("failed to encode metrics: %w", err)
	}

	record := &models.ModelRecord{
		ID:        uuid.New(),
		Name:      cfg.App.Name,
		Version:   artifact.Version,
		Kind:      artifact.Kind,
		Path:      cfg.Model.ArtifactPath,
		Metrics:   metricsJSON,
		TrainedAt: artifact.TrainedAt,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}

	repo := repository.NewPostgresModelRepository(db)
	if err := repo.Create(ctx, record); err != nil {
		return err
	}
	if err := repo.SetActive(ctx, record.ID); err != nil {
		return err
	}

	logger.WithField("model_id", record.ID).Info("Model record persisted")
	return nil
}
