package datasource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Custodio30/tennis-bot-tipster/internal/config"
)

// Downloader refreshes the local CSV snapshots from the configured remote
// feeds. One failing source never aborts the others.
type Downloader struct {
	cfg    config.DatasourceConfig
	client *RateLimitedHTTPClient
	logger *logrus.Logger
}

// NewDownloader builds a downloader with a rate-limited HTTP client.
func NewDownloader(cfg config.DatasourceConfig, logger *logrus.Logger) *Downloader {
	if logger == nil {
		logger = logrus.New()
	}

	httpCfg := DefaultHTTPClientConfig()
	if cfg.RateLimit > 0 {
		httpCfg.RateLimit = cfg.RateLimit
	}
	if cfg.TimeoutSecs > 0 {
		httpCfg.Timeout = time.Duration(cfg.TimeoutSecs) * time.Second
	}

	return &Downloader{
		cfg:    cfg,
		client: NewRateLimitedHTTPClient(httpCfg, logger),
		logger: logger,
	}
}

// FetchAll downloads every enabled source into the download directory and
// returns the number of sources refreshed successfully.
func (d *Downloader) FetchAll(ctx context.Context) int {
	refreshed := 0
	for _, source := range d.cfg.Sources {
		if !source.Enabled || source.URL == "" {
			continue
		}
		if err := d.fetchSource(ctx, source); err != nil {
			d.logger.WithError(err).WithField("source", source.Name).Error("Source refresh failed")
			continue
		}
		refreshed++
	}
	return refreshed
}

// fetchSource downloads one feed through a temp file and rename, so a
// broken transfer never clobbers the previous snapshot.
func (d *Downloader) fetchSource(ctx context.Context, source config.SourceConfig) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source.URL, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if source.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+source.APIKey)
	}

	resp, err := d.client.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, source.Name)
	}

	if err := os.MkdirAll(d.cfg.DownloadDir, 0o755); err != nil {
		return fmt.Errorf("failed to create download dir: %w", err)
	}

	target := d.TargetPath(source.Name)
	tmp := target + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}

	written, err := io.Copy(f, resp.Body)
	closeErr := f.Close()
	if err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if closeErr != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close snapshot: %w", closeErr)
	}
	if err := os.Rename(tmp, target); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}

	d.logger.WithFields(logrus.Fields{
		"source": source.Name,
		"bytes":  written,
		"path":   target,
	}).Info("Source refreshed")

	return nil
}

// TargetPath returns the local snapshot path for a source name.
func (d *Downloader) TargetPath(name string) string {
	return filepath.Join(d.cfg.DownloadDir, name+".csv")
}

// Close releases the underlying HTTP client.
func (d *Downloader) Close() error {
	return d.client.Close()
}
