package media

import (
	"context"
	"fmt"

	"ytdigest/pkg/config"
	"ytdigest/pkg/logger"
	"ytdigest/pkg/models"
	"ytdigest/pkg/storage"
)

// Fetcher downloads the audio track of a video and returns the local file path
type Fetcher interface {
	Fetch(ctx context.Context, video models.VideoRef) (string, error)
}

// New returns the fetcher selected by cfg.Backend
func New(cfg *config.DownloadConfig, store *storage.Manager, log logger.Logger) (Fetcher, error) {
	switch cfg.Backend {
	case config.BackendNative, "":
		return NewNativeFetcher(store, log), nil
	case config.BackendYtDlp:
		return NewYtDlpFetcher(store, log, YtDlpOptions{
			Executable: cfg.YtDlpPath,
			Install:    cfg.InstallYtDlp,
		}), nil
	default:
		return nil, fmt.Errorf("unknown download backend: %q", cfg.Backend)
	}
}
