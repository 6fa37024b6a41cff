package media

import (
	"context"
	"fmt"
	"os"

	"github.com/lrstanley/go-ytdlp"
	errs "ytdigest/pkg/errors"
	"ytdigest/pkg/logger"
	"ytdigest/pkg/models"
	"ytdigest/pkg/storage"
)

// YtDlpOptions configures the yt-dlp backend
type YtDlpOptions struct {
	// Executable overrides the yt-dlp binary lookup
	Executable string
	// Install downloads a managed yt-dlp binary before the first fetch
	Install bool
}

// YtDlpFetcher downloads audio by shelling out to yt-dlp
type YtDlpFetcher struct {
	store     *storage.Manager
	logger    logger.Logger
	opts      YtDlpOptions
	installed bool
}

// NewYtDlpFetcher creates a yt-dlp backed fetcher
func NewYtDlpFetcher(store *storage.Manager, log logger.Logger, opts YtDlpOptions) *YtDlpFetcher {
	return &YtDlpFetcher{
		store:  store,
		logger: log,
		opts:   opts,
	}
}

// Fetch runs yt-dlp with "-f bestaudio/best" writing to the title-derived path
func (f *YtDlpFetcher) Fetch(ctx context.Context, video models.VideoRef) (string, error) {
	if video.VideoID == "" {
		return "", errs.New(errs.ErrorTypeDownload, "fetch audio", fmt.Errorf("video id is required"))
	}

	if err := f.ensureInstalled(ctx); err != nil {
		return "", errs.New(errs.ErrorTypeDownload, "install yt-dlp", err)
	}

	path := f.store.PathFor(video.Title)
	cmd := f.command(path)

	f.logger.DebugWithFields("running yt-dlp", map[string]interface{}{
		"video_id": video.VideoID,
		"output":   path,
	})

	if _, err := cmd.Run(ctx, video.URL()); err != nil {
		return "", errs.New(errs.ErrorTypeDownload, "run yt-dlp", err)
	}

	// yt-dlp exits zero on some extractor skips without writing anything
	if _, err := os.Stat(path); err != nil {
		return "", errs.New(errs.ErrorTypeDownload, "run yt-dlp",
			fmt.Errorf("no audio written to %s: %w", path, err))
	}

	return path, nil
}

func (f *YtDlpFetcher) command(output string) *ytdlp.Command {
	cmd := ytdlp.New().
		Format("bestaudio/best").
		Output(output).
		Quiet().
		NoWarnings()

	if f.opts.Executable != "" {
		cmd.SetExecutable(f.opts.Executable)
	}
	return cmd
}

func (f *YtDlpFetcher) ensureInstalled(ctx context.Context) error {
	if !f.opts.Install || f.opts.Executable != "" || f.installed {
		return nil
	}

	resolved, err := ytdlp.Install(ctx, nil)
	if err != nil {
		return err
	}

	f.installed = true
	f.logger.InfoWithFields("yt-dlp ready", map[string]interface{}{
		"executable": resolved.Executable,
		"version":    resolved.Version,
	})
	return nil
}
