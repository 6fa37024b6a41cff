package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"
	"ytdigest/pkg/checkpoint"
	"ytdigest/pkg/config"
	errs "ytdigest/pkg/errors"
	"ytdigest/pkg/logger"
	"ytdigest/pkg/media"
	"ytdigest/pkg/notify"
	"ytdigest/pkg/pipeline"
	"ytdigest/pkg/storage"
	"ytdigest/pkg/summarize"
	"ytdigest/pkg/transcribe"
	"ytdigest/pkg/ui"
	"ytdigest/pkg/youtube"
)

var (
	// Watch command flags
	channelID            string
	checkpointFile       string
	downloadBackend      string
	transcriptionBackend string
	keepAudio            bool
	strict               bool
	runTimeout           time.Duration
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Summarize and email the channel's latest upload if it is new",
	Long: `Run one watch pass over the configured channel.

If the latest upload differs from the one recorded in the checkpoint file, its
audio is downloaded, transcribed and summarized, the summary is emailed, and the
checkpoint is updated. Runs are serialized with a lock file next to the
checkpoint; a run that finds the lock held exits immediately.

Failures are logged and the command exits 0 so schedulers keep running it.
Use --strict to exit 1 instead.`,
	Example: `  # Typical crontab entry
  */30 * * * * cd /srv/ytdigest && ytdigest watch --quiet

  # Watch another channel and keep the downloaded audio
  ytdigest watch --channel UC_x5XG1OV2P6uZZ5FSM9Ttw --keep-audio

  # Use yt-dlp and a local whisper install
  ytdigest watch --download-backend ytdlp --transcription-backend local`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVar(&channelID, "channel", "", "channel ID to watch (overrides CHANNEL_ID)")
	watchCmd.Flags().StringVar(&checkpointFile, "checkpoint", "", "checkpoint file (default last_video_id.txt)")
	watchCmd.Flags().StringVar(&downloadBackend, "download-backend", "", "audio download backend (native, ytdlp)")
	watchCmd.Flags().StringVar(&transcriptionBackend, "transcription-backend", "", "transcription backend (openai, local)")
	watchCmd.Flags().BoolVar(&keepAudio, "keep-audio", false, "keep the downloaded audio file")
	watchCmd.Flags().BoolVar(&strict, "strict", false, "exit with status 1 when the run fails")
	watchCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "abort the run after this long (0 disables)")
}

func watchFlags() map[string]interface{} {
	flags := make(map[string]interface{})
	if channelID != "" {
		flags["channel"] = channelID
	}
	if checkpointFile != "" {
		flags["checkpoint"] = checkpointFile
	}
	if downloadBackend != "" {
		flags["download-backend"] = downloadBackend
	}
	if transcriptionBackend != "" {
		flags["transcription-backend"] = transcriptionBackend
	}
	if keepAudio {
		flags["keep-audio"] = true
	}
	return flags
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(watchFlags())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := initLogger(cfg)
	if err != nil {
		return err
	}
	log = log.WithField("channel_id", cfg.YouTube.ChannelID)

	lock, acquired, err := acquireRunLock(cfg.LockFile())
	if err != nil {
		log.WithError(err).Error("Failed to acquire run lock")
		return failRun(err)
	}
	if !acquired {
		log.WithField("lock_file", cfg.LockFile()).Info("Another watch run is in progress, skipping.")
		return nil
	}
	defer lock.Unlock()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, runTimeout)
		defer cancel()
	}

	p, err := buildPipeline(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Error("Failed to set up watch run")
		return failRun(err)
	}

	result, err := p.Run(ctx)
	if err != nil {
		log.WithError(err).ErrorWithFields("Watch run failed", map[string]interface{}{
			"stage": string(errs.TypeOf(err)),
		})
		return failRun(err)
	}

	switch result.Outcome {
	case pipeline.NoNewVideo:
		ui.PrintInfo("No new video", result.Video.Title)
	case pipeline.Processed:
		ui.PrintSuccess("Summary sent for: " + result.Video.Title)
		if result.AudioPath != "" {
			ui.PrintInfo("Audio kept at", result.AudioPath)
		}
	}
	return nil
}

// failRun swallows run failures unless --strict was given
func failRun(err error) error {
	ui.PrintError("Watch run failed", err)
	if strict {
		return err
	}
	return nil
}

// acquireRunLock takes a non-blocking exclusive lock on path.
// acquired is false when another process holds it.
func acquireRunLock(path string) (*flock.Flock, bool, error) {
	// The checkpoint directory may not exist before the first save
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, false, fmt.Errorf("failed to create lock directory: %w", err)
	}

	lock := flock.New(path)
	acquired, err := lock.TryLock()
	if err != nil {
		return nil, false, fmt.Errorf("failed to lock %s: %w", path, err)
	}
	return lock, acquired, nil
}

// buildPipeline wires the configured collaborators into a pipeline
func buildPipeline(ctx context.Context, cfg *config.Config, log logger.Logger) (*pipeline.Pipeline, error) {
	yt, err := youtube.NewClient(ctx, cfg.YouTube.APIKey, log)
	if err != nil {
		return nil, err
	}

	audio, err := storage.NewManager(cfg.Download.AudioDirectory)
	if err != nil {
		return nil, err
	}

	fetcher, err := media.New(&cfg.Download, audio, log)
	if err != nil {
		return nil, err
	}

	ai := newOpenAIClient(&cfg.OpenAI)

	transcriber, err := transcribe.New(cfg, ai, log)
	if err != nil {
		return nil, err
	}

	mailer, err := notify.NewMailer(&cfg.Email, log)
	if err != nil {
		return nil, err
	}

	deps := pipeline.Deps{
		Store:       checkpoint.NewStore(cfg.Checkpoint.File),
		Resolver:    yt,
		Fetcher:     fetcher,
		Transcriber: transcriber,
		Summarizer:  summarize.New(ai, cfg.OpenAI.SummaryModel, cfg.OpenAI.SystemPrompt, log),
		Notifier:    mailer,
		ChannelID:   cfg.YouTube.ChannelID,
		Logger:      log,
	}
	if !cfg.Download.KeepAudio {
		deps.Remover = audio
	}

	return pipeline.New(deps), nil
}

func newOpenAIClient(cfg *config.OpenAIConfig) *openai.Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return openai.NewClientWithConfig(clientCfg)
}
