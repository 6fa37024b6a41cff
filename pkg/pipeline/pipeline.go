package pipeline

import (
	"context"
	stderrors "errors"

	"ytdigest/pkg/checkpoint"
	errs "ytdigest/pkg/errors"
	"ytdigest/pkg/logger"
	"ytdigest/pkg/models"
)

// ErrNoVideo is returned when the resolver reports no upload and no error
var ErrNoVideo = stderrors.New("resolver returned no video")

// Outcome describes how a run ended
type Outcome int

const (
	// NoNewVideo means the latest upload was already processed
	NoNewVideo Outcome = iota + 1
	// Processed means a new video was summarized, delivered and recorded
	Processed
)

func (o Outcome) String() string {
	switch o {
	case NoNewVideo:
		return "no_new_video"
	case Processed:
		return "processed"
	default:
		return "unknown"
	}
}

// Result reports a successful run
type Result struct {
	Outcome Outcome
	Video   models.VideoRef
	Summary string
	// AudioPath is set while the downloaded audio is still on disk
	AudioPath string
}

// Deps are the collaborators a Pipeline drives. Remover may be nil to keep audio.
type Deps struct {
	Store       CheckpointStore
	Resolver    Resolver
	Fetcher     Fetcher
	Transcriber Transcriber
	Summarizer  Summarizer
	Notifier    Notifier
	Remover     Remover
	ChannelID   string
	Logger      logger.Logger
}

// Pipeline runs one check-and-summarize pass over a channel
type Pipeline struct {
	deps   Deps
	logger logger.Logger
}

// New creates a pipeline
func New(deps Deps) *Pipeline {
	log := deps.Logger
	if log == nil {
		log = logger.GetLogger()
	}
	return &Pipeline{deps: deps, logger: log}
}

// Run performs a single pass. Any stage failure stops the run before later
// stages execute; the checkpoint only moves after the summary was delivered.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	last, err := p.deps.Store.Load()
	if err != nil {
		return nil, stageError(errs.ErrorTypeCheckpoint, "load checkpoint", err)
	}

	latest, err := p.deps.Resolver.LatestUpload(ctx, p.deps.ChannelID)
	if err != nil {
		return nil, stageError(errs.ErrorTypePlatform, "resolve latest upload", err)
	}
	if latest == nil {
		return nil, errs.New(errs.ErrorTypePlatform, "resolve latest upload", ErrNoVideo)
	}

	video := *latest
	log := p.logger.WithFields(map[string]interface{}{
		"video_id": video.VideoID,
		"title":    video.Title,
	})

	if !checkpoint.IsNew(video, last) {
		log.Info("No new video.")
		return &Result{Outcome: NoNewVideo, Video: video}, nil
	}
	log.InfoWithFields("New video detected", map[string]interface{}{"url": video.URL()})

	audioPath, err := p.deps.Fetcher.Fetch(ctx, video)
	if err != nil {
		return nil, stageError(errs.ErrorTypeDownload, "fetch audio", err)
	}
	log.InfoWithFields("Audio downloaded.", map[string]interface{}{"path": audioPath})

	transcript, err := p.deps.Transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		return nil, stageError(errs.ErrorTypeTranscription, "transcribe", err)
	}
	log.InfoWithFields("Transcription complete.", map[string]interface{}{"chars": len(transcript)})

	summary, err := p.deps.Summarizer.Summarize(ctx, transcript)
	if err != nil {
		return nil, stageError(errs.ErrorTypeSummarization, "summarize", err)
	}
	log.Info("Summary generated.")

	if err := p.deps.Notifier.Notify(ctx, summary, video.Title); err != nil {
		return nil, stageError(errs.ErrorTypeDelivery, "notify", err)
	}
	log.Info("Summary sent via email.")

	if err := p.deps.Store.Save(checkpoint.FromVideo(video)); err != nil {
		return nil, stageError(errs.ErrorTypeCheckpoint, "save checkpoint", err)
	}
	log.Info("Video ID saved.")

	result := &Result{
		Outcome:   Processed,
		Video:     video,
		Summary:   summary,
		AudioPath: audioPath,
	}
	p.cleanup(log, result)
	return result, nil
}

// cleanup removes the audio file. Failure only costs disk space, so it is not an error.
func (p *Pipeline) cleanup(log logger.Logger, result *Result) {
	if p.deps.Remover == nil {
		log.DebugWithFields("Keeping audio file", map[string]interface{}{"path": result.AudioPath})
		return
	}

	if err := p.deps.Remover.Remove(result.AudioPath); err != nil {
		log.WithError(err).WarnWithFields("Failed to delete audio file", map[string]interface{}{
			"path": result.AudioPath,
		})
		return
	}

	log.InfoWithFields("Deleted audio file", map[string]interface{}{"path": result.AudioPath})
	result.AudioPath = ""
}

// stageError makes sure err carries a type, keeping one set by the stage itself
func stageError(t errs.ErrorType, op string, err error) error {
	if errs.TypeOf(err) != errs.ErrorTypeUnknown {
		return err
	}
	return errs.New(t, op, err)
}
