package transcribe

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"ytdigest/pkg/config"
	errs "ytdigest/pkg/errors"
	"ytdigest/pkg/logger"
)

// Transcriber turns an audio file into plain text
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// New returns the transcriber selected by cfg.Transcription.Backend.
// client is only used by the OpenAI backend and may be nil otherwise.
func New(cfg *config.Config, client *openai.Client, log logger.Logger) (Transcriber, error) {
	switch cfg.Transcription.Backend {
	case config.TranscriptionOpenAI, "":
		if client == nil {
			return nil, fmt.Errorf("openai transcription requires an API client")
		}
		return NewWhisperAPI(client, cfg.OpenAI.TranscriptionModel, log), nil
	case config.TranscriptionLocal:
		return NewLocalWhisper(cfg.Transcription.LocalCommand, cfg.Transcription.LocalModel, log), nil
	default:
		return nil, fmt.Errorf("unknown transcription backend: %q", cfg.Transcription.Backend)
	}
}

// WhisperAPI transcribes through the hosted speech-to-text endpoint
type WhisperAPI struct {
	client *openai.Client
	model  string
	logger logger.Logger
}

// NewWhisperAPI creates a hosted transcriber. An empty model means whisper-1.
func NewWhisperAPI(client *openai.Client, model string, log logger.Logger) *WhisperAPI {
	if model == "" {
		model = openai.Whisper1
	}
	return &WhisperAPI{client: client, model: model, logger: log}
}

// Transcribe uploads the file and returns the transcript text
func (w *WhisperAPI) Transcribe(ctx context.Context, audioPath string) (string, error) {
	w.logger.DebugWithFields("uploading audio for transcription", map[string]interface{}{
		"path":  audioPath,
		"model": w.model,
	})

	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    w.model,
		FilePath: audioPath,
	})
	if err != nil {
		return "", errs.FromOpenAI(errs.ErrorTypeTranscription, "create transcription", err)
	}

	if resp.Text == "" {
		w.logger.WarnWithFields("transcript is empty", map[string]interface{}{"path": audioPath})
	}
	return resp.Text, nil
}
