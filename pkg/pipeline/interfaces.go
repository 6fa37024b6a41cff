package pipeline

import (
	"context"

	"ytdigest/pkg/checkpoint"
	"ytdigest/pkg/models"
)

// CheckpointStore persists the last processed video
type CheckpointStore interface {
	Load() (*checkpoint.Checkpoint, error)
	Save(cp *checkpoint.Checkpoint) error
}

// Resolver finds the most recent upload of a channel
type Resolver interface {
	LatestUpload(ctx context.Context, channelID string) (*models.VideoRef, error)
}

// Fetcher downloads a video's audio and returns the file path
type Fetcher interface {
	Fetch(ctx context.Context, video models.VideoRef) (string, error)
}

// Transcriber turns an audio file into text
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// Summarizer condenses a transcript
type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (string, error)
}

// Notifier delivers a summary
type Notifier interface {
	Notify(ctx context.Context, summary, videoTitle string) error
}

// Remover deletes downloaded audio once a run completes
type Remover interface {
	Remove(path string) error
}
