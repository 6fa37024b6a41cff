package media

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/kkdai/youtube/v2"
	errs "ytdigest/pkg/errors"
	"ytdigest/pkg/logger"
	"ytdigest/pkg/models"
	"ytdigest/pkg/storage"
)

// videoSource is the part of the kkdai client the fetcher needs
type videoSource interface {
	GetVideoContext(ctx context.Context, id string) (*youtube.Video, error)
	GetStreamContext(ctx context.Context, video *youtube.Video, format *youtube.Format) (io.ReadCloser, int64, error)
}

// NativeFetcher downloads audio in-process through the YouTube player API
type NativeFetcher struct {
	source videoSource
	store  *storage.Manager
	logger logger.Logger
}

// NewNativeFetcher creates a fetcher backed by a default kkdai client
func NewNativeFetcher(store *storage.Manager, log logger.Logger) *NativeFetcher {
	return &NativeFetcher{
		source: &youtube.Client{},
		store:  store,
		logger: log,
	}
}

// Fetch streams the best audio-bearing format to disk
func (f *NativeFetcher) Fetch(ctx context.Context, video models.VideoRef) (string, error) {
	if video.VideoID == "" {
		return "", errs.New(errs.ErrorTypeDownload, "fetch audio", fmt.Errorf("video id is required"))
	}

	f.logger.DebugWithFields("resolving video formats", map[string]interface{}{
		"video_id": video.VideoID,
	})

	meta, err := f.source.GetVideoContext(ctx, video.VideoID)
	if err != nil {
		return "", errs.New(errs.ErrorTypeDownload, "get video", err)
	}

	format := selectAudioFormat(meta.Formats)
	if format == nil {
		return "", errs.New(errs.ErrorTypeDownload, "select format",
			fmt.Errorf("no audio format available for %s", video.VideoID))
	}

	stream, size, err := f.source.GetStreamContext(ctx, meta, format)
	if err != nil {
		return "", errs.New(errs.ErrorTypeDownload, "open stream", err)
	}
	defer stream.Close()

	path, err := f.store.SaveAudio(stream, video.Title)
	if err != nil {
		return "", errs.New(errs.ErrorTypeDownload, "save audio", err)
	}

	f.logger.DebugWithFields("audio stream saved", map[string]interface{}{
		"path":      path,
		"mime_type": format.MimeType,
		"bitrate":   format.Bitrate,
		"size":      size,
	})

	return path, nil
}

// selectAudioFormat picks the highest-bitrate format carrying audio.
// Audio-only formats win over muxed ones.
func selectAudioFormat(formats youtube.FormatList) *youtube.Format {
	var best *youtube.Format
	for i := range formats {
		candidate := &formats[i]
		if candidate.AudioChannels <= 0 {
			continue
		}
		if best == nil || betterAudio(candidate, best) {
			best = candidate
		}
	}
	return best
}

func betterAudio(a, b *youtube.Format) bool {
	aOnly := strings.HasPrefix(a.MimeType, "audio/")
	bOnly := strings.HasPrefix(b.MimeType, "audio/")
	if aOnly != bOnly {
		return aOnly
	}
	if qa, qb := audioQualityRank(a.AudioQuality), audioQualityRank(b.AudioQuality); qa != qb {
		return qa > qb
	}
	return a.Bitrate > b.Bitrate
}

func audioQualityRank(quality string) int {
	switch quality {
	case "AUDIO_QUALITY_HIGH":
		return 3
	case "AUDIO_QUALITY_MEDIUM":
		return 2
	case "AUDIO_QUALITY_LOW", "AUDIO_QUALITY_ULTRALOW":
		return 1
	}
	return 0
}
