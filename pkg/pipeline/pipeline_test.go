package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"ytdigest/pkg/checkpoint"
	errs "ytdigest/pkg/errors"
	"ytdigest/pkg/logger"
	"ytdigest/pkg/models"
)

// recorder collects the order collaborators are called in
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) add(call string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

type fakeResolver struct {
	rec   *recorder
	video models.VideoRef
	err   error
}

func (f *fakeResolver) LatestUpload(ctx context.Context, channelID string) (*models.VideoRef, error) {
	f.rec.add("resolve:" + channelID)
	if f.err != nil {
		return nil, f.err
	}
	v := f.video
	return &v, nil
}

type fakeFetcher struct {
	rec  *recorder
	path string
	err  error
}

func (f *fakeFetcher) Fetch(ctx context.Context, video models.VideoRef) (string, error) {
	f.rec.add("fetch:" + video.VideoID)
	return f.path, f.err
}

type fakeTranscriber struct {
	rec  *recorder
	text string
	err  error
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	f.rec.add("transcribe:" + audioPath)
	return f.text, f.err
}

type fakeSummarizer struct {
	rec     *recorder
	summary string
	err     error
}

func (f *fakeSummarizer) Summarize(ctx context.Context, transcript string) (string, error) {
	f.rec.add("summarize:" + transcript)
	return f.summary, f.err
}

type fakeNotifier struct {
	rec   *recorder
	err   error
	sent  []string
	title string
}

func (f *fakeNotifier) Notify(ctx context.Context, summary, videoTitle string) error {
	f.rec.add("notify:" + videoTitle)
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, summary)
	f.title = videoTitle
	return nil
}

type fakeRemover struct {
	rec *recorder
	err error
}

func (f *fakeRemover) Remove(path string) error {
	f.rec.add("remove:" + path)
	return f.err
}

// recordingStore wraps the real checkpoint store so saves show up in the call order
type recordingStore struct {
	rec     *recorder
	store   *checkpoint.Store
	loadErr error
	saveErr error
}

func (s *recordingStore) Load() (*checkpoint.Checkpoint, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.store.Load()
}

func (s *recordingStore) Save(cp *checkpoint.Checkpoint) error {
	s.rec.add("save:" + cp.VideoID)
	if s.saveErr != nil {
		return s.saveErr
	}
	return s.store.Save(cp)
}

type harness struct {
	rec         *recorder
	log         *logger.TestLogger
	checkpoint  string
	store       *recordingStore
	resolver    *fakeResolver
	fetcher     *fakeFetcher
	transcriber *fakeTranscriber
	summarizer  *fakeSummarizer
	notifier    *fakeNotifier
	remover     *fakeRemover
}

func newHarness(t *testing.T, latest models.VideoRef) *harness {
	t.Helper()
	rec := &recorder{}
	path := filepath.Join(t.TempDir(), "last_video_id.txt")
	return &harness{
		rec:         rec,
		log:         logger.NewTestLogger(),
		checkpoint:  path,
		store:       &recordingStore{rec: rec, store: checkpoint.NewStore(path)},
		resolver:    &fakeResolver{rec: rec, video: latest},
		fetcher:     &fakeFetcher{rec: rec, path: "/audio/Episode 5.mp4"},
		transcriber: &fakeTranscriber{rec: rec, text: "transcript"},
		summarizer:  &fakeSummarizer{rec: rec, summary: "- point\n\nConclusion."},
		notifier:    &fakeNotifier{rec: rec},
		remover:     &fakeRemover{rec: rec},
	}
}

func (h *harness) pipeline() *Pipeline {
	return New(Deps{
		Store:       h.store,
		Resolver:    h.resolver,
		Fetcher:     h.fetcher,
		Transcriber: h.transcriber,
		Summarizer:  h.summarizer,
		Notifier:    h.notifier,
		Remover:     h.remover,
		ChannelID:   "UC123",
		Logger:      h.log,
	})
}

func (h *harness) writeCheckpoint(t *testing.T, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(h.checkpoint, []byte(content), 0o644))
}

func (h *harness) readCheckpoint(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(h.checkpoint)
	require.NoError(t, err)
	return string(data)
}

var episode5 = models.VideoRef{VideoID: "abc123", Title: "Episode 5"}

func TestRun_FirstRunProcessesLatestVideo(t *testing.T) {
	h := newHarness(t, episode5)

	result, err := h.pipeline().Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"resolve:UC123",
		"fetch:abc123",
		"transcribe:/audio/Episode 5.mp4",
		"summarize:transcript",
		"notify:Episode 5",
		"save:abc123",
		"remove:/audio/Episode 5.mp4",
	}, h.rec.list())

	assert.Equal(t, Processed, result.Outcome)
	assert.Equal(t, episode5, result.Video)
	assert.Equal(t, "- point\n\nConclusion.", result.Summary)
	assert.Empty(t, result.AudioPath)

	assert.Equal(t, []string{"- point\n\nConclusion."}, h.notifier.sent)
	assert.True(t, strings.HasPrefix(h.readCheckpoint(t), "abc123"))
	assert.Equal(t, "abc123,\tEpisode 5", h.readCheckpoint(t))
}

func TestRun_LogsEachStage(t *testing.T) {
	h := newHarness(t, episode5)

	_, err := h.pipeline().Run(context.Background())
	require.NoError(t, err)

	var got []string
	for _, msg := range h.log.GetMessagesByLevel("INFO") {
		got = append(got, msg.Message)
	}
	assert.Equal(t, []string{
		"New video detected",
		"Audio downloaded.",
		"Transcription complete.",
		"Summary generated.",
		"Summary sent via email.",
		"Video ID saved.",
		"Deleted audio file",
	}, got)

	for _, msg := range h.log.GetMessages() {
		assert.Equal(t, "abc123", msg.Fields["video_id"], msg.Message)
	}
}

func TestRun_SameVideoIsSkipped(t *testing.T) {
	tests := []struct {
		name       string
		checkpoint string
	}{
		{"identical line", "abc123,\tEpisode 5"},
		{"retitled video", "abc123,\tEpisode 5 (re-upload)"},
		{"missing title", "abc123"},
		{"trailing newline", "abc123,\tEpisode 5\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, episode5)
			h.writeCheckpoint(t, tt.checkpoint)

			result, err := h.pipeline().Run(context.Background())
			require.NoError(t, err)

			assert.Equal(t, NoNewVideo, result.Outcome)
			assert.Equal(t, episode5, result.Video)
			assert.Equal(t, []string{"resolve:UC123"}, h.rec.list())
			assert.Equal(t, tt.checkpoint, h.readCheckpoint(t))
			assert.True(t, h.log.HasMessage("No new video."))
		})
	}
}

func TestRun_NewerVideoReplacesCheckpoint(t *testing.T) {
	h := newHarness(t, models.VideoRef{VideoID: "def456", Title: "Episode 6"})
	h.writeCheckpoint(t, "abc123,\tEpisode 5")

	result, err := h.pipeline().Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Processed, result.Outcome)
	assert.Equal(t, "def456,\tEpisode 6", h.readCheckpoint(t))
	assert.Equal(t, "Episode 6", h.notifier.title)
}

func TestRun_StageFailures(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name      string
		breakIt   func(h *harness)
		wantType  errs.ErrorType
		wantCalls []string
	}{
		{
			name:      "resolver",
			breakIt:   func(h *harness) { h.resolver.err = boom },
			wantType:  errs.ErrorTypePlatform,
			wantCalls: []string{"resolve:UC123"},
		},
		{
			name:      "checkpoint load",
			breakIt:   func(h *harness) { h.store.loadErr = boom },
			wantType:  errs.ErrorTypeCheckpoint,
			wantCalls: nil,
		},
		{
			name:      "fetch",
			breakIt:   func(h *harness) { h.fetcher.err = boom },
			wantType:  errs.ErrorTypeDownload,
			wantCalls: []string{"resolve:UC123", "fetch:abc123"},
		},
		{
			name:     "transcribe",
			breakIt:  func(h *harness) { h.transcriber.err = boom },
			wantType: errs.ErrorTypeTranscription,
			wantCalls: []string{
				"resolve:UC123", "fetch:abc123", "transcribe:/audio/Episode 5.mp4",
			},
		},
		{
			name:     "summarize",
			breakIt:  func(h *harness) { h.summarizer.err = boom },
			wantType: errs.ErrorTypeSummarization,
			wantCalls: []string{
				"resolve:UC123", "fetch:abc123", "transcribe:/audio/Episode 5.mp4",
				"summarize:transcript",
			},
		},
		{
			name:     "notify",
			breakIt:  func(h *harness) { h.notifier.err = boom },
			wantType: errs.ErrorTypeDelivery,
			wantCalls: []string{
				"resolve:UC123", "fetch:abc123", "transcribe:/audio/Episode 5.mp4",
				"summarize:transcript", "notify:Episode 5",
			},
		},
		{
			name:     "checkpoint save",
			breakIt:  func(h *harness) { h.store.saveErr = boom },
			wantType: errs.ErrorTypeCheckpoint,
			wantCalls: []string{
				"resolve:UC123", "fetch:abc123", "transcribe:/audio/Episode 5.mp4",
				"summarize:transcript", "notify:Episode 5", "save:abc123",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, episode5)
			h.writeCheckpoint(t, "old999,\tEpisode 4")
			tt.breakIt(h)

			result, err := h.pipeline().Run(context.Background())
			require.Error(t, err)
			assert.Nil(t, result)

			assert.Equal(t, tt.wantType, errs.TypeOf(err))
			assert.ErrorIs(t, err, boom)
			assert.Equal(t, tt.wantCalls, h.rec.list())
			assert.Equal(t, "old999,\tEpisode 4", h.readCheckpoint(t))
		})
	}
}

func TestRun_FetchFailureLeavesNoCheckpoint(t *testing.T) {
	h := newHarness(t, episode5)
	h.fetcher.err = errors.New("network down")

	_, err := h.pipeline().Run(context.Background())
	require.Error(t, err)

	_, statErr := os.Stat(h.checkpoint)
	assert.True(t, os.IsNotExist(statErr))
	assert.Empty(t, h.notifier.sent)
}

func TestRun_KeepsStageErrorType(t *testing.T) {
	h := newHarness(t, episode5)
	// A fetcher that already classified its failure keeps its code
	h.fetcher.err = errs.WithCode(errs.ErrorTypeDownload, "open stream", 403, errors.New("forbidden"))

	_, err := h.pipeline().Run(context.Background())
	require.Error(t, err)

	var typed *errs.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, "open stream", typed.Op)
	assert.Equal(t, 403, typed.Code)
}

func TestRun_CleanupFailureIsOnlyAWarning(t *testing.T) {
	h := newHarness(t, episode5)
	h.remover.err = errors.New("permission denied")

	result, err := h.pipeline().Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Processed, result.Outcome)
	assert.Equal(t, "/audio/Episode 5.mp4", result.AudioPath)
	assert.Equal(t, "abc123,\tEpisode 5", h.readCheckpoint(t))

	warnings := h.log.GetMessagesByLevel("WARN")
	require.Len(t, warnings, 1)
	assert.Equal(t, "Failed to delete audio file", warnings[0].Message)
	assert.EqualError(t, warnings[0].Error, "permission denied")
}

func TestRun_NilRemoverKeepsAudio(t *testing.T) {
	h := newHarness(t, episode5)

	p := New(Deps{
		Store:       h.store,
		Resolver:    h.resolver,
		Fetcher:     h.fetcher,
		Transcriber: h.transcriber,
		Summarizer:  h.summarizer,
		Notifier:    h.notifier,
		ChannelID:   "UC123",
		Logger:      h.log,
	})

	result, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/audio/Episode 5.mp4", result.AudioPath)
	assert.NotContains(t, h.rec.list(), "remove:/audio/Episode 5.mp4")
	assert.False(t, h.log.HasMessage("Deleted audio file"))
}

func TestRun_SecondRunIsIdempotent(t *testing.T) {
	h := newHarness(t, episode5)
	p := h.pipeline()

	first, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Processed, first.Outcome)

	second, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, NoNewVideo, second.Outcome)

	assert.Len(t, h.notifier.sent, 1)
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "no_new_video", NoNewVideo.String())
	assert.Equal(t, "processed", Processed.String())
	assert.Equal(t, "unknown", Outcome(0).String())
}

type emptyResolver struct{}

func (emptyResolver) LatestUpload(ctx context.Context, channelID string) (*models.VideoRef, error) {
	return nil, nil
}

func TestRun_ResolverWithoutVideo(t *testing.T) {
	h := newHarness(t, episode5)
	p := New(Deps{
		Store:       h.store,
		Resolver:    emptyResolver{},
		Fetcher:     h.fetcher,
		Transcriber: h.transcriber,
		Summarizer:  h.summarizer,
		Notifier:    h.notifier,
		Remover:     h.remover,
		ChannelID:   "UC123",
		Logger:      h.log,
	})

	result, err := p.Run(context.Background())
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errs.Is(err, errs.ErrorTypePlatform))
	assert.ErrorIs(t, err, ErrNoVideo)
	assert.Empty(t, h.rec.list())
}
