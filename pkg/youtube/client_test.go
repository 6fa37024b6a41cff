package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	errs "ytdigest/pkg/errors"
	"ytdigest/pkg/logger"
	"ytdigest/pkg/models"
)

// mockDataAPI mimics the three Data API endpoints the client uses
type mockDataAPI struct {
	server        *httptest.Server
	channelCalls  int32
	playlistCalls int32
	searchCalls   int32

	channels  map[string]string // channel id -> uploads playlist id
	playlists map[string][]models.VideoRef
	search    []models.SearchResult
	rejectKey bool

	mu        sync.Mutex
	lastQuery searchParams
}

type searchParams struct {
	q          string
	maxResults string
	typ        string
	key        string
}

// newMockDataAPI applies setup before the server starts handling requests
func newMockDataAPI(t *testing.T, setup func(m *mockDataAPI)) *mockDataAPI {
	t.Helper()
	m := &mockDataAPI{
		channels:  map[string]string{},
		playlists: map[string][]models.VideoRef{},
	}
	if setup != nil {
		setup(m)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/youtube/v3/channels", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&m.channelCalls, 1)
		if m.reject(w) {
			return
		}
		items := []map[string]interface{}{}
		if uploads, ok := m.channels[r.URL.Query().Get("id")]; ok {
			items = append(items, map[string]interface{}{
				"id": r.URL.Query().Get("id"),
				"contentDetails": map[string]interface{}{
					"relatedPlaylists": map[string]interface{}{"uploads": uploads},
				},
			})
		}
		writeJSON(w, map[string]interface{}{"items": items})
	})
	mux.HandleFunc("/youtube/v3/playlistItems", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&m.playlistCalls, 1)
		if m.reject(w) {
			return
		}
		items := []map[string]interface{}{}
		for _, v := range m.playlists[r.URL.Query().Get("playlistId")] {
			items = append(items, map[string]interface{}{
				"snippet": map[string]interface{}{
					"title":      v.Title,
					"resourceId": map[string]interface{}{"kind": "youtube#video", "videoId": v.VideoID},
				},
			})
		}
		if n := r.URL.Query().Get("maxResults"); n == "1" && len(items) > 1 {
			items = items[:1]
		}
		writeJSON(w, map[string]interface{}{"items": items})
	})
	mux.HandleFunc("/youtube/v3/search", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&m.searchCalls, 1)
		if m.reject(w) {
			return
		}
		query := r.URL.Query()
		m.mu.Lock()
		m.lastQuery = searchParams{
			q:          query.Get("q"),
			maxResults: query.Get("maxResults"),
			typ:        query.Get("type"),
			key:        query.Get("key"),
		}
		m.mu.Unlock()
		items := []map[string]interface{}{}
		for _, res := range m.search {
			items = append(items, map[string]interface{}{
				"id":      map[string]interface{}{"kind": "youtube#video", "videoId": res.VideoID},
				"snippet": map[string]interface{}{"title": res.Title},
			})
		}
		writeJSON(w, map[string]interface{}{"items": items})
	})

	m.server = httptest.NewServer(mux)
	t.Cleanup(m.server.Close)
	return m
}

func (m *mockDataAPI) reject(w http.ResponseWriter) bool {
	if !m.rejectKey {
		return false
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_, _ = w.Write([]byte(`{"error":{"code":400,"message":"API key not valid. Please pass a valid API key.","errors":[{"reason":"keyInvalid","domain":"global"}]}}`))
	return true
}

func writeJSON(w http.ResponseWriter, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

func (m *mockDataAPI) client(t *testing.T) *Client {
	t.Helper()
	c, err := NewClient(context.Background(), "test-key", logger.NewTestLogger(), option.WithEndpoint(m.server.URL+"/"))
	require.NoError(t, err)
	return c
}

func TestLatestUpload(t *testing.T) {
	api := newMockDataAPI(t, func(m *mockDataAPI) {
		m.channels["UC123"] = "UU123"
		m.playlists["UU123"] = []models.VideoRef{
			{VideoID: "abc123", Title: "Episode 5"},
			{VideoID: "old999", Title: "Episode 4"},
		}
	})

	video, err := api.client(t).LatestUpload(context.Background(), "UC123")
	require.NoError(t, err)

	assert.Equal(t, "abc123", video.VideoID)
	assert.Equal(t, "Episode 5", video.Title)
	assert.EqualValues(t, 1, atomic.LoadInt32(&api.channelCalls))
	assert.EqualValues(t, 1, atomic.LoadInt32(&api.playlistCalls))
}

func TestLatestUploadFailures(t *testing.T) {
	t.Run("UnknownChannel", func(t *testing.T) {
		api := newMockDataAPI(t, nil)

		_, err := api.client(t).LatestUpload(context.Background(), "UCmissing")
		require.Error(t, err)
		assert.True(t, errs.Is(err, errs.ErrorTypePlatform))
		assert.EqualValues(t, 0, atomic.LoadInt32(&api.playlistCalls))
	})

	t.Run("NoUploadsPlaylist", func(t *testing.T) {
		api := newMockDataAPI(t, func(m *mockDataAPI) { m.channels["UC123"] = "" })

		_, err := api.client(t).LatestUpload(context.Background(), "UC123")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNoUploads)
	})

	t.Run("EmptyPlaylist", func(t *testing.T) {
		api := newMockDataAPI(t, func(m *mockDataAPI) { m.channels["UC123"] = "UU123" })

		_, err := api.client(t).LatestUpload(context.Background(), "UC123")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNoUploads)
		assert.True(t, errs.Is(err, errs.ErrorTypePlatform))
	})

	t.Run("InvalidKey", func(t *testing.T) {
		api := newMockDataAPI(t, func(m *mockDataAPI) { m.rejectKey = true })

		_, err := api.client(t).LatestUpload(context.Background(), "UC123")
		require.Error(t, err)

		var typed *errs.Error
		require.ErrorAs(t, err, &typed)
		assert.Equal(t, errs.ErrorTypePlatform, typed.Type)
		assert.Equal(t, http.StatusBadRequest, typed.Code)
	})

	t.Run("NetworkError", func(t *testing.T) {
		api := newMockDataAPI(t, nil)
		c := api.client(t)
		api.server.Close()

		_, err := c.LatestUpload(context.Background(), "UC123")
		require.Error(t, err)
		assert.True(t, errs.Is(err, errs.ErrorTypePlatform))
	})

	t.Run("EmptyChannelID", func(t *testing.T) {
		api := newMockDataAPI(t, nil)

		_, err := api.client(t).LatestUpload(context.Background(), "")
		require.Error(t, err)
		assert.EqualValues(t, 0, atomic.LoadInt32(&api.channelCalls))
	})
}

func TestSearch(t *testing.T) {
	api := newMockDataAPI(t, func(m *mockDataAPI) {
		m.search = []models.SearchResult{
			{VideoID: "v1", Title: "IoT in hospitals"},
			{VideoID: "v2", Title: "Smart wards"},
			{VideoID: "v3", Title: "Remote monitoring"},
		}
	})

	results, err := api.client(t).Search(context.Background(), "smart healthcare IoT", 5)
	require.NoError(t, err)

	require.Len(t, results, 3)
	assert.Equal(t, "v1", results[0].VideoID)
	assert.Equal(t, "Smart wards", results[1].Title)
	assert.Equal(t, "v3", results[2].VideoID)

	api.mu.Lock()
	params := api.lastQuery
	api.mu.Unlock()
	assert.Equal(t, "smart healthcare IoT", params.q)
	assert.Equal(t, "5", params.maxResults)
	assert.Equal(t, "video", params.typ)
	assert.Equal(t, "test-key", params.key)
}

func TestSearchValidation(t *testing.T) {
	api := newMockDataAPI(t, nil)
	c := api.client(t)

	_, err := c.Search(context.Background(), "", 5)
	assert.Error(t, err)

	_, err = c.Search(context.Background(), "query", 0)
	assert.Error(t, err)

	_, err = c.Search(context.Background(), "query", MaxSearchResults+1)
	assert.Error(t, err)

	assert.EqualValues(t, 0, atomic.LoadInt32(&api.searchCalls))
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(context.Background(), "", nil)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ErrorTypePlatform))
}

func TestWriteResults(t *testing.T) {
	var buf bytes.Buffer
	err := WriteResults(&buf, []models.SearchResult{
		{VideoID: "v1", Title: "First"},
		{VideoID: "v2", Title: "Second: with colon"},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	assert.Equal(t, []string{
		"First: https://www.youtube.com/watch?v=v1",
		"Second: with colon: https://www.youtube.com/watch?v=v2",
	}, lines)
}

func TestWriteResultsEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteResults(&buf, nil))
	assert.Empty(t, buf.String())
}
