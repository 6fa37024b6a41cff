package youtube

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	ytapi "google.golang.org/api/youtube/v3"

	errs "ytdigest/pkg/errors"
	"ytdigest/pkg/logger"
	"ytdigest/pkg/models"
)

// MaxSearchResults is the largest page the search endpoint accepts
const MaxSearchResults = 50

// ErrNoUploads is returned when a channel has nothing published
var ErrNoUploads = errors.New("channel has no uploads")

// Client wraps the YouTube Data API v3
type Client struct {
	service *ytapi.Service
	logger  logger.Logger
}

// NewClient creates a Data API client authenticated with apiKey.
// Extra options are appended after the key, e.g. option.WithEndpoint in tests.
func NewClient(ctx context.Context, apiKey string, log logger.Logger, opts ...option.ClientOption) (*Client, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	if apiKey == "" {
		return nil, errs.New(errs.ErrorTypePlatform, "create client", errors.New("API key is required"))
	}

	clientOpts := append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	service, err := ytapi.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, errs.New(errs.ErrorTypePlatform, "create client", err)
	}

	return &Client{service: service, logger: log}, nil
}

// LatestUpload returns the most recent video in a channel's uploads playlist
func (c *Client) LatestUpload(ctx context.Context, channelID string) (*models.VideoRef, error) {
	uploads, err := c.uploadsPlaylist(ctx, channelID)
	if err != nil {
		return nil, err
	}

	resp, err := c.service.PlaylistItems.
		List([]string{"snippet"}).
		PlaylistId(uploads).
		MaxResults(1).
		Context(ctx).
		Do()
	if err != nil {
		return nil, platformError("list playlist items", err)
	}

	if len(resp.Items) == 0 || resp.Items[0].Snippet == nil {
		return nil, errs.New(errs.ErrorTypePlatform, "list playlist items", ErrNoUploads)
	}

	snippet := resp.Items[0].Snippet
	if snippet.ResourceId == nil || snippet.ResourceId.VideoId == "" {
		return nil, errs.New(errs.ErrorTypePlatform, "list playlist items",
			fmt.Errorf("playlist item in %s has no video id", uploads))
	}

	video := &models.VideoRef{
		VideoID: snippet.ResourceId.VideoId,
		Title:   snippet.Title,
	}

	c.logger.DebugWithFields("Resolved latest upload", map[string]interface{}{
		"channel_id": channelID,
		"playlist":   uploads,
		"video_id":   video.VideoID,
	})

	return video, nil
}

// uploadsPlaylist looks up the id of the channel's uploads playlist
func (c *Client) uploadsPlaylist(ctx context.Context, channelID string) (string, error) {
	if channelID == "" {
		return "", errs.New(errs.ErrorTypePlatform, "list channels", errors.New("channel id is required"))
	}

	resp, err := c.service.Channels.
		List([]string{"contentDetails"}).
		Id(channelID).
		Context(ctx).
		Do()
	if err != nil {
		return "", platformError("list channels", err)
	}

	if len(resp.Items) == 0 {
		return "", errs.New(errs.ErrorTypePlatform, "list channels", fmt.Errorf("channel %s not found", channelID))
	}

	details := resp.Items[0].ContentDetails
	if details == nil || details.RelatedPlaylists == nil || details.RelatedPlaylists.Uploads == "" {
		return "", errs.New(errs.ErrorTypePlatform, "list channels", ErrNoUploads)
	}

	return details.RelatedPlaylists.Uploads, nil
}

// Search runs a keyword search restricted to videos. Results keep API order.
func (c *Client) Search(ctx context.Context, query string, maxResults int64) ([]models.SearchResult, error) {
	if query == "" {
		return nil, errs.New(errs.ErrorTypePlatform, "search", errors.New("query is required"))
	}
	if maxResults < 1 || maxResults > MaxSearchResults {
		return nil, errs.New(errs.ErrorTypePlatform, "search",
			fmt.Errorf("max results must be between 1 and %d, got %d", MaxSearchResults, maxResults))
	}

	resp, err := c.service.Search.
		List([]string{"snippet"}).
		Q(query).
		Type("video").
		MaxResults(maxResults).
		Context(ctx).
		Do()
	if err != nil {
		return nil, platformError("search", err)
	}

	results := make([]models.SearchResult, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Id == nil || item.Id.VideoId == "" || item.Snippet == nil {
			continue
		}
		results = append(results, models.SearchResult{
			VideoID: item.Id.VideoId,
			Title:   item.Snippet.Title,
		})
	}

	c.logger.DebugWithFields("Search completed", map[string]interface{}{
		"query":   query,
		"results": len(results),
	})

	return results, nil
}

// platformError keeps the HTTP status of API failures, e.g. 400 for an invalid key
func platformError(op string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return errs.WithCode(errs.ErrorTypePlatform, op, apiErr.Code, err)
	}
	return errs.New(errs.ErrorTypePlatform, op, err)
}
