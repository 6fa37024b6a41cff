package models

import "net/url"

// WatchURLBase is the public watch page every video id is appended to
const WatchURLBase = "https://www.youtube.com/watch?v="

// VideoRef identifies the most recent upload of a channel
type VideoRef struct {
	VideoID string `json:"video_id"`
	Title   string `json:"title"`
}

// URL returns the public watch URL of the video
func (v VideoRef) URL() string {
	return WatchURL(v.VideoID)
}

// SearchResult is a single video returned by a keyword search
type SearchResult struct {
	VideoID string `json:"video_id"`
	Title   string `json:"title"`
}

// URL returns the public watch URL of the result
func (r SearchResult) URL() string {
	return WatchURL(r.VideoID)
}

// WatchURL builds the watch URL for a video id
func WatchURL(videoID string) string {
	return WatchURLBase + url.QueryEscape(videoID)
}
