// Package media downloads the audio track of a YouTube video to local disk.
//
// Two backends implement Fetcher:
//
//   - NativeFetcher streams the best audio format in-process with kkdai/youtube.
//   - YtDlpFetcher runs yt-dlp with "-f bestaudio/best".
//
// Both write to the path storage.Manager derives from the video title, so a
// given title always lands on the same file.
package media
