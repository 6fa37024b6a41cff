// Package storage manages the transient audio files a run downloads.
//
// Each file is named deterministically from the video title ("{title}.mp4",
// with characters that are illegal in file names replaced) and written through
// a ".part" temporary file that is renamed into place once complete, so a
// failed download never leaves a truncated file under the final name.
//
// Usage:
//
//	manager, err := storage.NewManager("./audio")
//	if err != nil {
//	    return err
//	}
//	path, err := manager.SaveAudio(stream, video.Title)
//	...
//	_ = manager.Remove(path)
package storage
