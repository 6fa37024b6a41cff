// Package checkpoint records the last video that was fully processed.
//
// The checkpoint is a single line of text, "{video_id},\t{video_title}",
// overwritten in full (temp file, fsync, rename) after every successful run.
// A missing or blank file means no video has been processed yet. Only the id
// matters for change detection; the title is kept for humans reading the file.
package checkpoint
