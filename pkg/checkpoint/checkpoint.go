package checkpoint

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	errs "ytdigest/pkg/errors"
	"ytdigest/pkg/models"
)

// fieldSeparator sits between the video id and title on the checkpoint line
const fieldSeparator = ",\t"

// Checkpoint is the last video that was fully processed
type Checkpoint struct {
	VideoID    string
	VideoTitle string
}

// String renders the checkpoint in its on-disk form
func (c Checkpoint) String() string {
	return c.VideoID + fieldSeparator + c.VideoTitle
}

// FromVideo builds the checkpoint recorded after processing v
func FromVideo(v models.VideoRef) *Checkpoint {
	return &Checkpoint{VideoID: v.VideoID, VideoTitle: v.Title}
}

// Store reads and writes the single-line checkpoint file
type Store struct {
	path string
}

// NewStore creates a store backed by the file at path
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path
func (s *Store) Path() string {
	return s.path
}

// Load reads the checkpoint. It returns nil, nil when the file is absent or blank.
func (s *Store) Load() (*Checkpoint, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // first run
		}
		return nil, errs.New(errs.ErrorTypeCheckpoint, "read checkpoint", err)
	}

	line := strings.TrimSpace(string(data))
	if line == "" {
		return nil, nil
	}

	return Parse(line), nil
}

// Parse splits a checkpoint line on its first comma. A missing title is tolerated.
func Parse(line string) *Checkpoint {
	id, title, _ := strings.Cut(strings.TrimSpace(line), ",")
	return &Checkpoint{
		VideoID:    strings.TrimSpace(id),
		VideoTitle: strings.TrimSpace(title),
	}
}

// Save overwrites the checkpoint file atomically
func (s *Store) Save(cp *Checkpoint) error {
	if cp == nil || cp.VideoID == "" {
		return errs.New(errs.ErrorTypeCheckpoint, "save checkpoint", fmt.Errorf("video id is required"))
	}
	if err := s.write(cp.String()); err != nil {
		return errs.New(errs.ErrorTypeCheckpoint, "save checkpoint", err)
	}
	return nil
}

func (s *Store) write(line string) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create checkpoint directory: %w", err)
	}

	// Temp file lives next to the target so the rename stays on one filesystem
	tempPath := s.path + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary checkpoint file: %w", err)
	}

	w := bufio.NewWriter(file)
	if _, err := w.WriteString(line); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}
	if err := w.Flush(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to sync checkpoint file: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close checkpoint file: %w", err)
	}

	if err := os.Rename(tempPath, s.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace checkpoint file: %w", err)
	}

	return nil
}

// IsNew reports whether latest has not been processed yet.
// Only ids are compared; a retitled video is not new.
func IsNew(latest models.VideoRef, cp *Checkpoint) bool {
	return cp == nil || latest.VideoID != cp.VideoID
}
