package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// AudioExtension is appended to every downloaded audio file
const AudioExtension = ".mp4"

// fallbackName is used when a title sanitizes to nothing
const fallbackName = "audio"

// Manager owns the directory downloaded audio is written to
type Manager struct {
	outputDir string
}

// NewManager creates a new storage manager, creating outputDir if needed
func NewManager(outputDir string) (*Manager, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	return &Manager{outputDir: outputDir}, nil
}

// FileName derives the audio file name for a video title.
// The same title always maps to the same name.
func FileName(title string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, title)

	name = strings.Trim(name, " .")
	if name == "" {
		name = fallbackName
	}
	return name + AudioExtension
}

// PathFor returns the full path the audio for title is stored at
func (m *Manager) PathFor(title string) string {
	return filepath.Join(m.outputDir, FileName(title))
}

// Exists reports whether audio for title is already on disk
func (m *Manager) Exists(title string) bool {
	_, err := os.Stat(m.PathFor(title))
	return err == nil
}

// SaveAudio writes r to the audio file for title and returns its path
func (m *Manager) SaveAudio(r io.Reader, title string) (string, error) {
	filename := m.PathFor(title)

	// Create temporary file first
	tempFile := filename + ".part"
	out, err := os.Create(tempFile)
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}

	_, err = io.Copy(out, r)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		return "", fmt.Errorf("failed to save audio data: %w", err)
	}

	if closeErr != nil {
		os.Remove(tempFile)
		return "", fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := os.Rename(tempFile, filename); err != nil {
		os.Remove(tempFile)
		return "", fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return filename, nil
}

// Remove deletes a downloaded audio file
func (m *Manager) Remove(path string) error {
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete audio file: %w", err)
	}
	return nil
}

// GetOutputDir returns the output directory path
func (m *Manager) GetOutputDir() string {
	return m.outputDir
}
