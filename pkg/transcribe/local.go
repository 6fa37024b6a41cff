package transcribe

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	errs "ytdigest/pkg/errors"
	"ytdigest/pkg/logger"
)

const (
	defaultLocalCommand = "whisper"
	defaultLocalModel   = "base"
)

// LocalWhisper transcribes offline with the openai-whisper command line tool
type LocalWhisper struct {
	command string
	model   string
	logger  logger.Logger
}

// NewLocalWhisper creates an offline transcriber
func NewLocalWhisper(command, model string, log logger.Logger) *LocalWhisper {
	if command == "" {
		command = defaultLocalCommand
	}
	if model == "" {
		model = defaultLocalModel
	}
	return &LocalWhisper{command: command, model: model, logger: log}
}

// Transcribe runs whisper into a scratch directory and reads back the .txt it writes
func (l *LocalWhisper) Transcribe(ctx context.Context, audioPath string) (string, error) {
	outDir, err := os.MkdirTemp("", "ytdigest-whisper-")
	if err != nil {
		return "", errs.New(errs.ErrorTypeTranscription, "local whisper", err)
	}
	defer os.RemoveAll(outDir)

	cmd := exec.CommandContext(ctx, l.command, audioPath,
		"--model", l.model,
		"--output_format", "txt",
		"--output_dir", outDir,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	l.logger.DebugWithFields("running local whisper", map[string]interface{}{
		"command": l.command,
		"model":   l.model,
		"path":    audioPath,
	})

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			err = fmt.Errorf("%w: %s", err, msg)
		}
		return "", errs.New(errs.ErrorTypeTranscription, "local whisper", err)
	}

	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	data, err := os.ReadFile(filepath.Join(outDir, base+".txt"))
	if err != nil {
		return "", errs.New(errs.ErrorTypeTranscription, "read transcript", err)
	}

	return strings.TrimSpace(string(data)), nil
}
