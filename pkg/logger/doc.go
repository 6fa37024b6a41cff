// Package logger provides a structured logging interface for ytdigest.
//
// It wraps the zerolog library behind a small Logger interface with support for:
//   - Log levels (Debug, Info, Warn, Error)
//   - Structured logging with fields
//   - Colored console output on stderr
//   - Append-only JSON line output to a log file
//
// Basic Usage:
//
//	cfg := &config.LoggingConfig{
//	    Level:   "info",
//	    File:    "youtube_summarizer.log",
//	    Console: true,
//	}
//	if err := logger.Initialize(cfg); err != nil {
//	    return err
//	}
//
//	logger.Info("No new video.")
//	logger.WithField("video_id", "abc123").Info("New video detected")
//	logger.WithError(err).Error("An error occurred during execution")
//
// Every file line carries a timestamp, level and message, so the log can be
// read after unattended (cron) runs. TestLogger captures messages in memory
// for assertions in tests.
package logger
