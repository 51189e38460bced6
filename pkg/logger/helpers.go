package logger

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// LogRequest logs a completed HTTP request at a level chosen by its status code
func LogRequest(l Logger, method, url string, statusCode int, duration time.Duration) {
	fields := map[string]interface{}{
		"method":      method,
		"url":         url,
		"status_code": statusCode,
		"duration":    duration,
	}

	switch {
	case statusCode >= 500 || statusCode == 0:
		l.ErrorWithFields("HTTP request failed", fields)
	case statusCode >= 400:
		l.WarnWithFields("HTTP request client error", fields)
	default:
		l.DebugWithFields("HTTP request completed", fields)
	}
}

// LogStage logs the outcome of one pipeline stage
func LogStage(l Logger, stage string, in, out, failed int) {
	l.InfoWithFields("Stage finished", map[string]interface{}{
		"stage":  stage,
		"in":     in,
		"out":    out,
		"failed": failed,
	})
}

// LogDownload logs a single image download outcome
func LogDownload(l Logger, url, path string, skipped bool, err error) {
	entry := l.WithFields(map[string]interface{}{"url": url, "path": path})
	switch {
	case err != nil:
		entry.WithError(err).Warn("Download failed")
	case skipped:
		entry.Debug("Download skipped, file exists")
	default:
		entry.Debug("Download completed")
	}
}

// NewNopLogger creates a logger that discards everything
func NewNopLogger() Logger {
	return &nopLogger{}
}

type nopLogger struct{}

func (n *nopLogger) Debug(string)                                    {}
func (n *nopLogger) Info(string)                                     {}
func (n *nopLogger) Warn(string)                                     {}
func (n *nopLogger) Error(string)                                    {}
func (n *nopLogger) Fatal(string)                                    {}
func (n *nopLogger) WithField(string, interface{}) Logger            { return n }
func (n *nopLogger) WithFields(map[string]interface{}) Logger        { return n }
func (n *nopLogger) WithError(error) Logger                          { return n }
func (n *nopLogger) WithContext(context.Context) Logger              { return n }
func (n *nopLogger) DebugWithFields(string, map[string]interface{})  {}
func (n *nopLogger) InfoWithFields(string, map[string]interface{})   {}
func (n *nopLogger) WarnWithFields(string, map[string]interface{})   {}
func (n *nopLogger) ErrorWithFields(string, map[string]interface{})  {}
func (n *nopLogger) GetZerolog() *zerolog.Logger                     { z := zerolog.Nop(); return &z }

// LogSummary logs the final counters of a run
func LogSummary(l Logger, counts map[string]interface{}) {
	l.InfoWithFields("Run finished", counts)
}
