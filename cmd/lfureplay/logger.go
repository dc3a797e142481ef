/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package main

import (
	"io"

	"github.com/acronis/go-appkit/log"
	"github.com/ssgreg/logf"
	"github.com/ssgreg/logftext"
)

// newLogger creates a logger that writes to the injected stdout or stderr
// so the replay output and the log stream can be separated (and captured in tests).
// File output with rotation is delegated to log.NewLogger.
func newLogger(cfg *log.Config, stdout, stderr io.Writer) (log.FieldLogger, log.CloseFunc) {
	var w io.Writer
	switch cfg.Output {
	case log.OutputFile:
		return log.NewLogger(cfg)
	case log.OutputStderr:
		w = stderr
	default:
		w = stdout
	}

	var appender logf.Appender
	if cfg.Format == log.FormatText {
		noColor := cfg.NoColor
		appender = logftext.NewAppender(w, logftext.EncoderConfig{NoColor: &noColor})
	} else {
		appender = logf.NewWriteAppender(w, logf.NewJSONEncoder(logf.JSONEncoderConfig{FieldKeyTime: "time"}))
	}
	channel, closeFunc := logf.NewChannelWriter(logf.ChannelWriterConfig{
		Appender:          appender,
		EnableSyncOnError: true,
	})
	logger := logf.NewLogger(logfLevel(cfg.Level), channel)
	if cfg.AddCaller {
		logger = logger.WithCaller().WithCallerSkip(1)
	}
	return &log.LogfAdapter{Logger: logger}, log.CloseFunc(closeFunc)
}

func logfLevel(level log.Level) logf.Level {
	switch level {
	case log.LevelError:
		return logf.LevelError
	case log.LevelWarn:
		return logf.LevelWarn
	case log.LevelDebug:
		return logf.LevelDebug
	}
	return logf.LevelInfo
}
