package config

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/downd/fishingcv/pkg/errors"
)

// CleanupLogFile clears the log file before starting logging
func CleanupLogFile(filePath string) error {
	if filePath == "" {
		return nil
	}
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil
	}

	logDir := filepath.Dir(filePath)
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return errors.Wrap(ErrLogDirectoryCreationFailed, err, "failed to create log directory")
	}

	file, err := os.OpenFile(filePath, os.O_WRONLY|os.O_TRUNC, 0666)
	if err != nil {
		return errors.Wrap(ErrLogFileOpenFailed, err, "failed to open log file for cleanup")
	}
	return file.Close()
}

// openLogFile opens (creating the directory if needed) the append-mode log
// file.
func openLogFile(filePath string) (io.Writer, error) {
	logDir := filepath.Dir(filePath)
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, errors.Wrap(ErrLogDirectoryCreationFailed, err, "failed to create log directory")
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, errors.Wrap(ErrLogFileOpenFailed, err, "failed to open log file")
	}
	return file, nil
}

// SetupLogger creates a configured zerolog logger based on the configuration
func SetupLogger(cfg *Config) (zerolog.Logger, error) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var writers []io.Writer

	if cfg.Log.Console {
		if cfg.Log.Format == "json" {
			writers = append(writers, os.Stdout)
		} else {
			writers = append(writers, zerolog.ConsoleWriter{
				Out:        os.Stdout,
				TimeFormat: time.RFC3339,
			})
		}
	}

	if cfg.Log.FilePath != "" {
		if cfg.Log.Cleanup {
			if err := CleanupLogFile(cfg.Log.FilePath); err != nil {
				return zerolog.Logger{}, errors.Wrap(ErrLogCleanupFailed, err, "failed to cleanup log file")
			}
		}

		fileWriter, err := openLogFile(cfg.Log.FilePath)
		if err != nil {
			return zerolog.Logger{}, err
		}
		writers = append(writers, fileWriter)
	}

	var out io.Writer
	switch len(writers) {
	case 0:
		out = io.Discard
	case 1:
		out = writers[0]
	default:
		out = zerolog.MultiLevelWriter(writers...)
	}

	logger := zerolog.New(out).With().
		Timestamp().
		Str("component", "fishingcv").
		Logger()

	return logger, nil
}
