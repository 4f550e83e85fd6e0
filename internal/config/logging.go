package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Logging format constants
const (
	LoggingFormatText   = "text"
	LoggingFormatJSONL  = "jsonl"
	LoggingFormatPretty = "pretty"
)

// IsValidLoggingFormat returns true if the provided format is supported.
func IsValidLoggingFormat(f string) bool {
	return f == LoggingFormatText || f == LoggingFormatJSONL || f == LoggingFormatPretty
}

// LogRotationConfig holds configuration for log rotation
type LogRotationConfig struct {
	MaxAge     int  `yaml:"maxAge" toml:"maxAge" json:"maxAge"`             // days to retain rotated files
	MaxSize    int  `yaml:"maxSize" toml:"maxSize" json:"maxSize"`          // megabytes before rotation
	MaxBackups int  `yaml:"maxBackups" toml:"maxBackups" json:"maxBackups"` // rotated files to keep
	Compress   bool `yaml:"compress" toml:"compress" json:"compress"`
}

// DefaultLogRotationConfig returns sensible defaults for log rotation
func DefaultLogRotationConfig() LogRotationConfig {
	return LogRotationConfig{
		MaxAge:     30,
		MaxSize:    10,
		MaxBackups: 5,
		Compress:   true,
	}
}

// SetupLogRotation returns a rotating writer for logPath, creating its
// directory. Returns nil when the directory cannot be created.
func SetupLogRotation(logPath string, cfg LogRotationConfig) *lumberjack.Logger {
	if err := os.MkdirAll(filepath.Dir(logPath), 0o750); err != nil {
		log.Printf("Failed to create log directory: %v", err)
		return nil
	}

	return &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
		LocalTime:  true,
	}
}

// CleanupOldLogs removes .log and .gz files in logDir older than maxAgeDays.
// It complements lumberjack, which only prunes its own backups.
func CleanupOldLogs(logDir string, maxAgeDays int) (int, error) {
	if maxAgeDays <= 0 {
		return 0, nil
	}

	cutoff := time.Now().AddDate(0, 0, -maxAgeDays)
	removed := 0

	err := filepath.Walk(logDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".log" && ext != ".gz" {
			return nil
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(path); err != nil {
				log.Printf("Failed to remove old log file %s: %v", path, err)
				return nil
			}
			removed++
		}
		return nil
	})
	if err != nil {
		return removed, fmt.Errorf("cleanup %s: %w", logDir, err)
	}
	return removed, nil
}

// GetHookLogPath returns the per-hook debug log path used by `hooks run --log`
func GetHookLogPath(baseDir, hookKey string) string {
	return filepath.Join(baseDir, fmt.Sprintf("%s.log", hookKey))
}
