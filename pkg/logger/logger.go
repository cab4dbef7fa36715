// Package logger builds the agent's logrus logger with optional rotating
// file output.
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls log level, format, and the optional rotating file.
type Config struct {
	// Level is one of debug, info, warn, error. Unknown values fall back
	// to info.
	Level string
	// OutputFile enables rotating file output when non-empty. The logger
	// always writes to stderr as well.
	OutputFile string
	// MaxSize is the rotation threshold in megabytes. Zero means 100.
	MaxSize int
	// MaxBackups is how many rotated files to keep. Zero means 3.
	MaxBackups int
	// MaxAge is how many days to keep rotated files. Zero means 7.
	MaxAge int
	// Compress gzips rotated files.
	Compress bool
}

// New builds a logger from the config. Components derive their own entries
// with WithField; there is no package-global instance.
func New(cfg Config) *logrus.Logger {
	log := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	if cfg.OutputFile != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.OutputFile,
			MaxSize:    orDefault(cfg.MaxSize, 100),
			MaxBackups: orDefault(cfg.MaxBackups, 3),
			MaxAge:     orDefault(cfg.MaxAge, 7),
			Compress:   cfg.Compress,
		}
		log.SetOutput(io.MultiWriter(os.Stderr, rotator))
	}

	return log
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
