package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

const LogFile = "protonup.log"

// LogDir is where the rotated log file lives.
func LogDir() string {
	return filepath.Join(xdg.CacheHome, "protonup-go")
}

// Init routes the global logger to a rotated file under dir plus any extra
// writers, and sets the global level. An unknown level falls back to info.
func Init(dir, level string, writers ...io.Writer) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}

	logWriters := []io.Writer{&lumberjack.Logger{
		Filename:   filepath.Join(dir, LogFile),
		MaxSize:    1,
		MaxBackups: 2,
	}}
	logWriters = append(logWriters, writers...)

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	log.Logger = log.Output(io.MultiWriter(logWriters...)).
		With().Timestamp().Logger()

	return nil
}

// Console is the human-readable writer used with --verbose.
func Console() io.Writer {
	return zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
}
