package log

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

var (
	logger zerolog.Logger
	mu     sync.Mutex
	ready  bool
)

// Init configures the process-wide logger. Output goes to stderr so stdout
// stays clean for the TUI and one-shot command output.
func Init(level string) {
	mu.Lock()
	defer mu.Unlock()

	console := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "2006-01-02 15:04:05",
	}
	logger = zerolog.New(console).Level(parseLevel(level)).With().Timestamp().Logger()
	ready = true
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func Debugf(format string, args ...any) {
	if ready {
		logger.Debug().Msg(fmt.Sprintf(format, args...))
	}
}

func Info(msg string) {
	if ready {
		logger.Info().Msg(msg)
	}
}

func Infof(format string, args ...any) {
	if ready {
		logger.Info().Msg(fmt.Sprintf(format, args...))
	}
}

func Warn(msg string) {
	if ready {
		logger.Warn().Msg(msg)
	}
}

func Warnf(format string, args ...any) {
	if ready {
		logger.Warn().Msg(fmt.Sprintf(format, args...))
	}
}

func Error(msg string) {
	if ready {
		logger.Error().Msg(msg)
	}
}

func Errorf(format string, args ...any) {
	if ready {
		logger.Error().Msg(fmt.Sprintf(format, args...))
	}
}
