package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LogLevel orders message severities from debug up to error.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return fmt.Sprintf("unknown(%d)", l)
	}
}

var (
	setupOnce sync.Once
	threshold LogLevel
)

// setup reads the environment exactly once, on first use. DEBUG=1 (or
// true/yes/on) forces debug regardless of LOG_LEVEL; otherwise LOG_LEVEL
// picks the threshold and anything unrecognized means info.
//
// With LOG_FILE set, output additionally goes to a size-rotated file
// (LOG_MAX_SIZE_MB, LOG_MAX_BACKUPS, LOG_MAX_AGE_DAYS tune rotation).
// Stderr always stays attached so container logs keep working.
func setup() {
	setupOnce.Do(func() {
		threshold = levelFromEnv()

		if logFile := os.Getenv("LOG_FILE"); logFile != "" {
			rotator := &lumberjack.Logger{
				Filename:   logFile,
				MaxSize:    envInt("LOG_MAX_SIZE_MB", 50),
				MaxBackups: envInt("LOG_MAX_BACKUPS", 3),
				MaxAge:     envInt("LOG_MAX_AGE_DAYS", 28),
				Compress:   true,
			}
			log.SetOutput(io.MultiWriter(os.Stderr, rotator))
		}
	})
}

func levelFromEnv() LogLevel {
	switch strings.ToLower(os.Getenv("DEBUG")) {
	case "1", "true", "yes", "on":
		return LevelDebug
	}

	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

// GetLevel returns the active threshold.
func GetLevel() LogLevel {
	setup()
	return threshold
}

// IsDebugEnabled reports whether debug messages are emitted. Callers use
// it to skip building expensive debug output.
func IsDebugEnabled() bool {
	return GetLevel() <= LevelDebug
}

func emit(level LogLevel, tag, format string, args []interface{}) {
	if GetLevel() <= level {
		log.Printf(tag+format, args...)
	}
}

func Debug(format string, args ...interface{}) { emit(LevelDebug, "[DEBUG] ", format, args) }

func Info(format string, args ...interface{}) { emit(LevelInfo, "[INFO] ", format, args) }

func Warn(format string, args ...interface{}) { emit(LevelWarn, "[WARN] ", format, args) }

func Error(format string, args ...interface{}) { emit(LevelError, "[ERROR] ", format, args) }

// Fatal logs and exits.
func Fatal(format string, args ...interface{}) {
	log.Fatalf("[FATAL] "+format, args...)
}
