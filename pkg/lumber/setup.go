// Logging package for coverage extractor diagnostics

package lumber

import (
	"io"
	"os"
	"strings"

	"github.com/LambdaTest/coverage-extractor/pkg/errs"
)

// LoggingConfig stores the config for the logger
// For some loggers there can only be one level across writers, for such the level of Console is picked by default
type LoggingConfig struct {
	Backend           string `validate:"omitempty,oneof=zap logrus"`
	EnableConsole     bool
	ConsoleJSONFormat bool
	ConsoleLevel      string
	EnableFile        bool
	FileJSONFormat    bool
	FileLevel         string
	FileLocation      string
}

// Fields Type to pass when we want to call WithFields for structured logging
type Fields map[string]interface{}

const (
	// Debug has verbose message
	Debug = "debug"
	// Info is default log level
	Info = "info"
	// Warn is for logging messages about possible issues
	Warn = "warn"
	// Error is for logging errors
	Error = "error"
	// Fatal is for logging fatal messages. The system shutsdown after logging the message.
	Fatal = "fatal"
)

// List of supported loggers.
const (
	InstanceZapLogger int = iota
	InstanceLogrusLogger
)

// console is where console logs go. stdout is reserved for the coverage result.
var console io.Writer = os.Stderr

// Logger is our contract for the logger
type Logger interface {
	// Debugf logs a message at level Debug on the standard logger.
	Debugf(format string, args ...interface{})
	// Infof logs a message at level Info on the standard logger.
	Infof(format string, args ...interface{})
	// Warnf logs a message at level Warn on the standard logger.
	Warnf(format string, args ...interface{})
	// Errorf logs a message at level Error on the standard logger.
	Errorf(format string, args ...interface{})
	// Fatalf logs a message at level Fatal on the standard logger then the process will exit with status set to 1.
	Fatalf(format string, args ...interface{})
	// Panicf logs a message at level Panic on the standard logger.
	Panicf(format string, args ...interface{})
	// WithFields creates an entry from the standard logger and adds fields to
	// it. Note that it doesn't log until you call Debugf, Infof, Warnf, Errorf,
	// Fatalf or Panicf on the Logger it returns.
	WithFields(keyValues Fields) Logger
}

// InstanceFor maps a backend name from configuration to a logger instance.
// Unknown names map to -1, which NewLogger rejects.
func InstanceFor(backend string) int {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", "zap":
		return InstanceZapLogger
	case "logrus":
		return InstanceLogrusLogger
	default:
		return -1
	}
}

// NewLogger returns an instance of logger
func NewLogger(config LoggingConfig, verbose bool, loggerInstance int) (Logger, error) {
	switch loggerInstance {
	case InstanceZapLogger:
		logger := newZapLogger(config, verbose)
		return logger, nil

	case InstanceLogrusLogger:
		logger, err := newLogrusLogger(config, verbose)
		if err != nil {
			return nil, err
		}
		return logger, nil

	default:
		return nil, errs.ErrInvalidLoggerInstance
	}
}
