package logger

import (
	"fmt"
	"io"

	"github.com/jacobsenj/canto-fal/internal/utils"

	"github.com/getsentry/sentry-go"
	sentrylogrus "github.com/getsentry/sentry-go/logrus"
	"github.com/sirupsen/logrus"
)

// Logger wraps the logrus logger with additional functionality
type Logger struct {
	log *logrus.Logger
}

// Options configures Setup
type Options struct {
	Level       string
	SentryDSN   string
	Environment string
	Release     string
}

// New creates a new Logger instance
func New(log *logrus.Logger) *Logger {
	return &Logger{
		log: log,
	}
}

// Setup builds a JSON logger and attaches the Sentry hook when a DSN is configured
func Setup(opts Options) (*Logger, error) {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if opts.SentryDSN == "" {
		return New(log), nil
	}

	clientOptions := sentry.ClientOptions{
		Dsn:         opts.SentryDSN,
		Environment: opts.Environment,
		Release:     opts.Release,
	}
	if err := sentry.Init(clientOptions); err != nil {
		return nil, fmt.Errorf("failed to initialize Sentry: %w", err)
	}

	levels := []logrus.Level{logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel}
	hook, err := sentrylogrus.New(levels, clientOptions)
	if err != nil {
		log.WithError(err).Error("Failed to initialize Sentry hook")
	} else {
		log.AddHook(hook)
		log.Info("Sentry integration initialized successfully")
	}

	return New(log), nil
}

// Discard returns a logger that drops everything, used by tests
func Discard() *Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return New(log)
}

// Logrus exposes the wrapped logger for libraries that need it
func (l *Logger) Logrus() *logrus.Logger {
	return l.log
}

// SecureLog logs errors without sensitive data that might expose code or credentials
func (l *Logger) SecureLog(err error, message string, route string) {
	requestID := utils.GenerateShortID()

	// Log only necessary information, avoid including stack traces or request bodies
	l.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"route":      route,
		"error_msg":  err.Error(),
	}).Error(message)
}

// WithField adds a field to the logger
func (l *Logger) WithField(key string, value interface{}) *logrus.Entry {
	return l.log.WithField(key, value)
}

// WithFields adds multiple fields to the logger
func (l *Logger) WithFields(fields logrus.Fields) *logrus.Entry {
	return l.log.WithFields(fields)
}

// ForStorage scopes log entries to one storage
func (l *Logger) ForStorage(storageID int) *logrus.Entry {
	return l.log.WithField("storage", storageID)
}

// ForResource scopes log entries to one identifier within a storage
func (l *Logger) ForResource(storageID int, identifier string) *logrus.Entry {
	return l.log.WithFields(logrus.Fields{"storage": storageID, "identifier": identifier})
}

// WithError adds an error field to the logger
func (l *Logger) WithError(err error) *logrus.Entry {
	return l.log.WithError(err)
}

// Info logs an info message
func (l *Logger) Info(args ...interface{}) {
	l.log.Info(args...)
}

// Infof logs an info message with formatting
func (l *Logger) Infof(format string, args ...interface{}) {
	l.log.Infof(format, args...)
}

// Error logs an error message
func (l *Logger) Error(args ...interface{}) {
	l.log.Error(args...)
}

// Errorf logs an error message with formatting
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.log.Errorf(format, args...)
}

// Debug logs a debug message
func (l *Logger) Debug(args ...interface{}) {
	l.log.Debug(args...)
}

// Debugf logs a debug message with formatting
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.log.Debugf(format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(args ...interface{}) {
	l.log.Warn(args...)
}

// Warnf logs a warning message with formatting
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.log.Warnf(format, args...)
}
