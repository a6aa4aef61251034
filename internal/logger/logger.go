package logger

import (
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const timestampFormat = "2006-01-02T15:04:05.000Z07:00"

// Logger wraps logrus.Entry with the service field already attached.
type Logger struct {
	*logrus.Entry
}

// Config controls level, encoding and destination.
// When Output is nil, logs go to stdout and, outside the "local"
// environment, also to a rotated File.
type Config struct {
	Level       string // debug, info, warn, error
	Format      string // json, text
	Output      io.Writer
	ServiceName string

	Environment string // local, dev, prod
	File        string
	FileOnly    bool
	Rotation    Rotation
}

// Rotation is passed through to lumberjack.
type Rotation struct {
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// ConfigFromEnv reads LOG_LEVEL, LOG_FORMAT, SERVICE_NAME, APP_ENV,
// LOG_FILE, LOG_FILE_ONLY and the LOG_MAX_* rotation settings.
func ConfigFromEnv() *Config {
	return &Config{
		Level:       envString("LOG_LEVEL", "info"),
		Format:      envString("LOG_FORMAT", "json"),
		ServiceName: envString("SERVICE_NAME", "pokedex"),
		Environment: envString("APP_ENV", "local"),
		File:        envString("LOG_FILE", "/var/log/pokedex/app.log"),
		FileOnly:    envBool("LOG_FILE_ONLY", false),
		Rotation: Rotation{
			MaxSizeMB:  envInt("LOG_MAX_SIZE", 100),
			MaxBackups: envInt("LOG_MAX_BACKUPS", 7),
			MaxAgeDays: envInt("LOG_MAX_AGE", 30),
			Compress:   envBool("LOG_COMPRESS", true),
		},
	}
}

var (
	openFiles   []io.Closer
	openFilesMu sync.Mutex
)

// New builds a Logger from cfg. A nil cfg logs info-level JSON to stdout.
func New(cfg *Config) *Logger {
	if cfg == nil {
		cfg = &Config{Level: "info", Format: "json"}
	}
	service := cfg.ServiceName
	if service == "" {
		service = "pokedex"
	}

	base := logrus.New()
	base.SetLevel(parseLevel(cfg.Level))
	base.SetReportCaller(true)
	base.SetFormatter(formatter(cfg.Format))
	base.SetOutput(cfg.writer())

	return &Logger{Entry: base.WithField("service", service)}
}

// NewDefault builds a Logger from the environment.
func NewDefault() *Logger {
	return New(ConfigFromEnv())
}

// Discard returns a logger that writes nothing.
func Discard() *Logger {
	return New(&Config{Level: "panic", Output: io.Discard, ServiceName: "test"})
}

// Sync closes any rotated log files opened by New.
func Sync() error {
	openFilesMu.Lock()
	defer openFilesMu.Unlock()

	var firstErr error
	for _, f := range openFiles {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	openFiles = nil
	return firstErr
}

func (c *Config) writer() io.Writer {
	if c.Output != nil {
		return c.Output
	}
	local := c.Environment == "" || c.Environment == "local"
	if local || c.File == "" {
		return os.Stdout
	}

	file := &lumberjack.Logger{
		Filename:   c.File,
		MaxSize:    c.Rotation.MaxSizeMB,
		MaxBackups: c.Rotation.MaxBackups,
		MaxAge:     c.Rotation.MaxAgeDays,
		Compress:   c.Rotation.Compress,
	}
	openFilesMu.Lock()
	openFiles = append(openFiles, file)
	openFilesMu.Unlock()

	if c.FileOnly {
		return file
	}
	return io.MultiWriter(os.Stdout, file)
}

func parseLevel(level string) logrus.Level {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return logrus.InfoLevel
	}
	return parsed
}

func formatter(format string) logrus.Formatter {
	if strings.EqualFold(format, "text") {
		return &logrus.TextFormatter{
			FullTimestamp:    true,
			TimestampFormat:  timestampFormat,
			CallerPrettyfier: shortCaller,
		}
	}
	return &logrus.JSONFormatter{
		TimestampFormat: timestampFormat,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
		CallerPrettyfier: shortCaller,
	}
}

// shortCaller reports callers as pkg.Func and file.go:line.
func shortCaller(frame *runtime.Frame) (string, string) {
	fn := frame.Function
	if idx := strings.LastIndex(fn, "/"); idx != -1 {
		fn = fn[idx+1:]
	}
	return fn, filepath.Base(frame.File) + ":" + strconv.Itoa(frame.Line)
}

// WithFields returns a child Logger carrying fields.
func (l *Logger) WithFields(fields Fields) *Logger {
	return &Logger{Entry: l.Entry.WithFields(logrus.Fields(fields))}
}

// WithField returns a child Logger carrying key=value.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{Entry: l.Entry.WithField(key, value)}
}

// WithError returns a child Logger carrying err.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{Entry: l.Entry.WithError(err)}
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return def
}

func envInt(key string, def int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return def
}
