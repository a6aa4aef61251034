package logger

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Entry accumulates metric fields for one log line. The logger is taken
// from the context at emit time, so request fields are kept.
//
//	logger.With(logger.Fields{logger.FieldPageIndex: 2}).
//	    WithCount(12).WithDuration(elapsed).Info(ctx, "Page fetched")
type Entry struct {
	base   *Logger
	fields Fields
}

// With starts an Entry with fields.
func With(fields Fields) *Entry {
	return &Entry{base: GetDefault(), fields: fields}
}

// With returns a copy of e extended by fields.
func (e *Entry) With(fields Fields) *Entry {
	merged := make(Fields, len(e.fields)+len(fields))
	for k, v := range e.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &Entry{base: e.base, fields: merged}
}

func (e *Entry) WithField(key string, value interface{}) *Entry {
	return e.With(Fields{key: value})
}

// WithDuration records d in whole milliseconds.
func (e *Entry) WithDuration(d time.Duration) *Entry {
	return e.WithField(FieldDurationMs, d.Milliseconds())
}

func (e *Entry) WithCount(n int) *Entry {
	return e.WithField(FieldCount, n)
}

func (e *Entry) WithStatus(status interface{}) *Entry {
	return e.WithField(FieldStatus, status)
}

func (e *Entry) Debug(ctx context.Context, format string, args ...interface{}) {
	e.log(ctx, logrus.DebugLevel, format, args...)
}

func (e *Entry) Info(ctx context.Context, format string, args ...interface{}) {
	e.log(ctx, logrus.InfoLevel, format, args...)
}

func (e *Entry) Warn(ctx context.Context, format string, args ...interface{}) {
	e.log(ctx, logrus.WarnLevel, format, args...)
}

func (e *Entry) Error(ctx context.Context, format string, args ...interface{}) {
	e.log(ctx, logrus.ErrorLevel, format, args...)
}

func (e *Entry) log(ctx context.Context, level logrus.Level, format string, args ...interface{}) {
	l, ok := fromContext(ctx)
	if !ok {
		l = e.base
	}
	l.WithFields(e.fields).Logf(level, format, args...)
}
