package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/timmy/pokedex/internal/domain"
	"github.com/timmy/pokedex/internal/logger"
)

// LogSink writes telemetry records to the structured logger.
type LogSink struct {
	logger *logger.Logger
}

// NewLogSink creates a sink logging through log; nil uses the context/default logger.
func NewLogSink(log *logger.Logger) *LogSink {
	return &LogSink{logger: log}
}

// Emit logs "<tag> <payload>" at info or error level.
func (s *LogSink) Emit(ctx context.Context, rec TelemetryRecord) {
	log := s.logger
	if log == nil || logger.HasContextLogger(ctx) {
		log = logger.FromContext(ctx)
	}

	entry := log.WithFields(logger.Fields{
		logger.FieldRemote:     rec.Attempt.RemoteName,
		logger.FieldVersion:    rec.Attempt.VersionLabel,
		logger.FieldComponent:  rec.Attempt.ComponentName,
		logger.FieldDurationMs: rec.Attempt.ElapsedMillis,
		logger.FieldStatus:     rec.Attempt.Outcome,
	})
	if rec.Severity == SeverityError {
		entry.Errorf("%s %s", rec.Tag, rec.Payload)
		return
	}
	entry.Infof("%s %s", rec.Tag, rec.Payload)
}

// MultiSink fans a record out to several sinks in order.
type MultiSink []TelemetrySink

// Emit forwards rec to every non-nil sink.
func (m MultiSink) Emit(ctx context.Context, rec TelemetryRecord) {
	for _, s := range m {
		if s != nil {
			s.Emit(ctx, rec)
		}
	}
}

// LoadAttemptWriter persists load attempts.
type LoadAttemptWriter interface {
	Create(ctx context.Context, attempt *domain.LoadAttempt) error
}

// RepositorySink persists telemetry records in the background.
// Records are dropped when the buffer is full.
type RepositorySink struct {
	writer  LoadAttemptWriter
	logger  *logger.Logger
	timeout time.Duration

	queue     chan domain.LoadAttempt
	done      chan struct{}
	closeOnce sync.Once

	mu      sync.Mutex
	closed  bool
	dropped int64
}

// NewRepositorySink starts a background writer.
// Parameters:
//   - writer: repository to persist attempts into.
//   - log: logger for write failures.
//   - bufferSize: queue capacity; values < 1 become 1.
//
// Returns:
//   - *RepositorySink: running sink; call Close to drain it.
func NewRepositorySink(writer LoadAttemptWriter, log *logger.Logger, bufferSize int) *RepositorySink {
	if bufferSize < 1 {
		bufferSize = 1
	}
	if log == nil {
		log = logger.GetDefault()
	}
	s := &RepositorySink{
		writer:  writer,
		logger:  log,
		timeout: 5 * time.Second,
		queue:   make(chan domain.LoadAttempt, bufferSize),
		done:    make(chan struct{}),
	}
	go s.run()
	return s
}

// Emit enqueues the attempt without waiting for the write.
func (s *RepositorySink) Emit(_ context.Context, rec TelemetryRecord) {
	attempt := rec.Attempt
	if attempt.ID == "" {
		attempt.ID = uuid.New().String()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		s.dropped++
		return
	}
	select {
	case s.queue <- attempt:
	default:
		s.dropped++
	}
}

// Dropped returns how many records were discarded.
func (s *RepositorySink) Dropped() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Close stops accepting records and waits for queued ones to be written.
func (s *RepositorySink) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		close(s.queue)
		s.mu.Unlock()
		<-s.done
	})
}

func (s *RepositorySink) run() {
	defer close(s.done)
	for attempt := range s.queue {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		if err := s.writer.Create(ctx, &attempt); err != nil {
			s.logger.WithFields(logger.Fields{
				logger.FieldRemote:    attempt.RemoteName,
				logger.FieldComponent: attempt.ComponentName,
			}).WithError(err).Warn("Failed to persist load attempt")
		}
		cancel()
	}
}
