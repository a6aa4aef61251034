package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/timmy/pokedex/internal/domain"
)

// TelemetryTag prefixes every remote load event in the logging sink.
const TelemetryTag = "[MF:Telemetry]"

// TelemetrySeverity is the sink level of a telemetry record.
type TelemetrySeverity int

const (
	SeverityInfo TelemetrySeverity = iota
	SeverityError
)

// String returns the lowercase level name.
func (s TelemetrySeverity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "info"
}

// TelemetryRecord is what a sink receives for one load attempt.
type TelemetryRecord struct {
	Severity TelemetrySeverity
	Tag      string
	Attempt  domain.LoadAttempt
	// Payload is the JSON serialization of Attempt.
	Payload []byte
}

// TelemetrySink receives telemetry records. Implementations must not block
// for long and must not panic; the emitter recovers regardless.
type TelemetrySink interface {
	Emit(ctx context.Context, rec TelemetryRecord)
}

// TelemetrySinkFunc adapts a function to TelemetrySink.
type TelemetrySinkFunc func(ctx context.Context, rec TelemetryRecord)

// Emit calls f(ctx, rec).
func (f TelemetrySinkFunc) Emit(ctx context.Context, rec TelemetryRecord) {
	f(ctx, rec)
}

// TelemetryEmitter formats and reports remote component load attempts.
type TelemetryEmitter struct {
	sink TelemetrySink
	now  func() time.Time
}

// EmitterOption configures a TelemetryEmitter.
type EmitterOption func(*TelemetryEmitter)

// WithEmitterClock overrides the clock used for ObservedAt.
func WithEmitterClock(now func() time.Time) EmitterOption {
	return func(e *TelemetryEmitter) {
		if now != nil {
			e.now = now
		}
	}
}

// NewTelemetryEmitter creates an emitter writing to sink.
// Parameters:
//   - sink: destination for records; nil discards them.
//   - opts: optional clock override.
//
// Returns:
//   - *TelemetryEmitter: ready emitter.
func NewTelemetryEmitter(sink TelemetrySink, opts ...EmitterOption) *TelemetryEmitter {
	e := &TelemetryEmitter{sink: sink, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RecordSuccess reports a successful load with its elapsed time rounded to
// the nearest millisecond.
func (e *TelemetryEmitter) RecordSuccess(ctx context.Context, remote, version, component string, elapsed time.Duration) {
	ms := int64(math.Round(float64(elapsed) / float64(time.Millisecond)))
	if ms < 0 {
		ms = 0
	}
	e.emit(ctx, SeverityInfo, domain.LoadAttempt{
		RemoteName:    remote,
		VersionLabel:  version,
		ComponentName: component,
		ElapsedMillis: ms,
		Outcome:       domain.LoadOutcomeSuccess,
	})
}

// RecordFailure reports a failed load. ElapsedMillis is always -1.
func (e *TelemetryEmitter) RecordFailure(ctx context.Context, remote, version, component string, err error) {
	e.emit(ctx, SeverityError, domain.LoadAttempt{
		RemoteName:    remote,
		VersionLabel:  version,
		ComponentName: component,
		ElapsedMillis: domain.FailedElapsedMillis,
		Outcome:       domain.LoadOutcomeFailure,
		ErrorDetail:   errorDetail(err),
	})
}

func (e *TelemetryEmitter) emit(ctx context.Context, severity TelemetrySeverity, attempt domain.LoadAttempt) {
	if e == nil || e.sink == nil {
		return
	}
	// Telemetry loss is acceptable; a misbehaving sink must not reach the caller.
	defer func() { _ = recover() }()

	attempt.ObservedAt = e.now().UTC()
	payload, err := json.Marshal(attempt)
	if err != nil {
		payload = []byte(fmt.Sprintf(`{"remote":%q,"component":%q}`, attempt.RemoteName, attempt.ComponentName))
	}

	e.sink.Emit(ctx, TelemetryRecord{
		Severity: severity,
		Tag:      TelemetryTag,
		Attempt:  attempt,
		Payload:  payload,
	})
}

// errorDetail returns the error message, falling back to its type name.
func errorDetail(err error) string {
	if err == nil {
		return "unknown error"
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fmt.Sprintf("%T", err)
}
