package service

import (
	"context"
	"time"
)

// ImportTracker times remote component loads and reports them to telemetry.
// It holds no per-call state; one tracker is shared process-wide.
type ImportTracker struct {
	emitter *TelemetryEmitter
	now     func() time.Time
}

// NewImportTracker creates a tracker reporting to emitter.
func NewImportTracker(emitter *TelemetryEmitter) *ImportTracker {
	return &ImportTracker{emitter: emitter, now: time.Now}
}

// WithClock returns a copy of the tracker using now for timing.
func (t *ImportTracker) WithClock(now func() time.Time) *ImportTracker {
	cp := *t
	if now != nil {
		cp.now = now
	}
	return &cp
}

func (t *ImportTracker) clock() time.Time {
	if t == nil || t.now == nil {
		return time.Now()
	}
	return t.now()
}

func (t *ImportTracker) telemetry() *TelemetryEmitter {
	if t == nil {
		return nil
	}
	return t.emitter
}

// TrackedImport runs load, reports its outcome, and returns its result unchanged.
// A failing load is reported and its error is returned as is. No caching,
// deduplication or timeout is added: a load that never returns blocks forever.
// A nil tracker runs load without reporting.
//
//	mod, err := service.TrackedImport(ctx, tracker, "design_system", "1.0.0", "BaseCard",
//	    func(ctx context.Context) (*domain.Module, error) { return loader.Load(ctx, remote, "BaseCard") })
func TrackedImport[T any](
	ctx context.Context,
	tracker *ImportTracker,
	remote, version, component string,
	load func(ctx context.Context) (T, error),
) (T, error) {
	emitter := tracker.telemetry()
	start := tracker.clock()
	mod, err := load(ctx)
	if err != nil {
		emitter.RecordFailure(ctx, remote, version, component, err)
		var zero T
		return zero, err
	}
	emitter.RecordSuccess(ctx, remote, version, component, tracker.clock().Sub(start))
	return mod, nil
}
