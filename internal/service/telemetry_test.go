package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timmy/pokedex/internal/domain"
	"github.com/timmy/pokedex/internal/logger"
)

// recordingSink keeps every record it receives.
type recordingSink struct {
	mu      sync.Mutex
	records []TelemetryRecord
}

func (s *recordingSink) Emit(_ context.Context, rec TelemetryRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
}

func (s *recordingSink) all() []TelemetryRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]TelemetryRecord(nil), s.records...)
}

var fixedNow = time.Date(2024, 5, 1, 12, 30, 45, 123_000_000, time.UTC)

func fixedClock() time.Time { return fixedNow }

func decodePayload(t *testing.T, payload []byte) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(payload, &out))
	return out
}

func TestTelemetryEmitter_RecordSuccess(t *testing.T) {
	tests := []struct {
		name    string
		elapsed time.Duration
		wantMs  float64
	}{
		{name: "rounds down", elapsed: 123400 * time.Microsecond, wantMs: 123},
		{name: "rounds half up", elapsed: 12500 * time.Microsecond, wantMs: 13},
		{name: "zero", elapsed: 0, wantMs: 0},
		{name: "negative clamps to zero", elapsed: -5 * time.Millisecond, wantMs: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &recordingSink{}
			emitter := NewTelemetryEmitter(sink, WithEmitterClock(fixedClock))

			emitter.RecordSuccess(context.Background(), "design_system", "1.2.0", "BaseCard", tt.elapsed)

			records := sink.all()
			require.Len(t, records, 1)
			rec := records[0]
			assert.Equal(t, SeverityInfo, rec.Severity)
			assert.Equal(t, TelemetryTag, rec.Tag)
			assert.Equal(t, domain.LoadOutcomeSuccess, rec.Attempt.Outcome)

			payload := decodePayload(t, rec.Payload)
			assert.Equal(t, "design_system", payload["remote"])
			assert.Equal(t, "1.2.0", payload["version"])
			assert.Equal(t, "BaseCard", payload["component"])
			assert.Equal(t, tt.wantMs, payload["loadTimeMs"])
			assert.Equal(t, true, payload["success"])
			assert.Equal(t, "2024-05-01T12:30:45.123Z", payload["timestamp"])
			_, hasError := payload["error"]
			assert.False(t, hasError)
		})
	}
}

func TestTelemetryEmitter_RecordFailure(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantError string
	}{
		{name: "error message", err: errors.New("script 404"), wantError: "script 404"},
		{name: "nil error", err: nil, wantError: "unknown error"},
		{name: "empty message falls back to type", err: emptyErr{}, wantError: "service.emptyErr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &recordingSink{}
			emitter := NewTelemetryEmitter(sink, WithEmitterClock(fixedClock))

			emitter.RecordFailure(context.Background(), "havy_cards", "latest", "CardGrid", tt.err)

			records := sink.all()
			require.Len(t, records, 1)
			rec := records[0]
			assert.Equal(t, SeverityError, rec.Severity)
			assert.Equal(t, domain.FailedElapsedMillis, rec.Attempt.ElapsedMillis)

			payload := decodePayload(t, rec.Payload)
			assert.Equal(t, float64(-1), payload["loadTimeMs"])
			assert.Equal(t, false, payload["success"])
			assert.Equal(t, tt.wantError, payload["error"])
			assert.Equal(t, "havy_cards", payload["remote"])
		})
	}
}

type emptyErr struct{}

func (emptyErr) Error() string { return "" }

func TestTelemetryEmitter_SinkPanicIsContained(t *testing.T) {
	emitter := NewTelemetryEmitter(TelemetrySinkFunc(func(context.Context, TelemetryRecord) {
		panic("sink exploded")
	}))

	assert.NotPanics(t, func() {
		emitter.RecordSuccess(context.Background(), "r", "1", "c", time.Millisecond)
		emitter.RecordFailure(context.Background(), "r", "1", "c", errors.New("x"))
	})
}

func TestTelemetryEmitter_NilSink(t *testing.T) {
	var nilEmitter *TelemetryEmitter
	assert.NotPanics(t, func() {
		NewTelemetryEmitter(nil).RecordSuccess(context.Background(), "r", "1", "c", 0)
		nilEmitter.RecordFailure(context.Background(), "r", "1", "c", nil)
	})
}

func TestLogSink_Emit(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&logger.Config{Level: "info", Format: "json", Output: &buf, ServiceName: "test"})

	emitter := NewTelemetryEmitter(NewLogSink(log), WithEmitterClock(fixedClock))
	emitter.RecordSuccess(context.Background(), "design_system", "1.0.0", "BaseCard", 40*time.Millisecond)
	emitter.RecordFailure(context.Background(), "design_system", "1.0.0", "Missing", errors.New("boom"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first, second map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))

	assert.Equal(t, "info", first["level"])
	assert.True(t, strings.HasPrefix(first["message"].(string), TelemetryTag+" {"))
	assert.Equal(t, "BaseCard", first[logger.FieldComponent])
	assert.Equal(t, float64(40), first[logger.FieldDurationMs])

	assert.Equal(t, "error", second["level"])
	assert.Contains(t, second["message"], `"error":"boom"`)
	assert.Equal(t, float64(-1), second[logger.FieldDurationMs])
}

func TestMultiSink_Emit(t *testing.T) {
	a, b := &recordingSink{}, &recordingSink{}
	emitter := NewTelemetryEmitter(MultiSink{a, nil, b})

	emitter.RecordSuccess(context.Background(), "r", "1", "c", time.Millisecond)

	assert.Len(t, a.all(), 1)
	assert.Len(t, b.all(), 1)
}

// memoryAttemptWriter stores attempts in memory.
type memoryAttemptWriter struct {
	mu       sync.Mutex
	attempts []domain.LoadAttempt
	err      error
	block    chan struct{}
}

func (w *memoryAttemptWriter) Create(_ context.Context, attempt *domain.LoadAttempt) error {
	if w.block != nil {
		<-w.block
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.attempts = append(w.attempts, *attempt)
	return nil
}

func (w *memoryAttemptWriter) stored() []domain.LoadAttempt {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]domain.LoadAttempt(nil), w.attempts...)
}

func TestRepositorySink_PersistsOnClose(t *testing.T) {
	writer := &memoryAttemptWriter{}
	sink := NewRepositorySink(writer, logger.Discard(), 8)
	emitter := NewTelemetryEmitter(sink, WithEmitterClock(fixedClock))

	emitter.RecordSuccess(context.Background(), "design_system", "1.0.0", "BaseCard", 10*time.Millisecond)
	emitter.RecordFailure(context.Background(), "havy_cards", "latest", "CardGrid", errors.New("timeout"))
	sink.Close()

	stored := writer.stored()
	require.Len(t, stored, 2)
	assert.NotEmpty(t, stored[0].ID)
	assert.NotEqual(t, stored[0].ID, stored[1].ID)
	assert.Equal(t, int64(10), stored[0].ElapsedMillis)
	assert.Equal(t, fixedNow, stored[0].ObservedAt)
	assert.Equal(t, "timeout", stored[1].ErrorDetail)
	assert.Zero(t, sink.Dropped())

	// Records after Close are dropped, not written.
	emitter.RecordSuccess(context.Background(), "r", "1", "c", 0)
	assert.Equal(t, int64(1), sink.Dropped())
	assert.NotPanics(t, sink.Close)
}

func TestRepositorySink_DropsWhenFull(t *testing.T) {
	writer := &memoryAttemptWriter{block: make(chan struct{})}
	sink := NewRepositorySink(writer, logger.Discard(), 1)
	emitter := NewTelemetryEmitter(sink)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 10; i++ {
			emitter.RecordSuccess(context.Background(), "r", "1", "c", 0)
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("emit blocked on a full queue")
	}

	// At most one record is being written and one is queued.
	assert.GreaterOrEqual(t, sink.Dropped(), int64(8))
	close(writer.block)
	sink.Close()
	assert.Equal(t, int64(10), sink.Dropped()+int64(len(writer.stored())))
}

func TestRepositorySink_WriteErrorIsLogged(t *testing.T) {
	writer := &memoryAttemptWriter{err: errors.New("disk full")}
	sink := NewRepositorySink(writer, logger.Discard(), 2)

	NewTelemetryEmitter(sink).RecordSuccess(context.Background(), "r", "1", "c", 0)
	assert.NotPanics(t, sink.Close)
	assert.Empty(t, writer.stored())
}
