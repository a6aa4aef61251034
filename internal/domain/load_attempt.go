package domain

import (
	"encoding/json"
	"time"
)

// LoadOutcome is the result of one remote component load attempt.
type LoadOutcome string

const (
	LoadOutcomeSuccess LoadOutcome = "success"
	LoadOutcomeFailure LoadOutcome = "failure"
)

// FailedElapsedMillis is the elapsed time recorded for failed attempts.
const FailedElapsedMillis int64 = -1

// LoadAttempt is the telemetry record of one tracked remote import.
type LoadAttempt struct {
	ID            string      `gorm:"type:text;primaryKey" json:"-"`
	RemoteName    string      `gorm:"type:text;not null;index:idx_load_attempts_remote" json:"remote"`
	VersionLabel  string      `gorm:"type:text;not null" json:"version"`
	ComponentName string      `gorm:"type:text;not null" json:"component"`
	ElapsedMillis int64       `json:"loadTimeMs"`
	Outcome       LoadOutcome `gorm:"type:text;index:idx_load_attempts_outcome" json:"outcome"`
	ErrorDetail   string      `gorm:"type:text" json:"error,omitempty"`
	ObservedAt    time.Time   `gorm:"index" json:"-"`
}

// TableName returns the database table name for LoadAttempt.
func (LoadAttempt) TableName() string {
	return "load_attempts"
}

// Succeeded reports whether the attempt loaded its module.
func (a LoadAttempt) Succeeded() bool {
	return a.Outcome == LoadOutcomeSuccess
}

// MarshalJSON adds the success flag and the ISO timestamp of the wire event.
func (a LoadAttempt) MarshalJSON() ([]byte, error) {
	type alias LoadAttempt
	return json.Marshal(struct {
		alias
		Success   bool   `json:"success"`
		Timestamp string `json:"timestamp"`
	}{
		alias:     alias(a),
		Success:   a.Succeeded(),
		Timestamp: a.ObservedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	})
}
