package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// Tracing fields, propagated through the call chain via context.
const (
	FieldRequestID = "request_id"
	FieldComponent = "component"

	// FieldRemote is the module federation remote name
	FieldRemote = "remote"

	// FieldVersion is the remote version label (semver or "latest")
	FieldVersion = "version"
)

// Metric fields, attached per entry for aggregation.
const (
	FieldDurationMs = "duration_ms"
	FieldCount      = "count"
	FieldSize       = "size"
	FieldStatus     = "status"

	// FieldPageIndex is the list cache page being fetched
	FieldPageIndex = "page_index"

	// FieldOffset is the upstream listing offset
	FieldOffset = "offset"
)
