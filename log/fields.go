// SPDX-License-Identifier: MIT

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldRequestID     = "request_id"
	FieldCorrelationID = "correlation_id"

	// Process fields
	FieldComponent = "component"
	FieldEvent     = "event"

	// Call fields
	FieldAttempts = "attempts"
	FieldDelay    = "delay"
	FieldTimeout  = "timeout"

	// HTTP fields
	FieldMethod   = "method"
	FieldURL      = "url"
	FieldStatus   = "status"
	FieldElapsed  = "elapsed"
	FieldBodySize = "body_size"

	// Path fields
	FieldPath    = "path"
	FieldBaseURL = "base_url"
)
