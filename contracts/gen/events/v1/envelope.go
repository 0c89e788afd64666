package v1

import (
	"encoding/json"
	"time"
)

// Envelope is the canonical, versioned event envelope used on the CivicPulse bus.
// This package is contract-only and must stay backward compatible; consumers in
// other runtimes (mail relay, push relay) decode the same shape.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	OccurredAt    time.Time       `json:"occurred_at"`
	SourceService string          `json:"source_service"`
	TraceID       string          `json:"trace_id"`
	SchemaVersion int             `json:"schema_version"`
	PartitionKey  string          `json:"partition_key"`
	Data          json.RawMessage `json:"data"`
}

// Event types crossing context boundaries.
const (
	EventTypeIssueReported      = "issue.reported"
	EventTypeIssueStatusChanged = "issue.status_changed"
	EventTypeAlertBroadcast     = "alert.broadcast"
	EventTypeUserRegistered     = "user.registered"
)
