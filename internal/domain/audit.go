package domain

import (
	"encoding/json"
	"time"
)

// AuditLog records one mutation for traceability. The actor is an opaque
// user identifier supplied by the caller.
type AuditLog struct {
	ID           string
	Actor        string
	Action       AuditAction
	ResourceType string
	ResourceID   string
	Detail       JSON
	CreatedAt    time.Time
}

// JSON is a type alias for JSON data
type JSON map[string]any

// AuditAction represents different types of auditable actions
type AuditAction string

const (
	// Sheet actions
	AuditActionSheetCreate  AuditAction = "sheet.create"
	AuditActionSheetUpdate  AuditAction = "sheet.update"
	AuditActionSheetArchive AuditAction = "sheet.archive"
	AuditActionSheetRestore AuditAction = "sheet.restore"
	AuditActionSheetDelete  AuditAction = "sheet.delete"
	AuditActionSheetOpening AuditAction = "sheet.opening_balance"

	// Entry actions
	AuditActionEntryAdd    AuditAction = "entry.add"
	AuditActionEntryUpdate AuditAction = "entry.update"
	AuditActionEntryDelete AuditAction = "entry.delete"

	// Container actions
	AuditActionContainerCreate AuditAction = "container.create"
)

// MarshalState converts a domain object to JSON for audit logging.
func MarshalState(v any) JSON {
	if v == nil {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return JSON{"error": "failed to marshal state"}
	}

	var result JSON
	if err := json.Unmarshal(data, &result); err != nil {
		return JSON{"error": "failed to unmarshal state"}
	}

	return result
}
